// Package ui provides terminal color support and status output for chaostab.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ColorMode determines when to use colored output.
type ColorMode int

const (
	// ColorAuto detects whether to use colors from terminal capabilities.
	ColorAuto ColorMode = iota
	// ColorAlways forces colored output.
	ColorAlways
	// ColorNever disables all colored output.
	ColorNever
)

// ParseColorMode maps the --color flag value to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	}
	return ColorAuto, fmt.Errorf("unsupported --color: %s (use auto|always|never)", s)
}

type contextKey string

const uiContextKey contextKey = "ui"

// UI writes status lines. Status goes to the writer given to New (stderr
// for the CLI), leaving stdout for data.
type UI struct {
	out     *termenv.Output
	profile termenv.Profile
	color   ColorMode
}

// New creates a UI writing to w (stderr when nil). NO_COLOR disables color
// regardless of mode.
func New(mode ColorMode, w io.Writer) *UI {
	if w == nil {
		w = os.Stderr
	}
	if os.Getenv("NO_COLOR") != "" {
		mode = ColorNever
	}
	profile := termenv.NewOutput(w).EnvColorProfile()
	switch mode {
	case ColorNever:
		profile = termenv.Ascii
	case ColorAlways:
		if profile == termenv.Ascii {
			profile = termenv.ANSI256
		}
	}
	return &UI{
		out:     termenv.NewOutput(w, termenv.WithProfile(profile)),
		profile: profile,
		color:   mode,
	}
}

// WithUI returns a new context with the UI attached.
func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, uiContextKey, u)
}

// FromContext retrieves the UI from ctx, or a default stderr UI.
func FromContext(ctx context.Context) *UI {
	if u, ok := ctx.Value(uiContextKey).(*UI); ok {
		return u
	}
	return New(ColorAuto, nil)
}

// Success prints a success message in green.
func (u *UI) Success(format string, args ...any) {
	u.line("✓ ", termenv.ANSIGreen, format, args...)
}

// Warning prints a warning message in yellow.
func (u *UI) Warning(format string, args ...any) {
	u.line("⚠ ", termenv.ANSIYellow, format, args...)
}

// Error prints an error message in red.
func (u *UI) Error(format string, args ...any) {
	u.line("✗ ", termenv.ANSIRed, format, args...)
}

// Info prints an informational message in blue.
func (u *UI) Info(format string, args ...any) {
	u.line("ℹ ", termenv.ANSIBlue, format, args...)
}

func (u *UI) line(prefix string, c termenv.Color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(u.out, u.out.String(prefix+msg).Foreground(c))
}

// Writer returns the underlying status writer.
func (u *UI) Writer() io.Writer {
	return u.out
}

// Profile reports the color profile in effect.
func (u *UI) Profile() termenv.Profile {
	return u.profile
}

package table

import (
	"strconv"
	"strings"
	"time"
)

// Infer picks the narrowest kind every non-empty value converts to without
// loss, and returns the converted cells. Empty strings become nil. A value
// only counts as numeric or temporal when formatting it back yields the same
// text, so "007" or "1e3" stay strings.
func Infer(raw []string) (Kind, []any) {
	return InferMissing(raw, nil)
}

// InferMissing is Infer for sources that mark missing values themselves:
// raw[i] is missing when missing[i] is set, and empty strings are kept as
// values. A nil missing falls back to treating empty strings as missing.
func InferMissing(raw []string, missing []bool) (Kind, []any) {
	isMissing := func(i int) bool {
		if missing == nil {
			return raw[i] == ""
		}
		return missing[i]
	}
	kinds := []Kind{KindInteger, KindFloat, KindBool, KindDate, KindDateTime}
	for _, k := range kinds {
		if cells, ok := convertAll(raw, isMissing, k); ok {
			return k, cells
		}
	}
	cells := make([]any, len(raw))
	for i, s := range raw {
		if !isMissing(i) {
			cells[i] = s
		}
	}
	return KindString, cells
}

func convertAll(raw []string, isMissing func(int) bool, k Kind) ([]any, bool) {
	cells := make([]any, len(raw))
	seen := false
	for i, s := range raw {
		if isMissing(i) {
			continue
		}
		v, ok := ParseAs(s, k)
		if !ok {
			return nil, false
		}
		cells[i] = v
		seen = true
	}
	return cells, seen
}

// ParseAs converts s to a cell of kind k when the conversion is lossless.
func ParseAs(s string, k Kind) (any, bool) {
	switch k {
	case KindInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || strconv.FormatInt(n, 10) != s {
			return nil, false
		}
		return n, true
	case KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || strconv.FormatFloat(f, 'f', -1, 64) != s {
			return nil, false
		}
		return f, true
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil || strconv.FormatBool(b) != s {
			return nil, false
		}
		return b, true
	case KindDate:
		t, err := time.Parse(DateLayout, s)
		if err != nil {
			return nil, false
		}
		return t, true
	case KindDateTime:
		t, err := time.Parse(DateTimeLayout, s)
		if err != nil {
			return nil, false
		}
		return t, true
	case KindString, KindText:
		return s, true
	}
	return nil, false
}

// ParseTime recognizes the date and timestamp spellings commonly found in
// exported datasets.
func ParseTime(s string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339, DateLayout, DateTimeLayout, "2006/01/02", "02/01/2006", "01/02/2006",
		"2006-01-02 15:04", "1/2/2006 15:04", "1/2/2006 15:04:05",
	}
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/chaostab-cli/internal/config"
	"github.com/KaramelBytes/chaostab-cli/internal/logging"
	"github.com/KaramelBytes/chaostab-cli/internal/ui"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logJSON   bool
	colorFlag string

	// Loaded configuration
	cfg *cfgpkg.Global
	// Logger configured from --debug/--log-json
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "chaostab",
	Short: "chaostab: synthetic tables and schema-drift variants for ETL testing",
	Long: `chaostab generates synthetic tabular datasets from schema templates and
derives chaotic variants of them: shuffled and renamed columns, dropped and
padded columns, shuffled rows and injected missing values. Variants are
exported as CSV, as one XLSX workbook with a sheet per variant, or as Parquet.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		mode, err := ui.ParseColorMode(colorFlag)
		if err != nil {
			return err
		}
		if logJSON {
			logger = logging.SetupJSON(debug, cmd.ErrOrStderr())
		} else {
			logger = logging.Setup(debug, cmd.ErrOrStderr())
		}
		cmd.SetContext(ui.WithUI(cmd.Context(), ui.New(mode, cmd.ErrOrStderr())))
		return nil
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.chaostab/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto|always|never")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// loadedConfig returns the loaded configuration, loading defaults if needed.
func loadedConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg = c
	return cfg, nil
}

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/chaostab-cli/internal/run"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
	"github.com/KaramelBytes/chaostab-cli/internal/tabio"
	"github.com/KaramelBytes/chaostab-cli/internal/ui"
	"github.com/spf13/cobra"
)

var (
	replayVariant int
	replayOutput  string
	replayVerify  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <run-dir>",
	Short: "Rebuild variants of a recorded chaos run from its run.yaml",
	Long: `Rebuild one variant of a chaos run from the run.yaml in <run-dir>.

The base table is regenerated from the recorded template, seed and reference
time, or reloaded from the recorded input file, then the variant's recorded
seed is replayed. Without --output the variant is written to stdout as CSV.
--verify rebuilds every variant and compares it with its exported CSV file.`,
	Example: `  chaostab replay chaostab-out --variant 2 -o table_v2.parquet
  chaostab replay chaostab-out --verify`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		u := ui.FromContext(cmd.Context())
		m, err := run.Load(args[0])
		if err != nil {
			return err
		}
		base, err := rebuildBase(c, m.Source)
		if err != nil {
			return err
		}
		if replayVerify {
			return verifyRun(u, m, base)
		}

		if replayVariant < 1 || replayVariant > len(m.Variants) {
			return fmt.Errorf("invalid --variant %d: run has %d variants", replayVariant, len(m.Variants))
		}
		t, _, err := m.Replay(base, replayVariant-1)
		if err != nil {
			return err
		}
		if replayOutput == "" {
			return tabio.WriteCSV(cmd.OutOrStdout(), t)
		}
		if err := tabio.WriteFile(replayOutput, tabio.Sheet{Name: t.Name, Table: t}); err != nil {
			return err
		}
		u.Success("Rebuilt %s (%d rows × %d columns) → %s", t.Name, t.NumRows(), t.NumCols(), replayOutput)
		return nil
	},
}

// verifyRun replays every variant and compares it with its CSV export.
func verifyRun(u *ui.UI, m *run.Run, base *table.Table) error {
	var mismatched []string
	checked := 0
	for i, v := range m.Variants {
		csvFile := ""
		for _, f := range v.Files {
			if strings.EqualFold(filepath.Ext(f), ".csv") {
				csvFile = f
			}
		}
		if csvFile == "" {
			u.Warning("%s has no CSV export to compare", v.Name)
			continue
		}
		if !filepath.IsAbs(csvFile) {
			csvFile = filepath.Join(m.Dir(), csvFile)
		}
		t, _, err := m.Replay(base, i)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := tabio.WriteCSV(&buf, t); err != nil {
			return err
		}
		exported, err := os.ReadFile(csvFile)
		if err != nil {
			return fmt.Errorf("read export: %w", err)
		}
		checked++
		if !bytes.Equal(exported, buf.Bytes()) {
			mismatched = append(mismatched, v.Name)
			u.Error("%s differs from %s", v.Name, filepath.Base(csvFile))
			continue
		}
		u.Success("%s matches %s", v.Name, filepath.Base(csvFile))
	}
	if len(mismatched) > 0 {
		return fmt.Errorf("%d of %d variants differ from their exports: %s", len(mismatched), checked, strings.Join(mismatched, ", "))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().IntVar(&replayVariant, "variant", 1, "1-based variant to rebuild")
	replayCmd.Flags().StringVarP(&replayOutput, "output", "o", "", "output file (.csv, .tsv, .xlsx, .parquet); stdout CSV when empty")
	replayCmd.Flags().BoolVar(&replayVerify, "verify", false, "rebuild every variant and compare it with its CSV export")
}

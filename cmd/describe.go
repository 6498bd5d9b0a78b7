package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/chaostab-cli/internal/profile"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
	"github.com/KaramelBytes/chaostab-cli/internal/tabio"
	"github.com/KaramelBytes/chaostab-cli/internal/ui"
	"github.com/spf13/cobra"
)

var (
	descDelimiter  string
	descSheetName  string
	descSheetIndex int
	descAllSheets  bool
	descSampleRows int
	descMaxRows    int
	descCorr       bool
	descOutliers   bool
	descOutlierThr float64
	descBaseline   string
	descJSON       bool
	descOutput     string
	descQuiet      bool
)

// describedTable is one profiled table, with its drift when a baseline is set.
type describedTable struct {
	File   string          `json:"file"`
	Report *profile.Report `json:"report"`
	Drift  *profile.Drift  `json:"drift,omitempty"`
}

var describeCmd = &cobra.Command{
	Use:   "describe <files...>",
	Short: "Profile CSV/TSV/XLSX/Parquet tables and report schema drift",
	Long: `Profile one or more tables and print a Markdown summary per table: row and
column counts, the inferred class of every column with missing ratios and
statistics, and the first rows.

Glob patterns are expanded. With --all-sheets every sheet of a workbook is
profiled. With --baseline each table is also compared to a reference table,
listing missing, added and moved columns and changes in missing ratios.`,
	Example: `  chaostab describe chaostab-out/table_v*.csv --baseline base.csv
  chaostab describe chaostab-out/tables_chaotiques.xlsx --all-sheets --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		delim, err := parseDelimiter(descDelimiter)
		if err != nil {
			return err
		}
		opt := profile.DefaultOptions()
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = descSampleRows
		}
		opt.Correlations = descCorr
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = descOutliers
		}
		if descOutlierThr > 0 {
			opt.OutlierThreshold = descOutlierThr
		}
		read := tabio.ReadOptions{Delimiter: delim, Sheet: descSheetName, SheetIndex: descSheetIndex, MaxRows: descMaxRows}

		var baseline *profile.Report
		if descBaseline != "" {
			bt, err := tabio.ReadFile(descBaseline, tabio.ReadOptions{Delimiter: delim})
			if err != nil {
				return fmt.Errorf("baseline: %w", err)
			}
			baseline = profile.Profile(bt, opt)
		}

		u := ui.FromContext(cmd.Context())
		var results []describedTable
		for i, path := range files {
			if !descQuiet {
				u.Info("[%d/%d] Processing %s...", i+1, len(files), filepath.Base(path))
			}
			tables, err := readTables(path, read, descAllSheets)
			if err != nil {
				return err
			}
			for _, t := range tables {
				d := describedTable{File: path, Report: profile.Profile(t, opt)}
				if baseline != nil {
					d.Drift = profile.Compare(baseline, d.Report)
				}
				results = append(results, d)
			}
		}

		var b strings.Builder
		for i, d := range results {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(d.Report.Markdown())
			if d.Drift != nil {
				b.WriteString("\n")
				b.WriteString(d.Drift.Markdown())
			}
		}
		if err := writeReport(b.String(), results, outputOptions{JSON: descJSON, OutputPath: descOutput, Writer: cmd.OutOrStdout()}); err != nil {
			return err
		}
		if descOutput != "" && !descQuiet {
			u.Success("Saved %d table profiles to %s", len(results), descOutput)
		}
		return nil
	},
}

// readTables loads one table, or every sheet of a workbook when all is set.
func readTables(path string, opt tabio.ReadOptions, all bool) ([]*table.Table, error) {
	if !all || !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		t, err := tabio.ReadFile(path, opt)
		if err != nil {
			return nil, err
		}
		return []*table.Table{t}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	names, err := tabio.SheetNames(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	out := make([]*table.Table, 0, len(names))
	for _, name := range names {
		opt.Sheet, opt.SheetIndex = name, 0
		t, err := tabio.ReadFile(path, opt)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(describeCmd)
	f := describeCmd.Flags()
	f.StringVar(&descDelimiter, "delimiter", "", "CSV delimiter override: ',', ';', '|', or 'tab'")
	f.StringVar(&descSheetName, "sheet-name", "", "XLSX: sheet name to profile (default first sheet)")
	f.IntVar(&descSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	f.BoolVar(&descAllSheets, "all-sheets", false, "XLSX: profile every sheet")
	f.IntVar(&descSampleRows, "sample-rows", 5, "number of leading rows to include")
	f.IntVar(&descMaxRows, "max-rows", 0, "maximum rows to read (0 = all)")
	f.BoolVar(&descCorr, "corr", false, "compute correlations among numeric columns")
	f.BoolVar(&descOutliers, "outliers", true, "compute outlier counts using robust z-score (MAD)")
	f.Float64Var(&descOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers")
	f.StringVar(&descBaseline, "baseline", "", "reference table to report drift against")
	f.BoolVar(&descJSON, "json", false, "emit JSON instead of Markdown")
	f.StringVarP(&descOutput, "output", "o", "", "write the report to a file instead of stdout")
	f.BoolVarP(&descQuiet, "quiet", "q", false, "suppress progress output")
}

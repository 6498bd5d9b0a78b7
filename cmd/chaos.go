package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/chaostab-cli/internal/chaos"
	cfgpkg "github.com/KaramelBytes/chaostab-cli/internal/config"
	"github.com/KaramelBytes/chaostab-cli/internal/run"
	"github.com/KaramelBytes/chaostab-cli/internal/tabio"
	"github.com/KaramelBytes/chaostab-cli/internal/ui"
	"github.com/KaramelBytes/chaostab-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chSchema      string
	chSchemaFiles []string
	chRows        int
	chInput       string
	chSheet       string
	chDelimiter   string
	chVariants    int
	chTargetCols  int
	chRenameProb  float64
	chDropProb    float64
	chNullRate    float64
	chSeed        uint64
	chNow         string
	chOutDir      string
	chFormats     string
	chWorkbook    string
	chSheetNames  []string
	chPreview     int
	chNoManifest  bool
)

var chaosCmd = &cobra.Command{
	Use:   "chaos",
	Short: "Derive chaotic variants of a synthetic or loaded table",
	Long: `Derive chaotic variants of a base table.

Each variant shuffles the column order, renames columns with a random suffix,
drops columns, pads back up to --cols with extra_<word> columns, shuffles the
rows and blanks a share of every column. The base table is generated from a
schema template or loaded with --input.

Outputs in --out-dir: table_v<i>.csv, one workbook with a "Version <i>" sheet
per variant, table_v<i>.parquet when requested, and run.yaml describing the
run.`,
	Example: `  chaostab chaos --schema profiles --rows 50 --variants 3 --cols 8
  chaostab chaos --input customers.csv --null-rate 0.2 --seed 42 --format csv,parquet`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		u := ui.FromContext(cmd.Context())
		f := cmd.Flags()

		p := c.Params()
		if f.Changed("cols") {
			p.TargetColumns = chTargetCols
		}
		if f.Changed("rename-prob") {
			p.RenameProbability = chRenameProb
		}
		if f.Changed("drop-prob") {
			p.DropProbability = chDropProb
		}
		if f.Changed("null-rate") {
			p.NullRate = chNullRate
		}
		if err := p.Validate(); err != nil {
			return err
		}
		count := c.Variants
		if f.Changed("variants") {
			count = chVariants
		}
		formats := c.Formats
		if f.Changed("format") {
			if formats, err = cfgpkg.ParseFormats(chFormats); err != nil {
				return err
			}
		}
		outDir := c.OutputDir
		if f.Changed("out-dir") {
			outDir = chOutDir
		}
		workbook := c.WorkbookName
		if f.Changed("workbook") {
			workbook = chWorkbook
		}
		if !strings.HasSuffix(strings.ToLower(workbook), ".xlsx") {
			return fmt.Errorf("invalid --workbook: %s (must end in .xlsx)", workbook)
		}
		preview := c.PreviewRows
		if f.Changed("preview") {
			preview = chPreview
		}
		if chInput != "" && (f.Changed("schema") || f.Changed("rows")) {
			return fmt.Errorf("--input cannot be combined with --schema or --rows")
		}

		delim, err := parseDelimiter(chDelimiter)
		if err != nil {
			return err
		}
		now, err := resolveNow(chNow)
		if err != nil {
			return err
		}
		schemaName := chSchema
		if schemaName == "" {
			schemaName = c.DefaultSchema
		}
		rows := c.DefaultRows
		if f.Changed("rows") {
			rows = chRows
		}
		seed := seedFlag(cmd, chSeed)
		base, src, err := buildBase(c, baseOptions{
			Schema:      schemaName,
			SchemaFiles: chSchemaFiles,
			Rows:        rows,
			Input:       chInput,
			Read:        tabio.ReadOptions{Delimiter: delim, Sheet: chSheet},
			Seed:        seed,
			Now:         now,
		})
		if err != nil {
			return err
		}

		variants, err := chaos.Variants(cmd.Context(), base, p, chaos.VariantOptions{
			Count:  count,
			Seed:   seed,
			Logger: logger,
		})
		if err != nil {
			return err
		}
		if len(chSheetNames) > 0 {
			if len(chSheetNames) != len(variants) {
				return fmt.Errorf("--sheet-names has %d names for %d variants", len(chSheetNames), len(variants))
			}
			for i := range variants {
				variants[i].Name = strings.TrimSpace(chSheetNames[i])
				variants[i].Table.Name = variants[i].Name
			}
		}

		outDir, err = utils.ExpandHome(outDir)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		manifest := run.New(outDir, src, p, seed)
		written, err := exportVariants(outDir, workbook, formats, variants, manifest)
		if err != nil {
			return err
		}
		if !chNoManifest {
			if err := manifest.Save(); err != nil {
				return err
			}
			written++
		}

		for _, v := range variants {
			logger.Info("variant ready", "name", v.Name, "columns", strings.Join(v.Table.ColumnNames(), ","))
			if preview <= 0 {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s (%d rows × %d columns)\n", v.Name, v.Table.NumRows(), v.Table.NumCols())
			fmt.Fprintln(cmd.OutOrStdout(), u.RenderTable(v.Table, preview))
		}
		u.Success("Wrote %d variants (%d files) to %s", len(variants), written, outDir)
		if seed == nil && !chNoManifest {
			u.Info("Run id %s; rebuild it with: chaostab replay %s", manifest.ID, outDir)
		}
		return nil
	},
}

// exportVariants writes every requested format and records the files in the
// manifest. It returns the number of files written.
func exportVariants(dir, workbook string, formats []string, variants []chaos.Variant, m *run.Run) (int, error) {
	written := 0
	want := map[string]bool{}
	for _, f := range formats {
		want[f] = true
	}
	for _, v := range variants {
		var files []string
		for _, ext := range []string{"csv", "parquet"} {
			if !want[ext] {
				continue
			}
			path := filepath.Join(dir, fmt.Sprintf("table_v%d.%s", v.Index+1, ext))
			if err := tabio.WriteFile(path, tabio.Sheet{Name: v.Name, Table: v.Table}); err != nil {
				return written, err
			}
			files = append(files, path)
			written++
		}
		m.AddVariant(v, files...)
	}
	if want["xlsx"] {
		sheets := make([]tabio.Sheet, len(variants))
		for i, v := range variants {
			sheets[i] = tabio.Sheet{Name: v.Name, Table: v.Table}
		}
		path := filepath.Join(dir, workbook)
		if err := tabio.WriteFile(path, sheets...); err != nil {
			return written, err
		}
		m.AddFile(path)
		written++
	}
	return written, nil
}

func init() {
	rootCmd.AddCommand(chaosCmd)
	f := chaosCmd.Flags()
	f.StringVarP(&chSchema, "schema", "s", "", "schema template for the base table (default from config)")
	f.StringSliceVar(&chSchemaFiles, "schema-file", nil, "additional YAML schema template files")
	f.IntVarP(&chRows, "rows", "n", 50, "rows in the generated base table")
	f.StringVarP(&chInput, "input", "i", "", "load the base table from a CSV/TSV/XLSX/Parquet file instead of generating it")
	f.StringVar(&chSheet, "sheet", "", "sheet to read when --input is a workbook")
	f.StringVar(&chDelimiter, "delimiter", "", "CSV delimiter for --input: ',', ';', '|', or 'tab'")
	f.IntVarP(&chVariants, "variants", "v", 2, "number of variants")
	f.IntVarP(&chTargetCols, "cols", "c", 8, "target column count after padding")
	f.Float64Var(&chRenameProb, "rename-prob", 0.3, "probability of renaming each column")
	f.Float64Var(&chDropProb, "drop-prob", 0.2, "probability of dropping each column")
	f.Float64Var(&chNullRate, "null-rate", 0.1, "share of cells blanked per column")
	f.Uint64Var(&chSeed, "seed", 0, "run seed for reproducible variants")
	f.StringVar(&chNow, "now", "", "reference time for relative dates and ages (e.g. 2025-01-01)")
	f.StringVarP(&chOutDir, "out-dir", "o", "", "output directory (default from config)")
	f.StringVar(&chFormats, "format", "", "export formats: csv,xlsx,parquet (default from config)")
	f.StringVar(&chWorkbook, "workbook", "", "workbook file name (default from config)")
	f.StringSliceVar(&chSheetNames, "sheet-names", nil, "sheet names for the variants, one per variant")
	f.IntVar(&chPreview, "preview", 5, "print the first N rows of each variant (0 disables)")
	f.BoolVar(&chNoManifest, "no-manifest", false, "do not write run.yaml")
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/chaostab-cli/internal/chaos"
	cfgpkg "github.com/KaramelBytes/chaostab-cli/internal/config"
	"github.com/KaramelBytes/chaostab-cli/internal/fake"
	"github.com/KaramelBytes/chaostab-cli/internal/generator"
	"github.com/KaramelBytes/chaostab-cli/internal/run"
	"github.com/KaramelBytes/chaostab-cli/internal/schema"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
	"github.com/KaramelBytes/chaostab-cli/internal/tabio"
	"github.com/KaramelBytes/chaostab-cli/internal/utils"
	"github.com/spf13/cobra"
)

// expandInputs resolves glob patterns, keeps literal paths that exist and
// returns a sorted, de-duplicated list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";":
		return ';', nil
	case "|":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}

// loadCatalog returns the built-in templates plus those in the configured
// schema directory and any explicitly given template files.
func loadCatalog(c *cfgpkg.Global, files []string) (*schema.Catalog, error) {
	cat := schema.NewCatalog()
	if c != nil && c.SchemaDir != "" {
		loaded, err := cat.LoadDir(c.SchemaDir)
		if err != nil {
			return nil, err
		}
		if len(loaded) > 0 {
			logger.Debug("schemas loaded", "dir", c.SchemaDir, "names", loaded)
		}
	}
	for _, f := range files {
		if _, err := cat.LoadFile(f); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// seedFlag returns the value of a --seed flag only when the user set it.
func seedFlag(cmd *cobra.Command, val uint64) *uint64 {
	if !cmd.Flags().Changed("seed") {
		return nil
	}
	return &val
}

// resolveNow parses --now; empty means the current time. UTC keeps the value
// exact through run.yaml.
func resolveNow(expr string) (time.Time, error) {
	now := time.Now().UTC()
	if strings.TrimSpace(expr) == "" {
		return now, nil
	}
	t, err := schema.ResolveTime(expr, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now: %w", err)
	}
	return t, nil
}

// baseOptions selects where a base table comes from.
type baseOptions struct {
	Schema      string
	SchemaFiles []string
	Rows        int
	Input       string
	Read        tabio.ReadOptions
	Seed        *uint64
	Now         time.Time
}

// buildBase generates a table from a schema template or loads it from a file.
// The returned source records what is needed to rebuild the same table.
func buildBase(c *cfgpkg.Global, opt baseOptions) (*table.Table, run.Source, error) {
	if opt.Input != "" {
		t, err := tabio.ReadFile(opt.Input, opt.Read)
		if err != nil {
			return nil, run.Source{}, err
		}
		src := run.Source{Input: opt.Input, Sheet: opt.Read.Sheet, Rows: t.NumRows(), Columns: t.ColumnNames()}
		if opt.Read.Delimiter != 0 {
			src.Delimiter = string(opt.Read.Delimiter)
		}
		return t, src, nil
	}
	cat, err := loadCatalog(c, opt.SchemaFiles)
	if err != nil {
		return nil, run.Source{}, err
	}
	tmpl, err := cat.Lookup(opt.Schema)
	if err != nil {
		return nil, run.Source{}, err
	}
	seed := rand.Uint64()
	if opt.Seed != nil {
		seed = *opt.Seed
	}
	rng := chaos.NewRand(seed)
	t, err := generator.Generate(tmpl, opt.Rows, fake.New(rng), opt.Now)
	if err != nil {
		return nil, run.Source{}, err
	}
	logger.Debug("base table generated", "schema", tmpl.Name, "seed", seed, "rows", t.NumRows(), "columns", t.NumCols())
	return t, run.Source{
		Schema:      tmpl.Name,
		SchemaFiles: absPaths(opt.SchemaFiles),
		Seed:        &seed,
		Now:         opt.Now,
		Rows:        t.NumRows(),
		Columns:     t.ColumnNames(),
	}, nil
}

// rebuildBase recreates the base table of a recorded run.
func rebuildBase(c *cfgpkg.Global, src run.Source) (*table.Table, error) {
	if !src.Rebuildable() {
		return nil, fmt.Errorf("run does not record its base table seed; re-run chaos to replay it")
	}
	delim, err := parseDelimiter(src.Delimiter)
	if err != nil {
		return nil, err
	}
	t, _, err := buildBase(c, baseOptions{
		Schema:      src.Schema,
		SchemaFiles: src.SchemaFiles,
		Rows:        src.Rows,
		Input:       src.Input,
		Read:        tabio.ReadOptions{Delimiter: delim, Sheet: src.Sheet},
		Seed:        src.Seed,
		Now:         src.Now,
	})
	if err != nil {
		return nil, err
	}
	if err := src.Matches(t); err != nil {
		return nil, err
	}
	return t, nil
}

func absPaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out
}

type outputOptions struct {
	JSON       bool
	OutputPath string
	Writer     io.Writer
}

// writeReport prints content (or payload as JSON) and optionally saves it.
func writeReport(content string, payload any, opts outputOptions) error {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	data := []byte(content)
	if opts.JSON {
		b, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal output: %w", err)
		}
		data = append(b, '\n')
	}
	if opts.OutputPath == "" {
		_, err := w.Write(data)
		return err
	}
	if err := utils.SafeWriteFile(opts.OutputPath, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

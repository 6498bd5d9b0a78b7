// Package run records a chaos run as a run.yaml manifest next to its exports.
package run

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/chaostab-cli/internal/chaos"
	"github.com/KaramelBytes/chaostab-cli/internal/fake"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
	"github.com/KaramelBytes/chaostab-cli/internal/utils"
)

const manifestFileName = "run.yaml"

// Run describes one invocation of the chaos command.
type Run struct {
	ID        string    `yaml:"id"`
	CreatedAt time.Time `yaml:"created_at"`
	// Seed is the run seed; nil when the run drew fresh entropy.
	Seed     *uint64          `yaml:"seed,omitempty"`
	Source   Source           `yaml:"source"`
	Params   chaos.Params     `yaml:"params"`
	Variants []VariantSummary `yaml:"variants"`
	// Files lists exports holding every variant, such as the workbook.
	Files []string `yaml:"files,omitempty"`

	// Not serialized: directory holding run.yaml
	dir string `yaml:"-"`
}

// Source describes where the base table came from, with what is needed to
// rebuild it: the file and read options for loaded tables, or the template,
// seed and reference time for generated ones.
type Source struct {
	Schema      string   `yaml:"schema,omitempty"`
	SchemaFiles []string `yaml:"schema_files,omitempty"`
	// Seed drives the generator; always recorded for generated tables.
	Seed *uint64   `yaml:"seed,omitempty"`
	Now  time.Time `yaml:"now,omitempty"`

	Input     string `yaml:"input,omitempty"`
	Sheet     string `yaml:"sheet,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`

	Rows    int      `yaml:"rows"`
	Columns []string `yaml:"columns"`
}

// Rebuildable reports whether the manifest holds enough to rebuild the base.
func (s Source) Rebuildable() bool {
	return s.Input != "" || (s.Schema != "" && s.Seed != nil)
}

// Matches reports whether t has the recorded shape of the base table.
func (s Source) Matches(t *table.Table) error {
	if t.NumRows() != s.Rows || !slices.Equal(t.ColumnNames(), s.Columns) {
		return fmt.Errorf("base table has %d rows [%s], run recorded %d rows [%s]",
			t.NumRows(), strings.Join(t.ColumnNames(), ", "), s.Rows, strings.Join(s.Columns, ", "))
	}
	return nil
}

// VariantSummary is the replayable outline of one variant's plan.
type VariantSummary struct {
	Name    string            `yaml:"name"`
	Seed    uint64            `yaml:"seed"`
	Columns []string          `yaml:"columns"`
	Renamed map[string]string `yaml:"renamed,omitempty"`
	Dropped []string          `yaml:"dropped,omitempty"`
	Padded  []string          `yaml:"padded,omitempty"`
	// NullsPerColumn is the number of cells blanked in every output column.
	NullsPerColumn int      `yaml:"nulls_per_column,omitempty"`
	Files          []string `yaml:"files,omitempty"`
}

// New constructs an in-memory run rooted at dir. Call Save() to persist.
func New(dir string, src Source, p chaos.Params, seed *uint64) *Run {
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Seed:      seed,
		Source:    src,
		Params:    p,
		dir:       dir,
	}
}

// Dir returns the directory the manifest is saved in.
func (r *Run) Dir() string { return r.dir }

// Path returns the manifest location.
func (r *Run) Path() string { return filepath.Join(r.dir, manifestFileName) }

// AddVariant records the plan of v and the files it was exported to. Paths
// are stored relative to the run directory when possible.
func (r *Run) AddVariant(v chaos.Variant, files ...string) {
	s := VariantSummary{
		Name:    v.Name,
		Seed:    v.Seed,
		Columns: v.Table.ColumnNames(),
		Files:   r.relative(files),
	}
	if v.Plan != nil {
		if ren := v.Plan.Renamed(); len(ren) > 0 {
			s.Renamed = ren
		}
		s.Dropped = v.Plan.Dropped()
		s.Padded = v.Plan.PaddedNames()
		if len(v.Plan.Nulls) > 0 {
			s.NullsPerColumn = len(v.Plan.Nulls[0])
		}
	}
	r.Variants = append(r.Variants, s)
}

// Replay rebuilds variant i from the same base table using its recorded seed.
func (r *Run) Replay(base *table.Table, i int) (*table.Table, *chaos.Plan, error) {
	if i < 0 || i >= len(r.Variants) {
		return nil, nil, fmt.Errorf("variant %d out of range: run has %d variants", i+1, len(r.Variants))
	}
	rng := chaos.NewRand(r.Variants[i].Seed)
	t, plan, err := chaos.Transform(base.Clone(), r.Params, rng, fake.New(rng))
	if err != nil {
		return nil, nil, err
	}
	t.Name = r.Variants[i].Name
	return t, plan, nil
}

// AddFile records an export shared by all variants.
func (r *Run) AddFile(path string) {
	r.Files = append(r.Files, r.relative([]string{path})...)
}

func (r *Run) relative(paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p
		if r.dir == "" {
			continue
		}
		if rel, err := filepath.Rel(r.dir, p); err == nil && !filepath.IsAbs(rel) && rel != ".." && !hasParentPrefix(rel) {
			out[i] = filepath.ToSlash(rel)
		}
	}
	return out
}

func hasParentPrefix(rel string) bool {
	return len(rel) >= 3 && rel[:2] == ".." && os.IsPathSeparator(rel[2])
}

// Save writes run.yaml using atomic write.
func (r *Run) Save() error {
	if r.dir == "" {
		return errors.New("run directory not set")
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	return utils.SafeWriteFile(r.Path(), data)
}

// Load reads run.yaml from dir.
func Load(dir string) (*Run, error) {
	path := filepath.Join(dir, manifestFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("run manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	var r Run
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse run: %w", err)
	}
	r.dir = dir
	return &r, nil
}

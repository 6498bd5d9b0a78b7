// Package chaos derives structurally perturbed variants of a table: shuffled
// and renamed columns, dropped and padded columns, shuffled rows and injected
// missing values.
//
// Every random decision is taken up front by NewPlan. Apply replays a Plan on
// a table without drawing any randomness, so plans can be inspected, stored
// and replayed independently of the random source that produced them.
package chaos

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/KaramelBytes/chaostab-cli/internal/fake"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
)

// maxNameRedraws bounds how often a colliding generated name is redrawn
// before a numeric suffix is used instead.
const maxNameRedraws = 8

// ColumnStep records what happened to one base column, in reordered order.
type ColumnStep struct {
	Source   int    `yaml:"source"`
	Original string `yaml:"original"`
	Name     string `yaml:"name"`
	Renamed  bool   `yaml:"renamed,omitempty"`
	Dropped  bool   `yaml:"dropped,omitempty"`
}

// PadColumn is a filler column appended to reach the target column count.
type PadColumn struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"-"`
}

// Plan is the full set of random decisions behind one variant.
type Plan struct {
	Rows    int          `yaml:"rows"`
	Columns []ColumnStep `yaml:"columns"`
	Padding []PadColumn  `yaml:"padding,omitempty"`
	// RowOrder[i] is the base row placed at position i.
	RowOrder []int `yaml:"-"`
	// Nulls[j] lists the row positions (after the row shuffle) blanked in
	// output column j. Empty when null injection is disabled.
	Nulls [][]int `yaml:"-"`
}

// NewPlan draws every random decision for one variant of base.
func NewPlan(base *table.Table, p Params, rng *rand.Rand, fv fake.Provider) (*Plan, error) {
	if err := checkInputs(base, p); err != nil {
		return nil, err
	}
	rows, ncols := base.NumRows(), base.NumCols()
	plan := &Plan{Rows: rows}

	taken := make(map[string]bool, ncols)
	for _, c := range base.Columns {
		taken[c.Name] = true
	}

	// 1. column reorder
	order := rng.Perm(ncols)

	// 2. rename then drop, each column exactly once
	survivors := 0
	for _, src := range order {
		orig := base.Columns[src].Name
		step := ColumnStep{Source: src, Original: orig, Name: orig}
		if rng.Float64() < p.RenameProbability {
			delete(taken, orig)
			step.Name = freshName(orig, taken, fv)
			step.Renamed = true
			taken[step.Name] = true
		}
		if rng.Float64() < p.DropProbability {
			step.Dropped = true
			delete(taken, step.Name)
		} else {
			survivors++
		}
		plan.Columns = append(plan.Columns, step)
	}

	// 3. padding, possibly from zero columns
	for n := survivors; n < p.TargetColumns; n++ {
		name := freshName("extra", taken, fv)
		taken[name] = true
		values := make([]string, rows)
		for i := range values {
			values[i] = fv.Word()
		}
		plan.Padding = append(plan.Padding, PadColumn{Name: name, Values: values})
	}

	// 4. row shuffle
	plan.RowOrder = rng.Perm(rows)

	// 5. null injection, independently per output column
	if p.NullRate > 0 {
		k := NullCount(p.NullRate, rows)
		out := survivors + len(plan.Padding)
		plan.Nulls = make([][]int, out)
		for j := 0; j < out; j++ {
			picked := rng.Perm(rows)[:k]
			sort.Ints(picked)
			plan.Nulls[j] = picked
		}
	}
	return plan, nil
}

// NullCount is the number of cells blanked per column: rate*rows rounded
// half away from zero.
func NullCount(rate float64, rows int) int {
	k := int(math.Round(rate * float64(rows)))
	if k > rows {
		k = rows
	}
	if k < 0 {
		k = 0
	}
	return k
}

// freshName returns prefix_<word>, redrawing the word while the name is taken
// and falling back to a numeric suffix.
func freshName(prefix string, taken map[string]bool, fv fake.Provider) string {
	var name string
	for i := 0; i < maxNameRedraws; i++ {
		name = prefix + "_" + fv.Word()
		if !taken[name] {
			return name
		}
	}
	for k := 2; ; k++ {
		alt := name + "_" + strconv.Itoa(k)
		if !taken[alt] {
			return alt
		}
	}
}

// OutputColumns lists the column names a plan produces, in order.
func (pl *Plan) OutputColumns() []string {
	var out []string
	for _, s := range pl.Columns {
		if !s.Dropped {
			out = append(out, s.Name)
		}
	}
	for _, pc := range pl.Padding {
		out = append(out, pc.Name)
	}
	return out
}

// Renamed maps original names to new names for every renamed column,
// including renamed columns that were dropped afterwards.
func (pl *Plan) Renamed() map[string]string {
	out := map[string]string{}
	for _, s := range pl.Columns {
		if s.Renamed {
			out[s.Original] = s.Name
		}
	}
	return out
}

// Dropped lists the names (after rename) of dropped columns.
func (pl *Plan) Dropped() []string {
	var out []string
	for _, s := range pl.Columns {
		if s.Dropped {
			out = append(out, s.Name)
		}
	}
	return out
}

// PaddedNames lists the names of padding columns.
func (pl *Plan) PaddedNames() []string {
	out := make([]string, len(pl.Padding))
	for i, pc := range pl.Padding {
		out[i] = pc.Name
	}
	return out
}

func checkInputs(base *table.Table, p Params) error {
	if base == nil || base.NumRows() == 0 || base.NumCols() == 0 {
		return &EmptyTableError{Rows: base.NumRows(), Cols: base.NumCols()}
	}
	if err := base.Validate(); err != nil {
		return fmt.Errorf("base table: %w", err)
	}
	return p.Validate()
}

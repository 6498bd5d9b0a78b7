package chaos

import (
	"fmt"
	"math/rand/v2"

	"github.com/KaramelBytes/chaostab-cli/internal/fake"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
)

// Apply replays plan on base and returns a new table. base is not modified
// and the result shares no cell slices with it.
func Apply(base *table.Table, plan *Plan) (*table.Table, error) {
	if base == nil || base.NumRows() == 0 || base.NumCols() == 0 {
		return nil, &EmptyTableError{Rows: base.NumRows(), Cols: base.NumCols()}
	}
	if err := plan.check(base); err != nil {
		return nil, err
	}

	out := table.New(base.Name)
	for _, s := range plan.Columns {
		if s.Dropped {
			continue
		}
		src := base.Columns[s.Source]
		out.Columns = append(out.Columns, table.Column{Name: s.Name, Kind: src.Kind, Cells: shuffled(src.Cells, plan.RowOrder)})
	}
	for _, pc := range plan.Padding {
		cells := make([]any, len(pc.Values))
		for i, v := range pc.Values {
			cells[i] = v
		}
		out.Columns = append(out.Columns, table.Column{Name: pc.Name, Kind: table.KindString, Cells: shuffled(cells, plan.RowOrder)})
	}
	for j, rows := range plan.Nulls {
		for _, r := range rows {
			out.Columns[j].Cells[r] = nil
		}
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("apply plan: %w", err)
	}
	return out, nil
}

// Transform plans and applies one variant of base. A nil rng draws fresh
// entropy, so results are only reproducible when the caller passes a seeded
// source. A nil fv is derived from rng.
func Transform(base *table.Table, p Params, rng *rand.Rand, fv fake.Provider) (*table.Table, *Plan, error) {
	if rng == nil {
		rng = NewRand(rand.Uint64())
	}
	if fv == nil {
		fv = fake.New(rng)
	}
	plan, err := NewPlan(base, p, rng, fv)
	if err != nil {
		return nil, nil, err
	}
	out, err := Apply(base, plan)
	if err != nil {
		return nil, nil, err
	}
	return out, plan, nil
}

func shuffled(cells []any, order []int) []any {
	out := make([]any, len(order))
	for i, src := range order {
		out[i] = cells[src]
	}
	return out
}

func (pl *Plan) check(base *table.Table) error {
	if pl == nil {
		return fmt.Errorf("apply plan: nil plan")
	}
	rows := base.NumRows()
	if pl.Rows != rows {
		return fmt.Errorf("apply plan: plan is for %d rows, table has %d", pl.Rows, rows)
	}
	if len(pl.Columns) != base.NumCols() {
		return fmt.Errorf("apply plan: plan covers %d columns, table has %d", len(pl.Columns), base.NumCols())
	}
	seen := make([]bool, base.NumCols())
	for _, s := range pl.Columns {
		if s.Source < 0 || s.Source >= len(seen) || seen[s.Source] {
			return fmt.Errorf("apply plan: bad column source %d", s.Source)
		}
		seen[s.Source] = true
	}
	for _, pc := range pl.Padding {
		if len(pc.Values) != rows {
			return fmt.Errorf("apply plan: padding %q has %d values, want %d", pc.Name, len(pc.Values), rows)
		}
	}
	if len(pl.RowOrder) != rows {
		return fmt.Errorf("apply plan: row order has %d entries, want %d", len(pl.RowOrder), rows)
	}
	used := make([]bool, rows)
	for _, r := range pl.RowOrder {
		if r < 0 || r >= rows || used[r] {
			return fmt.Errorf("apply plan: row order is not a permutation")
		}
		used[r] = true
	}
	if pl.Nulls != nil && len(pl.Nulls) != len(pl.OutputColumns()) {
		return fmt.Errorf("apply plan: null sets for %d columns, want %d", len(pl.Nulls), len(pl.OutputColumns()))
	}
	for _, rs := range pl.Nulls {
		for _, r := range rs {
			if r < 0 || r >= rows {
				return fmt.Errorf("apply plan: null row %d out of range", r)
			}
		}
	}
	return nil
}

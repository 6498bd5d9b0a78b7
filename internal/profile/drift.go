package profile

import (
	"fmt"
	"strings"
)

// Drift describes how a table's layout differs from a baseline.
type Drift struct {
	Baseline string   `json:"baseline"`
	Table    string   `json:"table"`
	Kept     []string `json:"kept,omitempty"`
	Missing  []string `json:"missing,omitempty"`
	Added    []string `json:"added,omitempty"`
	// Moved lists kept columns whose position changed.
	Moved []string `json:"moved,omitempty"`
	// NullDelta maps kept columns to the change in missing ratio.
	NullDelta map[string]float64 `json:"null_delta,omitempty"`
	RowDelta  int                `json:"row_delta"`
}

// Compare reports the drift of got against base. Columns are matched by
// exact name; a renamed column shows up as one missing and one added name.
func Compare(base, got *Report) *Drift {
	d := &Drift{Baseline: base.Name, Table: got.Name, RowDelta: got.Rows - base.Rows, NullDelta: map[string]float64{}}
	pos := make(map[string]int, len(got.Cols))
	for i, c := range got.Cols {
		pos[c.Name] = i
	}
	kept := make(map[string]bool, len(base.Cols))
	for _, c := range base.Cols {
		j, ok := pos[c.Name]
		if !ok {
			d.Missing = append(d.Missing, c.Name)
			continue
		}
		kept[c.Name] = true
		d.Kept = append(d.Kept, c.Name)
		if delta := got.Cols[j].MissingRatio() - c.MissingRatio(); delta != 0 {
			d.NullDelta[c.Name] = delta
		}
	}
	var gotOrder []string
	for _, c := range got.Cols {
		if kept[c.Name] {
			gotOrder = append(gotOrder, c.Name)
		} else {
			d.Added = append(d.Added, c.Name)
		}
	}
	for i := range d.Kept {
		if d.Kept[i] != gotOrder[i] {
			d.Moved = append(d.Moved, gotOrder[i])
		}
	}
	if len(d.NullDelta) == 0 {
		d.NullDelta = nil
	}
	return d
}

// Unchanged reports whether the layout and missing ratios match the baseline.
func (d *Drift) Unchanged() bool {
	return len(d.Missing) == 0 && len(d.Added) == 0 && len(d.Moved) == 0 && len(d.NullDelta) == 0 && d.RowDelta == 0
}

// Markdown renders the drift as a [DRIFT] section.
func (d *Drift) Markdown() string {
	var b strings.Builder
	b.WriteString("[DRIFT]\n")
	b.WriteString(fmt.Sprintf("Baseline: %s\n", d.Baseline))
	if d.Unchanged() {
		b.WriteString("No drift.\n")
		return b.String()
	}
	if d.RowDelta != 0 {
		b.WriteString(fmt.Sprintf("Rows: %+d\n", d.RowDelta))
	}
	list := func(label string, names []string) {
		if len(names) > 0 {
			b.WriteString(fmt.Sprintf("- %s (%d): %s\n", label, len(names), strings.Join(names, ", ")))
		}
	}
	list("missing", d.Missing)
	list("added", d.Added)
	list("moved", d.Moved)
	for _, name := range d.Kept {
		if delta, ok := d.NullDelta[name]; ok {
			b.WriteString(fmt.Sprintf("- %s: missing %+.1f%%\n", name, delta*100))
		}
	}
	return b.String()
}

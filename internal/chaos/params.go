package chaos

import "math"

// Params controls how strongly a variant drifts from its base table.
type Params struct {
	// TargetColumns is the minimum column count of a variant; padding
	// columns are added until it is reached. It never truncates.
	TargetColumns int `yaml:"target_columns"`
	// RenameProbability is the per-column chance of a suffix rename.
	RenameProbability float64 `yaml:"rename_probability"`
	// DropProbability is the per-column chance of removal.
	DropProbability float64 `yaml:"drop_probability"`
	// NullRate is the share of rows blanked in every column; 0 disables
	// null injection.
	NullRate float64 `yaml:"null_rate"`
}

// DefaultParams mirrors the rates the chaotic-table page shipped with.
func DefaultParams() Params {
	return Params{
		TargetColumns:     8,
		RenameProbability: 0.3,
		DropProbability:   0.2,
		NullRate:          0.1,
	}
}

// Validate reports the first parameter outside its domain.
func (p Params) Validate() error {
	if p.TargetColumns < 1 {
		return &InvalidParameterError{Param: "target_columns", Value: p.TargetColumns, Reason: "must be at least 1"}
	}
	probs := []struct {
		name string
		v    float64
	}{
		{"rename_probability", p.RenameProbability},
		{"drop_probability", p.DropProbability},
		{"null_rate", p.NullRate},
	}
	for _, pr := range probs {
		if math.IsNaN(pr.v) || pr.v < 0 || pr.v > 1 {
			return &InvalidParameterError{Param: pr.name, Value: pr.v, Reason: "must be within [0,1]"}
		}
	}
	return nil
}

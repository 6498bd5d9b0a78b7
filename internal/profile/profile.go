// Package profile summarizes a table column by column so that variants can be
// inspected for schema drift.
package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/KaramelBytes/chaostab-cli/internal/table"
)

// Options controls profiling.
type Options struct {
	// SampleRows determines how many leading rows to include in the report.
	SampleRows int
	// TopValues caps the categorical value counts listed per column.
	TopValues int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
	// Correlations computes Pearson correlations among numeric columns.
	Correlations bool
}

// DefaultOptions returns reasonable defaults for profiling.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		TopValues:        8,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly profile of a table.
type Report struct {
	Name     string          `json:"name"`
	Rows     int             `json:"rows"`
	Cols     []ColumnSummary `json:"columns"`
	Samples  [][]string      `json:"samples,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Corr     *CorrMatrix     `json:"correlations,omitempty"`
}

// ColumnSummary captures the profiled class and statistics of one column.
type ColumnSummary struct {
	Name string `json:"name"`
	// Class is numeric, datetime, boolean, categorical, text or empty.
	Class   string     `json:"class"`
	Kind    table.Kind `json:"kind"`
	NonNull int        `json:"non_null"`
	Missing int        `json:"missing"`
	Unique  int        `json:"unique"`
	// Numeric stats
	Min  float64 `json:"min,omitempty"`
	Max  float64 `json:"max,omitempty"`
	Mean float64 `json:"mean,omitempty"`
	Std  float64 `json:"std,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty"`
	// Temporal range
	Earliest time.Time `json:"earliest,omitzero"`
	Latest   time.Time `json:"latest,omitzero"`
	// Categorical top values
	TopValues    []CategoryCount `json:"top_values,omitempty"`
	ExampleTexts []string        `json:"examples,omitempty"`
}

// MissingRatio is the share of missing cells in [0,1].
func (c ColumnSummary) MissingRatio() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) / float64(total)
}

type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// MarshalJSON encodes undefined coefficients (NaN) as null.
func (m CorrMatrix) MarshalJSON() ([]byte, error) {
	vals := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		vals[i] = make([]*float64, len(row))
		for j, v := range row {
			if !math.IsNaN(v) {
				vals[i][j] = &v
			}
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, vals})
}

// Profile computes a Report for t.
func Profile(t *table.Table, opt Options) *Report {
	if opt.SampleRows < 0 {
		opt.SampleRows = 0
	}
	if opt.TopValues <= 0 {
		opt.TopValues = 8
	}
	rep := &Report{Name: t.Name, Rows: t.NumRows()}
	if t.NumCols() == 0 {
		rep.Warnings = append(rep.Warnings, "table has no columns")
		return rep
	}

	var numeric []int
	for j, c := range t.Columns {
		s := summarize(c, opt)
		if s.Class == "numeric" {
			numeric = append(numeric, j)
		}
		if s.NonNull == 0 && rep.Rows > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s has no values", safeName(c.Name)))
		}
		rep.Cols = append(rep.Cols, s)
	}

	n := min(opt.SampleRows, rep.Rows)
	recs := t.Records()
	for i := 0; i < n; i++ {
		rep.Samples = append(rep.Samples, recs[i])
	}

	if opt.Correlations && len(numeric) >= 2 {
		rep.Corr = correlations(t, numeric)
	}
	return rep
}

func summarize(c table.Column, opt Options) ColumnSummary {
	s := ColumnSummary{Name: c.Name, Kind: c.Kind}
	counts := make(map[string]int)
	var (
		nums     []float64
		n        int
		mean     float64
		m2       float64
		lo, hi   = math.Inf(1), math.Inf(-1)
		tmin     time.Time
		tmax     time.Time
		temporal int
		bools    int
	)
	for _, v := range c.Cells {
		if v == nil {
			s.Missing++
			continue
		}
		s.NonNull++
		text := table.FormatCell(v, c.Kind)
		if len(counts) <= 10000 {
			counts[text]++
		}
		if x, ok := asFloat(v); ok {
			// Welford update
			n++
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
			delta := x - mean
			mean += delta / float64(n)
			m2 += delta * (x - mean)
			nums = append(nums, x)
			continue
		}
		addTime := func(x time.Time) {
			if temporal == 0 || x.Before(tmin) {
				tmin = x
			}
			if temporal == 0 || x.After(tmax) {
				tmax = x
			}
			temporal++
		}
		switch x := v.(type) {
		case time.Time:
			addTime(x)
		case bool:
			bools++
		default:
			// text columns may still hold dates in other spellings
			if ts, ok := table.ParseTime(text); ok {
				addTime(ts)
				continue
			}
			if len(s.ExampleTexts) < 3 {
				s.ExampleTexts = append(s.ExampleTexts, text)
			}
		}
	}
	s.Unique = len(counts)

	switch {
	case s.NonNull == 0:
		s.Class = "empty"
		s.ExampleTexts = nil
	case n == s.NonNull:
		s.Class = "numeric"
		s.Min, s.Max, s.Mean = lo, hi, mean
		if n > 1 {
			s.Std = math.Sqrt(m2 / float64(n-1))
		}
		if opt.Outliers && len(nums) >= 8 {
			s.OutlierThreshold = opt.OutlierThreshold
			if s.OutlierThreshold <= 0 {
				s.OutlierThreshold = 3.5
			}
			s.OutliersCount, s.OutliersMaxAbsZ = robustOutliers(nums, s.OutlierThreshold)
		}
	case temporal == s.NonNull:
		s.Class = "datetime"
		s.Earliest, s.Latest = tmin, tmax
	case bools == s.NonNull:
		s.Class = "boolean"
		s.TopValues = topValues(counts, opt.TopValues)
	case s.Unique*2 <= s.NonNull || (s.Unique <= opt.TopValues && s.NonNull > s.Unique):
		s.Class = "categorical"
		s.TopValues = topValues(counts, opt.TopValues)
		s.ExampleTexts = nil
	default:
		s.Class = "text"
	}
	return s
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func topValues(counts map[string]int, limit int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

// robustOutliers counts values whose modified Z-score exceeds thr.
func robustOutliers(vals []float64, thr float64) (count int, maxAbsZ float64) {
	median, mad := medianMAD(vals)
	if mad == 0 {
		return 0, 0
	}
	for _, v := range vals {
		az := math.Abs(0.6745 * (v - median) / mad)
		if az > thr {
			count++
		}
		if az > maxAbsZ {
			maxAbsZ = az
		}
	}
	return count, maxAbsZ
}

// correlations computes pairwise Pearson r over rows where both cells are set.
func correlations(t *table.Table, idx []int) *CorrMatrix {
	names := make([]string, len(idx))
	for i, j := range idx {
		names[i] = t.Columns[j].Name
	}
	mat := make([][]float64, len(idx))
	for i := range mat {
		mat[i] = make([]float64, len(idx))
		mat[i][i] = 1
	}
	for a := 0; a < len(idx); a++ {
		for b := a + 1; b < len(idx); b++ {
			r := pearson(t.Columns[idx[a]].Cells, t.Columns[idx[b]].Cells)
			mat[a][b], mat[b][a] = r, r
		}
	}
	return &CorrMatrix{Columns: names, Values: mat}
}

func pearson(xs, ys []any) float64 {
	var n, sumX, sumY, sumXX, sumYY, sumXY float64
	for i := range xs {
		x, okx := asFloat(xs[i])
		y, oky := asFloat(ys[i])
		if !okx || !oky {
			continue
		}
		n++
		sumX += x
		sumY += y
		sumXX += x * x
		sumYY += y * y
		sumXY += x * y
	}
	if n < 2 {
		return math.NaN()
	}
	denom := math.Sqrt((n*sumXX - sumX*sumX) * (n*sumYY - sumY*sumY))
	if denom == 0 {
		return math.NaN()
	}
	return (n*sumXY - sumX*sumY) / denom
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

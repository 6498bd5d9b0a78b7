// Package schema defines schema templates: named, ordered sets of field
// generation rules describing one synthetic entity type.
package schema

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RuleType names a value-generation rule.
type RuleType string

const (
	RuleUUID      RuleType = "uuid"
	RuleName      RuleType = "name"
	RuleFirstName RuleType = "first_name"
	RuleLastName  RuleType = "last_name"
	RuleEmail     RuleType = "email"
	RulePhone     RuleType = "phone"
	RuleWord      RuleType = "word"
	RuleSentence  RuleType = "sentence"
	RuleCountry   RuleType = "country"
	RuleCity      RuleType = "city"
	RuleJob       RuleType = "job"
	RuleCompany   RuleType = "company"
	RuleIPv4      RuleType = "ipv4"
	RuleURL       RuleType = "url"
	RuleBool      RuleType = "bool"
	RuleBirthdate RuleType = "birthdate"
	RuleDate      RuleType = "date"
	RuleDateTime  RuleType = "datetime"
	RuleInt       RuleType = "int"
	RuleFloat     RuleType = "float"
	RuleChoice    RuleType = "choice"
)

var knownRules = map[RuleType]bool{
	RuleUUID: true, RuleName: true, RuleFirstName: true, RuleLastName: true,
	RuleEmail: true, RulePhone: true, RuleWord: true, RuleSentence: true,
	RuleCountry: true, RuleCity: true, RuleJob: true, RuleCompany: true,
	RuleIPv4: true, RuleURL: true, RuleBool: true, RuleBirthdate: true,
	RuleDate: true, RuleDateTime: true, RuleInt: true, RuleFloat: true,
	RuleChoice: true,
}

// DefaultSentenceWords is used when a sentence field does not set Words.
const DefaultSentenceWords = 8

// Field is one column of a template. Only the parameters relevant to Type
// are read.
type Field struct {
	Name string   `yaml:"name"`
	Type RuleType `yaml:"type"`

	// int / float bounds, inclusive for int.
	Min float64 `yaml:"min,omitempty"`
	Max float64 `yaml:"max,omitempty"`
	// Precision is the number of decimals floats are rounded to.
	Precision int `yaml:"precision,omitempty"`

	// Values for choice.
	Values []string `yaml:"values,omitempty"`

	// Start and End bound date and datetime fields. They accept absolute
	// dates or offsets relative to the generation time (see ResolveTime).
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`

	// Age bounds for birthdate, inclusive.
	MinAge int `yaml:"min_age,omitempty"`
	MaxAge int `yaml:"max_age,omitempty"`

	// Words per sentence.
	Words int `yaml:"words,omitempty"`
}

// Template is a named list of fields. Field order is column order.
type Template struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Fields      []Field `yaml:"fields"`
}

// FieldNames returns the field names in order.
func (t Template) FieldNames() []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.Name
	}
	return out
}

// Validate checks the template is usable for generation. Relative time
// bounds are checked against now.
func (t Template) Validate(now time.Time) error {
	if strings.TrimSpace(t.Name) == "" {
		return &InvalidSchemaError{Reason: "template has no name"}
	}
	if len(t.Fields) == 0 {
		return &InvalidSchemaError{Schema: t.Name, Reason: "template has no fields"}
	}
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return &InvalidSchemaError{Schema: t.Name, Reason: "field with empty name"}
		}
		if seen[f.Name] {
			return &InvalidSchemaError{Schema: t.Name, Reason: fmt.Sprintf("duplicate field %q", f.Name)}
		}
		seen[f.Name] = true
		if err := f.validate(now); err != nil {
			return &InvalidSchemaError{Schema: t.Name, Reason: fmt.Sprintf("field %q: %v", f.Name, err)}
		}
	}
	return nil
}

func (f Field) validate(now time.Time) error {
	if !knownRules[f.Type] {
		return fmt.Errorf("unknown rule type %q", f.Type)
	}
	switch f.Type {
	case RuleInt:
		if f.Min > f.Max {
			return fmt.Errorf("min %v greater than max %v", f.Min, f.Max)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if f.Min < math.MinInt64 || f.Max >= math.MaxInt64 {
			return fmt.Errorf("int bounds [%v,%v] outside the 64-bit range", f.Min, f.Max)
		}
		if f.Min != math.Trunc(f.Min) || f.Max != math.Trunc(f.Max) {
			return fmt.Errorf("int bounds must be whole numbers")
		}
	case RuleFloat:
		if f.Min > f.Max {
			return fmt.Errorf("min %v greater than max %v", f.Min, f.Max)
		}
		if f.Precision < 0 || f.Precision > 10 {
			return fmt.Errorf("precision %d outside [0,10]", f.Precision)
		}
		if lo, hi := f.FloatBounds(); lo > hi {
			return fmt.Errorf("no value with %d decimals in [%v,%v]", f.Precision, f.Min, f.Max)
		}
	case RuleChoice:
		if len(f.Values) == 0 {
			return fmt.Errorf("choice needs at least one value")
		}
	case RuleBirthdate:
		if f.MinAge < 0 || f.MaxAge < f.MinAge {
			return fmt.Errorf("invalid age range [%d,%d]", f.MinAge, f.MaxAge)
		}
	case RuleDate, RuleDateTime:
		start, end, err := f.Bounds(now)
		if err != nil {
			return err
		}
		if end.Before(start) {
			return fmt.Errorf("end %s before start %s", f.End, f.Start)
		}
	case RuleSentence:
		if f.Words < 0 {
			return fmt.Errorf("negative word count")
		}
	}
	return nil
}

// FloatBounds narrows [Min, Max] to the values representable with Precision
// decimals. lo > hi when no such value exists.
func (f Field) FloatBounds() (float64, float64) {
	p := math.Pow10(f.Precision)
	return math.Ceil(snap(f.Min*p)) / p, math.Floor(snap(f.Max*p)) / p
}

// snap absorbs float error such as 0.57*100 = 56.99999999999999.
func snap(x float64) float64 {
	if r := math.Round(x); math.Abs(x-r) < 1e-9 {
		return r
	}
	return x
}

// Bounds resolves Start and End against now. Empty Start means now minus one
// year and empty End means now.
func (f Field) Bounds(now time.Time) (time.Time, time.Time, error) {
	startExpr, endExpr := f.Start, f.End
	if startExpr == "" {
		startExpr = "-1y"
	}
	if endExpr == "" {
		endExpr = "now"
	}
	start, err := ResolveTime(startExpr, now)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	end, err := ResolveTime(endExpr, now)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
	}
	return start, end, nil
}

// Package generator synthesizes base tables from schema templates.
package generator

import (
	"fmt"
	"math"
	"time"

	"github.com/KaramelBytes/chaostab-cli/internal/fake"
	"github.com/KaramelBytes/chaostab-cli/internal/schema"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
)

// Generate builds a table with count rows, one column per template field in
// field order. Relative date bounds are resolved against now.
func Generate(tmpl schema.Template, count int, fv fake.Provider, now time.Time) (*table.Table, error) {
	if count <= 0 {
		return nil, &schema.InvalidSchemaError{Schema: tmpl.Name, Reason: fmt.Sprintf("row count must be positive, got %d", count)}
	}
	if err := tmpl.Validate(now); err != nil {
		return nil, err
	}
	rules := make([]rule, len(tmpl.Fields))
	for i, f := range tmpl.Fields {
		r, err := compile(f, now)
		if err != nil {
			return nil, &schema.InvalidSchemaError{Schema: tmpl.Name, Reason: fmt.Sprintf("field %q: %v", f.Name, err)}
		}
		rules[i] = r
	}

	cols := make([][]any, len(rules))
	for j := range cols {
		cols[j] = make([]any, count)
	}
	// Row-major so each record is drawn field by field, like a record factory.
	for i := 0; i < count; i++ {
		for j, r := range rules {
			cols[j][i] = r.gen(fv)
		}
	}

	out := table.New(tmpl.Name)
	for j, f := range tmpl.Fields {
		if err := out.AddColumn(f.Name, rules[j].kind, cols[j]); err != nil {
			return nil, fmt.Errorf("assemble table: %w", err)
		}
	}
	return out, nil
}

type rule struct {
	kind table.Kind
	gen  func(fake.Provider) any
}

func compile(f schema.Field, now time.Time) (rule, error) {
	str := func(fn func(fake.Provider) string) rule {
		return rule{kind: table.KindString, gen: func(p fake.Provider) any { return fn(p) }}
	}
	switch f.Type {
	case schema.RuleUUID:
		return str(fake.Provider.UUID), nil
	case schema.RuleName:
		return str(fake.Provider.Name), nil
	case schema.RuleFirstName:
		return str(fake.Provider.FirstName), nil
	case schema.RuleLastName:
		return str(fake.Provider.LastName), nil
	case schema.RuleEmail:
		return str(fake.Provider.Email), nil
	case schema.RulePhone:
		return str(fake.Provider.Phone), nil
	case schema.RuleWord:
		return str(fake.Provider.Word), nil
	case schema.RuleCountry:
		return str(fake.Provider.Country), nil
	case schema.RuleCity:
		return str(fake.Provider.City), nil
	case schema.RuleJob:
		return str(fake.Provider.Job), nil
	case schema.RuleCompany:
		return str(fake.Provider.Company), nil
	case schema.RuleIPv4:
		return str(fake.Provider.IPv4), nil
	case schema.RuleURL:
		return str(fake.Provider.URL), nil
	case schema.RuleSentence:
		words := f.Words
		if words == 0 {
			words = schema.DefaultSentenceWords
		}
		return rule{kind: table.KindText, gen: func(p fake.Provider) any { return p.Sentence(words) }}, nil
	case schema.RuleBool:
		return rule{kind: table.KindBool, gen: func(p fake.Provider) any { return p.Bool() }}, nil
	case schema.RuleChoice:
		values := append([]string(nil), f.Values...)
		return rule{kind: table.KindString, gen: func(p fake.Provider) any { return p.Pick(values) }}, nil
	case schema.RuleInt:
		lo, hi := int64(f.Min), int64(f.Max)
		return rule{kind: table.KindInteger, gen: func(p fake.Provider) any { return p.Int(lo, hi) }}, nil
	case schema.RuleFloat:
		lo, hi := f.FloatBounds()
		prec := f.Precision
		return rule{kind: table.KindFloat, gen: func(p fake.Provider) any {
			return math.Min(math.Max(Round(p.Float(lo, hi), prec), lo), hi)
		}}, nil
	case schema.RuleBirthdate:
		start, end := BirthdateRange(now, f.MinAge, f.MaxAge)
		return rule{kind: table.KindDate, gen: func(p fake.Provider) any { return schema.Day(p.DateBetween(start, end)) }}, nil
	case schema.RuleDate:
		start, end, err := f.Bounds(now)
		if err != nil {
			return rule{}, err
		}
		start, end = schema.Day(start), schema.Day(end)
		return rule{kind: table.KindDate, gen: func(p fake.Provider) any { return schema.Day(p.DateBetween(start, end)) }}, nil
	case schema.RuleDateTime:
		start, end, err := f.Bounds(now)
		if err != nil {
			return rule{}, err
		}
		return rule{kind: table.KindDateTime, gen: func(p fake.Provider) any {
			v := p.DateBetween(start, end).Truncate(time.Second)
			if v.Before(start) {
				v = start
			}
			return v
		}}, nil
	}
	return rule{}, fmt.Errorf("unsupported rule type %q", f.Type)
}

// BirthdateRange returns the earliest and latest birth dates whose age at now
// lies in [minAge, maxAge].
func BirthdateRange(now time.Time, minAge, maxAge int) (time.Time, time.Time) {
	today := schema.Day(now)
	earliest := schema.YearsBefore(today, maxAge+1).AddDate(0, 0, 1)
	latest := schema.YearsBefore(today, minAge)
	return earliest, latest
}

// Round rounds x to prec decimals, half away from zero.
func Round(x float64, prec int) float64 {
	p := math.Pow10(prec)
	return math.Round(x*p) / p
}

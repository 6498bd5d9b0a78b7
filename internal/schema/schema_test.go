package schema

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2028, 2, 29, 13, 45, 0, 0, time.UTC)

func TestBuiltinsValidate(t *testing.T) {
	for _, tmpl := range Builtins() {
		assert.NoError(t, tmpl.Validate(now), tmpl.Name)
	}
}

func TestLookupUnknownSchema(t *testing.T) {
	c := NewCatalog()
	_, err := c.Lookup("spaceships")
	var ise *InvalidSchemaError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "spaceships", ise.Schema)
	assert.Contains(t, err.Error(), "user_profiles")

	tmpl, err := c.Lookup("train_passages")
	require.NoError(t, err)
	assert.Equal(t, "train_id", tmpl.Fields[0].Name)
}

func TestValidateRejectsBadTemplates(t *testing.T) {
	cases := map[string]Template{
		"empty":     {Name: "x"},
		"dup":       {Name: "x", Fields: []Field{{Name: "a", Type: RuleWord}, {Name: "a", Type: RuleWord}}},
		"unknown":   {Name: "x", Fields: []Field{{Name: "a", Type: "zodiac"}}},
		"int range": {Name: "x", Fields: []Field{{Name: "a", Type: RuleInt, Min: 5, Max: 1}}},
		"choice":    {Name: "x", Fields: []Field{{Name: "a", Type: RuleChoice}}},
		"ages":      {Name: "x", Fields: []Field{{Name: "a", Type: RuleBirthdate, MinAge: 30, MaxAge: 20}}},
		"dates":     {Name: "x", Fields: []Field{{Name: "a", Type: RuleDate, Start: "today", End: "-1d"}}},
		"bad expr":  {Name: "x", Fields: []Field{{Name: "a", Type: RuleDate, Start: "yesterday"}}},
		"int wide":  {Name: "x", Fields: []Field{{Name: "a", Type: RuleInt, Min: 0, Max: 1e19}}},
		"precision": {Name: "x", Fields: []Field{{Name: "a", Type: RuleFloat, Min: 0.001, Max: 0.004, Precision: 2}}},
	}
	for name, tmpl := range cases {
		err := tmpl.Validate(now)
		var ise *InvalidSchemaError
		assert.True(t, errors.As(err, &ise), "%s: got %v", name, err)
	}
}

func TestFloatBounds(t *testing.T) {
	lo, hi := Field{Type: RuleFloat, Min: 0.001, Max: 0.5, Precision: 2}.FloatBounds()
	assert.Equal(t, 0.01, lo)
	assert.Equal(t, 0.5, hi)

	lo, hi = Field{Type: RuleFloat, Min: 0.57, Max: 0.57, Precision: 2}.FloatBounds()
	assert.Equal(t, 0.57, lo)
	assert.Equal(t, 0.57, hi)
}

func TestResolveTime(t *testing.T) {
	cases := map[string]time.Time{
		"now":        now,
		"today":      time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC),
		"-5y":        time.Date(2023, 2, 28, 13, 45, 0, 0, time.UTC),
		"+30d":       time.Date(2028, 3, 30, 13, 45, 0, 0, time.UTC),
		"-2w":        time.Date(2028, 2, 15, 13, 45, 0, 0, time.UTC),
		"+2h":        time.Date(2028, 2, 29, 15, 45, 0, 0, time.UTC),
		"-15m":       time.Date(2028, 2, 29, 13, 30, 0, 0, time.UTC),
		"2024-01-31": time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	for expr, want := range cases {
		got, err := ResolveTime(expr, now)
		require.NoError(t, err, expr)
		assert.True(t, want.Equal(got), "%s: got %v want %v", expr, got, want)
	}
	for _, bad := range []string{"", "soon", "+3q", "-xd"} {
		_, err := ResolveTime(bad, now)
		assert.Error(t, err, bad)
	}
}

func TestAgeAndYearsBefore(t *testing.T) {
	assert.Equal(t, 18, Age(time.Date(2010, 2, 28, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, 17, Age(time.Date(2010, 3, 1, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, time.Date(2010, 2, 28, 13, 45, 0, 0, time.UTC), YearsBefore(now, 18))
}

func TestLoadDirYAML(t *testing.T) {
	dir := t.TempDir()
	doc := `name: orders
description: shop orders
fields:
  - name: order_id
    type: uuid
  - name: total
    type: float
    min: 5
    max: 900
    precision: 2
  - name: state
    type: choice
    values: [new, paid, shipped]
  - name: placed_at
    type: datetime
    start: -30d
    end: now
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.yaml"), []byte(doc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	c := NewCatalog()
	loaded, err := c.LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders"}, loaded)

	tmpl, err := c.Lookup("orders")
	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "total", "state", "placed_at"}, tmpl.FieldNames())
	assert.Equal(t, 2, tmpl.Fields[1].Precision)

	missing, err := c.LoadDir(filepath.Join(dir, "nope"))
	assert.NoError(t, err)
	assert.Empty(t, missing)
}

func TestParseTemplateRejectsUnknownKeys(t *testing.T) {
	_, err := ParseTemplate([]byte("name: x\nfields:\n  - name: a\n    type: word\n    colour: red\n"))
	assert.Error(t, err)
}

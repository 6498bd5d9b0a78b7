package generator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/KaramelBytes/chaostab-cli/internal/fake"
	"github.com/KaramelBytes/chaostab-cli/internal/schema"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

func TestGenerateShapeForEveryBuiltin(t *testing.T) {
	for _, tmpl := range schema.Builtins() {
		for _, n := range []int{1, 7, 250} {
			tb, err := Generate(tmpl, n, fake.NewSeeded(11), fixedNow)
			require.NoError(t, err, tmpl.Name)
			assert.Equal(t, n, tb.NumRows(), tmpl.Name)
			assert.Equal(t, len(tmpl.Fields), tb.NumCols(), tmpl.Name)
			assert.Equal(t, tmpl.FieldNames(), tb.ColumnNames(), tmpl.Name)
			assert.NoError(t, tb.Validate())
		}
	}
}

func TestGenerateRejectsNonPositiveCount(t *testing.T) {
	tmpl, err := schema.NewCatalog().Lookup("profiles")
	require.NoError(t, err)
	for _, n := range []int{0, -3} {
		_, err := Generate(tmpl, n, fake.NewSeeded(1), fixedNow)
		var ise *schema.InvalidSchemaError
		assert.True(t, errors.As(err, &ise), "count %d: %v", n, err)
	}
}

func TestGenerateRejectsEmptySchema(t *testing.T) {
	_, err := Generate(schema.Template{Name: "blank"}, 10, fake.NewSeeded(1), fixedNow)
	var ise *schema.InvalidSchemaError
	assert.True(t, errors.As(err, &ise))
}

func TestBirthdateAgesStayInRange(t *testing.T) {
	tmpl := schema.Template{Name: "ages", Fields: []schema.Field{
		{Name: "birthdate", Type: schema.RuleBirthdate, MinAge: 18, MaxAge: 80},
	}}
	for _, now := range []time.Time{fixedNow, time.Date(2028, 2, 29, 23, 0, 0, 0, time.UTC)} {
		tb, err := Generate(tmpl, 1000, fake.NewSeeded(5), now)
		require.NoError(t, err)
		for _, v := range tb.Columns[0].Cells {
			age := schema.Age(v.(time.Time), now)
			assert.GreaterOrEqual(t, age, 18)
			assert.LessOrEqual(t, age, 80)
		}
	}
	earliest, latest := BirthdateRange(fixedNow, 18, 80)
	assert.Equal(t, 80, schema.Age(earliest, fixedNow))
	assert.Equal(t, 81, schema.Age(earliest.AddDate(0, 0, -1), fixedNow))
	assert.Equal(t, 18, schema.Age(latest, fixedNow))
	assert.Equal(t, 17, schema.Age(latest.AddDate(0, 0, 1), fixedNow))
}

func TestNumericBoundsAndPrecision(t *testing.T) {
	tmpl, err := schema.NewCatalog().Lookup("financial_transactions")
	require.NoError(t, err)
	tb, err := Generate(tmpl, 500, fake.NewSeeded(8), fixedNow)
	require.NoError(t, err)

	amount, ok := tb.Column("amount")
	require.True(t, ok)
	assert.Equal(t, table.KindFloat, amount.Kind)
	for _, v := range amount.Cells {
		x := v.(float64)
		assert.GreaterOrEqual(t, x, 1.0)
		assert.LessOrEqual(t, x, 5000.0)
		assert.InDelta(t, math.Round(x*100), x*100, 1e-6, "amount %v has more than 2 decimals", x)
	}

	trains, err := schema.NewCatalog().Lookup("train_passages")
	require.NoError(t, err)
	tb, err = Generate(trains, 500, fake.NewSeeded(8), fixedNow)
	require.NoError(t, err)
	delay, _ := tb.Column("delay_minutes")
	for _, v := range delay.Cells {
		d := v.(int64)
		assert.GreaterOrEqual(t, d, int64(0))
		assert.LessOrEqual(t, d, int64(180))
	}
	arrival, _ := tb.Column("arrival_time")
	for _, v := range arrival.Cells {
		ts := v.(time.Time)
		assert.False(t, ts.Before(fixedNow), "arrival %v before now", ts)
		assert.False(t, ts.After(fixedNow.Add(2*time.Hour)), "arrival %v after now+2h", ts)
	}
}

func TestRelativeDatesResolveAgainstNow(t *testing.T) {
	tmpl, err := schema.NewCatalog().Lookup("user_profiles")
	require.NoError(t, err)
	tb, err := Generate(tmpl, 300, fake.NewSeeded(2), fixedNow)
	require.NoError(t, err)
	signup, _ := tb.Column("signup_date")
	lo := schema.Day(schema.YearsBefore(fixedNow, 5))
	hi := schema.Day(fixedNow)
	for _, v := range signup.Cells {
		d := v.(time.Time)
		assert.False(t, d.Before(lo) || d.After(hi), "signup %v outside [%v,%v]", d, lo, hi)
	}
}

func TestSameSeedSameTable(t *testing.T) {
	tmpl, err := schema.NewCatalog().Lookup("log_events")
	require.NoError(t, err)
	a, err := Generate(tmpl, 40, fake.NewSeeded(99), fixedNow)
	require.NoError(t, err)
	b, err := Generate(tmpl, 40, fake.NewSeeded(99), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, a.Records(), b.Records())
}

func TestWideRangesDoNotPanic(t *testing.T) {
	tmpl := schema.Template{Name: "wide", Fields: []schema.Field{
		{Name: "founded", Type: schema.RuleDate, Start: "1600-01-01", End: "2024-01-01"},
		{Name: "seen_at", Type: schema.RuleDateTime, Start: "1600-01-01", End: "now"},
		{Name: "birthdate", Type: schema.RuleBirthdate, MinAge: 0, MaxAge: 400},
		{Name: "big", Type: schema.RuleInt, Min: -6e18, Max: 6e18},
	}}
	tb, err := Generate(tmpl, 300, fake.NewSeeded(4), fixedNow)
	require.NoError(t, err)

	lo := time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, v := range tb.Columns[0].Cells {
		d := v.(time.Time)
		assert.False(t, d.Before(lo) || d.After(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), "founded %v", d)
	}
	for _, v := range tb.Columns[1].Cells {
		d := v.(time.Time)
		assert.False(t, d.Before(lo) || d.After(fixedNow), "seen_at %v", d)
	}
	for _, v := range tb.Columns[2].Cells {
		age := schema.Age(v.(time.Time), fixedNow)
		assert.GreaterOrEqual(t, age, 0)
		assert.LessOrEqual(t, age, 400)
	}
	for _, v := range tb.Columns[3].Cells {
		n := v.(int64)
		assert.GreaterOrEqual(t, n, int64(-6e18))
		assert.LessOrEqual(t, n, int64(6e18))
	}
}

func TestFloatsStayInsideFinerBounds(t *testing.T) {
	tmpl := schema.Template{Name: "ratios", Fields: []schema.Field{
		{Name: "ratio", Type: schema.RuleFloat, Min: 0.001, Max: 0.019, Precision: 2},
	}}
	tb, err := Generate(tmpl, 500, fake.NewSeeded(12), fixedNow)
	require.NoError(t, err)
	for _, v := range tb.Columns[0].Cells {
		x := v.(float64)
		assert.GreaterOrEqual(t, x, 0.001)
		assert.LessOrEqual(t, x, 0.019)
		assert.Equal(t, 0.01, x, "only 0.01 has two decimals in [0.001,0.019]")
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 2.5, Round(2.5, 1))
	assert.Equal(t, 3.0, Round(2.5, 0))
	assert.Equal(t, 12.35, Round(12.3456, 2))
}

package fake

import (
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededFakersAgree(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Name(), b.Name())
		assert.Equal(t, a.Word(), b.Word())
		assert.Equal(t, a.UUID(), b.UUID())
		assert.Equal(t, a.Int(0, 1000), b.Int(0, 1000))
	}
}

func TestNewDerivesFromRand(t *testing.T) {
	a := New(rand.New(rand.NewPCG(7, 7)))
	b := New(rand.New(rand.NewPCG(7, 7)))
	assert.Equal(t, a.Email(), b.Email())
}

func TestUUIDIsVersion4(t *testing.T) {
	p := NewSeeded(1)
	id, err := uuid.Parse(p.UUID())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), id.Version())
}

func TestRangesAreInclusive(t *testing.T) {
	p := NewSeeded(3)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	for i := 0; i < 500; i++ {
		d := p.DateBetween(end, start)
		assert.False(t, d.Before(start) || d.After(end), "date %v out of range", d)

		n := p.Int(10, 12)
		assert.GreaterOrEqual(t, n, int64(10))
		assert.LessOrEqual(t, n, int64(12))

		f := p.Float(-1, 1)
		assert.GreaterOrEqual(t, f, -1.0)
		assert.Less(t, f, 1.0)
	}
	assert.Equal(t, start, p.DateBetween(start, start))
}

func TestDateBetweenSpansCenturies(t *testing.T) {
	p := NewSeeded(5)
	start := time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var early bool
	for i := 0; i < 500; i++ {
		d := p.DateBetween(start, end)
		require.False(t, d.Before(start) || d.After(end), "date %v out of range", d)
		early = early || d.Year() < 1800
	}
	assert.True(t, early, "wide range should reach its first centuries")
}

func TestIntHandlesWideRanges(t *testing.T) {
	p := NewSeeded(6)
	lo, hi := int64(-6e18), int64(6e18)
	for i := 0; i < 500; i++ {
		n := p.Int(lo, hi)
		require.GreaterOrEqual(t, n, lo)
		require.LessOrEqual(t, n, hi)
	}
	assert.NotPanics(t, func() { p.Int(math.MinInt64, math.MaxInt64) })
	assert.Equal(t, int64(math.MaxInt64), p.Int(math.MaxInt64, math.MaxInt64))
}

func TestPick(t *testing.T) {
	p := NewSeeded(9)
	vals := []string{"a", "b", "c"}
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		seen[p.Pick(vals)] = true
	}
	assert.Len(t, seen, 3)
	assert.Equal(t, "", p.Pick(nil))
}

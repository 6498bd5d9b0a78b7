package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInfer(t *testing.T) {
	cases := []struct {
		raw  []string
		kind Kind
	}{
		{[]string{"1", "", "42"}, KindInteger},
		{[]string{"1.5", "2", ""}, KindFloat},
		{[]string{"true", "false"}, KindBool},
		{[]string{"2024-01-02", ""}, KindDate},
		{[]string{"2024-01-02 10:11:12"}, KindDateTime},
		{[]string{"007", "8"}, KindString},
		{[]string{"1e3"}, KindString},
		{[]string{"", ""}, KindString},
	}
	for _, tc := range cases {
		kind, cells := Infer(tc.raw)
		assert.Equal(t, tc.kind, kind, "%v", tc.raw)
		for i, s := range tc.raw {
			if s == "" {
				assert.Nil(t, cells[i])
				continue
			}
			assert.Equal(t, s, FormatCell(cells[i], kind), "lossless %q", s)
		}
	}
}

func TestInferMissingKeepsEmptyStrings(t *testing.T) {
	kind, cells := InferMissing([]string{"", "", "x"}, []bool{false, true, false})
	assert.Equal(t, KindString, kind)
	assert.Equal(t, []any{"", nil, "x"}, cells)

	kind, cells = InferMissing([]string{"1", "", "3"}, []bool{false, true, false})
	assert.Equal(t, KindInteger, kind)
	assert.Equal(t, []any{int64(1), nil, int64(3)}, cells)

	// an empty value in a numeric column keeps the column textual
	kind, _ = InferMissing([]string{"1", ""}, []bool{false, false})
	assert.Equal(t, KindString, kind)
}

func TestParseTime(t *testing.T) {
	got, ok := ParseTime("2024-08-10")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC), got)
	_, ok = ParseTime("next tuesday")
	assert.False(t, ok)
}

package run_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chaostab-cli/internal/chaos"
	"github.com/KaramelBytes/chaostab-cli/internal/run"
	"github.com/KaramelBytes/chaostab-cli/internal/table"
)

func baseTable(t *testing.T) *table.Table {
	t.Helper()
	tb := table.New("base")
	require.NoError(t, tb.AddColumn("id", table.KindInteger, []any{int64(1), int64(2), int64(3), int64(4)}))
	require.NoError(t, tb.AddColumn("name", table.KindString, []any{"Ada", "Linus", "Grace", "Ken"}))
	require.NoError(t, tb.AddColumn("city", table.KindString, []any{"Paris", "Oslo", "Rome", "Lima"}))
	return tb
}

func TestSaveLoadAndReplay(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	base := baseTable(t)
	seed := uint64(42)
	p := chaos.Params{TargetColumns: 5, RenameProbability: 0.5, DropProbability: 0.3, NullRate: 0.25}

	vs, err := chaos.Variants(context.Background(), base, p, chaos.VariantOptions{Count: 2, Seed: &seed})
	require.NoError(t, err)

	r := run.New(dir, run.Source{Schema: "custom", Rows: base.NumRows(), Columns: base.ColumnNames()}, p, &seed)
	for _, v := range vs {
		r.AddVariant(v, filepath.Join(dir, "table_v"+strings.TrimPrefix(v.Name, "Version ")+".csv"))
	}
	r.AddFile(filepath.Join(dir, "tables.xlsx"))
	require.NoError(t, r.Save())

	raw, err := os.ReadFile(filepath.Join(dir, "run.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "nulls_per_column: 1")
	assert.Contains(t, string(raw), "- table_v1.csv")

	got, err := run.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	require.NotNil(t, got.Seed)
	assert.Equal(t, seed, *got.Seed)
	assert.Equal(t, p, got.Params)
	assert.Equal(t, []string{"tables.xlsx"}, got.Files)
	require.Len(t, got.Variants, 2)
	assert.Equal(t, "Version 1", got.Variants[0].Name)
	assert.Equal(t, vs[1].Table.ColumnNames(), got.Variants[1].Columns)
	assert.Equal(t, dir, got.Dir())

	for i, v := range vs {
		tb, plan, err := got.Replay(base, i)
		require.NoError(t, err)
		assert.Equal(t, v.Table, tb)
		assert.Equal(t, v.Plan.OutputColumns(), plan.OutputColumns())
	}
	_, _, err = got.Replay(base, 2)
	assert.ErrorContains(t, err, "out of range")
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := run.Load(t.TempDir())
	assert.ErrorContains(t, err, "run manifest not found")
}

func TestSaveRequiresDirectory(t *testing.T) {
	r := run.New("", run.Source{}, chaos.DefaultParams(), nil)
	assert.Error(t, r.Save())
}

func TestFilesOutsideRunDirStayAsGiven(t *testing.T) {
	dir := t.TempDir()
	r := run.New(filepath.Join(dir, "runs"), run.Source{}, chaos.DefaultParams(), nil)
	outside := filepath.Join(dir, "elsewhere", "book.xlsx")
	r.AddFile(outside)
	assert.Equal(t, []string{outside}, r.Files)
}

func TestSourceRecordsHowToRebuildTheBase(t *testing.T) {
	dir := t.TempDir()
	seed := uint64(77)
	now := time.Date(2025, 1, 1, 8, 30, 15, 123, time.UTC)
	src := run.Source{
		Schema: "profiles", SchemaFiles: []string{"/tmp/custom.yaml"}, Seed: &seed, Now: now,
		Rows: 4, Columns: []string{"id", "name", "city"},
	}
	require.True(t, src.Rebuildable())
	require.NoError(t, run.New(dir, src, chaos.DefaultParams(), nil).Save())

	got, err := run.Load(dir)
	require.NoError(t, err)
	assert.Nil(t, got.Seed)
	require.NotNil(t, got.Source.Seed)
	assert.Equal(t, seed, *got.Source.Seed)
	assert.True(t, now.Equal(got.Source.Now), "now %v", got.Source.Now)
	assert.Equal(t, src.SchemaFiles, got.Source.SchemaFiles)
	assert.NoError(t, got.Source.Matches(baseTable(t)))

	short := baseTable(t)
	short.Columns = short.Columns[:2]
	assert.ErrorContains(t, got.Source.Matches(short), "run recorded 4 rows")

	assert.False(t, run.Source{Schema: "profiles"}.Rebuildable())
	assert.True(t, run.Source{Input: "base.csv"}.Rebuildable())
}

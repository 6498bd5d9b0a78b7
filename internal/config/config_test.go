package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/chaostab-cli/internal/chaos"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	// viper treats empty variables as unset
	for _, k := range Keys() {
		t.Setenv("CHAOSTAB_"+strings.ToUpper(k), "")
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "profiles", c.DefaultSchema)
	assert.Equal(t, 50, c.DefaultRows)
	assert.Equal(t, 2, c.Variants)
	assert.Equal(t, chaos.DefaultParams(), c.Params())
	assert.Equal(t, []string{"csv", "xlsx"}, c.Formats)
	assert.Equal(t, "tables_chaotiques.xlsx", c.WorkbookName)
	assert.Equal(t, filepath.Join(home, DirName, "schemas"), c.SchemaDir)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	isolateHome(t)
	c, err := Load("")
	require.NoError(t, err)
	require.NoError(t, c.Set("variants", "3"))
	require.NoError(t, c.Set("null_rate", "0.25"))
	require.NoError(t, c.Set("formats", "parquet, csv"))
	require.NoError(t, Save(c, ""))

	got, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Variants)
	assert.Equal(t, 0.25, got.NullRate)
	assert.Equal(t, []string{"parquet", "csv"}, got.Formats)
}

func TestExplicitConfigFileAndEnvOverride(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_rows: 120\ntarget_columns: 4\n"), 0o644))
	t.Setenv("CHAOSTAB_TARGET_COLUMNS", "9")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 120, c.DefaultRows)
	assert.Equal(t, 9, c.TargetColumns)
}

func TestMissingExplicitConfigFileIsNotAnError(t *testing.T) {
	isolateHome(t)
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 50, c.DefaultRows)
}

func TestSetValidates(t *testing.T) {
	c := &Global{}
	assert.Error(t, c.Set("rename_probability", "1.5"))
	assert.Error(t, c.Set("null_rate", "NaN"))
	assert.Error(t, c.Set("variants", "0"))
	assert.NoError(t, c.Set("preview_rows", "0"))
	assert.Error(t, c.Set("formats", "json"))
	assert.Error(t, c.Set("workbook_name", "book.csv"))
	assert.Error(t, c.Set("api_key", "x"))

	require.NoError(t, c.Set("drop_probability", "0.5"))
	v, err := c.Get("drop_probability")
	require.NoError(t, err)
	assert.Equal(t, "0.5", v)
	_, err = c.Get("nope")
	assert.Error(t, err)
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/chaostab-cli/internal/chaos"
	"github.com/KaramelBytes/chaostab-cli/internal/utils"
)

// DirName is the per-user directory holding config.yaml and schemas/.
const DirName = ".chaostab"

// Global configuration structure.
type Global struct {
	DefaultSchema string `mapstructure:"default_schema" yaml:"default_schema"`
	DefaultRows   int    `mapstructure:"default_rows" yaml:"default_rows"`

	// Chaos defaults
	TargetColumns     int     `mapstructure:"target_columns" yaml:"target_columns"`
	Variants          int     `mapstructure:"variants" yaml:"variants"`
	RenameProbability float64 `mapstructure:"rename_probability" yaml:"rename_probability"`
	DropProbability   float64 `mapstructure:"drop_probability" yaml:"drop_probability"`
	NullRate          float64 `mapstructure:"null_rate" yaml:"null_rate"`

	// Output
	OutputDir    string   `mapstructure:"output_dir" yaml:"output_dir"`
	Formats      []string `mapstructure:"formats" yaml:"formats"`
	WorkbookName string   `mapstructure:"workbook_name" yaml:"workbook_name"`
	PreviewRows  int      `mapstructure:"preview_rows" yaml:"preview_rows"`

	// SchemaDir holds user schema templates (*.yaml).
	SchemaDir string `mapstructure:"schema_dir" yaml:"schema_dir"`
}

// Params returns the configured chaos parameters.
func (c *Global) Params() chaos.Params {
	return chaos.Params{
		TargetColumns:     c.TargetColumns,
		RenameProbability: c.RenameProbability,
		DropProbability:   c.DropProbability,
		NullRate:          c.NullRate,
	}
}

// Keys lists the settable configuration keys in display order.
func Keys() []string {
	return []string{
		"default_schema", "default_rows", "target_columns", "variants",
		"rename_probability", "drop_probability", "null_rate",
		"output_dir", "formats", "workbook_name", "preview_rows", "schema_dir",
	}
}

// Get renders the value of key as text.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "default_schema":
		return c.DefaultSchema, nil
	case "default_rows":
		return strconv.Itoa(c.DefaultRows), nil
	case "target_columns":
		return strconv.Itoa(c.TargetColumns), nil
	case "variants":
		return strconv.Itoa(c.Variants), nil
	case "rename_probability":
		return strconv.FormatFloat(c.RenameProbability, 'f', -1, 64), nil
	case "drop_probability":
		return strconv.FormatFloat(c.DropProbability, 'f', -1, 64), nil
	case "null_rate":
		return strconv.FormatFloat(c.NullRate, 'f', -1, 64), nil
	case "output_dir":
		return c.OutputDir, nil
	case "formats":
		return strings.Join(c.Formats, ","), nil
	case "workbook_name":
		return c.WorkbookName, nil
	case "preview_rows":
		return strconv.Itoa(c.PreviewRows), nil
	case "schema_dir":
		return c.SchemaDir, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val and assigns it to key.
func (c *Global) Set(key, val string) error {
	val = strings.TrimSpace(val)
	switch key {
	case "default_schema":
		if val == "" {
			return fmt.Errorf("invalid default_schema: empty")
		}
		c.DefaultSchema = val
	case "default_rows", "target_columns", "variants", "preview_rows":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 || (i == 0 && key != "preview_rows") {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "default_rows":
			c.DefaultRows = i
		case "target_columns":
			c.TargetColumns = i
		case "variants":
			c.Variants = i
		default:
			c.PreviewRows = i
		}
	case "rename_probability", "drop_probability", "null_rate":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || !(f >= 0 && f <= 1) {
			return fmt.Errorf("invalid probability for %s: %v (use a value in [0,1])", key, val)
		}
		switch key {
		case "rename_probability":
			c.RenameProbability = f
		case "drop_probability":
			c.DropProbability = f
		default:
			c.NullRate = f
		}
	case "output_dir":
		c.OutputDir = val
	case "formats":
		formats, err := ParseFormats(val)
		if err != nil {
			return err
		}
		c.Formats = formats
	case "workbook_name":
		if !strings.HasSuffix(strings.ToLower(val), ".xlsx") {
			return fmt.Errorf("invalid workbook_name: %s (must end in .xlsx)", val)
		}
		c.WorkbookName = val
	case "schema_dir":
		c.SchemaDir = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// ParseFormats splits a comma separated export format list.
func ParseFormats(s string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		switch f {
		case "csv", "xlsx", "parquet":
		default:
			return nil, fmt.Errorf("unsupported format: %s (use csv, xlsx or parquet)", f)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no export format given")
	}
	return out, nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.chaostab/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("CHAOSTAB")
	v.AutomaticEnv()

	d := chaos.DefaultParams()
	v.SetDefault("default_schema", "profiles")
	v.SetDefault("default_rows", 50)
	v.SetDefault("target_columns", d.TargetColumns)
	v.SetDefault("variants", 2)
	v.SetDefault("rename_probability", d.RenameProbability)
	v.SetDefault("drop_probability", d.DropProbability)
	v.SetDefault("null_rate", d.NullRate)
	v.SetDefault("output_dir", "chaostab-out")
	v.SetDefault("formats", []string{"csv", "xlsx"})
	v.SetDefault("workbook_name", "tables_chaotiques.xlsx")
	v.SetDefault("preview_rows", 5)
	v.SetDefault("schema_dir", "")

	dir, err := defaultDir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Env values arrive as a single string.
	if len(c.Formats) == 1 && strings.Contains(c.Formats[0], ",") {
		if c.Formats, err = ParseFormats(c.Formats[0]); err != nil {
			return nil, err
		}
	}
	if c.SchemaDir == "" {
		c.SchemaDir = filepath.Join(dir, "schemas")
	}
	if c.SchemaDir, err = utils.ExpandHome(c.SchemaDir); err != nil {
		return nil, err
	}
	if c.OutputDir, err = utils.ExpandHome(c.OutputDir); err != nil {
		return nil, err
	}
	return &c, nil
}

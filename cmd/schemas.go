package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/chaostab-cli/internal/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	schemasFiles []string
	schemasYAML  bool
)

var schemasCmd = &cobra.Command{
	Use:   "schemas [name]",
	Short: "List schema templates or show one template's fields",
	Long: `List the available schema templates: the built-in ones, those found in the
configured schema directory and any given with --schema-file.

With a name, show that template's fields and generation rules. --yaml prints
the template in the format accepted by --schema-file.`,
	Example: `  chaostab schemas
  chaostab schemas user_profiles --yaml > my_users.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig()
		if err != nil {
			return err
		}
		cat, err := loadCatalog(c, schemasFiles)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			for _, name := range cat.Names() {
				t, _ := cat.Lookup(name)
				if t.Description != "" {
					fmt.Fprintf(out, "- %s: %s (%d fields)\n", t.Name, t.Description, len(t.Fields))
				} else {
					fmt.Fprintf(out, "- %s (%d fields)\n", t.Name, len(t.Fields))
				}
			}
			return nil
		}
		t, err := cat.Lookup(args[0])
		if err != nil {
			return err
		}
		if schemasYAML {
			b, err := yaml.Marshal(t)
			if err != nil {
				return fmt.Errorf("marshal yaml: %w", err)
			}
			_, err = out.Write(b)
			return err
		}
		fmt.Fprintf(out, "%s", t.Name)
		if t.Description != "" {
			fmt.Fprintf(out, ": %s", t.Description)
		}
		fmt.Fprintln(out)
		for _, f := range t.Fields {
			fmt.Fprintf(out, "- %s: %s%s\n", f.Name, f.Type, fieldDetail(f))
		}
		return nil
	},
}

// fieldDetail renders the rule parameters that are set.
func fieldDetail(f schema.Field) string {
	var parts []string
	if f.Min != 0 || f.Max != 0 {
		parts = append(parts, fmt.Sprintf("%g..%g", f.Min, f.Max))
	}
	if len(f.Values) > 0 {
		parts = append(parts, strings.Join(f.Values, "|"))
	}
	if f.Start != "" || f.End != "" {
		parts = append(parts, fmt.Sprintf("%s..%s", f.Start, f.End))
	}
	if f.MinAge != 0 || f.MaxAge != 0 {
		parts = append(parts, fmt.Sprintf("age %d..%d", f.MinAge, f.MaxAge))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func init() {
	rootCmd.AddCommand(schemasCmd)
	schemasCmd.Flags().StringSliceVar(&schemasFiles, "schema-file", nil, "additional YAML schema template files")
	schemasCmd.Flags().BoolVar(&schemasYAML, "yaml", false, "print the template as YAML")
}

package schema

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog resolves template names. It starts with the built-in templates;
// templates loaded from YAML override built-ins of the same name.
type Catalog struct {
	templates map[string]Template
}

// NewCatalog returns a catalog holding the built-in templates.
func NewCatalog() *Catalog {
	c := &Catalog{templates: make(map[string]Template)}
	for _, t := range Builtins() {
		c.templates[t.Name] = t
	}
	return c
}

// Add registers a template after validating it.
func (c *Catalog) Add(t Template) error {
	if err := t.Validate(time.Now()); err != nil {
		return err
	}
	c.templates[t.Name] = t
	return nil
}

// Lookup returns the named template.
func (c *Catalog) Lookup(name string) (Template, error) {
	key := strings.TrimSpace(name)
	if t, ok := c.templates[key]; ok {
		return t, nil
	}
	return Template{}, &InvalidSchemaError{
		Schema: name,
		Reason: fmt.Sprintf("unknown schema (available: %s)", strings.Join(c.Names(), ", ")),
	}
}

// Names lists template names alphabetically.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for n := range c.templates {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseTemplate decodes one template from YAML and validates it.
func ParseTemplate(data []byte) (Template, error) {
	var t Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Template{}, fmt.Errorf("decode template: %w", err)
	}
	if err := t.Validate(time.Now()); err != nil {
		return Template{}, err
	}
	return t, nil
}

// LoadFile reads a YAML template file and adds it to the catalog.
func (c *Catalog) LoadFile(path string) (Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template: %w", err)
	}
	t, err := ParseTemplate(b)
	if err != nil {
		return Template{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	c.templates[t.Name] = t
	return t, nil
}

// LoadDir adds every *.yaml / *.yml template in dir. A missing directory is
// not an error.
func (c *Catalog) LoadDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read schema dir: %w", err)
	}
	var loaded []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		t, err := c.LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return loaded, err
		}
		loaded = append(loaded, t.Name)
	}
	return loaded, nil
}

// Package loader reads hierarchy definition files. It is the collaborator
// that turns class-like declarations into registered entity nodes; the
// hierarchy it returns is already closed and ready for planning.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/descent-db/descent/errs"
	"github.com/descent-db/descent/hierarchy"
)

type yamlFile struct {
	Classes []yamlClass `yaml:"classes"`
}

type yamlClass struct {
	Name        string      `yaml:"name"`
	Parent      string      `yaml:"parent"`
	Inheritance string      `yaml:"inheritance"`
	TypeColumn  string      `yaml:"type_column"`
	TypeName    string      `yaml:"type_name"`
	Fields      []yamlField `yaml:"fields"`
}

type yamlField struct {
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"`
	NotNull    bool    `yaml:"not_null"`
	Default    *string `yaml:"default"`
	References string  `yaml:"references"`
}

// LoadHierarchyFromYAML parses a hierarchy definition file and returns the
// closed hierarchy. Classes may be declared in any order; parents are
// resolved before their subclasses.
func LoadHierarchyFromYAML(filename string) (*hierarchy.Hierarchy, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading hierarchy file: %w", err)
	}
	return parseHierarchy(data)
}

func parseHierarchy(data []byte) (*hierarchy.Hierarchy, error) {
	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	if len(yf.Classes) == 0 {
		return nil, errs.New(errs.KindConfig, "hierarchy file declares no classes")
	}

	h := hierarchy.New()
	pending := yf.Classes
	for len(pending) > 0 {
		var next []yamlClass
		progressed := false
		for _, c := range pending {
			if c.Parent != "" {
				if _, ok := h.Lookup(c.Parent); !ok {
					next = append(next, c)
					continue
				}
			}
			if err := register(h, c); err != nil {
				return nil, err
			}
			progressed = true
		}
		if !progressed {
			return nil, errs.New(errs.KindConfig,
				"class %s has an undeclared parent %s", next[0].Name, next[0].Parent)
		}
		pending = next
	}

	if err := h.Close(); err != nil {
		return nil, err
	}
	return h, nil
}

func register(h *hierarchy.Hierarchy, c yamlClass) error {
	opts := &hierarchy.Options{
		TypeColumn: c.TypeColumn,
		TypeName:   c.TypeName,
	}
	if c.Inheritance != "" {
		s, err := hierarchy.ParseStrategy(c.Inheritance)
		if err != nil {
			return err
		}
		opts.Inheritance = &s
	}
	var fields []hierarchy.Field
	for _, f := range c.Fields {
		fields = append(fields, hierarchy.Field{
			Name:       f.Name,
			Type:       f.Type,
			Nullable:   !f.NotNull,
			Default:    f.Default,
			References: f.References,
		})
	}
	_, err := h.Register(c.Name, c.Parent, fields, opts)
	return err
}

package codelist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

// Dimensions lists every dimension a definitions directory can provide.
var Dimensions = []domain.Dimension{
	domain.DimScenario,
	domain.DimRegion,
	domain.DimVariable,
	domain.DimSubannual,
}

const unitKey = "unit"

// Load reads the lists of dims from dir. Each dimension is read from
// "<dir>/<dim>.yaml" and every YAML file below "<dir>/<dim>/", in lexical
// path order. A dimension without any file is an error.
func Load(dir string, dims ...domain.Dimension) (*Set, error) {
	set := &Set{}
	for _, dim := range dims {
		files, err := definitionFiles(dir, dim)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("load codelist: no %s definitions in %s", dim, dir)
		}

		var codes []Code
		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("load codelist: %w", err)
			}
			parsed, err := Parse(dim, data, path)
			if err != nil {
				return nil, fmt.Errorf("load codelist: %w", err)
			}
			codes = append(codes, parsed...)
		}

		list, err := NewList(dim, codes)
		if err != nil {
			return nil, fmt.Errorf("load codelist: %w", err)
		}
		set.set(dim, list)
	}
	return set, nil
}

// LoadAvailable reads every dimension that has definitions in dir and skips
// the others.
func LoadAvailable(dir string) (*Set, error) {
	var dims []domain.Dimension
	for _, dim := range Dimensions {
		files, err := definitionFiles(dir, dim)
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			dims = append(dims, dim)
		}
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("load codelist: no definitions in %s", dir)
	}
	return Load(dir, dims...)
}

func definitionFiles(dir string, dim domain.Dimension) ([]string, error) {
	var files []string

	single := filepath.Join(dir, string(dim)+".yaml")
	if _, err := os.Stat(single); err == nil {
		files = append(files, single)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load codelist: %w", err)
	}

	sub := filepath.Join(dir, string(dim))
	err := filepath.WalkDir(sub, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isYAML(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load codelist: %w", err)
	}

	return files, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Parse decodes one definitions document. The document is a sequence whose
// items are either a bare code name, a single-key mapping from a code name to
// its attributes, or a single-key mapping from a group label to a nested
// sequence of items:
//
//	- Countries:
//	  - Germany:
//	      iso3: DEU
//	      abbr: DE
//	- Final Energy:
//	    unit: EJ/yr
//
// Variables must declare a unit; a null unit means dimensionless.
func Parse(dim domain.Dimension, data []byte, source string) ([]Code, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%s: line %d: expected a list of codes", source, root.Line)
	}

	p := parser{dim: dim, source: source}
	if err := p.items(root, ""); err != nil {
		return nil, err
	}
	return p.codes, nil
}

type parser struct {
	dim    domain.Dimension
	source string
	codes  []Code
}

func (p *parser) errorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%s: line %d: %s", p.source, n.Line, fmt.Sprintf(format, args...))
}

func (p *parser) items(seq *yaml.Node, group string) error {
	for _, item := range seq.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			if err := p.add(item, Code{Name: item.Value, Group: group}, false); err != nil {
				return err
			}
		case yaml.MappingNode:
			for i := 0; i+1 < len(item.Content); i += 2 {
				if err := p.entry(item.Content[i], item.Content[i+1], group); err != nil {
					return err
				}
			}
		default:
			return p.errorf(item, "unsupported %s item", p.dim)
		}
	}
	return nil
}

func (p *parser) entry(key, value *yaml.Node, group string) error {
	name := strings.TrimSpace(key.Value)
	switch {
	case value.Kind == yaml.SequenceNode:
		return p.items(value, name)
	case value.Kind == yaml.MappingNode:
		code := Code{Name: name, Group: group, Attributes: make(map[string]string)}
		hasUnit := false
		for i := 0; i+1 < len(value.Content); i += 2 {
			k, v := value.Content[i].Value, value.Content[i+1]
			if k == unitKey {
				units, err := p.units(v)
				if err != nil {
					return err
				}
				code.Units = units
				hasUnit = true
				continue
			}
			if v.Kind == yaml.ScalarNode && v.ShortTag() != "!!null" {
				code.Attributes[k] = v.Value
			}
		}
		return p.add(key, code, hasUnit)
	case value.Kind == yaml.ScalarNode && value.ShortTag() == "!!null":
		return p.add(key, Code{Name: name, Group: group}, false)
	default:
		return p.errorf(value, "%s %q: expected attributes or a nested list", p.dim, name)
	}
}

func (p *parser) units(v *yaml.Node) ([]string, error) {
	switch v.Kind {
	case yaml.ScalarNode:
		if v.ShortTag() == "!!null" {
			return []string{""}, nil
		}
		return []string{v.Value}, nil
	case yaml.SequenceNode:
		units := make([]string, 0, len(v.Content))
		for _, u := range v.Content {
			if u.Kind != yaml.ScalarNode {
				return nil, p.errorf(u, "unit must be a string")
			}
			units = append(units, u.Value)
		}
		return units, nil
	default:
		return nil, p.errorf(v, "unit must be a string or a list of strings")
	}
}

func (p *parser) add(n *yaml.Node, code Code, hasUnit bool) error {
	if code.Name == "" {
		return p.errorf(n, "empty %s name", p.dim)
	}
	if p.dim == domain.DimVariable && !hasUnit {
		return p.errorf(n, "variable %q has no unit", code.Name)
	}
	p.codes = append(p.codes, code)
	return nil
}

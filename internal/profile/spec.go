package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
	"github.com/iiasa/ariadne-intern-workflow/internal/validation"
)

// SchemaV1 is the only supported profile file schema.
const SchemaV1 = "ariadne.profile.v1"

// File is the YAML document holding custom profiles.
type File struct {
	Schema   string `yaml:"schema"`
	Profiles []Spec `yaml:"profiles"`
}

// Spec declares one custom profile.
type Spec struct {
	Name              string   `yaml:"name"`
	Strictness        string   `yaml:"strictness"`
	Dimensions        []string `yaml:"dimensions"`
	SynonymAttributes []string `yaml:"synonym_attributes,omitempty"`
	Subannual         string   `yaml:"subannual,omitempty"`
	Meta              MetaSpec `yaml:"meta"`
}

// MetaSpec declares the allowed metadata indicators of a profile.
type MetaSpec struct {
	Required []MetaKeySpec `yaml:"required,omitempty"`
	Optional []string      `yaml:"optional,omitempty"`
}

// MetaKeySpec is a required indicator; the first allowed value is its default.
type MetaKeySpec struct {
	Name    string   `yaml:"name"`
	Allowed []string `yaml:"allowed"`
}

// Parse decodes and validates a profile file.
func Parse(input []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(input, &f); err != nil {
		return File{}, fmt.Errorf("decode profiles: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// ReadFile reads and parses the profile file at path.
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read profiles: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Validate checks the schema and every profile, naming the offending field by index.
func (f File) Validate() error {
	if strings.TrimSpace(f.Schema) != SchemaV1 {
		return fmt.Errorf("profiles.schema must be %q", SchemaV1)
	}
	if len(f.Profiles) == 0 {
		return errors.New("profiles.profiles must be non-empty")
	}

	seen := make(map[string]struct{}, len(f.Profiles))
	for i, s := range f.Profiles {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("profiles[%d].name is required", i)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("profiles[%d].name must be unique (duplicate %q)", i, name)
		}
		seen[name] = struct{}{}

		if _, err := parseStrictness(s.Strictness); err != nil {
			return fmt.Errorf("profiles[%d].strictness %w", i, err)
		}
		if len(s.Dimensions) == 0 {
			return fmt.Errorf("profiles[%d].dimensions must be non-empty", i)
		}
		for j, d := range s.Dimensions {
			if _, err := parseDimension(d); err != nil {
				return fmt.Errorf("profiles[%d].dimensions[%d] %w", i, j, err)
			}
		}
		if _, err := parseSubannual(s.Subannual); err != nil {
			return fmt.Errorf("profiles[%d].subannual %w", i, err)
		}
		if err := s.allowedMeta().Validate(); err != nil {
			return fmt.Errorf("profiles[%d].%w", i, err)
		}
	}
	return nil
}

// Profile binds the spec to set. The spec must have passed File.Validate.
func (s Spec) Profile(set *codelist.Set) (validation.Profile, error) {
	strictness, err := parseStrictness(s.Strictness)
	if err != nil {
		return validation.Profile{}, err
	}
	mode, err := parseSubannual(s.Subannual)
	if err != nil {
		return validation.Profile{}, err
	}
	dims := make([]domain.Dimension, 0, len(s.Dimensions))
	for _, d := range s.Dimensions {
		dim, err := parseDimension(d)
		if err != nil {
			return validation.Profile{}, err
		}
		dims = append(dims, dim)
	}

	p := validation.Profile{
		Name:              strings.TrimSpace(s.Name),
		Strictness:        strictness,
		Dimensions:        dims,
		SynonymAttributes: s.SynonymAttributes,
		Meta:              s.allowedMeta(),
		Subannual:         mode,
		Codelists:         set,
	}
	if err := p.Validate(); err != nil {
		return validation.Profile{}, err
	}
	return p, nil
}

func (s Spec) allowedMeta() validation.AllowedMeta {
	var out validation.AllowedMeta
	for _, k := range s.Meta.Required {
		out.Required = append(out.Required, validation.MetaKey{Name: strings.TrimSpace(k.Name), Allowed: k.Allowed})
	}
	out.Optional = s.Meta.Optional
	return out
}

func parseStrictness(s string) (validation.Strictness, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort":
		return validation.Abort, nil
	case "filter":
		return validation.Filter, nil
	case "":
		return 0, errors.New("is required")
	default:
		return 0, fmt.Errorf("unsupported: %q", s)
	}
}

func parseDimension(s string) (domain.Dimension, error) {
	switch dim := domain.Dimension(strings.ToLower(strings.TrimSpace(s))); dim {
	case domain.DimScenario, domain.DimRegion, domain.DimVariable:
		return dim, nil
	default:
		return "", fmt.Errorf("unsupported: %q", s)
	}
}

func parseSubannual(s string) (validation.SubannualMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "open":
		return validation.OpenParsing, nil
	case "hourly-grid":
		return validation.HourlyGrid, nil
	default:
		return 0, fmt.Errorf("unsupported: %q", s)
	}
}

// Package codelist holds the reference allow-lists a submission is checked
// against. Lists are built once per run and never mutated afterwards, so a
// Set may be shared read-only between concurrent validations.
package codelist

import (
	"fmt"

	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

// Code is one allowed value of a dimension.
type Code struct {
	Name string
	// Group is the hierarchy label the code was declared under, if any
	// (e.g. "Countries" for regions).
	Group string
	// Attributes holds scalar extra attributes such as "iso3" or "abbr".
	Attributes map[string]string
	// Units lists the accepted units of a variable. A dimensionless variable
	// has the single unit "".
	Units []string
}

// Attribute returns a scalar attribute.
func (c Code) Attribute(name string) (string, bool) {
	v, ok := c.Attributes[name]
	return v, ok
}

// AcceptsUnit reports whether unit is declared for the code.
func (c Code) AcceptsUnit(unit string) bool {
	for _, u := range c.Units {
		if u == unit {
			return true
		}
	}
	return false
}

// List is the ordered set of codes of one dimension.
type List struct {
	dim   domain.Dimension
	codes []Code
	index map[string]int
}

// NewList builds a list, rejecting empty and duplicate names.
func NewList(dim domain.Dimension, codes []Code) (*List, error) {
	l := &List{
		dim:   dim,
		codes: make([]Code, 0, len(codes)),
		index: make(map[string]int, len(codes)),
	}
	for _, c := range codes {
		if c.Name == "" {
			return nil, fmt.Errorf("%s codelist: empty code name", dim)
		}
		if _, dup := l.index[c.Name]; dup {
			return nil, fmt.Errorf("%s codelist: duplicate code %q", dim, c.Name)
		}
		l.index[c.Name] = len(l.codes)
		l.codes = append(l.codes, c)
	}
	return l, nil
}

// MustList is NewList for static definitions; it panics on error.
func MustList(dim domain.Dimension, codes ...Code) *List {
	l, err := NewList(dim, codes)
	if err != nil {
		panic(err)
	}
	return l
}

// Names builds codes without attributes.
func Names(names ...string) []Code {
	codes := make([]Code, len(names))
	for i, n := range names {
		codes[i] = Code{Name: n}
	}
	return codes
}

// Dimension returns the dimension the list constrains.
func (l *List) Dimension() domain.Dimension { return l.dim }

// Len returns the number of codes. A nil list is empty.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.codes)
}

// Contains reports whether name is an allowed code.
func (l *List) Contains(name string) bool {
	if l == nil {
		return false
	}
	_, ok := l.index[name]
	return ok
}

// Get returns the code called name.
func (l *List) Get(name string) (Code, bool) {
	if l == nil {
		return Code{}, false
	}
	i, ok := l.index[name]
	if !ok {
		return Code{}, false
	}
	return l.codes[i], true
}

// Codes returns the codes in declaration order.
func (l *List) Codes() []Code {
	if l == nil {
		return nil
	}
	return append([]Code(nil), l.codes...)
}

// Set groups the lists of one definitions directory. Lists that were not
// loaded are nil.
type Set struct {
	Scenario  *List
	Region    *List
	Variable  *List
	Subannual *List
}

// List returns the list for dim, or nil.
func (s *Set) List(dim domain.Dimension) *List {
	if s == nil {
		return nil
	}
	switch dim {
	case domain.DimScenario:
		return s.Scenario
	case domain.DimRegion:
		return s.Region
	case domain.DimVariable:
		return s.Variable
	case domain.DimSubannual:
		return s.Subannual
	default:
		return nil
	}
}

func (s *Set) set(dim domain.Dimension, l *List) {
	switch dim {
	case domain.DimScenario:
		s.Scenario = l
	case domain.DimRegion:
		s.Region = l
	case domain.DimVariable:
		s.Variable = l
	case domain.DimSubannual:
		s.Subannual = l
	}
}

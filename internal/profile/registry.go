package profile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/validation"
)

// ErrUnknownProfile is returned for names that are neither built in nor
// declared in a profile file.
var ErrUnknownProfile = errors.New("unknown profile")

// Registry resolves profile names against one loaded codelist set. It is
// read-only after construction and safe for concurrent use.
type Registry struct {
	profiles    map[string]validation.Profile
	unavailable map[string]error
	fallback    string
}

// NewRegistry binds every built-in profile and the custom specs to set.
// Custom specs replace built-ins of the same name. A built-in whose codelists
// are missing from set stays registered as unavailable; resolving it returns
// the binding error. The default profile must be available.
func NewRegistry(set *codelist.Set, defaultName string, custom ...Spec) (*Registry, error) {
	r := &Registry{
		profiles:    make(map[string]validation.Profile),
		unavailable: make(map[string]error),
		fallback:    defaultName,
	}

	for _, name := range BuiltinNames() {
		p, err := Builtin(name, set)
		if err != nil {
			r.unavailable[name] = err
			continue
		}
		r.profiles[name] = p
	}

	for _, s := range custom {
		p, err := s.Profile(set)
		if err != nil {
			return nil, fmt.Errorf("custom profile %q: %w", s.Name, err)
		}
		delete(r.unavailable, p.Name)
		r.profiles[p.Name] = p
	}

	if _, err := r.Resolve(defaultName); err != nil {
		return nil, fmt.Errorf("default profile: %w", err)
	}
	return r, nil
}

// Resolve returns the named profile. An empty name selects the default.
func (r *Registry) Resolve(name string) (validation.Profile, error) {
	if name == "" {
		name = r.fallback
	}
	if p, ok := r.profiles[name]; ok {
		return p, nil
	}
	if err, ok := r.unavailable[name]; ok {
		return validation.Profile{}, fmt.Errorf("profile %q unavailable: %w", name, err)
	}
	return validation.Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
}

// Default returns the name used when a submission names no profile.
func (r *Registry) Default() string { return r.fallback }

// Names returns the available profile names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package validation

import (
	"errors"
	"fmt"

	"github.com/iiasa/ariadne-intern-workflow/internal/diagnostics"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

// MetaKey is a required meta indicator and its allowed values. The first
// allowed value is the default.
type MetaKey struct {
	Name    string
	Allowed []string
}

// Default returns the first allowed value.
func (k MetaKey) Default() string { return k.Allowed[0] }

func (k MetaKey) allows(v string) bool {
	for _, a := range k.Allowed {
		if a == v {
			return true
		}
	}
	return false
}

// AllowedMeta constrains the metadata table of a submission.
type AllowedMeta struct {
	Required []MetaKey
	// Optional indicators are kept but not constrained.
	Optional []string
}

// Validate checks that every required key has a name and at least one
// allowed value and that no name is declared twice.
func (a AllowedMeta) Validate() error {
	seen := make(map[string]struct{}, len(a.Required)+len(a.Optional))
	for i, k := range a.Required {
		if k.Name == "" {
			return fmt.Errorf("meta.required[%d].name is required", i)
		}
		if len(k.Allowed) == 0 {
			return fmt.Errorf("meta.required[%d] %q needs at least one allowed value", i, k.Name)
		}
		if _, dup := seen[k.Name]; dup {
			return fmt.Errorf("meta.required[%d] %q is declared twice", i, k.Name)
		}
		seen[k.Name] = struct{}{}
	}
	for i, name := range a.Optional {
		if name == "" {
			return errors.New("meta.optional entries must be non-empty")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("meta.optional[%d] %q is declared twice", i, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

func (a AllowedMeta) expected() map[string]struct{} {
	out := make(map[string]struct{}, len(a.Required)+len(a.Optional)+1)
	for _, k := range a.Required {
		out[k.Name] = struct{}{}
	}
	for _, name := range a.Optional {
		out[name] = struct{}{}
	}
	out[domain.ExcludeColumn] = struct{}{}
	return out
}

// MetaColumns is the column access the reconciler needs from a metadata
// table. *domain.MetaTable implements it.
type MetaColumns interface {
	Columns() []string
	Column(name string) ([]string, bool)
	SetColumn(name string, values []string)
	Fill(name, value string)
	Drop(names ...string)
}

// ReconcileMeta drops unexpected indicator columns, rewrites disallowed
// values of required indicators to their default and creates missing
// required indicators with their default. It never fails and a second run
// changes nothing.
func ReconcileMeta(meta MetaColumns, allowed AllowedMeta, sink diagnostics.Sink) {
	expected := allowed.expected()

	var unexpected []string
	for _, c := range meta.Columns() {
		if _, ok := expected[c]; !ok {
			unexpected = append(unexpected, c)
		}
	}
	if len(unexpected) > 0 {
		meta.Drop(unexpected...)
		sink.Record(diagnostics.Event{
			Severity:   diagnostics.SeverityWarning,
			Dimension:  "meta",
			Detail:     fmt.Sprintf("Removing unexpected meta indicators: %q", unexpected),
			Values:     unexpected,
			Resolution: "dropped",
		})
	}

	for _, key := range allowed.Required {
		values, ok := meta.Column(key.Name)
		if !ok {
			meta.Fill(key.Name, key.Default())
			sink.Record(diagnostics.Event{
				Severity:   diagnostics.SeverityInfo,
				Dimension:  key.Name,
				Detail:     fmt.Sprintf("Setting `%s` to default `%s`", key.Name, key.Default()),
				Resolution: "default injected",
			})
			continue
		}

		var unknown []string
		seen := make(map[string]struct{})
		for i, v := range values {
			if key.allows(v) {
				continue
			}
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				unknown = append(unknown, v)
			}
			values[i] = key.Default()
		}
		if len(unknown) == 0 {
			continue
		}

		meta.SetColumn(key.Name, values)
		sink.Record(diagnostics.Event{
			Severity:   diagnostics.SeverityWarning,
			Dimension:  key.Name,
			Detail:     fmt.Sprintf("Unknown values %q for `%s`, setting to default `%s`", unknown, key.Name, key.Default()),
			Values:     unknown,
			Resolution: "set to default " + key.Default(),
		})
	}
}

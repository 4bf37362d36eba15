package validation

import (
	"fmt"

	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/diagnostics"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

// Profile is one deployment's configuration of the validation pipeline.
type Profile struct {
	Name string

	Strictness Strictness
	// Dimensions checked by the identifier validator: any of scenario,
	// region and variable. Region synonyms are only resolved when region is
	// checked.
	Dimensions        []domain.Dimension
	SynonymAttributes []string

	Meta      AllowedMeta
	Subannual SubannualMode
	Codelists *codelist.Set
}

// Validate checks that the profile is complete: every checked dimension has
// a loaded codelist and the meta allow-list is well formed.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile name is required")
	}
	for _, dim := range p.Dimensions {
		switch dim {
		case domain.DimScenario, domain.DimRegion, domain.DimVariable:
		default:
			return fmt.Errorf("profile %s: dimension %q cannot be checked", p.Name, dim)
		}
		if p.Codelists.List(dim) == nil {
			return fmt.Errorf("profile %s: no %s codelist loaded", p.Name, dim)
		}
	}
	if err := p.Meta.Validate(); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	return nil
}

// Identifiers returns the identifier stage of the profile.
func (p Profile) Identifiers() IdentifierValidator {
	return IdentifierValidator{
		Codelists:         p.Codelists,
		Dimensions:        p.Dimensions,
		Strictness:        p.Strictness,
		SynonymAttributes: p.SynonymAttributes,
	}
}

// TimeAxis returns the time-axis stage of the profile.
func (p Profile) TimeAxis() TimeAxis {
	return TimeAxis{Subannual: p.Codelists.List(domain.DimSubannual), Mode: p.Subannual}
}

// Run validates sub in place: identifiers, then the time axis, then the
// metadata table. Identifier and time format violations stop the run with
// StatusRejected and the error. A submission left without rows stops the run
// with StatusRejected and no error. Metadata problems never stop the run.
func (p Profile) Run(sub Submission, sink diagnostics.Sink) (domain.Status, error) {
	if err := p.Identifiers().Validate(sub, sink); err != nil {
		return domain.StatusRejected, fmt.Errorf("profile %s: %w", p.Name, err)
	}
	if sub.Len() == 0 {
		sink.Record(diagnostics.Event{
			Severity:   diagnostics.SeverityError,
			Dimension:  "submission",
			Detail:     "submission contains no usable data",
			Resolution: "submission rejected",
		})
		return domain.StatusRejected, nil
	}

	if err := p.TimeAxis().Normalize(sub, sink); err != nil {
		return domain.StatusRejected, fmt.Errorf("profile %s: %w", p.Name, err)
	}

	ReconcileMeta(sub.Meta(), p.Meta, sink)
	return domain.StatusAccepted, nil
}

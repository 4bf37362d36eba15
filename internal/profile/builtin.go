// Package profile holds the catalog of validation profiles: the built-in
// deployments and custom profiles read from YAML files.
package profile

import (
	"fmt"
	"sort"

	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
	"github.com/iiasa/ariadne-intern-workflow/internal/validation"
)

// Built-in profile names.
const (
	AriadneIntern = "ariadne-intern"
	Kopernikus    = "kopernikus"
	OpenEntrance  = "openentrance"
)

// Meta indicator names shared by the built-in profiles.
const (
	QualityAssessment = "Quality Assessment"
	InternalUsage     = "Internal usage within Kopernikus AG Szenarien"
	Release           = "Release for publication"
)

// ariadneModels report their model and scenario versions as optional meta.
var ariadneModels = []string{"FORECAST", "DEMO", "REMod", "REMIND-EU", "TIMES PanEU"}

func qualityAssessment() validation.MetaKey {
	return validation.MetaKey{Name: QualityAssessment, Allowed: []string{"preliminary", "advanced", "mature"}}
}

func yesNo(name string) validation.MetaKey {
	return validation.MetaKey{Name: name, Allowed: []string{"no", "yes"}}
}

// AriadneMeta returns the meta indicators of the ARIADNE internal deployment.
func AriadneMeta() validation.AllowedMeta {
	optional := make([]string, 0, 2*len(ariadneModels))
	for _, m := range ariadneModels {
		optional = append(optional, m+"|model_version", m+"|scenario_version")
	}
	return validation.AllowedMeta{
		Required: []validation.MetaKey{qualityAssessment(), yesNo(InternalUsage), yesNo(Release)},
		Optional: optional,
	}
}

// KopernikusMeta returns the meta indicators of the Kopernikus deployment.
func KopernikusMeta() validation.AllowedMeta {
	return validation.AllowedMeta{
		Required: []validation.MetaKey{qualityAssessment(), yesNo(Release)},
	}
}

// OpenEntranceMeta returns the meta indicators of the openENTRANCE deployment.
func OpenEntranceMeta() validation.AllowedMeta {
	return validation.AllowedMeta{
		Required: []validation.MetaKey{qualityAssessment()},
	}
}

var builtins = map[string]func() validation.Profile{
	AriadneIntern: func() validation.Profile {
		return validation.Profile{
			Name:       AriadneIntern,
			Strictness: validation.Abort,
			Dimensions: []domain.Dimension{domain.DimScenario, domain.DimRegion, domain.DimVariable},
			Meta:       AriadneMeta(),
			Subannual:  validation.OpenParsing,
		}
	},
	Kopernikus: func() validation.Profile {
		return validation.Profile{
			Name:       Kopernikus,
			Strictness: validation.Abort,
			Dimensions: []domain.Dimension{domain.DimRegion, domain.DimVariable},
			Meta:       KopernikusMeta(),
			Subannual:  validation.OpenParsing,
		}
	},
	OpenEntrance: func() validation.Profile {
		return validation.Profile{
			Name:       OpenEntrance,
			Strictness: validation.Filter,
			Dimensions: []domain.Dimension{domain.DimScenario, domain.DimVariable},
			Meta:       OpenEntranceMeta(),
			Subannual:  validation.HourlyGrid,
		}
	},
}

// BuiltinNames returns the names of the built-in profiles in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns the named built-in profile bound to set.
func Builtin(name string, set *codelist.Set) (validation.Profile, error) {
	build, ok := builtins[name]
	if !ok {
		return validation.Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	p := build()
	p.Codelists = set
	if err := p.Validate(); err != nil {
		return validation.Profile{}, err
	}
	return p, nil
}

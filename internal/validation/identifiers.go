package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/diagnostics"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

// Submission is the capability set the validation stages need from a
// submission container. *domain.Submission implements it.
type Submission interface {
	TimeMode() domain.TimeMode
	Len() int
	Distinct(dim domain.Dimension) []string
	VariableUnits() []domain.VariableUnit
	Rename(dim domain.Dimension, mapping map[string]string)
	SwapTimeForYear(format func(t time.Time, naive bool) string)
	Clear()
	Meta() *domain.MetaTable
}

// Strictness selects how identifier violations are handled.
type Strictness int

const (
	// Abort rejects the submission with an error listing every violation.
	Abort Strictness = iota
	// Filter logs the violations and empties the submission without error.
	Filter
)

func (s Strictness) String() string {
	if s == Filter {
		return "filter"
	}
	return "abort"
}

// DefaultSynonymAttributes are the region attributes treated as synonyms.
var DefaultSynonymAttributes = []string{"abbr", "iso3"}

// IdentifierValidator checks scenario, region and variable/unit labels
// against the reference codelists.
type IdentifierValidator struct {
	Codelists         *codelist.Set
	Dimensions        []domain.Dimension
	Strictness        Strictness
	SynonymAttributes []string
}

// Validate checks every configured dimension. Regions are renamed from their
// synonyms first. In Abort mode all violations are returned as
// SchemaViolations; in Filter mode they are recorded and the submission is
// cleared, with scenario violations short-circuiting the remaining checks.
func (v IdentifierValidator) Validate(sub Submission, sink diagnostics.Sink) error {
	var violations SchemaViolations

	if v.checks(domain.DimScenario) {
		if viol := checkCodes(sub, domain.DimScenario, v.Codelists.List(domain.DimScenario)); viol != nil {
			if v.Strictness == Filter {
				v.record(sink, viol)
				sub.Clear()
				return nil
			}
			violations = append(violations, viol)
		}
	}

	if v.checks(domain.DimRegion) {
		v.renameRegions(sub, sink)
		if viol := checkCodes(sub, domain.DimRegion, v.Codelists.List(domain.DimRegion)); viol != nil {
			violations = append(violations, viol)
		}
	}

	if v.checks(domain.DimVariable) {
		violations = append(violations, checkVariables(sub, v.Codelists.List(domain.DimVariable))...)
	}

	if len(violations) == 0 {
		return nil
	}
	for _, viol := range violations {
		v.record(sink, viol)
	}
	if v.Strictness == Filter {
		sub.Clear()
		return nil
	}
	return violations
}

func (v IdentifierValidator) checks(dim domain.Dimension) bool {
	for _, d := range v.Dimensions {
		if d == dim {
			return true
		}
	}
	return false
}

func (v IdentifierValidator) synonymAttributes() []string {
	if v.SynonymAttributes == nil {
		return DefaultSynonymAttributes
	}
	return v.SynonymAttributes
}

func (v IdentifierValidator) renameRegions(sub Submission, sink diagnostics.Sink) {
	synonyms := RegionSynonyms(v.Codelists.List(domain.DimRegion), v.synonymAttributes())
	if len(synonyms) == 0 {
		return
	}

	applied := make(map[string]string)
	var renamed []string
	for _, raw := range sub.Distinct(domain.DimRegion) {
		if to, ok := synonyms[raw]; ok {
			applied[raw] = to
			renamed = append(renamed, fmt.Sprintf("%s -> %s", raw, to))
		}
	}
	if len(applied) == 0 {
		return
	}

	sub.Rename(domain.DimRegion, applied)
	sink.Record(diagnostics.Event{
		Severity:   diagnostics.SeverityInfo,
		Dimension:  string(domain.DimRegion),
		Detail:     "renamed region synonyms to canonical names",
		Values:     renamed,
		Resolution: "renamed",
	})
}

func (v IdentifierValidator) record(sink diagnostics.Sink, viol *SchemaViolation) {
	resolution := "submission rejected"
	if v.Strictness == Filter {
		resolution = "all rows removed"
	}
	dim := string(viol.Dimension)
	if viol.Kind == KindIllegalUnit {
		dim = string(domain.DimUnit)
	}
	sink.Record(diagnostics.Event{
		Severity:   diagnostics.SeverityError,
		Dimension:  dim,
		Detail:     viol.Error(),
		Values:     viol.Values(),
		Resolution: resolution,
	})
}

// RegionSynonyms maps every synonym attribute value of the regions in list to
// the canonical region name. Regions and attributes are visited in
// declaration order and a later synonym overwrites an earlier one. Synonyms
// that equal a declared region name are skipped so that renaming twice is the
// same as renaming once.
func RegionSynonyms(list *codelist.List, attrs []string) map[string]string {
	mapping := make(map[string]string)
	for _, region := range list.Codes() {
		for _, attr := range attrs {
			syn, ok := region.Attribute(attr)
			if !ok || syn == "" || list.Contains(syn) {
				continue
			}
			mapping[syn] = region.Name
		}
	}
	return mapping
}

func checkCodes(sub Submission, dim domain.Dimension, list *codelist.List) *SchemaViolation {
	var offenders []Offender
	for _, value := range sub.Distinct(dim) {
		if !list.Contains(value) {
			offenders = append(offenders, Offender{Value: value})
		}
	}
	if len(offenders) == 0 {
		return nil
	}
	return &SchemaViolation{Dimension: dim, Kind: KindUnknown, Offenders: offenders}
}

func checkVariables(sub Submission, list *codelist.List) SchemaViolations {
	unknown := make(map[string]struct{})
	var illegal []Offender

	for _, vu := range sub.VariableUnits() {
		code, ok := list.Get(vu.Variable)
		if !ok {
			unknown[vu.Variable] = struct{}{}
			continue
		}
		if !code.AcceptsUnit(vu.Unit) {
			illegal = append(illegal, Offender{Value: vu.Variable, Found: vu.Unit, Expected: code.Units})
		}
	}

	var out SchemaViolations
	if len(unknown) > 0 {
		names := make([]string, 0, len(unknown))
		for n := range unknown {
			names = append(names, n)
		}
		sort.Strings(names)
		offenders := make([]Offender, len(names))
		for i, n := range names {
			offenders[i] = Offender{Value: n}
		}
		out = append(out, &SchemaViolation{Dimension: domain.DimVariable, Kind: KindUnknown, Offenders: offenders})
	}
	if len(illegal) > 0 {
		out = append(out, &SchemaViolation{Dimension: domain.DimVariable, Kind: KindIllegalUnit, Offenders: illegal})
	}
	return out
}

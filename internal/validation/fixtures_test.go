package validation

import (
	"time"

	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

const testModel = "REMIND-EU"

var cet = time.FixedZone(ExpectedZone, ExpectedOffset)

func testCodelists() *codelist.Set {
	return &codelist.Set{
		Scenario: codelist.MustList(domain.DimScenario, codelist.Names("Base", "8Gt_Bal")...),
		Region: codelist.MustList(domain.DimRegion,
			codelist.Code{Name: "World"},
			codelist.Code{Name: "Germany", Attributes: map[string]string{"iso3": "DE", "abbr": "GER"}},
			codelist.Code{Name: "Austria", Attributes: map[string]string{"iso3": "AUT", "abbr": "AT"}},
		),
		Variable: codelist.MustList(domain.DimVariable,
			codelist.Code{Name: "Final Energy", Units: []string{"EJ/yr"}},
			codelist.Code{Name: "Emissions|CO2", Units: []string{"Mt CO2/yr"}},
			codelist.Code{Name: "Load|Electricity", Units: []string{"GW"}},
		),
		Subannual: codelist.MustList(domain.DimSubannual, codelist.Names("Year", "Summer", "Winter")...),
	}
}

func obs(scenario, region, variable, unit string) domain.Observation {
	return domain.Observation{
		Model:    testModel,
		Scenario: scenario,
		Region:   region,
		Variable: variable,
		Unit:     unit,
		Year:     2030,
		Value:    1,
	}
}

func yearSubmission(rows ...domain.Observation) *domain.Submission {
	return domain.NewSubmission("sub-1", domain.TimeModeYear, rows)
}

func subannualSubmission(labels ...string) *domain.Submission {
	rows := make([]domain.Observation, len(labels))
	for i, l := range labels {
		rows[i] = obs("Base", "Germany", "Load|Electricity", "GW")
		rows[i].Year = 2020
		rows[i].Subannual = l
	}
	return domain.NewSubmission("sub-1", domain.TimeModeSubannual, rows)
}

func datetimeSubmission(times ...time.Time) *domain.Submission {
	rows := make([]domain.Observation, len(times))
	for i, t := range times {
		rows[i] = obs("Base", "Germany", "Load|Electricity", "GW")
		rows[i].Year = 0
		rows[i].Time = t
	}
	return domain.NewSubmission("sub-1", domain.TimeModeDatetime, rows)
}

func allDimensions() []domain.Dimension {
	return []domain.Dimension{domain.DimScenario, domain.DimRegion, domain.DimVariable}
}

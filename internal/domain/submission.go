package domain

import (
	"sort"
	"time"
)

// Dimension names an identifying column of the observation table.
type Dimension string

const (
	DimModel     Dimension = "model"
	DimScenario  Dimension = "scenario"
	DimRegion    Dimension = "region"
	DimVariable  Dimension = "variable"
	DimUnit      Dimension = "unit"
	DimSubannual Dimension = "subannual"
)

// TimeMode is the temporal representation used by all rows of a submission.
type TimeMode int

const (
	TimeModeYear TimeMode = iota
	TimeModeDatetime
	TimeModeSubannual
)

func (m TimeMode) String() string {
	switch m {
	case TimeModeDatetime:
		return "datetime"
	case TimeModeSubannual:
		return "subannual"
	default:
		return "year"
	}
}

// Observation is one row of the timeseries table.
type Observation struct {
	Model     string
	Scenario  string
	Region    string
	Variable  string
	Unit      string
	Year      int
	Time      time.Time // set only in TimeModeDatetime
	// NaiveTime marks a Time decoded without a UTC offset. Such a Time is
	// held in UTC but its offset is unknown.
	NaiveTime bool
	Subannual string    // set only in TimeModeSubannual
	Value     float64
}

// VariableUnit is a distinct (variable, unit) pair present in a submission.
type VariableUnit struct {
	Variable string
	Unit     string
}

// Submission is the mutable container the validation stages operate on.
type Submission struct {
	ID   string
	Rows []Observation

	mode TimeMode
	meta *MetaTable
}

// NewSubmission creates a submission and derives the metadata index from the
// (model, scenario) pairs in rows. Rows must share one temporal mode.
func NewSubmission(id string, mode TimeMode, rows []Observation) *Submission {
	s := &Submission{ID: id, Rows: rows, mode: mode, meta: NewMetaTable()}
	for _, r := range rows {
		s.meta.ensure(ScenarioKey{Model: r.Model, Scenario: r.Scenario})
	}
	return s
}

// TimeMode reports the temporal representation of the rows.
func (s *Submission) TimeMode() TimeMode { return s.mode }

// Len returns the number of observation rows.
func (s *Submission) Len() int { return len(s.Rows) }

// Meta returns the metadata table. It is never nil.
func (s *Submission) Meta() *MetaTable {
	if s.meta == nil {
		s.meta = NewMetaTable()
	}
	return s.meta
}

// Distinct returns the sorted distinct values of dim across all rows.
func (s *Submission) Distinct(dim Dimension) []string {
	seen := make(map[string]struct{})
	for i := range s.Rows {
		seen[s.Rows[i].get(dim)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// VariableUnits returns the distinct (variable, unit) pairs sorted by variable
// and then unit.
func (s *Submission) VariableUnits() []VariableUnit {
	seen := make(map[VariableUnit]struct{})
	for i := range s.Rows {
		seen[VariableUnit{Variable: s.Rows[i].Variable, Unit: s.Rows[i].Unit}] = struct{}{}
	}
	out := make([]VariableUnit, 0, len(seen))
	for vu := range seen {
		out = append(out, vu)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Variable != out[j].Variable {
			return out[i].Variable < out[j].Variable
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}

// Rename replaces values of dim found in mapping. Values absent from mapping
// are left untouched. Renaming model or scenario also rekeys the metadata.
func (s *Submission) Rename(dim Dimension, mapping map[string]string) {
	if len(mapping) == 0 {
		return
	}
	for i := range s.Rows {
		if to, ok := mapping[s.Rows[i].get(dim)]; ok {
			s.Rows[i].set(dim, to)
		}
	}
	if dim == DimModel || dim == DimScenario {
		s.Meta().rename(dim, mapping)
	}
}

// SwapTimeForYear converts a datetime submission to the subannual mode: year
// becomes the calendar year of each timestamp and subannual the formatted
// label. format receives the row's NaiveTime flag. It is a no-op in any other
// mode.
func (s *Submission) SwapTimeForYear(format func(t time.Time, naive bool) string) {
	if s.mode != TimeModeDatetime {
		return
	}
	for i := range s.Rows {
		r := &s.Rows[i]
		r.Year = r.Time.Year()
		r.Subannual = format(r.Time, r.NaiveTime)
		r.Time = time.Time{}
		r.NaiveTime = false
	}
	s.mode = TimeModeSubannual
}

// Clear removes every row and the whole metadata table.
func (s *Submission) Clear() {
	s.Rows = nil
	s.meta = NewMetaTable()
}

func (o *Observation) get(dim Dimension) string {
	switch dim {
	case DimModel:
		return o.Model
	case DimScenario:
		return o.Scenario
	case DimRegion:
		return o.Region
	case DimVariable:
		return o.Variable
	case DimUnit:
		return o.Unit
	case DimSubannual:
		return o.Subannual
	default:
		return ""
	}
}

func (o *Observation) set(dim Dimension, v string) {
	switch dim {
	case DimModel:
		o.Model = v
	case DimScenario:
		o.Scenario = v
	case DimRegion:
		o.Region = v
	case DimVariable:
		o.Variable = v
	case DimUnit:
		o.Unit = v
	case DimSubannual:
		o.Subannual = v
	}
}

package validation

import (
	"fmt"
	"sync"
	"time"

	"github.com/iiasa/ariadne-intern-workflow/internal/codelist"
	"github.com/iiasa/ariadne-intern-workflow/internal/diagnostics"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

const (
	// ExpectedOffset is the only UTC offset accepted in subannual labels.
	ExpectedOffset = 3600
	// ExpectedZone names ExpectedOffset.
	ExpectedZone = "UTC+01:00"

	// YearLabel is the subannual sentinel for whole-year values.
	YearLabel = "Year"

	subannualLayout      = "01-02 15:04-07:00"
	naiveSubannualLayout = "01-02 15:04"

	// Labels are parsed in a leap year so that "02-29" is a valid day.
	anchorYear = 2020
	// The hourly grid spans a non-leap year.
	gridYear = 2019
)

// Month, day, hour and minute accept one or two digits.
var anchoredLayouts = []string{
	"2006-1-2 15:4-07:00",
	"2006-1-2 15:4-0700",
	"2006-1-2 15:4Z07:00",
}

const anchoredNaiveLayout = "2006-1-2 15:4"

// SubannualMode selects how subannual labels are validated.
type SubannualMode int

const (
	// OpenParsing accepts codelist labels and any "MM-DD HH:MM+01:00" stamp.
	OpenParsing SubannualMode = iota
	// HourlyGrid accepts only the labels of HourlyGrid.
	HourlyGrid
)

func (m SubannualMode) String() string {
	if m == HourlyGrid {
		return "hourly-grid"
	}
	return "open"
}

// FormatSubannual renders t as "MM-DD HH:MM" followed by its UTC offset in
// colon form, e.g. "01-01 00:00+01:00". The offset is taken from t's own
// location; t is not converted.
func FormatSubannual(t time.Time) string {
	return t.Format(subannualLayout)
}

// subannualLabel formats a timestamp being recast from the datetime mode. A
// naive timestamp gets no offset, so its label fails as a missing timezone.
func subannualLabel(t time.Time, naive bool) string {
	if naive {
		return t.Format(naiveSubannualLayout)
	}
	return FormatSubannual(t)
}

// ParseSubannual parses a "MM-DD HH:MM+hh:mm" label anchored in 2020. Single
// digit fields such as "1-5 9:00+01:00" are accepted. It
// returns a *TimeFormatError of kind ErrInvalidTimeslice when the label does
// not parse, ErrMissingTimezone when it parses without an offset and
// ErrInvalidTimezone when the offset is not UTC+01:00.
func ParseSubannual(label string) (time.Time, error) {
	anchored := fmt.Sprintf("%d-%s", anchorYear, label)

	for _, layout := range anchoredLayouts {
		t, err := time.Parse(layout, anchored)
		if err != nil {
			continue
		}
		if _, offset := t.Zone(); offset != ExpectedOffset {
			return time.Time{}, &TimeFormatError{Label: label, Kind: ErrInvalidTimezone}
		}
		return t, nil
	}

	if _, err := time.Parse(anchoredNaiveLayout, anchored); err == nil {
		return time.Time{}, &TimeFormatError{Label: label, Kind: ErrMissingTimezone}
	}
	return time.Time{}, &TimeFormatError{Label: label, Kind: ErrInvalidTimeslice}
}

var (
	gridOnce sync.Once
	grid     map[string]struct{}
)

// HourlyGridLabels returns the closed set of the hourly grid: one label per
// hour of a non-leap year at UTC+01:00 (8760 labels) plus YearLabel. The set
// is built once and must not be modified.
func HourlyGridLabels() map[string]struct{} {
	gridOnce.Do(func() {
		zone := time.FixedZone(ExpectedZone, ExpectedOffset)
		start := time.Date(gridYear, time.January, 1, 0, 0, 0, 0, zone)
		end := start.AddDate(1, 0, 0)

		grid = make(map[string]struct{}, 8761)
		for t := start; t.Before(end); t = t.Add(time.Hour) {
			grid[FormatSubannual(t)] = struct{}{}
		}
		grid[YearLabel] = struct{}{}
	})
	return grid
}

// TimeAxis normalizes the temporal representation of a submission.
type TimeAxis struct {
	// Subannual is the codelist of categorical labels. Only consulted in
	// OpenParsing mode; may be nil.
	Subannual *codelist.List
	Mode      SubannualMode
}

// Normalize recasts datetime submissions to year+subannual and checks every
// subannual label. All failing labels are recorded and returned together as
// TimeFormatErrors.
func (a TimeAxis) Normalize(sub Submission, sink diagnostics.Sink) error {
	if sub.TimeMode() == domain.TimeModeDatetime {
		sub.SwapTimeForYear(subannualLabel)
		sink.Record(diagnostics.Event{
			Severity:   diagnostics.SeverityInfo,
			Dimension:  string(domain.DimSubannual),
			Detail:     `re-casting from "time" column to categorical "subannual" format`,
			Resolution: "converted",
		})
	}

	if sub.TimeMode() != domain.TimeModeSubannual {
		return nil
	}

	var errs TimeFormatErrors
	for _, label := range sub.Distinct(domain.DimSubannual) {
		if err := a.CheckLabel(label); err != nil {
			errs = append(errs, err.(*TimeFormatError))
		}
	}
	if len(errs) == 0 {
		return nil
	}

	for _, e := range errs {
		sink.Record(diagnostics.Event{
			Severity:   diagnostics.SeverityError,
			Dimension:  string(domain.DimSubannual),
			Detail:     e.Error(),
			Values:     []string{e.Label},
			Resolution: "submission rejected",
		})
	}
	return errs
}

// CheckLabel validates one subannual label. The returned error, if any, is a
// *TimeFormatError.
func (a TimeAxis) CheckLabel(label string) error {
	if a.Mode == HourlyGrid {
		if _, ok := HourlyGridLabels()[label]; ok {
			return nil
		}
		return &TimeFormatError{Label: label, Kind: ErrInvalidTimeslice}
	}

	if a.Subannual.Contains(label) {
		return nil
	}
	_, err := ParseSubannual(label)
	return err
}

// Package domain models scenario timeseries submissions for the ARIADNE and
// Kopernikus scenario repositories.
//
// # Submissions
//
// A submission is a table of observations. Every row is identified by
//
//	(model, scenario, region, variable, unit, <time>)
//
// and carries one numeric value. Values are never touched by validation; only
// the identifying labels, the time axis and the metadata table are rewritten.
//
// # Time Axis
//
// A submission uses exactly one temporal mode:
//
//	year       "year": 2030
//	datetime   "time": "2020-01-01T00:00:00+01:00"
//	subannual  "year": 2020, "subannual": "01-01 00:00+01:00"
//
// Subannual labels are month-day-hour-minute stamps with a UTC offset written
// in colon form ("+01:00"), or a categorical label declared in the subannual
// codelist (e.g. "Summer", "Year"). Datetime submissions are recast to the
// subannual form before they are stored.
//
// Naive timestamps (no offset) are read as UTC.
//
// # Metadata
//
// Every (model, scenario) pair has one metadata row. The reserved "exclude"
// column is boolean; all other indicator columns hold strings. Indicators that
// arrive as JSON numbers or booleans are stored in their JSON text form.
package domain

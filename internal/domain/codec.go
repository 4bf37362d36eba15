package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Layouts tried in order when decoding the "time" field.
var (
	offsetTimeLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	// Naive layouts parse into UTC and mark the row NaiveTime.
	naiveTimeLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
)

const naiveTimeLayout = "2006-01-02T15:04:05"

type rowJSON struct {
	Model     string  `json:"model"`
	Scenario  string  `json:"scenario"`
	Region    string  `json:"region"`
	Variable  string  `json:"variable"`
	Unit      string  `json:"unit"`
	Year      *int    `json:"year,omitempty"`
	Time      string  `json:"time,omitempty"`
	Subannual string  `json:"subannual,omitempty"`
	Value     float64 `json:"value"`
}

type submissionJSON struct {
	ID      string                       `json:"id,omitempty"`
	Profile string                       `json:"profile,omitempty"`
	Data    []rowJSON                    `json:"data"`
	Meta    []map[string]json.RawMessage `json:"meta,omitempty"`
}

// DecodeSubmission parses the JSON wire form of a submission. The returned
// profile is the profile name requested by the submitter, if any.
func DecodeSubmission(data []byte) (*Submission, string, error) {
	var in submissionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, "", fmt.Errorf("decode submission: %w", err)
	}

	rows := make([]Observation, 0, len(in.Data))
	mode := TimeModeYear
	for i, r := range in.Data {
		obs, rowMode, err := decodeRow(r)
		if err != nil {
			return nil, "", fmt.Errorf("decode submission: data[%d]: %w", i, err)
		}
		if i == 0 {
			mode = rowMode
		} else if rowMode != mode {
			return nil, "", fmt.Errorf("decode submission: data[%d]: mixed temporal modes %s and %s", i, mode, rowMode)
		}
		rows = append(rows, obs)
	}

	sub := NewSubmission(in.ID, mode, rows)
	for i, m := range in.Meta {
		if err := decodeMetaRow(sub.Meta(), m); err != nil {
			return nil, "", fmt.Errorf("decode submission: meta[%d]: %w", i, err)
		}
	}
	return sub, in.Profile, nil
}

func decodeRow(r rowJSON) (Observation, TimeMode, error) {
	obs := Observation{
		Model:     r.Model,
		Scenario:  r.Scenario,
		Region:    r.Region,
		Variable:  r.Variable,
		Unit:      r.Unit,
		Subannual: r.Subannual,
		Value:     r.Value,
	}
	switch {
	case r.Time != "":
		if r.Subannual != "" {
			return Observation{}, 0, errors.New("time and subannual are mutually exclusive")
		}
		t, naive, err := parseTime(r.Time)
		if err != nil {
			return Observation{}, 0, err
		}
		obs.Time = t
		obs.NaiveTime = naive
		return obs, TimeModeDatetime, nil
	case r.Year == nil:
		return Observation{}, 0, errors.New("year is required")
	case r.Subannual != "":
		obs.Year = *r.Year
		return obs, TimeModeSubannual, nil
	default:
		obs.Year = *r.Year
		return obs, TimeModeYear, nil
	}
}

// parseTime reports naive when s carries no UTC offset.
func parseTime(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	for _, layout := range offsetTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, false, nil
		}
	}
	for _, layout := range naiveTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("invalid time %q", s)
}

func decodeMetaRow(meta *MetaTable, row map[string]json.RawMessage) error {
	var key ScenarioKey
	if err := decodeString(row["model"], &key.Model); err != nil || key.Model == "" {
		return errors.New("model is required")
	}
	if err := decodeString(row["scenario"], &key.Scenario); err != nil || key.Scenario == "" {
		return errors.New("scenario is required")
	}

	names := make([]string, 0, len(row))
	for name := range row {
		if name == "model" || name == "scenario" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := row[name]
		if name == ExcludeColumn {
			var exclude bool
			if err := json.Unmarshal(raw, &exclude); err != nil {
				return fmt.Errorf("exclude must be a boolean: %w", err)
			}
			meta.SetExclude(key, exclude)
			continue
		}
		meta.Set(key, name, indicatorText(raw))
	}
	return nil
}

func decodeString(raw json.RawMessage, dst *string) error {
	if len(raw) == 0 {
		return errors.New("missing")
	}
	return json.Unmarshal(raw, dst)
}

// indicatorText renders a JSON scalar as an indicator value.
func indicatorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	if text == "null" {
		return ""
	}
	return text
}

// EncodeSubmission renders the submission in its JSON wire form.
func EncodeSubmission(s *Submission) ([]byte, error) {
	out := submissionJSON{ID: s.ID, Data: make([]rowJSON, 0, len(s.Rows))}
	for i := range s.Rows {
		out.Data = append(out.Data, encodeRow(s.mode, s.Rows[i]))
	}

	meta := s.Meta()
	columns := meta.Columns()
	for i, key := range meta.index {
		row := map[string]json.RawMessage{
			"model":       mustMarshal(key.Model),
			"scenario":    mustMarshal(key.Scenario),
			ExcludeColumn: mustMarshal(meta.exclude[i]),
		}
		for _, c := range columns {
			row[c] = mustMarshal(meta.values[c][i])
		}
		out.Meta = append(out.Meta, row)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}
	return data, nil
}

func encodeRow(mode TimeMode, o Observation) rowJSON {
	r := rowJSON{
		Model:    o.Model,
		Scenario: o.Scenario,
		Region:   o.Region,
		Variable: o.Variable,
		Unit:     o.Unit,
		Value:    o.Value,
	}
	switch mode {
	case TimeModeDatetime:
		if o.NaiveTime {
			r.Time = o.Time.Format(naiveTimeLayout)
		} else {
			r.Time = o.Time.Format(time.RFC3339)
		}
	case TimeModeSubannual:
		year := o.Year
		r.Year = &year
		r.Subannual = o.Subannual
	default:
		year := o.Year
		r.Year = &year
	}
	return r
}

func mustMarshal(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

// Package diagnostics carries structured validation events from the
// validation stages to whoever owns the run: a logger, a metrics counter or a
// report being assembled for the submitter.
package diagnostics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Severity classifies an event.
type Severity string

const (
	// SeverityError marks a hard violation: the submission is rejected or its
	// rows are removed.
	SeverityError Severity = "error"
	// SeverityWarning marks a value that was corrected to a default.
	SeverityWarning Severity = "warning"
	// SeverityInfo marks a silent normalization, e.g. an injected default.
	SeverityInfo Severity = "info"
)

// Event is one diagnostic emitted by a validation stage.
type Event struct {
	Severity   Severity `json:"severity"`
	Dimension  string   `json:"dimension"`
	Detail     string   `json:"detail"`
	Values     []string `json:"values,omitempty"`
	Resolution string   `json:"resolution,omitempty"`
}

// Sink receives diagnostic events.
type Sink interface {
	Record(Event)
}

// Discard drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Record(Event) {}

// Recorder keeps every event in arrival order. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Filter returns the recorded events of one severity.
func (r *Recorder) Filter(sev Severity) []Event {
	var out []Event
	for _, ev := range r.Events() {
		if ev.Severity == sev {
			out = append(out, ev)
		}
	}
	return out
}

// logSink writes events to a structured logger.
type logSink struct {
	logger *slog.Logger
}

// NewLogSink returns a Sink that logs each event at the level matching its
// severity.
func NewLogSink(logger *slog.Logger) Sink {
	return logSink{logger: logger}
}

func (s logSink) Record(ev Event) {
	level := slog.LevelInfo
	switch ev.Severity {
	case SeverityError:
		level = slog.LevelError
	case SeverityWarning:
		level = slog.LevelWarn
	}
	attrs := []any{"dimension", ev.Dimension}
	if len(ev.Values) > 0 {
		attrs = append(attrs, "values", ev.Values)
	}
	if ev.Resolution != "" {
		attrs = append(attrs, "resolution", ev.Resolution)
	}
	s.logger.Log(context.Background(), level, ev.Detail, attrs...)
}

// counterSink increments a counter vector labelled by severity and dimension.
type counterSink struct {
	vec *prometheus.CounterVec
}

// NewCounterSink returns a Sink counting events on vec, which must have the
// labels "severity" and "dimension".
func NewCounterSink(vec *prometheus.CounterVec) Sink {
	return counterSink{vec: vec}
}

func (s counterSink) Record(ev Event) {
	s.vec.WithLabelValues(string(ev.Severity), ev.Dimension).Inc()
}

type multi []Sink

// Multi fans every event out to all sinks. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	out := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multi) Record(ev Event) {
	for _, s := range m {
		s.Record(ev)
	}
}

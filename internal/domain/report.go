package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iiasa/ariadne-intern-workflow/internal/diagnostics"
)

// RawSubmission is an unprocessed message from the source topic.
type RawSubmission struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// Status is the outcome of a validation run.
type Status string

const (
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Report describes a finished validation run. Submission holds the
// normalized submission and is empty when it was rejected.
type Report struct {
	ID          string              `json:"id"`
	Profile     string              `json:"profile"`
	Status      Status              `json:"status"`
	Error       string              `json:"error,omitempty"`
	TimeMode    string              `json:"time_mode"`
	Rows        int                 `json:"rows"`
	Diagnostics []diagnostics.Event `json:"diagnostics"`
	Submission  json.RawMessage     `json:"submission,omitempty"`
	ProcessedAt time.Time           `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeReport marshals a report into an OutputEvent keyed by submission ID.
func SerializeReport(r Report) (OutputEvent, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize report: %w", err)
	}
	return OutputEvent{
		Key:   []byte(r.ID),
		Value: data,
		Headers: map[string]string{
			"status":       string(r.Status),
			"profile":      r.Profile,
			"processed_at": r.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}

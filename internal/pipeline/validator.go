package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iiasa/ariadne-intern-workflow/internal/diagnostics"
	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
	"github.com/iiasa/ariadne-intern-workflow/internal/observability"
	"github.com/iiasa/ariadne-intern-workflow/internal/validation"
)

// ProfileHeader is the message header that selects a validation profile.
const ProfileHeader = "profile"

// ErrMalformedSubmission wraps payloads that cannot be decoded.
var ErrMalformedSubmission = errors.New("malformed submission")

// ProfileResolver looks up validation profiles by name. An empty name selects
// the default profile.
type ProfileResolver interface {
	Resolve(name string) (validation.Profile, error)
}

// SubmissionValidator implements Transformer by running a validation profile
// over each submission and reporting the outcome.
type SubmissionValidator struct {
	profiles ProfileResolver
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewValidator creates a SubmissionValidator.
func NewValidator(profiles ProfileResolver, logger *slog.Logger, metrics *observability.Metrics) *SubmissionValidator {
	return &SubmissionValidator{profiles: profiles, logger: logger, metrics: metrics}
}

// Transform validates the message against the profile named by its header,
// the submission envelope or the default, in that order. Rejected submissions
// still produce a report; only malformed payloads return an error.
func (v *SubmissionValidator) Transform(ctx context.Context, raw domain.RawSubmission) (domain.OutputEvent, error) {
	report, err := v.Validate(ctx, raw.Headers[ProfileHeader], raw.Value)
	if errors.Is(err, ErrMalformedSubmission) || ctx.Err() != nil {
		return domain.OutputEvent{}, err
	}
	if err != nil {
		v.logger.Warn("profile resolution failed", "error", err, "submission_id", report.ID)
	}
	return domain.SerializeReport(report)
}

// Validate decodes payload and runs the selected profile over it. The
// profile argument takes precedence over the profile named in the payload.
// A malformed payload returns an error wrapping ErrMalformedSubmission and an
// empty report. An unresolvable profile returns the resolution error together
// with a rejected report describing it.
func (v *SubmissionValidator) Validate(ctx context.Context, profile string, payload []byte) (domain.Report, error) {
	if err := ctx.Err(); err != nil {
		return domain.Report{}, err
	}

	sub, requested, err := domain.DecodeSubmission(payload)
	if err != nil {
		v.metrics.DecodeErrors.Inc()
		return domain.Report{}, fmt.Errorf("%w: %w", ErrMalformedSubmission, err)
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if profile == "" {
		profile = requested
	}

	p, err := v.profiles.Resolve(profile)
	if err != nil {
		// Unresolved names share one label value to bound cardinality.
		v.metrics.Outcomes.WithLabelValues("unresolved", string(domain.StatusRejected)).Inc()
		return v.unresolved(sub, profile, err), err
	}

	logger := v.logger.With("submission_id", sub.ID, "profile", p.Name)
	rec := &diagnostics.Recorder{}
	sink := diagnostics.Multi(rec, diagnostics.NewLogSink(logger), diagnostics.NewCounterSink(v.metrics.Diagnostics))

	start := time.Now()
	status, runErr := p.Run(sub, sink)
	v.metrics.ValidationDuration.WithLabelValues(p.Name).Observe(time.Since(start).Seconds())
	v.metrics.Outcomes.WithLabelValues(p.Name, string(status)).Inc()

	report := domain.Report{
		ID:          sub.ID,
		Profile:     p.Name,
		Status:      status,
		TimeMode:    sub.TimeMode().String(),
		Rows:        sub.Len(),
		Diagnostics: events(rec),
		ProcessedAt: domain.Now().UTC(),
	}
	if runErr != nil {
		report.Error = runErr.Error()
	}
	if status == domain.StatusAccepted {
		data, err := domain.EncodeSubmission(sub)
		if err != nil {
			return domain.Report{}, err
		}
		report.Submission = data
	}

	logger.Info("submission validated", "status", status, "rows", report.Rows, "diagnostics", len(report.Diagnostics))
	return report, nil
}

func (v *SubmissionValidator) unresolved(sub *domain.Submission, profile string, err error) domain.Report {
	return domain.Report{
		ID:       sub.ID,
		Profile:  profile,
		Status:   domain.StatusRejected,
		Error:    err.Error(),
		TimeMode: sub.TimeMode().String(),
		Rows:     sub.Len(),
		Diagnostics: []diagnostics.Event{{
			Severity:   diagnostics.SeverityError,
			Dimension:  "profile",
			Detail:     err.Error(),
			Values:     []string{profile},
			Resolution: "submission rejected",
		}},
		ProcessedAt: domain.Now().UTC(),
	}
}

func events(rec *diagnostics.Recorder) []diagnostics.Event {
	out := rec.Events()
	if out == nil {
		return []diagnostics.Event{}
	}
	return out
}

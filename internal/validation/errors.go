package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iiasa/ariadne-intern-workflow/internal/domain"
)

// ErrSchemaViolation matches every *SchemaViolation via errors.Is.
var ErrSchemaViolation = errors.New("schema violation")

// Time format failure kinds. A *TimeFormatError matches its kind via errors.Is.
var (
	ErrInvalidTimeslice = errors.New("invalid subannual timeslice")
	ErrMissingTimezone  = errors.New("missing timezone")
	ErrInvalidTimezone  = errors.New("invalid timezone")
)

// ViolationKind separates unknown codes from known variables reported in the
// wrong unit.
type ViolationKind string

const (
	KindUnknown     ViolationKind = "unknown"
	KindIllegalUnit ViolationKind = "illegal-unit"
)

// Offender is one offending value of a SchemaViolation. Found and Expected
// are set for unit violations only.
type Offender struct {
	Value    string
	Found    string
	Expected []string
}

// SchemaViolation lists every value of one dimension that is not allowed by
// the codelist.
type SchemaViolation struct {
	Dimension domain.Dimension
	Kind      ViolationKind
	Offenders []Offender
}

func (v *SchemaViolation) Error() string {
	var b strings.Builder
	switch v.Kind {
	case KindIllegalUnit:
		fmt.Fprintf(&b, "The following %s(s) are reported in the wrong unit:", v.Dimension)
		for _, o := range v.Offenders {
			fmt.Fprintf(&b, "\n  - '%s' - found: '%s', expected: %s", o.Value, o.Found, quoteAll(o.Expected))
		}
	default:
		fmt.Fprintf(&b, "The following %s(s) are not defined in the codelist:", v.Dimension)
		for _, o := range v.Offenders {
			fmt.Fprintf(&b, "\n  - '%s'", o.Value)
		}
	}
	return b.String()
}

func (v *SchemaViolation) Is(target error) bool { return target == ErrSchemaViolation }

// Values returns the offending values in order.
func (v *SchemaViolation) Values() []string {
	out := make([]string, len(v.Offenders))
	for i, o := range v.Offenders {
		out[i] = o.Value
	}
	return out
}

// SchemaViolations aggregates the violations of one validation run.
type SchemaViolations []*SchemaViolation

func (vs SchemaViolations) Error() string {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "\n")
}

func (vs SchemaViolations) Unwrap() []error {
	errs := make([]error, len(vs))
	for i, v := range vs {
		errs[i] = v
	}
	return errs
}

// Find returns the violation of dim and kind, or nil.
func (vs SchemaViolations) Find(dim domain.Dimension, kind ViolationKind) *SchemaViolation {
	for _, v := range vs {
		if v.Dimension == dim && v.Kind == kind {
			return v
		}
	}
	return nil
}

// TimeFormatError reports a subannual label that is not a valid timeslice.
type TimeFormatError struct {
	Label string
	Kind  error
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("%s: %s", capitalize(e.Kind.Error()), e.Label)
}

func (e *TimeFormatError) Unwrap() error { return e.Kind }

// TimeFormatErrors aggregates every failing label of one submission.
type TimeFormatErrors []*TimeFormatError

func (es TimeFormatErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

func (es TimeFormatErrors) Unwrap() []error {
	errs := make([]error, len(es))
	for i, e := range es {
		errs[i] = e
	}
	return errs
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

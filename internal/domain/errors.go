package domain

import (
	"errors"
	"fmt"
)

// Stage identifies which upstream call was in flight when a failure occurred.
// The adapter making the call sets it before the request leaves the process;
// it is never recovered from error text or URL substrings.
type Stage string

const (
	StageAcquire Stage = "acquire"
	StagePredict Stage = "predict2"
)

// Kind is the closed failure taxonomy every run error maps onto.
type Kind int

const (
	KindUnclassified Kind = iota
	KindUnavailable
	KindTimeout
	KindUpstream
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "service_unavailable"
	case KindTimeout:
		return "upstream_timeout"
	case KindUpstream:
		return "upstream_error"
	case KindValidation:
		return "validation_error"
	default:
		return "internal_error"
	}
}

// StageError is a classified run failure. Exactly one is produced per failed
// run; the HTTP layer maps Kind to a status code and relays the fields.
type StageError struct {
	Kind       Kind
	Stage      Stage
	Endpoint   string
	StatusCode int // upstream status, KindUpstream only
	Detail     string
	Err        error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Stage, e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Stage, e.Kind, e.Detail)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewUnavailable reports a connection the upstream's endpoint refused.
func NewUnavailable(stage Stage, endpoint string, err error) *StageError {
	return &StageError{
		Kind:     KindUnavailable,
		Stage:    stage,
		Endpoint: endpoint,
		Detail:   fmt.Sprintf("%s service unreachable", stage),
		Err:      err,
	}
}

// NewTimeout reports a call that exceeded its per-stage bound.
func NewTimeout(stage Stage, endpoint string, err error) *StageError {
	return &StageError{
		Kind:     KindTimeout,
		Stage:    stage,
		Endpoint: endpoint,
		Detail:   fmt.Sprintf("%s call exceeded its deadline", stage),
		Err:      err,
	}
}

// NewUpstream reports a completed call the upstream answered with a
// non-success status. The upstream body is relayed as diagnostic detail.
func NewUpstream(stage Stage, endpoint string, statusCode int, body string) *StageError {
	return &StageError{
		Kind:       KindUpstream,
		Stage:      stage,
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Detail:     body,
	}
}

// NewValidation reports a locally raised shape/arity violation.
func NewValidation(detail string) *StageError {
	return &StageError{
		Kind:   KindValidation,
		Stage:  StageAcquire,
		Detail: detail,
	}
}

// Classify returns err as a StageError, wrapping anything unrecognized as
// KindUnclassified tagged with the stage that was in flight.
func Classify(stage Stage, err error) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}
	return &StageError{
		Kind:   KindUnclassified,
		Stage:  stage,
		Detail: err.Error(),
		Err:    err,
	}
}

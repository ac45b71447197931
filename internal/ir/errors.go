package ir

import (
	"errors"
	"fmt"
	"strings"
)

// PlanningError is the single failure kind of the planner. It is raised when
// an operator's preconditions fail and aborts the whole traversal.
//
// A PlanningError carries either a Message, a wrapped Cause, or both.
// Teardown holds failures from closing resources while unwinding; they are
// reported alongside the primary failure and never replace it.
type PlanningError struct {
	// Code identifies the error category.
	Code PlanningErrorCode

	// Message is a human-readable description.
	Message string

	// Op is the rendering of the operator that failed, when known.
	Op string

	// Cause is the underlying error, if any.
	Cause error

	// Teardown collects errors from closing resources after the failure.
	Teardown []error
}

// PlanningErrorCode categorizes planning errors.
type PlanningErrorCode string

const (
	// ErrCodeMalformedRelation indicates a bad header or a ragged tuple.
	ErrCodeMalformedRelation PlanningErrorCode = "MALFORMED_RELATION"

	// ErrCodeMissingField indicates a relation lacks a field an operator keys on.
	ErrCodeMissingField PlanningErrorCode = "MISSING_FIELD"

	// ErrCodeMissingCorrespondence indicates ConvertCube/MergeCubes without a correspondence.
	ErrCodeMissingCorrespondence PlanningErrorCode = "MISSING_CORRESPONDENCE"

	// ErrCodeInvalidPairing indicates positional operands of different lengths.
	ErrCodeInvalidPairing PlanningErrorCode = "INVALID_PAIRING"

	// ErrCodeUnknownLevel indicates a rollup level absent from its hierarchy.
	ErrCodeUnknownLevel PlanningErrorCode = "UNKNOWN_LEVEL"

	// ErrCodeUnsupportedMode indicates a traversal in a mode the variant does not support.
	ErrCodeUnsupportedMode PlanningErrorCode = "UNSUPPORTED_MODE"

	// ErrCodeDepthExceeded indicates a plan deeper than the traversal bound.
	ErrCodeDepthExceeded PlanningErrorCode = "DEPTH_EXCEEDED"

	// ErrCodeInvalidOperator indicates a nil or unknown operator node.
	ErrCodeInvalidOperator PlanningErrorCode = "INVALID_OPERATOR"

	// ErrCodeInvalidRestriction indicates an unparseable restriction value.
	ErrCodeInvalidRestriction PlanningErrorCode = "INVALID_RESTRICTION"

	// ErrCodeSourceFailed indicates the metadata source failed.
	ErrCodeSourceFailed PlanningErrorCode = "SOURCE_FAILED"

	// ErrCodeCancelled indicates the evaluation context ended before the root bundle was produced.
	ErrCodeCancelled PlanningErrorCode = "CANCELLED"

	// ErrCodeTeardownFailed indicates only teardown failed.
	ErrCodeTeardownFailed PlanningErrorCode = "TEARDOWN_FAILED"
)

// Error implements the error interface.
func (e *PlanningError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	switch {
	case e.Message != "" && e.Cause != nil:
		fmt.Fprintf(&b, "%s: %v", e.Message, e.Cause)
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Cause != nil:
		b.WriteString(e.Cause.Error())
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " (op=%s)", e.Op)
	}
	if len(e.Teardown) > 0 {
		msgs := make([]string, len(e.Teardown))
		for i, err := range e.Teardown {
			msgs[i] = err.Error()
		}
		fmt.Fprintf(&b, " [teardown: %s]", strings.Join(msgs, "; "))
	}
	return b.String()
}

// Unwrap exposes the cause and the teardown errors to errors.Is/As.
func (e *PlanningError) Unwrap() []error {
	var errs []error
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return append(errs, e.Teardown...)
}

// NewPlanningError creates a PlanningError with a formatted message.
func NewPlanningError(code PlanningErrorCode, format string, args ...any) *PlanningError {
	return &PlanningError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapPlanningError creates a PlanningError around a causing error.
func WrapPlanningError(code PlanningErrorCode, message string, cause error) *PlanningError {
	return &PlanningError{Code: code, Message: message, Cause: cause}
}

// WithTeardown attaches teardown failures to err.
//
// If err is (or wraps) a PlanningError the failures are appended to it and
// it stays the primary error. Otherwise err is wrapped in a SOURCE_FAILED
// PlanningError. If err is nil the result is a TEARDOWN_FAILED error, or nil
// when there were no failures.
func WithTeardown(err error, teardown ...error) error {
	teardown = compactErrors(teardown)
	if len(teardown) == 0 {
		return err
	}
	if err == nil {
		return &PlanningError{
			Code:    ErrCodeTeardownFailed,
			Message: "closing operator resources",
			Cause:   errors.Join(teardown...),
		}
	}
	var pe *PlanningError
	if errors.As(err, &pe) {
		pe.Teardown = append(pe.Teardown, teardown...)
		return err
	}
	return &PlanningError{Code: ErrCodeSourceFailed, Cause: err, Teardown: teardown}
}

// IsPlanningError returns true if err is or wraps a PlanningError.
func IsPlanningError(err error) bool {
	var pe *PlanningError
	return errors.As(err, &pe)
}

// HasCode returns true if err is or wraps a PlanningError with the code.
func HasCode(err error, code PlanningErrorCode) bool {
	var pe *PlanningError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

func compactErrors(errs []error) []error {
	out := errs[:0:0]
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}

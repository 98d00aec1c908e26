// Package errors provides the structured error types raised by the fitting
// and evaluation engine. Errors carry stack traces via cockroachdb/errors
// and marshal themselves into zerolog events.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ValueError reports an argument whose value is malformed or out of range,
// e.g. a negative polynomial order or an empty point set.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("rbf: %s: %s", e.Op, e.Message)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValueError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("message", e.Message).
		Str("type", "ValueError")
}

// NewValueError creates a ValueError with an attached stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// NewValueErrorf creates a ValueError with a formatted message.
func NewValueErrorf(op, format string, args ...interface{}) error {
	return NewValueError(op, fmt.Sprintf(format, args...))
}

// DimensionError reports training or query inputs whose leading sizes
// disagree, e.g. a weight vector shorter than the point set.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns
}

func (e *DimensionError) Error() string {
	axisName := "columns"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("rbf: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with an attached stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// SingularSystemError reports a damped normal-equations matrix that is not
// invertible to working precision. Damping is the value attempted.
type SingularSystemError struct {
	Op      string
	Damping float64
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("rbf: %s: damped normal equations are singular (damping=%g)", e.Op, e.Damping)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *SingularSystemError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("damping", e.Damping).
		Str("type", "SingularSystemError")
}

// NewSingularSystemError creates a SingularSystemError with an attached
// stack trace.
func NewSingularSystemError(op string, damping float64) error {
	err := &SingularSystemError{Op: op, Damping: damping}
	return errors.WithStack(err)
}

// IllConditionedError reports a generalized cross-validation score that is
// not finite, which happens when the effective degrees of freedom
// M - trace(A*A_ginv) vanish for a nearly interpolating fit.
type IllConditionedError struct {
	Op    string
	Score float64
}

func (e *IllConditionedError) Error() string {
	return fmt.Sprintf("rbf: %s: GCV score is not finite (%v); the fit is too close to exact interpolation", e.Op, e.Score)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *IllConditionedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Float64("score", e.Score).
		Str("type", "IllConditionedError")
}

// NewIllConditionedError creates an IllConditionedError with an attached
// stack trace.
func NewIllConditionedError(op string, score float64) error {
	err := &IllConditionedError{Op: op, Score: score}
	return errors.WithStack(err)
}

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a plain error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Package errors provides error handling and the warning system used across
// the toolkit. Structured error types cover the fatal configuration failures
// (dimension mismatches, invalid parameters, unfitted models), while warning
// types cover recoverable conditions that should reach the user without
// aborting a run (numerical degeneracies, non-convergence).
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// Default handler logs to standard error.
		log.Printf("mlpack-warning: %v\n", w)
	}
	// zerolog sink, initialized lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler installs a library-wide warning handler. It controls how
// recoverable conditions such as DegenerateSoftmaxWarning are surfaced.
//
// Example:
//
//	errors.SetWarningHandler(func(w error) {
//	    // discard warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings through a zerolog-backed sink.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a warning. A configured zerolog sink takes precedence over the
// plain handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Warning types
//
// ===========================================================================

// ConvergenceWarning is emitted when an optimization run terminates without
// meeting its convergence criterion, for example when the iteration budget is
// spent or a line search exhausts its trials.
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s terminated after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to converge after %d iterations. Consider increasing max_iterations or adjusting parameters.", w.Algorithm, w.Iterations)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning creates a new ConvergenceWarning.
func NewConvergenceWarning(algorithm string, iterations int, message string) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Message: message}
}

// DegenerateSoftmaxWarning is emitted when the softmax denominator of one or
// more points underflows to zero during an objective evaluation. The affected
// contributions are skipped; a normalized starting point usually avoids the
// condition entirely.
type DegenerateSoftmaxWarning struct {
	Operation string
	Points    int
}

func (w *DegenerateSoftmaxWarning) Error() string {
	if w.Points == 1 {
		return fmt.Sprintf("%s: denominator of p_i is 0 for 1 point; contribution skipped. Try a normalized starting point.", w.Operation)
	}
	return fmt.Sprintf("%s: denominator of p_i is 0 for %d points; contributions skipped. Try a normalized starting point.", w.Operation, w.Points)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *DegenerateSoftmaxWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Operation).
		Int("points", w.Points).
		Str("type", "DegenerateSoftmaxWarning")
}

// NewDegenerateSoftmaxWarning creates a new DegenerateSoftmaxWarning.
func NewDegenerateSoftmaxWarning(operation string, points int) *DegenerateSoftmaxWarning {
	return &DegenerateSoftmaxWarning{Operation: operation, Points: points}
}

// IgnoredParameterWarning is emitted when a configured option has no effect
// under the current settings, for example an L-BFGS parameter passed to an
// SGD run.
type IgnoredParameterWarning struct {
	Parameter string
	Reason    string
}

func (w *IgnoredParameterWarning) Error() string {
	return fmt.Sprintf("parameter '%s' ignored because %s", w.Parameter, w.Reason)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *IgnoredParameterWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("parameter", w.Parameter).
		Str("reason", w.Reason).
		Str("type", "IgnoredParameterWarning")
}

// NewIgnoredParameterWarning creates a new IgnoredParameterWarning.
func NewIgnoredParameterWarning(parameter, reason string) *IgnoredParameterWarning {
	return &IgnoredParameterWarning{Parameter: parameter, Reason: reason}
}

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// NotFittedError is returned when Transform or a similar method is called on
// a model that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("mlpack: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError is returned when the shape of an input does not match what
// the operation expects.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows/features, 1 for columns/points
}

func (e *DimensionError) Error() string {
	axisName := "points"
	if e.Axis == 0 {
		axisName = "features"
	}
	return fmt.Sprintf("mlpack: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "points"
	if e.Axis == 0 {
		axisName = "features"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError is returned when a configuration parameter fails
// validation before any computation starts.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("mlpack: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError is returned when an argument value is out of range or otherwise
// unusable for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("mlpack: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general error about a model operation.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mlpack: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("mlpack: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// NumericalInstabilityError reports NaN, Inf, or overflow detected during a
// numerical operation.
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("mlpack: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a
// stack trace attached.
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to an error.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an operation receives an empty dataset.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a decomposition fails on a singular
	// matrix.
	ErrSingularMatrix = New("singular matrix")
)

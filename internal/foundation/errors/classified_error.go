package errors

import (
	stderrors "errors"
	"fmt"
	"maps"
)

// ClassifiedError is an error with a category, severity, retry strategy and
// context. Values are immutable once built.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  ErrorContext
}

func (e *ClassifiedError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.category, e.severity, e.message, e.cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity      { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }
func (e *ClassifiedError) Cause() error                 { return e.cause }
func (e *ClassifiedError) Context() ErrorContext        { return e.context }

// WithContext returns a copy of e with key set.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	out := *e
	out.context = maps.Clone(e.context)
	if out.context == nil {
		out.context = ErrorContext{}
	}
	out.context[key] = value
	return &out
}

// Is reports equality on category and message so sentinel values match rebuilt errors.
func (e *ClassifiedError) Is(target error) bool {
	if other, ok := target.(*ClassifiedError); ok {
		return e.category == other.category && e.message == other.message
	}
	return false
}

// CanRetry reports whether a later attempt may succeed without user action.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry == RetryBackoff || e.retry == RetryRateLimit
}

// IsTransient is CanRetry under the name the HTTP client's retry loop uses.
func (e *ClassifiedError) IsTransient() bool { return e.CanRetry() }

// AsClassified returns the first ClassifiedError in the chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory reports whether the first ClassifiedError in the chain has
// category. For joined errors that is the first failure.
func HasCategory(err error, category ErrorCategory) bool {
	classified, ok := AsClassified(err)
	return ok && classified.category == category
}

// HasSeverity reports whether the first ClassifiedError in the chain has
// severity.
func HasSeverity(err error, severity ErrorSeverity) bool {
	classified, ok := AsClassified(err)
	return ok && classified.severity == severity
}

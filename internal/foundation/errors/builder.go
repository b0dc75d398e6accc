package errors

import "maps"

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of category with severity error and no retry.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  ErrorContext{},
	}}
}

// WrapError starts an error of category whose cause is err.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	b := NewError(category, message)
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context[key] = value
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder {
	b.err.severity = SeverityFatal
	return b
}

// Retryable marks the error for retry with backoff.
func (b *ErrorBuilder) Retryable() *ErrorBuilder {
	b.err.retry = RetryBackoff
	return b
}

// RateLimit marks the error for retry after the server's rate-limit window.
func (b *ErrorBuilder) RateLimit() *ErrorBuilder {
	b.err.retry = RetryRateLimit
	return b
}

func (b *ErrorBuilder) Build() *ClassifiedError {
	out := b.err
	out.context = maps.Clone(b.err.context)
	return &out
}

// ConfigError: the configuration or a directive cannot be used as written.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal()
}

func ValidationError(message string) *ErrorBuilder {
	return NewError(CategoryValidation, message)
}

// AuthError: the content API rejected the credentials; retrying cannot help.
func AuthError(message string) *ErrorBuilder {
	b := NewError(CategoryAuth, message)
	b.err.retry = RetryUserAction
	return b
}

func NotFoundError(message string) *ErrorBuilder {
	return NewError(CategoryNotFound, message)
}

// NetworkError: transport failures and 5xx responses, retried with backoff.
func NetworkError(message string) *ErrorBuilder {
	return NewError(CategoryNetwork, message).Retryable()
}

// ContentError: a payload that does not have the expected shape.
func ContentError(message string) *ErrorBuilder {
	return NewError(CategoryContent, message)
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}

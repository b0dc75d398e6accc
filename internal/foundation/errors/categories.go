package errors

// ErrorCategory routes an error to an exit code and a metric label.
type ErrorCategory string

const (
	// User input: the configuration file and directive blocks.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Content API responses.
	CategoryAuth      ErrorCategory = "auth"
	CategoryNotFound  ErrorCategory = "not_found"
	CategoryNetwork   ErrorCategory = "network"
	CategoryRateLimit ErrorCategory = "rate_limit"
	CategoryContent   ErrorCategory = "content"

	// Producing output.
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"

	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // nothing can be bound
	SeverityError   ErrorSeverity = "error"   // one source file or query failed
	SeverityWarning ErrorSeverity = "warning" // logged, the build continues
	SeverityInfo    ErrorSeverity = "info"
)

// RetryStrategy tells the HTTP client whether another attempt can succeed.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryRateLimit  RetryStrategy = "rate_limit"
	RetryUserAction RetryStrategy = "user" // e.g. a revoked access token
)

// ErrorContext holds structured fields logged with an error.
type ErrorContext map[string]any

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok
}

// Package errors classifies the failures of a binding run.
//
// A ClassifiedError carries a category (config, validation, auth, not_found,
// network, rate_limit, content, build, filesystem, internal), a severity, a
// retry strategy and key/value context. The content API client reads the
// retry strategy to decide whether to try again; the CLI adapter maps the
// category to an exit code.
//
//	err := errors.NetworkError("entries request failed").
//		WithContext("space", spaceID).
//		Build()
//
// Domain errors such as validation.RemoteFetchError unwrap to a
// ClassifiedError, so HasCategory works on any error chain, including the
// errors.Join result of a failed build.
package errors

package validation

import (
	"fmt"

	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
)

// ConfigConflictError reports a directive that sets both entry_id and
// entry_template.
type ConfigConflictError struct {
	File string
	err  *errors.ClassifiedError
}

func newConfigConflictError(file string) *ConfigConflictError {
	return &ConfigConflictError{
		File: file,
		err: errors.ConfigError("entry_id and entry_template are mutually exclusive").
			Fatal().
			WithContext("file", file).
			Build(),
	}
}

func (e *ConfigConflictError) Error() string {
	return fmt.Sprintf("%s: entry_id and entry_template are both set; set only one of them", e.File)
}

func (e *ConfigConflictError) Unwrap() error { return e.err }

// MissingCredentialError reports a space id or access token that is set
// neither on the directive nor globally.
type MissingCredentialError struct {
	File  string
	Field string // "space_id" or "access_token"
	err   *errors.ClassifiedError
}

func newMissingCredentialError(file, field string) *MissingCredentialError {
	return &MissingCredentialError{
		File:  file,
		Field: field,
		err: errors.ConfigError("missing content API credential").
			Fatal().
			WithContext("file", file).
			WithContext("field", field).
			Build(),
	}
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("%s: no %s found; set %s in the config file or in the file's directive",
		e.File, humanField(e.Field), e.Field)
}

func (e *MissingCredentialError) Unwrap() error { return e.err }

func humanField(field string) string {
	switch field {
	case "space_id":
		return "space id"
	case "access_token":
		return "access token"
	default:
		return field
	}
}

// EntryNotFoundError reports a single-entry fetch that matched nothing.
type EntryNotFoundError struct {
	File    string
	EntryID string
	err     *errors.ClassifiedError
}

func newEntryNotFoundError(file, entryID string) *EntryNotFoundError {
	return &EntryNotFoundError{
		File:    file,
		EntryID: entryID,
		err: errors.NotFoundError("single entry not found").
			WithContext("file", file).
			WithContext("entry_id", entryID).
			Build(),
	}
}

func (e *EntryNotFoundError) Error() string {
	return fmt.Sprintf("%s: single entry with id %q was not found", e.File, e.EntryID)
}

func (e *EntryNotFoundError) Unwrap() error { return e.err }

// UnresolvedFilenamePatternError reports an entry_filename_pattern that could
// not be resolved for an entry in strict mode.
type UnresolvedFilenamePatternError struct {
	Name    string
	EntryID string
	err     *errors.ClassifiedError
}

func newUnresolvedFilenamePatternError(name, entryID string) *UnresolvedFilenamePatternError {
	return &UnresolvedFilenamePatternError{
		Name:    name,
		EntryID: entryID,
		err: errors.ValidationError("unresolved filename pattern").
			WithContext("file", name).
			WithContext("entry_id", entryID).
			Build(),
	}
}

func (e *UnresolvedFilenamePatternError) Error() string {
	return fmt.Sprintf("entry_filename_pattern for entry %q could not be resolved (%s)", e.EntryID, e.Name)
}

func (e *UnresolvedFilenamePatternError) Unwrap() error { return e.err }

// RemoteFetchError wraps a failed content API call with the source file (or
// common content key) that triggered it. The classified error keeps the
// upstream category so auth, not found and network failures route apart.
type RemoteFetchError struct {
	File      string
	CommonKey string
	err       *errors.ClassifiedError
}

// NewRemoteFetchError wraps cause for the source file name.
func NewRemoteFetchError(file string, cause error) *RemoteFetchError {
	return &RemoteFetchError{File: file, err: wrapFetch(cause).WithContext("file", file).Build()}
}

// NewCommonFetchError wraps cause for a common content key.
func NewCommonFetchError(key string, cause error) *RemoteFetchError {
	return &RemoteFetchError{CommonKey: key, err: wrapFetch(cause).WithContext("common_key", key).Build()}
}

func wrapFetch(cause error) *errors.ErrorBuilder {
	category := errors.CategoryNetwork
	if c, ok := errors.AsClassified(cause); ok {
		category = c.Category()
	}
	return errors.WrapError(cause, category, "content API request failed")
}

func (e *RemoteFetchError) Error() string {
	detail := upstreamMessage(e.err.Cause())
	if e.CommonKey != "" {
		return fmt.Sprintf("could not fetch common content %q: API error response: %s", e.CommonKey, detail)
	}
	return fmt.Sprintf("could not process file %s: API error response: %s", e.File, detail)
}

func (e *RemoteFetchError) Unwrap() error { return e.err }

func upstreamMessage(cause error) string {
	if cause == nil {
		return "unknown error"
	}
	c, ok := errors.AsClassified(cause)
	if !ok {
		return cause.Error()
	}
	msg := c.Message()
	if details, ok := c.Context().GetString("details"); ok && details != "" {
		msg += " " + details
	}
	if c.Cause() != nil {
		msg += ": " + c.Cause().Error()
	}
	return msg
}

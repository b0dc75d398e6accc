package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
)

// Validate checks structural invariants of the configuration. Directive-level
// rules (mutual exclusion, credential resolution) live in the validation package
// because they apply per source file as well.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Source.DirectiveKey) == "" {
		return errors.ConfigError("source.directive_key must not be empty").Build()
	}
	for _, ext := range cfg.Source.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.ConfigError(fmt.Sprintf("source.extensions entry %q must start with '.'", ext)).Build()
		}
	}
	for key, d := range cfg.Common {
		if d == nil {
			return errors.ConfigError(fmt.Sprintf("common.%s has no query", key)).
				WithContext("common_key", key).
				Build()
		}
	}
	if ef := cfg.EntryFiles; ef != nil {
		if strings.TrimSpace(ef.Key) == "" {
			return errors.ConfigError("entry_files.key must name the entry field holding the output path").Build()
		}
		if ef.Query == nil {
			return errors.ConfigError("entry_files.query is required").Build()
		}
	}
	if err := CheckDirectories(cfg.Source.Directory, cfg.Output.Directory); err != nil {
		return err
	}
	if err := validateHTTP(cfg.HTTP); err != nil {
		return err
	}
	if cfg.Cache.Size < 0 {
		return errors.ConfigError("cache.size cannot be negative").Build()
	}
	return nil
}

// CheckDirectories rejects an output directory that is, contains or lies
// inside the source directory. Relative paths are resolved against the
// working directory.
func CheckDirectories(source, output string) error {
	src, err := filepath.Abs(source)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "cannot resolve source.directory").Build()
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "cannot resolve output.directory").Build()
	}
	if within(src, out) || within(out, src) {
		return errors.ConfigError(fmt.Sprintf("output.directory %s overlaps source.directory %s", output, source)).
			WithContext("source", src).
			WithContext("output", out).
			Build()
	}
	return nil
}

// within reports whether path is dir or below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}

func validateHTTP(h HTTPConfig) error {
	if NormalizeRetryBackoff(string(h.RetryBackoff)) == "" {
		return errors.ConfigError(fmt.Sprintf("http.retry_backoff %q is not one of fixed|linear|exponential", h.RetryBackoff)).Build()
	}
	if h.MaxRetries < 0 {
		return errors.ConfigError("http.max_retries cannot be negative").Build()
	}
	for name, raw := range map[string]string{
		"http.timeout":             h.Timeout,
		"http.retry_initial_delay": h.RetryInitialDelay,
		"http.retry_max_delay":     h.RetryMaxDelay,
	} {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, fmt.Sprintf("%s is not a duration", name)).Fatal().Build()
		}
		if d <= 0 {
			return errors.ConfigError(fmt.Sprintf("%s must be positive", name)).Build()
		}
	}
	return nil
}

// TimeoutDuration returns the parsed request timeout (validated on load).
func (h HTTPConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(h.Timeout)
	return d
}

// RetryDelays returns the parsed initial and maximum retry delays.
func (h HTTPConfig) RetryDelays() (initial, maxDelay time.Duration) {
	initial, _ = time.ParseDuration(h.RetryInitialDelay)
	maxDelay, _ = time.ParseDuration(h.RetryMaxDelay)
	return initial, maxDelay
}

package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// CLIErrorAdapter turns a command's error into stderr text and an exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr, exit: os.Exit}
}

// ExitCodeFor returns 0 for nil, the category's code for classified errors
// and 1 otherwise.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	classified, ok := AsClassified(err)
	if !ok {
		return 1
	}
	return exitCodeForCategory(classified.Category())
}

// Exit codes group categories by who has to act: the user's input (2), the
// content API's answer (3-5), or the local output tree (6).
func exitCodeForCategory(category ErrorCategory) int {
	switch category {
	case CategoryConfig, CategoryValidation:
		return 2
	case CategoryAuth:
		return 3
	case CategoryNotFound:
		return 4
	case CategoryNetwork, CategoryRateLimit, CategoryContent:
		return 5
	case CategoryBuild, CategoryFileSystem:
		return 6
	default:
		return 1
	}
}

// FormatError renders err for the terminal, one "Error:" line per joined
// failure. Outside verbose mode the [category:severity] tag is dropped.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		parts := joined.Unwrap()
		lines := make([]string, len(parts))
		for i, e := range parts {
			lines[i] = a.FormatError(e)
		}
		return strings.Join(lines, "\n")
	}

	text := err.Error()
	if classified, ok := AsClassified(err); ok && !a.verbose {
		tag := fmt.Sprintf("[%s:%s] ", classified.Category(), classified.Severity())
		text = strings.Replace(text, tag, "", 1)
	}
	return "Error: " + text
}

// HandleError prints err and exits with its code. nil is a no-op.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	code := a.ExitCodeFor(err)
	a.log(err)
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	a.exit(code)
}

// log records fatal and unclassified errors with their context; everything
// is logged in verbose mode.
func (a *CLIErrorAdapter) log(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	if !a.verbose && classified.Severity() != SeverityFatal {
		return
	}

	attrs := make([]slog.Attr, 0, len(classified.Context())+2)
	attrs = append(attrs, slog.String("category", string(classified.Category())))
	for k, v := range classified.Context() {
		attrs = append(attrs, slog.Any(k, v))
	}
	if classified.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	a.logger.LogAttrs(context.Background(), levelFor(classified.Severity()), classified.Message(), attrs...)
}

func levelFor(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

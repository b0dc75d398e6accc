// Package validation enforces directive invariants before any request is
// issued and checks rendered file names afterwards.
package validation

import (
	stderrors "errors"
	"log/slog"
	"sort"
	"strings"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
)

// Sentinel is rendered in place of a filename pattern value that is absent.
const Sentinel = "__not-available__"

// CommonFile names the pseudo file used when reporting common content errors.
const CommonFile = "common"

// Directive checks the invariants of a single directive.
func Directive(fileName string, d *config.Directive) error {
	if d == nil {
		return nil
	}
	if d.EntryID != "" && d.EntryTemplate != "" {
		return newConfigConflictError(fileName)
	}
	return nil
}

// ResolveCredentials merges the directive's credentials over the global ones
// and fails when no space id or access token remains.
func ResolveCredentials(fileName string, d *config.Directive, cfg *config.Config) (config.Credentials, error) {
	var global config.Credentials
	if cfg != nil {
		global = cfg.Credentials()
	}
	creds := global
	if d != nil {
		creds = d.Credentials(global)
	}

	if creds.SpaceID == "" {
		return config.Credentials{}, newMissingCredentialError(fileName, "space_id")
	}
	if creds.AccessToken == "" {
		return config.Credentials{}, newMissingCredentialError(fileName, "access_token")
	}
	return creds, nil
}

// SingleEntry checks that a single-entry fetch returned an entry.
func SingleEntry(fileName string, d *config.Directive, entries []contentful.Entry) error {
	if len(entries) == 0 || entries[0] == nil {
		entryID := ""
		if d != nil {
			entryID = d.EntryID
		}
		return newEntryNotFoundError(fileName, entryID)
	}
	return nil
}

// FilenameResolution checks a rendered name for the sentinel. In strict mode
// that is an error; otherwise a warning is logged and the name is kept.
func FilenameResolution(name string, entry contentful.Entry, strict bool, logger *slog.Logger) error {
	if !strings.Contains(name, Sentinel) {
		return nil
	}
	if strict {
		return newUnresolvedFilenamePatternError(name, entry.ID())
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("Filename pattern could not be resolved, keeping fallback name",
		logfields.EntryID(entry.ID()),
		logfields.File(name))
	return nil
}

// Config runs the eager checks on the global configuration: every common
// directive must be valid and common content needs global credentials.
// All problems are returned joined.
func Config(cfg *config.Config) error {
	if cfg == nil || len(cfg.Common) == 0 {
		return nil
	}

	keys := make([]string, 0, len(cfg.Common))
	for key := range cfg.Common {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []error
	for _, key := range keys {
		if err := Directive(CommonFile+"."+key, cfg.Common[key]); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := ResolveCredentials(CommonFile, nil, cfg); err != nil {
		errs = append(errs, err)
	}
	return stderrors.Join(errs...)
}

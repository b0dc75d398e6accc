// Package filename names the files synthesized for fetched entries.
package filename

import (
	"log/slog"
	"path"
	"strings"
	"sync"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/metrics"
	"git.home.luguber.info/inful/contentbinder/internal/validation"
)

// DefaultExtension is used unless the template's extension is requested.
const DefaultExtension = "html"

// Builder computes a complete output name for an entry, replacing the
// default naming algorithm.
type Builder func(entry contentful.Entry, d *config.Directive) string

// Builders maps entry_filename_builder names to builders.
type Builders map[string]Builder

// Options configures a Resolver.
type Options struct {
	Builders Builders
	// Strict turns unresolved pattern placeholders into errors.
	Strict   bool
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// Resolver renders output names. It caches compiled patterns and is safe for
// concurrent use.
type Resolver struct {
	builders Builders
	strict   bool
	logger   *slog.Logger
	recorder metrics.Recorder

	mu       sync.RWMutex
	patterns map[string]*Pattern
}

// NewResolver returns a resolver for opts.
func NewResolver(opts Options) *Resolver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		builders: opts.Builders,
		strict:   opts.Strict,
		logger:   logger,
		recorder: metrics.OrNoop(opts.Recorder),
		patterns: make(map[string]*Pattern),
	}
}

// Resolve returns the output name for entry under directive d.
func (r *Resolver) Resolve(entry contentful.Entry, d *config.Directive) (string, error) {
	if d == nil {
		d = &config.Directive{}
	}

	if d.EntryFilenameBuilder != "" {
		if build, ok := r.builders[d.EntryFilenameBuilder]; ok && build != nil {
			return build(entry, d), nil
		}
		r.logger.Debug("Unknown filename builder, using default naming",
			slog.String("builder", d.EntryFilenameBuilder))
	}

	ext := Extension(d)
	name := entry.ContentTypeID() + "-" + entry.ID()

	if d.EntryFilenamePattern != "" {
		p, err := r.compile(d.EntryFilenamePattern)
		if err != nil {
			return "", err
		}
		name = p.Render(entry)
		if strings.Contains(name, validation.Sentinel) {
			r.recorder.IncUnresolvedFilename()
		}
		if err := validation.FilenameResolution(name, entry, r.strict, r.logger); err != nil {
			return "", err
		}
	}

	if d.CreatePermalinks {
		return name + "/index." + ext, nil
	}
	return name + "." + ext, nil
}

// Extension returns the extension of the entry template's last path segment
// when use_template_extension is set, else DefaultExtension.
func Extension(d *config.Directive) string {
	if d == nil || !d.UseTemplateExtension {
		return DefaultExtension
	}
	base := path.Base(d.EntryTemplate)
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return DefaultExtension
	}
	return base[i+1:]
}

func (r *Resolver) compile(pattern string) (*Pattern, error) {
	r.mu.RLock()
	p, ok := r.patterns[pattern]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := Compile(pattern)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid entry_filename_pattern").
			WithContext("pattern", pattern).
			Build()
	}

	r.mu.Lock()
	r.patterns[pattern] = p
	r.mu.Unlock()
	return p, nil
}

// Cached reports how many compiled patterns the resolver holds.
func (r *Resolver) Cached() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

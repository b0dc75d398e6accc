// Package synth turns fetched entries into file records.
package synth

import (
	"fmt"
	"log/slog"
	"maps"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/filename"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
	"git.home.luguber.info/inful/contentbinder/internal/metrics"
	"git.home.luguber.info/inful/contentbinder/internal/site"
	"git.home.luguber.info/inful/contentbinder/internal/validation"
)

// Options configures a Synthesizer.
type Options struct {
	Resolver *filename.Resolver
	// Metadata is merged into every synthesized file.
	Metadata map[string]any
	Logger   *slog.Logger
	Recorder metrics.Recorder
}

// Synthesizer builds the file contribution of one source file. It holds no
// per-build state and is safe for concurrent use.
type Synthesizer struct {
	resolver *filename.Resolver
	metadata map[string]any
	logger   *slog.Logger
	recorder metrics.Recorder
}

// New returns a Synthesizer.
func New(opts Options) *Synthesizer {
	s := &Synthesizer{
		resolver: opts.Resolver,
		metadata: opts.Metadata,
		logger:   opts.Logger,
		recorder: metrics.OrNoop(opts.Recorder),
	}
	if s.resolver == nil {
		s.resolver = filename.NewResolver(filename.Options{Logger: opts.Logger, Recorder: opts.Recorder})
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Synthesize returns the files produced for source: a copy of source carrying
// the fetched data under its own name, plus one file per entry when the
// directive names an entry template. source itself is not modified.
func (s *Synthesizer) Synthesize(source *site.File, entries []contentful.Entry) (site.Files, error) {
	d := source.Directive
	if d == nil {
		d = &config.Directive{}
	}

	bound := *source
	bound.Meta = maps.Clone(source.Meta)

	if d.SingleEntry() {
		if err := validation.SingleEntry(source.FileName, d, entries); err != nil {
			return nil, err
		}
		bound.Data = entries[0]
	} else {
		bound.Data = Bucket(entries)
	}

	out := site.Files{source.FileName: &bound}
	if d.EntryTemplate == "" || d.SingleEntry() {
		return out, nil
	}

	for _, entry := range entries {
		name, err := s.resolver.Resolve(entry, d)
		if err != nil {
			return nil, err
		}
		if _, taken := out[name]; taken {
			s.collision(name, source.FileName, entry)
		}
		out[name] = s.entryFile(name, source.FileName, entry, d)
	}
	s.recorder.AddSynthesizedFiles(len(entries))
	return out, nil
}

func (s *Synthesizer) entryFile(name, parent string, entry contentful.Entry, d *config.Directive) *site.File {
	contentType := d.ContentType
	if !d.HasContentType() {
		contentType = entry.ContentTypeID()
	}
	return &site.File{
		Contents:       []byte{},
		Data:           entry,
		ID:             entry.ID(),
		ContentType:    contentType,
		Layout:         d.EntryTemplate,
		FileName:       name,
		ParentFileName: parent,
		Meta:           maps.Clone(s.metadata),
	}
}

func (s *Synthesizer) collision(name, parent string, entry contentful.Entry) {
	s.recorder.IncFilenameCollision()
	s.logger.Warn("Output file name already taken, overwriting",
		logfields.File(name),
		logfields.ParentFile(parent),
		logfields.EntryID(entry.ID()))
}

// Bucket groups entries by content type, keeping fetch order within a type.
func Bucket(entries []contentful.Entry) *site.Collection {
	c := &site.Collection{
		Entries:         append([]contentful.Entry(nil), entries...),
		ContentTypesMap: make(map[string][]contentful.Entry),
	}
	for _, e := range entries {
		ct := e.ContentTypeID()
		c.ContentTypesMap[ct] = append(c.ContentTypesMap[ct], e)
	}
	return c
}

// FromEntries creates one file per entry for an entry_files configuration.
// The output path comes from the entry field named by cfg.Key.
func (s *Synthesizer) FromEntries(entries []contentful.Entry, cfg *config.EntryFilesConfig) (site.Files, error) {
	out := site.Files{}
	for _, entry := range entries {
		key, _ := entry.Fields()[cfg.Key].(string)
		if key == "" {
			return nil, errors.ContentError(fmt.Sprintf("entry %q has no %s field", entry.ID(), cfg.Key)).
				WithContext("entry_id", entry.ID()).
				Build()
		}
		name := key + "." + cfg.Extension

		layout, _ := entry.Fields()["layout"].(string)
		body, _ := entry.Fields()["contents"].(string)

		if _, taken := out[name]; taken {
			s.collision(name, "", entry)
		}
		out[name] = &site.File{
			Contents:    []byte(body),
			Data:        entry,
			ID:          entry.ID(),
			ContentType: entry.ContentTypeID(),
			Layout:      layout,
			FileName:    name,
			Meta:        maps.Clone(s.metadata),
		}
	}
	s.recorder.AddSynthesizedFiles(len(entries))
	return out, nil
}

// Package processor binds a file set to remote content: it validates every
// directive, fetches entries per source file concurrently, synthesizes the
// resulting files and attaches common content.
package processor

import (
	"context"
	stderrors "errors"
	"log/slog"
	"maps"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/contentbinder/internal/common"
	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/filename"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
	"git.home.luguber.info/inful/contentbinder/internal/metrics"
	"git.home.luguber.info/inful/contentbinder/internal/observability"
	"git.home.luguber.info/inful/contentbinder/internal/query"
	"git.home.luguber.info/inful/contentbinder/internal/site"
	"git.home.luguber.info/inful/contentbinder/internal/synth"
	"git.home.luguber.info/inful/contentbinder/internal/validation"
)

// ClientSource hands out content API clients; *registry.Registry satisfies it.
type ClientSource interface {
	Get(creds config.Credentials) (contentful.Client, error)
}

// Options configures a Processor.
type Options struct {
	Config     *config.Config
	Clients    ClientSource
	Transforms query.Transforms
	Builders   filename.Builders
	// Concurrency bounds the number of source files fetched at once; 0 means
	// no limit.
	Concurrency int
	Recorder    metrics.Recorder
	Logger      *slog.Logger
}

// Processor runs builds. One Processor (and its client registry) serves a
// build session; it is safe to call Process repeatedly.
type Processor struct {
	cfg         *config.Config
	clients     ClientSource
	transforms  query.Transforms
	resolver    *filename.Resolver
	concurrency int
	recorder    metrics.Recorder
	logger      *slog.Logger
}

// New returns a Processor. Config and Clients are required.
func New(opts Options) (*Processor, error) {
	if opts.Config == nil {
		return nil, errors.ConfigError("processor requires a configuration").Fatal().Build()
	}
	if opts.Clients == nil {
		return nil, errors.InternalError("processor requires a client source").Build()
	}
	p := &Processor{
		cfg:         opts.Config,
		clients:     opts.Clients,
		transforms:  opts.Transforms,
		concurrency: opts.Concurrency,
		recorder:    metrics.OrNoop(opts.Recorder),
		logger:      opts.Logger,
	}
	if p.transforms == nil {
		p.transforms = query.Builtins(nil)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.resolver = filename.NewResolver(filename.Options{
		Builders: opts.Builders,
		Strict:   opts.Config.ThrowOnUnresolvedFilename,
		Logger:   p.logger,
		Recorder: p.recorder,
	})
	return p, nil
}

// entryFilesSource names the entry_files query in errors and logs.
const entryFilesSource = "entry_files"

type job struct {
	file  *site.File
	creds config.Credentials
}

// Process binds files in place; files must not be nil. metadata is merged
// over the configured metadata into every synthesized file.
//
// Every pipeline runs to completion. If any fails, all failures are returned
// joined and files is not modified. Contributions are merged in sorted
// source-name order so filename collisions resolve deterministically.
func (p *Processor) Process(ctx context.Context, files site.Files, metadata map[string]any) (err error) {
	start := time.Now()
	ctx = observability.WithBuildID(ctx, uuid.NewString())
	logger := observability.Logger(ctx, p.logger)

	defer func() {
		p.recorder.ObserveBuildDuration(time.Since(start))
		switch {
		case err == nil:
			p.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		case ctx.Err() != nil:
			p.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
		default:
			p.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		}
	}()

	if files == nil {
		return errors.InternalError("process requires a non-nil file set").Build()
	}
	jobs, err := p.validate(files)
	if err != nil {
		logger.Error("Directive validation failed", logfields.Error(err))
		return err
	}

	s := synth.New(synth.Options{
		Resolver: p.resolver,
		Metadata: p.mergeMetadata(metadata),
		Logger:   logger,
		Recorder: p.recorder,
	})

	var contributions []site.Files
	if len(files) == 0 && p.cfg.EntryFiles != nil {
		out, err := p.entryFiles(ctx, s)
		if err != nil {
			return err
		}
		contributions = append(contributions, out)
	} else {
		contributions, err = p.run(ctx, s, jobs)
		if err != nil {
			logger.Error("Build failed", logfields.Error(err), logfields.Duration(time.Since(start)))
			return err
		}
	}

	next := p.merge(files, contributions, logger)

	// Only bound and synthesized files carry common content.
	if out := produced(contributions); len(out) > 0 {
		merger := common.New(common.Options{
			Directives:  p.cfg.Common,
			Credentials: p.cfg.Credentials(),
			Clients:     p.clients,
			Transforms:  p.transforms,
			Recorder:    p.recorder,
			Logger:      logger,
		})
		if err := merger.Merge(observability.WithStage(ctx, "common"), out); err != nil {
			logger.Error("Common content failed", logfields.Error(err))
			return err
		}
	}

	maps.Copy(files, next)
	logger.Info("Build finished",
		logfields.Count(len(files)),
		slog.Int("sources", len(jobs)),
		logfields.Duration(time.Since(start)))
	return nil
}

// Validate runs the checks Process starts with, without any requests. It
// returns the number of files that carry a directive.
func (p *Processor) Validate(files site.Files) (int, error) {
	jobs, err := p.validate(files)
	return len(jobs), err
}

// validate checks the configuration and every directive before any request
// is made, returning the pipelines to run in source-name order.
func (p *Processor) validate(files site.Files) ([]job, error) {
	var errs []error
	if err := validation.Config(p.cfg); err != nil {
		errs = append(errs, err)
	}

	var jobs []job
	for _, name := range files.Names() {
		f := files[name]
		if f.Directive == nil {
			continue
		}
		if err := validation.Directive(name, f.Directive); err != nil {
			errs = append(errs, err)
			continue
		}
		creds, err := validation.ResolveCredentials(name, f.Directive, p.cfg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		jobs = append(jobs, job{file: f, creds: creds})
	}
	if len(errs) > 0 {
		return nil, stderrors.Join(errs...)
	}
	return jobs, nil
}

func (p *Processor) run(ctx context.Context, s *synth.Synthesizer, jobs []job) ([]site.Files, error) {
	results := make([]site.Files, len(jobs))
	errs := make([]error, len(jobs))

	var g errgroup.Group
	if p.concurrency > 0 {
		g.SetLimit(p.concurrency)
	}
	for i, j := range jobs {
		g.Go(func() error {
			results[i], errs[i] = p.processFile(ctx, s, j)
			return nil
		})
	}
	_ = g.Wait()

	if err := stderrors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Processor) processFile(ctx context.Context, s *synth.Synthesizer, j job) (site.Files, error) {
	name := j.file.FileName
	ctx = observability.WithFile(ctx, name)
	logger := observability.Logger(ctx, p.logger)

	entries, err := p.fetch(ctx, metrics.FetchKindFile, j.creds, j.file.Directive, logger)
	if err != nil {
		return nil, validation.NewRemoteFetchError(name, err)
	}

	out, err := s.Synthesize(j.file, entries)
	if err != nil {
		logger.Warn("Synthesis failed", logfields.Error(err))
		return nil, err
	}
	logger.Debug("Bound source file", logfields.Count(len(out)))
	return out, nil
}

func (p *Processor) fetch(ctx context.Context, kind metrics.FetchKind, creds config.Credentials, d *config.Directive, logger *slog.Logger) ([]contentful.Entry, error) {
	client, err := p.clients.Get(creds)
	if err != nil {
		return nil, err
	}

	q := query.Build(d, p.transforms)
	logger.Debug("Querying entries", logfields.Space(creds.SpaceID), slog.String("query", q.Key()))

	start := time.Now()
	col, err := client.Entries(ctx, q)
	elapsed := time.Since(start)
	p.recorder.ObserveFetchDuration(kind, elapsed)
	if err != nil {
		result := metrics.ResultFailed
		if errors.HasCategory(err, errors.CategoryNotFound) {
			result = metrics.ResultNotFound
		}
		p.recorder.IncFetchResult(kind, result)
		return nil, err
	}
	p.recorder.IncFetchResult(kind, metrics.ResultSuccess)
	logger.Debug("Fetched entries",
		logfields.Space(creds.SpaceID),
		logfields.Count(len(col.Items)),
		logfields.Duration(elapsed))
	return col.Items, nil
}

func (p *Processor) entryFiles(ctx context.Context, s *synth.Synthesizer) (site.Files, error) {
	ef := p.cfg.EntryFiles
	creds, err := validation.ResolveCredentials(entryFilesSource, ef.Query, p.cfg)
	if err != nil {
		return nil, err
	}
	if err := validation.Directive(entryFilesSource, ef.Query); err != nil {
		return nil, err
	}
	logger := observability.Logger(observability.WithStage(ctx, "entry_files"), p.logger)
	entries, err := p.fetch(ctx, metrics.FetchKindFile, creds, ef.Query, logger)
	if err != nil {
		return nil, validation.NewRemoteFetchError(entryFilesSource, err)
	}
	return s.FromEntries(entries, ef)
}

// merge overlays contributions onto a copy of files. A name produced by more
// than one source file is a collision; the later source wins.
func (p *Processor) merge(files site.Files, contributions []site.Files, logger *slog.Logger) site.Files {
	next := maps.Clone(files)
	if next == nil {
		next = site.Files{}
	}
	owner := make(map[string]string)
	for _, contrib := range contributions {
		for _, name := range contrib.Names() {
			f := contrib[name]
			src := f.ParentFileName
			if src == "" {
				src = f.FileName
			}
			if prev, ok := owner[name]; ok && prev != src {
				p.recorder.IncFilenameCollision()
				logger.Warn("Output file produced by more than one source, overwriting",
					logfields.File(name),
					logfields.ParentFile(src),
					slog.String("previous_parent_file", prev))
			}
			owner[name] = src
			next[name] = f
		}
	}
	return next
}

// produced flattens the pipeline outputs into one set.
func produced(contributions []site.Files) site.Files {
	out := site.Files{}
	for _, contrib := range contributions {
		maps.Copy(out, contrib)
	}
	return out
}

func (p *Processor) mergeMetadata(metadata map[string]any) map[string]any {
	if len(p.cfg.Metadata) == 0 && len(metadata) == 0 {
		return nil
	}
	out := maps.Clone(p.cfg.Metadata)
	if out == nil {
		out = map[string]any{}
	}
	maps.Copy(out, metadata)
	return out
}

// Sources returns the names of files carrying a directive, sorted.
func Sources(files site.Files) []string {
	var names []string
	for name, f := range files {
		if f.Directive != nil {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Package common fetches the configured common content once per build and
// attaches it to the files a build produced.
package common

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
	"git.home.luguber.info/inful/contentbinder/internal/metrics"
	"git.home.luguber.info/inful/contentbinder/internal/query"
	"git.home.luguber.info/inful/contentbinder/internal/site"
	"git.home.luguber.info/inful/contentbinder/internal/validation"
)

// ClientSource hands out content API clients.
type ClientSource interface {
	Get(creds config.Credentials) (contentful.Client, error)
}

// Options configures a Merger.
type Options struct {
	Directives  map[string]*config.Directive
	Credentials config.Credentials
	Clients     ClientSource
	Transforms  query.Transforms
	Recorder    metrics.Recorder
	Logger      *slog.Logger
}

// Merger runs the common queries.
type Merger struct {
	opts Options
}

// New returns a Merger.
func New(opts Options) *Merger {
	opts.Recorder = metrics.OrNoop(opts.Recorder)
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Merger{opts: opts}
}

// Fetch runs every common query concurrently with the global credentials and
// returns the results by key. It returns nil when nothing is configured.
func (m *Merger) Fetch(ctx context.Context) (map[string]*contentful.EntryCollection, error) {
	if len(m.opts.Directives) == 0 {
		return nil, nil
	}

	client, err := m.opts.Clients.Get(m.opts.Credentials)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(m.opts.Directives))
	for key := range m.opts.Directives {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var mu sync.Mutex
	results := make(map[string]*contentful.EntryCollection, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			col, err := m.fetch(gctx, client, key)
			if err != nil {
				return err
			}
			mu.Lock()
			results[key] = col
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *Merger) fetch(ctx context.Context, client contentful.Client, key string) (*contentful.EntryCollection, error) {
	q := query.Build(m.opts.Directives[key], m.opts.Transforms)

	start := time.Now()
	col, err := client.Entries(ctx, q)
	elapsed := time.Since(start)
	m.opts.Recorder.ObserveFetchDuration(metrics.FetchKindCommon, elapsed)

	if err != nil {
		result := metrics.ResultFailed
		if errors.HasCategory(err, errors.CategoryNotFound) {
			result = metrics.ResultNotFound
		}
		m.opts.Recorder.IncFetchResult(metrics.FetchKindCommon, result)
		return nil, validation.NewCommonFetchError(key, err)
	}

	m.opts.Recorder.IncFetchResult(metrics.FetchKindCommon, metrics.ResultSuccess)
	m.opts.Logger.Debug("Fetched common content",
		logfields.CommonKey(key),
		logfields.Count(len(col.Items)),
		logfields.Duration(elapsed))
	return col, nil
}

// Merge fetches the common content and attaches the same map to every file.
// Files are left untouched when a query fails or nothing is configured.
func (m *Merger) Merge(ctx context.Context, files site.Files) error {
	common, err := m.Fetch(ctx)
	if err != nil || common == nil {
		return err
	}
	for _, f := range files {
		f.Common = common
	}
	return nil
}

// Package registry hands out one content API client per space for the
// lifetime of a build session.
package registry

import (
	"log/slog"
	"net/http"
	"sync"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
	"git.home.luguber.info/inful/contentbinder/internal/metrics"
	"git.home.luguber.info/inful/contentbinder/internal/retry"
)

// Factory creates a client for a credential set.
type Factory func(creds config.Credentials) (contentful.Client, error)

// Registry memoizes clients by space id. The first credentials seen for a
// space win; later lookups with different tokens, hosts or environments for
// the same space get the cached client. Clients are never evicted.
type Registry struct {
	mu      sync.Mutex
	factory Factory
	clients map[string]contentful.Client
}

// New returns an empty registry backed by factory.
func New(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		clients: make(map[string]contentful.Client),
	}
}

// Get returns the client for creds.SpaceID, creating it on first use.
func (r *Registry) Get(creds config.Credentials) (contentful.Client, error) {
	if creds.SpaceID == "" {
		return nil, errors.ConfigError("cannot create a client without a space id").Fatal().Build()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[creds.SpaceID]; ok {
		return c, nil
	}

	c, err := r.factory(creds)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to create content API client").
			WithContext("space", creds.SpaceID).
			Build()
	}
	r.clients[creds.SpaceID] = c
	return c, nil
}

// Len reports how many clients have been created.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// HTTPFactory builds caching HTTP clients from the ambient HTTP and cache
// settings of cfg.
func HTTPFactory(cfg *config.Config, recorder metrics.Recorder, logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return func(creds config.Credentials) (contentful.Client, error) {
		client, err := contentful.NewHTTPClient(contentful.HTTPOptions{
			SpaceID:     creds.SpaceID,
			AccessToken: creds.AccessToken,
			Host:        creds.Host,
			Environment: creds.Environment,
			HTTPClient:  &http.Client{Timeout: cfg.HTTP.TimeoutDuration()},
			UserAgent:   cfg.HTTP.UserAgent,
			Policy:      retry.FromConfig(cfg.HTTP),
			Recorder:    recorder,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		logger.Debug("Created content API client",
			logfields.Space(creds.SpaceID),
			logfields.Environment(client.Environment()))
		return contentful.NewCachingClient(client, cfg.Cache.Size, recorder)
	}
}

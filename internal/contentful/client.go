package contentful

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/logfields"
	"git.home.luguber.info/inful/contentbinder/internal/metrics"
	"git.home.luguber.info/inful/contentbinder/internal/retry"
)

// Defaults for the delivery API.
const (
	DefaultHost        = "cdn.contentful.com"
	DefaultEnvironment = "master"
)

// Client fetches entries from one space.
type Client interface {
	Entries(ctx context.Context, q Query) (*EntryCollection, error)
}

// HTTPOptions configures an HTTPClient.
type HTTPOptions struct {
	SpaceID     string
	AccessToken string
	Host        string // bare host, or a full base URL such as http://127.0.0.1:8080
	Environment string

	HTTPClient *http.Client
	UserAgent  string
	Policy     retry.Policy
	Recorder   metrics.Recorder
	Logger     *slog.Logger
}

// HTTPClient talks to the Content Delivery REST API.
type HTTPClient struct {
	httpClient  *http.Client
	baseURL     *url.URL
	spaceID     string
	accessToken string
	environment string
	userAgent   string
	policy      retry.Policy
	recorder    metrics.Recorder
	logger      *slog.Logger
}

// NewHTTPClient validates opts and returns a client.
func NewHTTPClient(opts HTTPOptions) (*HTTPClient, error) {
	if opts.SpaceID == "" {
		return nil, errors.ConfigError("content API client requires a space id").Build()
	}
	if opts.AccessToken == "" {
		return nil, errors.ConfigError("content API client requires an access token").
			WithContext("space", opts.SpaceID).
			Build()
	}

	base, err := baseURL(opts.Host)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid content API host").
			Fatal().
			WithContext("host", opts.Host).
			Build()
	}

	c := &HTTPClient{
		httpClient:  opts.HTTPClient,
		baseURL:     base,
		spaceID:     opts.SpaceID,
		accessToken: opts.AccessToken,
		environment: opts.Environment,
		userAgent:   opts.UserAgent,
		policy:      opts.Policy,
		recorder:    metrics.OrNoop(opts.Recorder),
		logger:      opts.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.environment == "" {
		c.environment = DefaultEnvironment
	}
	if c.userAgent == "" {
		c.userAgent = "contentbinder/1.0"
	}
	if c.policy == (retry.Policy{}) {
		c.policy = retry.DefaultPolicy()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

func baseURL(host string) (*url.URL, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", host)
	}
	return u, nil
}

// SpaceID returns the space this client is bound to.
func (c *HTTPClient) SpaceID() string { return c.spaceID }

// Environment returns the environment requests are sent to.
func (c *HTTPClient) Environment() string { return c.environment }

// Entries fetches one page of entries matching q and resolves links against
// the included entries and assets. Transient failures are retried per policy.
func (c *HTTPClient) Entries(ctx context.Context, q Query) (*EntryCollection, error) {
	endpoint := c.entriesURL(q)

	var out *EntryCollection
	err := c.policy.Do(ctx, func(int) error {
		col, err := c.do(ctx, endpoint)
		if err != nil {
			return err
		}
		out = col
		return nil
	}, func(attempt int, err error, wait time.Duration) {
		c.recorder.IncFetchRetry()
		c.logger.Warn("Retrying content API request",
			logfields.Space(c.spaceID),
			logfields.Attempt(attempt),
			slog.Duration("wait", wait),
			logfields.Error(err))
	})
	if err != nil {
		return nil, err
	}

	ResolveLinks(out)
	return out, nil
}

func (c *HTTPClient) entriesURL(q Query) string {
	u := *c.baseURL
	u.Path = path.Join("/", c.baseURL.Path, "spaces", c.spaceID, "environments", c.environment, "entries")
	u.RawQuery = q.Values().Encode()
	return u.String()
}

func (c *HTTPClient) do(ctx context.Context, endpoint string) (*EntryCollection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to create request").
			WithContext("url", endpoint).
			Build()
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("Content API request", logfields.Space(c.spaceID), logfields.URL(endpoint))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNetwork, "content API request failed").
			Retryable().
			WithContext("space", c.spaceID).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp, c.spaceID)
	}

	var col EntryCollection
	if err := json.NewDecoder(resp.Body).Decode(&col); err != nil {
		return nil, errors.WrapError(err, errors.CategoryContent, "failed to decode entries response").
			WithContext("space", c.spaceID).
			Build()
	}
	return &col, nil
}

// APIErrorBody is the error document returned by the delivery API.
type APIErrorBody struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details,omitempty"`
	RequestID string          `json:"requestId,omitempty"`
}

func decodeAPIError(resp *http.Response, spaceID string) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body APIErrorBody
	message := strings.TrimSpace(string(raw))
	if err := json.Unmarshal(raw, &body); err == nil && body.Message != "" {
		message = body.Message
	}
	if message == "" {
		message = resp.Status
	}

	var b *errors.ErrorBuilder
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		b = errors.AuthError(message)
	case resp.StatusCode == http.StatusNotFound:
		b = errors.NotFoundError(message)
	case resp.StatusCode == http.StatusTooManyRequests:
		b = errors.NewError(errors.CategoryRateLimit, message).RateLimit()
		if d, ok := rateLimitReset(resp.Header); ok {
			b = b.WithContext(retry.RetryAfterKey, d)
		}
	case resp.StatusCode >= 500:
		b = errors.NetworkError(message)
	default:
		b = errors.ContentError(message)
	}

	b = b.WithContext("status", resp.StatusCode).WithContext("space", spaceID)
	if body.Sys.ID != "" {
		b = b.WithContext("api_error", body.Sys.ID)
	}
	if len(body.Details) > 0 && string(body.Details) != "null" {
		b = b.WithContext("details", string(body.Details))
	}
	if body.RequestID != "" {
		b = b.WithContext("request_id", body.RequestID)
	}
	return b.Build()
}

// rateLimitReset reads the seconds until the rate-limit window resets.
func rateLimitReset(h http.Header) (time.Duration, bool) {
	for _, key := range []string{"X-Contentful-RateLimit-Reset", "Retry-After"} {
		if v := h.Get(key); v != "" {
			if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second, true
			}
		}
	}
	return 0, false
}

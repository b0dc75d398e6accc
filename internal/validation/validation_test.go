package validation

import (
	"bytes"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
)

func TestDirective_ConflictAlwaysFails(t *testing.T) {
	limit := 5
	directives := []*config.Directive{
		{EntryID: "a", EntryTemplate: "post.html"},
		{EntryID: "a", EntryTemplate: "post.html", ContentType: "post", Limit: &limit},
		{EntryID: "a", EntryTemplate: "x", SpaceID: "s", AccessToken: "t", CreatePermalinks: true},
		{EntryID: "a", EntryTemplate: "x", Filter: map[string]any{"fields.slug": "y"}, EntryFilenamePattern: "${sys.id}"},
	}

	for _, d := range directives {
		err := Directive("posts.md", d)
		require.Error(t, err)

		var conflict *ConfigConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "posts.md", conflict.File)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
		assert.True(t, errors.HasSeverity(err, errors.SeverityFatal))
	}
}

func TestDirective_Valid(t *testing.T) {
	assert.NoError(t, Directive("a.md", nil))
	assert.NoError(t, Directive("a.md", &config.Directive{EntryID: "x"}))
	assert.NoError(t, Directive("a.md", &config.Directive{EntryTemplate: "post.html"}))
}

func TestResolveCredentials(t *testing.T) {
	cfg := &config.Config{SpaceID: "global-space", AccessToken: "global-token", Host: "preview.contentful.com"}

	creds, err := ResolveCredentials("a.md", &config.Directive{SpaceID: "file-space"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, config.Credentials{SpaceID: "file-space", AccessToken: "global-token", Host: "preview.contentful.com"}, creds)

	creds, err = ResolveCredentials("a.md", &config.Directive{}, cfg)
	require.NoError(t, err)
	assert.Equal(t, "global-space", creds.SpaceID)
}

func TestResolveCredentials_Missing(t *testing.T) {
	tests := []struct {
		name  string
		d     *config.Directive
		cfg   *config.Config
		field string
	}{
		{"no space", &config.Directive{AccessToken: "t"}, &config.Config{}, "space_id"},
		{"no token", &config.Directive{SpaceID: "s"}, &config.Config{}, "access_token"},
		{"nothing", nil, nil, "space_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolveCredentials("posts.md", tt.d, tt.cfg)
			var missing *MissingCredentialError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.field, missing.Field)
			assert.Contains(t, err.Error(), "posts.md")
			assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
		})
	}
}

func TestSingleEntry(t *testing.T) {
	d := &config.Directive{EntryID: "missing"}

	err := SingleEntry("post.md", d, nil)
	var notFound *EntryNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing", notFound.EntryID)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	assert.NoError(t, SingleEntry("post.md", d, []contentful.Entry{contentful.NewEntry("x", "post", nil)}))
}

func TestFilenameResolution(t *testing.T) {
	entry := contentful.NewEntry("bar", "post", nil)
	name := "bar/" + Sentinel + "-baz"

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	err := FilenameResolution(name, entry, true, logger)
	var unresolved *UnresolvedFilenamePatternError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "bar", unresolved.EntryID)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	assert.Empty(t, buf.String())

	require.NoError(t, FilenameResolution(name, entry, false, logger))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "entry_id=bar")

	buf.Reset()
	require.NoError(t, FilenameResolution("bar/boing-baz", entry, true, logger))
	assert.Empty(t, buf.String())
}

func TestConfig(t *testing.T) {
	assert.NoError(t, Config(nil))
	assert.NoError(t, Config(&config.Config{}))

	cfg := &config.Config{
		Common: map[string]*config.Directive{
			"nav":    {ContentType: "navigation"},
			"broken": {EntryID: "a", EntryTemplate: "b"},
		},
	}
	err := Config(cfg)
	require.Error(t, err)

	var conflict *ConfigConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "common.broken", conflict.File)

	var missing *MissingCredentialError
	require.ErrorAs(t, err, &missing)

	cfg.SpaceID, cfg.AccessToken = "s", "t"
	delete(cfg.Common, "broken")
	assert.NoError(t, Config(cfg))
}

func TestRemoteFetchError(t *testing.T) {
	upstream := errors.AuthError("The access token you sent could not be found or is invalid.").
		WithContext("status", 401).
		Build()

	err := NewRemoteFetchError("posts.md", upstream)
	assert.Equal(t, "could not process file posts.md: API error response: The access token you sent could not be found or is invalid.", err.Error())
	assert.True(t, errors.HasCategory(err, errors.CategoryAuth))
	assert.ErrorIs(t, err, upstream)

	plain := NewCommonFetchError("nav", stderrors.New("connection refused"))
	assert.Contains(t, plain.Error(), `common content "nav"`)
	assert.Contains(t, plain.Error(), "connection refused")
	assert.True(t, errors.HasCategory(plain, errors.CategoryNetwork))
}

package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
)

func countingFactory(created *[]config.Credentials, mu *sync.Mutex) Factory {
	return func(creds config.Credentials) (contentful.Client, error) {
		mu.Lock()
		*created = append(*created, creds)
		mu.Unlock()
		return contentful.NewFakeClient(), nil
	}
}

func TestRegistry_OneClientPerSpace(t *testing.T) {
	var (
		mu      sync.Mutex
		created []config.Credentials
	)
	r := New(countingFactory(&created, &mu))

	a1, err := r.Get(config.Credentials{SpaceID: "a", AccessToken: "t1"})
	require.NoError(t, err)
	a2, err := r.Get(config.Credentials{SpaceID: "a", AccessToken: "other", Environment: "staging"})
	require.NoError(t, err)
	b, err := r.Get(config.Credentials{SpaceID: "b", AccessToken: "t2"})
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, 2, r.Len())
	require.Len(t, created, 2)
	assert.Equal(t, "t1", created[0].AccessToken, "first credentials for a space win")
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	var (
		mu      sync.Mutex
		created []config.Credentials
	)
	r := New(countingFactory(&created, &mu))

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Get(config.Credentials{SpaceID: "shared", AccessToken: "t"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, created, 1)
}

func TestRegistry_Errors(t *testing.T) {
	r := New(func(config.Credentials) (contentful.Client, error) {
		return nil, assert.AnError
	})

	_, err := r.Get(config.Credentials{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))

	_, err = r.Get(config.Credentials{SpaceID: "a", AccessToken: "t"})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, r.Len(), "failed creations are not cached")
}

func TestHTTPFactory_WrapsCache(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Size = 4

	c, err := HTTPFactory(cfg, nil, nil)(config.Credentials{SpaceID: "a", AccessToken: "t"})
	require.NoError(t, err)
	assert.IsType(t, &contentful.CachingClient{}, c)

	cfg.Cache.Size = 0
	c, err = HTTPFactory(cfg, nil, nil)(config.Credentials{SpaceID: "a", AccessToken: "t"})
	require.NoError(t, err)
	assert.IsType(t, &contentful.HTTPClient{}, c)

	_, err = HTTPFactory(cfg, nil, nil)(config.Credentials{SpaceID: "a"})
	require.Error(t, err)
}

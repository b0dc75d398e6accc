package contentful

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/contentbinder/internal/metrics"
)

// CachingClient memoizes entry collections per encoded query so identical
// directives in one build hit the API once. Concurrent identical queries share
// a single in-flight request. Cached collections are shared and must not be
// mutated by callers.
type CachingClient struct {
	next     Client
	cache    *lru.Cache[string, *EntryCollection]
	group    singleflight.Group
	recorder metrics.Recorder
}

// NewCachingClient wraps next with an LRU of the given size. A size <= 0
// returns next unchanged.
func NewCachingClient(next Client, size int, recorder metrics.Recorder) (Client, error) {
	if size <= 0 {
		return next, nil
	}
	cache, err := lru.New[string, *EntryCollection](size)
	if err != nil {
		return nil, err
	}
	return &CachingClient{next: next, cache: cache, recorder: metrics.OrNoop(recorder)}, nil
}

// Entries implements Client.
func (c *CachingClient) Entries(ctx context.Context, q Query) (*EntryCollection, error) {
	key := q.Key()
	if col, ok := c.cache.Get(key); ok {
		c.recorder.IncCacheLookup(true)
		return col, nil
	}
	c.recorder.IncCacheLookup(false)

	v, err, _ := c.group.Do(key, func() (any, error) {
		col, err := c.next.Entries(ctx, q)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, col)
		return col, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EntryCollection), nil
}

// Len reports the number of cached collections.
func (c *CachingClient) Len() int {
	return c.cache.Len()
}

package contentful

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuery_Values(t *testing.T) {
	q := Query{
		"content_type":      "post",
		"limit":             10,
		"fields.rating[gt]": 4.5,
		"fields.tags[in]":   []any{"go", "cms"},
		"sys.updatedAt[gt]": time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		"include":           int64(2),
		"fields.published":  true,
	}

	v := q.Values()
	assert.Equal(t, "post", v.Get("content_type"))
	assert.Equal(t, "10", v.Get("limit"))
	assert.Equal(t, "4.5", v.Get("fields.rating[gt]"))
	assert.Equal(t, "go,cms", v.Get("fields.tags[in]"))
	assert.Equal(t, "2024-01-02T03:04:05Z", v.Get("sys.updatedAt[gt]"))
	assert.Equal(t, "2", v.Get("include"))
	assert.Equal(t, "true", v.Get("fields.published"))
}

func TestQuery_KeyIsCanonical(t *testing.T) {
	a := Query{"limit": 5, "content_type": "post"}
	b := Query{"content_type": "post", "limit": 5}

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "content_type=post&limit=5", a.Key())
	assert.NotEqual(t, a.Key(), Query{"content_type": "page"}.Key())
}

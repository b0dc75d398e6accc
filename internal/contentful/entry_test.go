package contentful

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntry_Accessors(t *testing.T) {
	e := NewEntry("bar", "foo", map[string]any{
		"title":  "baz",
		"author": map[string]any{"name": "boing"},
		"tags":   []any{"go", "cms"},
	})

	assert.Equal(t, "bar", e.ID())
	assert.Equal(t, "foo", e.ContentTypeID())
	assert.Equal(t, "baz", e.Fields()["title"])
}

func TestEntry_Lookup(t *testing.T) {
	e := NewEntry("bar", "foo", map[string]any{
		"title":  "baz",
		"author": map[string]any{"name": "boing"},
		"tags":   []any{"go", "cms"},
		"empty":  nil,
	})

	tests := []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"sys.id", "bar", true},
		{"fields.author.name", "boing", true},
		{"fields.tags.1", "cms", true},
		{"fields.missing", nil, false},
		{"fields.author.missing.deeper", nil, false},
		{"fields.empty", nil, false},
		{"fields.tags.7", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := e.Lookup(SplitPath(tt.path))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := e.Lookup(nil)
	assert.False(t, ok)
}

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"fields", "author", "name"}, SplitPath(" fields.author .name "))
	assert.Equal(t, []string{"sys", "id"}, SplitPath("sys..id"))
	assert.Empty(t, SplitPath(""))
}

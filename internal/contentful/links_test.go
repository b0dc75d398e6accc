package contentful

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func link(linkType, id string) map[string]any {
	return map[string]any{"sys": map[string]any{"type": "Link", "linkType": linkType, "id": id}}
}

func TestResolveLinks_EntriesAndAssets(t *testing.T) {
	author := NewEntry("author-1", "person", map[string]any{"name": "Lewis"})
	asset := Entry{
		"sys":    map[string]any{"id": "img-1", "type": "Asset"},
		"fields": map[string]any{"file": map[string]any{"url": "//images/rabbit.png"}},
	}
	post := NewEntry("post-1", "post", map[string]any{
		"title":  "Down the Rabbit Hole",
		"author": link("Entry", "author-1"),
		"images": []any{link("Asset", "img-1"), link("Asset", "missing")},
	})

	col := &EntryCollection{
		Items:    []Entry{post},
		Includes: Includes{Entry: []Entry{author}, Asset: []Entry{asset}},
	}
	ResolveLinks(col)

	require.Len(t, col.Items, 1)
	name, ok := col.Items[0].Lookup([]string{"fields", "author", "fields", "name"})
	require.True(t, ok)
	assert.Equal(t, "Lewis", name)

	url, ok := col.Items[0].Lookup([]string{"fields", "images", "0", "fields", "file", "url"})
	require.True(t, ok)
	assert.Equal(t, "//images/rabbit.png", url)

	unresolved, ok := col.Items[0].Lookup([]string{"fields", "images", "1", "sys", "type"})
	require.True(t, ok)
	assert.Equal(t, "Link", unresolved)

	// content type links in sys are not touched
	assert.Equal(t, "post", col.Items[0].ContentTypeID())
}

func TestResolveLinks_CycleIsBroken(t *testing.T) {
	a := NewEntry("a", "node", map[string]any{"next": link("Entry", "b")})
	b := NewEntry("b", "node", map[string]any{"next": link("Entry", "a")})

	col := &EntryCollection{Items: []Entry{a, b}}
	ResolveLinks(col)

	back, ok := col.Items[0].Lookup([]string{"fields", "next", "fields", "next", "sys", "type"})
	require.True(t, ok)
	assert.Equal(t, "Link", back)

	// the original maps were not mutated
	orig, _ := a.Lookup([]string{"fields", "next", "sys", "type"})
	assert.Equal(t, "Link", orig)
}

func TestResolveLinks_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ResolveLinks(nil) })
}

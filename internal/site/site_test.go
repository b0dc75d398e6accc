package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"git.home.luguber.info/inful/contentbinder/internal/frontmatter"
)

func writeSource(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "posts.md", "---\ntitle: Posts\ncontentful:\n  content_type: post\n  entry_template: post.html\n---\n# Posts\n")
	writeSource(t, root, "about/index.html", "<p>About</p>\n")
	writeSource(t, root, "notes.txt", "ignored")
	writeSource(t, root, ".hidden/secret.md", "---\ncontentful:\n  content_type: x\n---\n")

	files, err := Discover(root, "contentful", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"about/index.html", "posts.md"}, files.Names())

	posts := files["posts.md"]
	require.NotNil(t, posts.Directive)
	assert.Equal(t, "post", posts.Directive.ContentType)
	assert.Equal(t, "post.html", posts.Directive.EntryTemplate)
	assert.Equal(t, map[string]any{"title": "Posts"}, posts.Meta)
	assert.Equal(t, "# Posts\n", string(posts.Contents))
	assert.Equal(t, "posts.md", posts.FileName)

	assert.Nil(t, files["about/index.html"].Directive)
}

func TestDiscover_InvalidDirective(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "posts.md", "---\ncontentful:\n  content_tpye: post\n---\n")

	_, err := Discover(root, "contentful", nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
}

func TestFile_FrontMatter(t *testing.T) {
	entry := contentful.NewEntry("a", "post", map[string]any{"title": "A"})
	f := &File{
		Data:           entry,
		ID:             "a",
		ContentType:    "post",
		Layout:         "post.html",
		FileName:       "post-a.html",
		ParentFileName: "posts.md",
		Meta:           map[string]any{"site": "example", "layout": "overridden"},
		Common:         map[string]*contentful.EntryCollection{"nav": {Total: 1, Items: []contentful.Entry{entry}}},
	}

	fm := f.FrontMatter()
	assert.Equal(t, "post.html", fm[KeyLayout])
	assert.Equal(t, "example", fm["site"])
	assert.Equal(t, "posts.md", fm[KeyParentFileName])
	assert.Equal(t, map[string]any(entry), fm[KeyData])
	common := fm[KeyCommon].(map[string]any)
	assert.Equal(t, 1, common["nav"].(map[string]any)["total"])

	source := &File{FileName: "posts.md", Data: &Collection{
		Entries:         []contentful.Entry{entry},
		ContentTypesMap: map[string][]contentful.Entry{"post": {entry}},
	}}
	fm = source.FrontMatter()
	assert.NotContains(t, fm, KeyID)
	data := fm[KeyData].(map[string]any)
	assert.Len(t, data["entries"], 1)
	assert.Contains(t, data["contentTypesMap"], "post")
}

func TestWriter_WritesAndSkipsUnchanged(t *testing.T) {
	out := t.TempDir()
	files := Files{
		"posts.md":            {FileName: "posts.md", Contents: []byte("# Posts\n")},
		"post/hello/index.md": {FileName: "post/hello/index.md", Layout: "post.html", ID: "hello"},
	}
	w := &Writer{Root: out}

	stats, err := w.Write(files)
	require.NoError(t, err)
	assert.Equal(t, WriteStats{Written: 2}, stats)

	content, err := os.ReadFile(filepath.Join(out, "post", "hello", "index.md"))
	require.NoError(t, err)
	doc, err := frontmatter.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "post.html", doc.Fields[KeyLayout])
	assert.NotEmpty(t, doc.Fields[mdfp.FingerprintField])

	stats, err = w.Write(files)
	require.NoError(t, err)
	assert.Equal(t, WriteStats{Unchanged: 2}, stats)

	files["posts.md"].Contents = []byte("# Changed\n")
	stats, err = w.Write(files)
	require.NoError(t, err)
	assert.Equal(t, WriteStats{Written: 1, Unchanged: 1}, stats)
}

func TestWriter_Prune(t *testing.T) {
	out := t.TempDir()
	writeSource(t, out, "stale.md", "old")

	stats, err := (&Writer{Root: out, Prune: true}).Write(Files{"fresh.md": {FileName: "fresh.md"}})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Removed)
	assert.NoFileExists(t, filepath.Join(out, "stale.md"))
	assert.FileExists(t, filepath.Join(out, "fresh.md"))
}

func TestWriter_RejectsEscapingNames(t *testing.T) {
	out := t.TempDir()
	for _, name := range []string{"../evil.md", "/etc/passwd", ""} {
		_, err := (&Writer{Root: out}).Write(Files{name: {}})
		require.Error(t, err, name)
		assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	}
}

func TestFingerprint_IgnoresPreviousFingerprint(t *testing.T) {
	fields := map[string]any{"id": "a"}
	fp1, err := Fingerprint(fields, []byte("body"))
	require.NoError(t, err)

	fields[mdfp.FingerprintField] = "stale"
	fp2, err := Fingerprint(fields, []byte("body"))
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)

	fp3, err := Fingerprint(fields, []byte("other"))
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}

// Package site adapts the binder to a source tree: it discovers source files
// carrying directives and writes the bound file set back out as Markdown.
package site

import (
	"maps"
	"sort"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
)

// Front matter keys of a written file.
const (
	KeyData           = "data"
	KeyID             = "id"
	KeyContentType    = "contentType"
	KeyLayout         = "layout"
	KeyFileName       = "_fileName"
	KeyParentFileName = "_parentFileName"
	KeyCommon         = "common"
)

// File is one record of the file set, either read from the source tree or
// synthesized for a fetched entry.
type File struct {
	Contents       []byte
	Data           any // contentful.Entry or *Collection
	ID             string
	ContentType    string
	Layout         string
	FileName       string
	ParentFileName string
	// Directive is set on source files only.
	Directive *config.Directive
	// Meta holds the remaining source front matter and merged metadata.
	Meta   map[string]any
	Common map[string]*contentful.EntryCollection
}

// Files maps output names to file records.
type Files map[string]*File

// Names returns the file names in sorted order.
func (f Files) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Collection is the data of a list-mode source file.
type Collection struct {
	Entries         []contentful.Entry
	ContentTypesMap map[string][]contentful.Entry
}

// Value renders the collection as plain maps and slices.
func (c *Collection) Value() map[string]any {
	entries := make([]any, len(c.Entries))
	for i, e := range c.Entries {
		entries[i] = map[string]any(e)
	}
	types := make(map[string]any, len(c.ContentTypesMap))
	for ct, list := range c.ContentTypesMap {
		items := make([]any, len(list))
		for i, e := range list {
			items[i] = map[string]any(e)
		}
		types[ct] = items
	}
	return map[string]any{"entries": entries, "contentTypesMap": types}
}

// FrontMatter returns the fields written above the file's contents: Meta
// first, then the binder's own keys, which win on conflict. Empty values are
// omitted.
func (f *File) FrontMatter() map[string]any {
	out := make(map[string]any, len(f.Meta)+7)
	maps.Copy(out, f.Meta)

	switch d := f.Data.(type) {
	case nil:
	case contentful.Entry:
		out[KeyData] = map[string]any(d)
	case *Collection:
		out[KeyData] = d.Value()
	default:
		out[KeyData] = d
	}

	setString := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	setString(KeyID, f.ID)
	setString(KeyContentType, f.ContentType)
	setString(KeyLayout, f.Layout)
	setString(KeyFileName, f.FileName)
	setString(KeyParentFileName, f.ParentFileName)

	if len(f.Common) > 0 {
		common := make(map[string]any, len(f.Common))
		for key, col := range f.Common {
			common[key] = col.Value()
		}
		out[KeyCommon] = common
	}
	return out
}

package contentful

import (
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Entry is one content record as decoded from the API: a JSON object with a
// "sys" block and a "fields" tree. It is treated as read-only.
type Entry map[string]any

// Sys returns the entry's system block.
func (e Entry) Sys() map[string]any {
	sys, _ := e["sys"].(map[string]any)
	return sys
}

// Fields returns the entry's field tree.
func (e Entry) Fields() map[string]any {
	fields, _ := e["fields"].(map[string]any)
	return fields
}

// ID returns sys.id.
func (e Entry) ID() string {
	id, _ := e.Sys()["id"].(string)
	return id
}

// ContentTypeID returns sys.contentType.sys.id.
func (e Entry) ContentTypeID() string {
	v, ok := e.Lookup([]string{"sys", "contentType", "sys", "id"})
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}

// Lookup resolves a field path (e.g. ["fields", "author", "name"]) against the
// entry. Numeric segments index into arrays. ok is false when any segment is
// missing or the value is null.
func (e Entry) Lookup(path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	results := PathExpr(path).Get(map[string]any(e))
	if len(results) == 0 || results[0] == nil {
		return nil, false
	}
	return results[0], true
}

// PathExpr builds a JSONPath child expression from path segments.
func PathExpr(path []string) jp.Expr {
	x := jp.R()
	for _, seg := range path {
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 {
			x = x.N(n)
			continue
		}
		x = x.C(seg)
	}
	return x
}

// SplitPath splits a dotted path, dropping empty segments and surrounding space.
func SplitPath(dotted string) []string {
	parts := strings.Split(strings.TrimSpace(dotted), ".")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NewEntry builds a minimal entry; mostly useful in tests and custom builders.
func NewEntry(id, contentType string, fields map[string]any) Entry {
	if fields == nil {
		fields = map[string]any{}
	}
	return Entry{
		"sys": map[string]any{
			"id":   id,
			"type": "Entry",
			"contentType": map[string]any{
				"sys": map[string]any{"type": "Link", "linkType": "ContentType", "id": contentType},
			},
		},
		"fields": fields,
	}
}

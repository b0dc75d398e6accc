// Package query turns a file directive into a content API query.
package query

import (
	"maps"
	"time"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/contentful"
)

// Built-in transform names.
const (
	TransformNow   = "__NOW__"
	TransformToday = "__TODAY__"
)

// Transform produces a filter value at query-build time.
type Transform func() any

// Transforms maps a filter value to the function that replaces it.
type Transforms map[string]Transform

// Builtins returns the built-in transforms evaluated against now.
// A nil now uses time.Now.
func Builtins(now func() time.Time) Transforms {
	if now == nil {
		now = time.Now
	}
	return Transforms{
		TransformNow:   func() any { return now().UTC().Format(time.RFC3339) },
		TransformToday: func() any { return now().UTC().Format(time.DateOnly) },
	}
}

// With returns a copy of t extended with extra; extra wins on conflicts.
func (t Transforms) With(extra Transforms) Transforms {
	out := make(Transforms, len(t)+len(extra))
	maps.Copy(out, t)
	maps.Copy(out, extra)
	return out
}

// Build merges a directive into a query. The directive is not modified.
func Build(d *config.Directive, transforms Transforms) contentful.Query {
	q := contentful.Query{}
	if d == nil {
		return q
	}

	if d.HasContentType() {
		q["content_type"] = d.ContentType
	}
	if d.EntryID != "" {
		q["sys.id"] = d.EntryID
	}

	for key, value := range d.Filter {
		q[key] = applyTransform(value, transforms)
	}

	if d.Locale != "" {
		q["locale"] = d.Locale
	}
	if d.Include != nil {
		q["include"] = *d.Include
	}
	if d.Limit != nil {
		q["limit"] = *d.Limit
	}
	if d.Skip != nil {
		q["skip"] = *d.Skip
	}
	if d.Order != "" {
		q["order"] = d.Order
	}
	return q
}

func applyTransform(value any, transforms Transforms) any {
	name, ok := value.(string)
	if !ok {
		return value
	}
	if fn, ok := transforms[name]; ok && fn != nil {
		return fn()
	}
	return value
}

package filename

import (
	"fmt"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/contentbinder/internal/contentful"
	"git.home.luguber.info/inful/contentbinder/internal/validation"
)

// token is either literal text or a placeholder path.
type token struct {
	literal string
	path    []string
}

// Pattern is a compiled entry_filename_pattern such as
// "${sys.id}/${fields.author.name}-${fields.title}".
type Pattern struct {
	source string
	tokens []token
}

// Compile parses a pattern into literal and placeholder tokens. Whitespace
// inside a placeholder is ignored.
func Compile(pattern string) (*Pattern, error) {
	p := &Pattern{source: pattern}
	rest := pattern
	offset := 0
	for rest != "" {
		start := strings.Index(rest, "${")
		if start < 0 {
			p.tokens = append(p.tokens, token{literal: rest})
			break
		}
		if start > 0 {
			p.tokens = append(p.tokens, token{literal: rest[:start]})
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return nil, fmt.Errorf("unterminated placeholder at offset %d in %q", offset+start, pattern)
		}
		expr := rest[start+2 : start+end]
		path := contentful.SplitPath(expr)
		if len(path) == 0 {
			return nil, fmt.Errorf("empty placeholder at offset %d in %q", offset+start, pattern)
		}
		p.tokens = append(p.tokens, token{path: path})

		consumed := start + end + 1
		rest = rest[consumed:]
		offset += consumed
	}
	return p, nil
}

// String returns the source pattern.
func (p *Pattern) String() string { return p.source }

// Placeholders returns the dotted paths referenced by the pattern.
func (p *Pattern) Placeholders() []string {
	var out []string
	for _, t := range p.tokens {
		if t.path != nil {
			out = append(out, strings.Join(t.path, "."))
		}
	}
	return out
}

// Render evaluates the pattern against entry. Present values are slugified;
// absent, empty or non-scalar values render as the sentinel.
func (p *Pattern) Render(entry contentful.Entry) string {
	var b strings.Builder
	for _, t := range p.tokens {
		if t.path == nil {
			b.WriteString(t.literal)
			continue
		}
		b.WriteString(slugValue(entry, t.path))
	}
	return b.String()
}

func slugValue(entry contentful.Entry, path []string) string {
	v, ok := entry.Lookup(path)
	if !ok {
		return validation.Sentinel
	}
	s, ok := scalarString(v)
	if !ok {
		return validation.Sentinel
	}
	if slug := Slug(s); slug != "" {
		return slug
	}
	return validation.Sentinel
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

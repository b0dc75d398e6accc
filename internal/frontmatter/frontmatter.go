// Package frontmatter reads and writes YAML front matter blocks delimited by
// "---" lines.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates an opening "---" without a closing one.
var ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")

// Style records the newline convention of a document.
type Style struct {
	Newline string
}

// Document is a parsed source file.
type Document struct {
	Fields map[string]any
	Body   []byte
	Style  Style
	// HadFrontmatter is false when the input carried no front matter block.
	HadFrontmatter bool
}

// Parse splits content into decoded front matter fields and body.
func Parse(content []byte) (*Document, error) {
	raw, body, had, style, err := Split(content)
	if err != nil {
		return nil, err
	}
	fields, err := ParseYAML(raw)
	if err != nil {
		return nil, err
	}
	return &Document{Fields: fields, Body: body, Style: style, HadFrontmatter: had}, nil
}

// Split separates the raw front matter from the body. When content does not
// start with a delimiter, had is false and body is the full input.
func Split(content []byte) (raw, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	delim := []byte("---" + style.Newline)

	if !bytes.HasPrefix(content, delim) {
		return nil, content, false, style, nil
	}
	rest := content[len(delim):]

	// empty block
	if bytes.HasPrefix(rest, delim) {
		return []byte{}, rest[len(delim):], true, style, nil
	}

	closing := []byte(style.Newline + "---" + style.Newline)
	idx := bytes.Index(rest, closing)
	if idx < 0 {
		// a closing delimiter on the last line without trailing newline
		if trimmed := []byte(style.Newline + "---"); bytes.HasSuffix(rest, trimmed) {
			end := len(rest) - len(trimmed)
			return rest[:end+len(style.Newline)], []byte{}, true, style, nil
		}
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}
	return rest[:idx+len(style.Newline)], rest[idx+len(closing):], true, style, nil
}

// Join writes raw front matter and body back into one document.
func Join(raw, body []byte, style Style) []byte {
	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	delim := "---" + nl

	out := make([]byte, 0, 2*len(delim)+len(raw)+len(body))
	out = append(out, delim...)
	out = append(out, raw...)
	out = append(out, delim...)
	return append(out, body...)
}

// ParseYAML decodes a raw front matter block into a map.
func ParseYAML(raw []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Render serializes fields deterministically and joins them with body.
func Render(fields map[string]any, body []byte, style Style) ([]byte, error) {
	raw, err := SerializeYAML(fields, style)
	if err != nil {
		return nil, err
	}
	return Join(raw, body, style), nil
}

func detectStyle(content []byte) Style {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return Style{Newline: "\r\n"}
	}
	return Style{Newline: "\n"}
}

package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// WildcardContentType means "any content type" and is never sent to the API.
const WildcardContentType = "*"

// Directive is the per-file declarative query block found in a source file's
// front matter. It is read-only once fetching begins.
type Directive struct {
	SpaceID     string `yaml:"space_id,omitempty"`
	AccessToken string `yaml:"access_token,omitempty"`
	Host        string `yaml:"host,omitempty"`
	Environment string `yaml:"environment,omitempty"`

	ContentType string         `yaml:"content_type,omitempty"`
	EntryID     string         `yaml:"entry_id,omitempty"`
	Filter      map[string]any `yaml:"filter,omitempty"`
	Order       string         `yaml:"order,omitempty"`
	Limit       *int           `yaml:"limit,omitempty"`
	Skip        *int           `yaml:"skip,omitempty"`
	Locale      string         `yaml:"locale,omitempty"`
	Include     *int           `yaml:"include,omitempty"`

	EntryTemplate        string `yaml:"entry_template,omitempty"`
	EntryFilenamePattern string `yaml:"entry_filename_pattern,omitempty"`
	EntryFilenameBuilder string `yaml:"entry_filename_builder,omitempty"`
	CreatePermalinks     bool   `yaml:"create_permalinks,omitempty"`
	UseTemplateExtension bool   `yaml:"use_template_extension,omitempty"`
}

// HasContentType reports whether the directive restricts the content type.
func (d *Directive) HasContentType() bool {
	return d.ContentType != "" && d.ContentType != WildcardContentType
}

// SingleEntry reports whether the directive fetches exactly one entry by id.
func (d *Directive) SingleEntry() bool {
	return d.EntryID != ""
}

// Credentials resolves the directive's credentials against the global defaults;
// any field set on the directive wins.
func (d *Directive) Credentials(global Credentials) Credentials {
	out := global
	if d.SpaceID != "" {
		out.SpaceID = d.SpaceID
	}
	if d.AccessToken != "" {
		out.AccessToken = d.AccessToken
	}
	if d.Host != "" {
		out.Host = d.Host
	}
	if d.Environment != "" {
		out.Environment = d.Environment
	}
	return out
}

// DecodeDirective converts a raw front matter value into a Directive.
// Unknown keys are rejected so typos surface before any request is made.
func DecodeDirective(raw any) (*Directive, error) {
	if raw == nil {
		return nil, nil
	}
	if _, ok := raw.(map[string]any); !ok {
		return nil, fmt.Errorf("directive must be a mapping, got %T", raw)
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode directive: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Directive
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode directive: %w", err)
	}
	return &d, nil
}

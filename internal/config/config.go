package config

// Config is the process-wide configuration for one binding run. It is constructed
// once at startup and treated as immutable for the duration of a build.
type Config struct {
	// Default content API credentials; any directive may override them.
	SpaceID     string `yaml:"space_id"`
	AccessToken string `yaml:"access_token"`
	Host        string `yaml:"host,omitempty"`
	Environment string `yaml:"environment,omitempty"`

	// ThrowOnUnresolvedFilename turns an unresolved filename pattern into a hard error
	// instead of a warning.
	ThrowOnUnresolvedFilename bool `yaml:"throw_on_unresolved_filename"`

	// Metadata is merged into every synthesized file.
	Metadata map[string]any `yaml:"metadata,omitempty"`

	// Common maps a key to a query whose result is attached to every produced file.
	Common map[string]*Directive `yaml:"common,omitempty"`

	// EntryFiles creates one file per entry when the source tree has no files.
	EntryFiles *EntryFilesConfig `yaml:"entry_files,omitempty"`

	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	HTTP    HTTPConfig    `yaml:"http"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// EntryFilesConfig turns the result of a global query directly into files.
// Each entry names its own output path in the field Key; its "layout" and
// "contents" fields become the file's layout and body.
type EntryFilesConfig struct {
	Key       string     `yaml:"key"`
	Extension string     `yaml:"extension"`
	Query     *Directive `yaml:"query"`
}

// SourceConfig describes where source files are read from.
type SourceConfig struct {
	Directory    string   `yaml:"directory"`
	DirectiveKey string   `yaml:"directive_key"` // front matter key holding the directive block
	Extensions   []string `yaml:"extensions"`
}

// OutputConfig describes where the bound file set is written.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"` // remove output files the build no longer produces
}

// HTTPConfig tunes the content API client.
type HTTPConfig struct {
	Timeout           string           `yaml:"timeout"` // e.g. "30s"
	UserAgent         string           `yaml:"user_agent,omitempty"`
	MaxRetries        int              `yaml:"max_retries"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff"`
	RetryInitialDelay string           `yaml:"retry_initial_delay"`
	RetryMaxDelay     string           `yaml:"retry_max_delay"`

	maxRetriesSpecified bool
}

// CacheConfig sizes the per-session query cache. Size 0 disables caching.
type CacheConfig struct {
	Size int `yaml:"size"`

	sizeSpecified bool
}

// MetricsConfig controls the Prometheus recorder.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"` // address for /metrics while watching
	Path    string `yaml:"path,omitempty"`
}

// Credentials returns the global credential set.
func (c *Config) Credentials() Credentials {
	return Credentials{
		SpaceID:     c.SpaceID,
		AccessToken: c.AccessToken,
		Host:        c.Host,
		Environment: c.Environment,
	}
}

// Credentials identifies one content API client.
type Credentials struct {
	SpaceID     string
	AccessToken string
	Host        string
	Environment string
}

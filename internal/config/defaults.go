package config

import "gopkg.in/yaml.v3"

// Default values applied when the configuration omits a setting.
const (
	DefaultHost               = "cdn.contentful.com"
	DefaultEnvironment        = "master"
	DefaultSourceDirectory    = "src"
	DefaultDirectiveKey       = "contentful"
	DefaultOutputDirectory    = "build"
	DefaultEntryFileExtension = "html"
	DefaultHTTPTimeout        = "30s"
	DefaultUserAgent          = "contentbinder/1.0"
	DefaultMaxRetries         = 2
	DefaultRetryInitialDelay  = "500ms"
	DefaultRetryMaxDelay      = "10s"
	DefaultCacheSize          = 256
	DefaultMetricsPath        = "/metrics"
)

// DefaultExtensions lists the source file extensions scanned for directives.
var DefaultExtensions = []string{".md", ".markdown", ".html"}

func applyDefaults(cfg *Config) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Environment == "" {
		cfg.Environment = DefaultEnvironment
	}

	if cfg.Source.Directory == "" {
		cfg.Source.Directory = DefaultSourceDirectory
	}
	if cfg.Source.DirectiveKey == "" {
		cfg.Source.DirectiveKey = DefaultDirectiveKey
	}
	if len(cfg.Source.Extensions) == 0 {
		cfg.Source.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.EntryFiles != nil && cfg.EntryFiles.Extension == "" {
		cfg.EntryFiles.Extension = DefaultEntryFileExtension
	}
	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDirectory
	}

	if cfg.HTTP.Timeout == "" {
		cfg.HTTP.Timeout = DefaultHTTPTimeout
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = DefaultUserAgent
	}
	// An explicit max_retries of 0 disables retries; only an omitted value gets the default.
	if !cfg.HTTP.maxRetriesSpecified && cfg.HTTP.MaxRetries == 0 {
		cfg.HTTP.MaxRetries = DefaultMaxRetries
	}
	if mode := NormalizeRetryBackoff(string(cfg.HTTP.RetryBackoff)); mode != "" {
		cfg.HTTP.RetryBackoff = mode
	} else if cfg.HTTP.RetryBackoff == "" {
		cfg.HTTP.RetryBackoff = RetryBackoffExponential
	}
	if cfg.HTTP.RetryInitialDelay == "" {
		cfg.HTTP.RetryInitialDelay = DefaultRetryInitialDelay
	}
	if cfg.HTTP.RetryMaxDelay == "" {
		cfg.HTTP.RetryMaxDelay = DefaultRetryMaxDelay
	}

	if !cfg.Cache.sizeSpecified && cfg.Cache.Size == 0 {
		cfg.Cache.Size = DefaultCacheSize
	}

	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// UnmarshalYAML records whether max_retries was present so 0 can mean "no retries".
func (h *HTTPConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain HTTPConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*h = HTTPConfig(p)
	h.maxRetriesSpecified = hasKey(value, "max_retries")
	return nil
}

// UnmarshalYAML records whether size was present so 0 can disable the cache.
func (c *CacheConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain CacheConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = CacheConfig(p)
	c.sizeSpecified = hasKey(value, "size")
	return nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted when the configuration leaves credentials empty.
const (
	EnvSpaceID     = "CONTENTFUL_SPACE_ID"
	EnvAccessToken = "CONTENTFUL_ACCESS_TOKEN"
	EnvHost        = "CONTENTFUL_HOST"
	EnvEnvironment = "CONTENTFUL_ENVIRONMENT"
)

var envFiles = []string{".env", ".env.local"}

// Load reads, expands, defaults and validates a configuration file.
//
// .env and .env.local next to the config file are loaded first (existing
// process variables win), then Parse expands ${VAR} references.
func Load(configPath string) (*Config, error) {
	loadEnvFiles(filepath.Dir(configPath))

	data, err := os.ReadFile(configPath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes configuration bytes; unknown keys are rejected. ${VAR}
// references are expanded in credential, host, environment and directory
// fields only. Metadata, common queries and filename patterns are taken
// literally.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").Fatal().Build()
	}

	expandEnv(&cfg)
	applyEnvFallbacks(&cfg)
	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with only defaults and environment fallbacks applied.
func Default() *Config {
	var cfg Config
	applyEnvFallbacks(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

func expandEnv(cfg *Config) {
	for _, field := range []*string{
		&cfg.SpaceID, &cfg.AccessToken, &cfg.Host, &cfg.Environment,
		&cfg.Source.Directory, &cfg.Output.Directory, &cfg.Metrics.Listen,
	} {
		*field = os.ExpandEnv(*field)
	}
	for _, d := range cfg.Common {
		expandDirectiveEnv(d)
	}
	if cfg.EntryFiles != nil {
		expandDirectiveEnv(cfg.EntryFiles.Query)
	}
}

func expandDirectiveEnv(d *Directive) {
	if d == nil {
		return
	}
	d.SpaceID = os.ExpandEnv(d.SpaceID)
	d.AccessToken = os.ExpandEnv(d.AccessToken)
	d.Host = os.ExpandEnv(d.Host)
	d.Environment = os.ExpandEnv(d.Environment)
}

func applyEnvFallbacks(cfg *Config) {
	fallback := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fallback(&cfg.SpaceID, EnvSpaceID)
	fallback(&cfg.AccessToken, EnvAccessToken)
	fallback(&cfg.Host, EnvHost)
	fallback(&cfg.Environment, EnvEnvironment)
}

func loadEnvFiles(dir string) {
	for _, name := range envFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
	}
}

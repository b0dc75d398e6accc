package config

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
)

const exampleConfig = `# contentbinder configuration
space_id: ${CONTENTFUL_SPACE_ID}
access_token: ${CONTENTFUL_ACCESS_TOKEN}
host: cdn.contentful.com
environment: master

# Fail the build when an entry_filename_pattern cannot be resolved.
throw_on_unresolved_filename: false

# Merged into every synthesized file.
metadata:
  site: My Site

# Fetched once per build and attached to every file under "common".
common:
  navigation:
    content_type: navigationItem
    order: fields.position

# With an empty source tree, create one file per entry instead. Each entry
# names its own path in fields.<key>; fields.layout and fields.contents
# become the file's layout and body.
# entry_files:
#   key: slug
#   extension: html
#   query:
#     content_type: page

source:
  directory: src
  directive_key: contentful
  extensions: [".md", ".html"]

output:
  directory: build
  clean: true

http:
  timeout: 30s
  max_retries: 2
  retry_backoff: exponential
  retry_initial_delay: 500ms
  retry_max_delay: 10s

cache:
  size: 256

logging:
  level: info
  format: text

metrics:
  enabled: false
  listen: ":9464"
`

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "create config directory").Build()
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

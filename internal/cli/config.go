package cli

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	lperrors "github.com/orizon-lang/lalrpop-ide/internal/errors"
)

// DefaultConcurrency bounds the number of files checked at once.
const DefaultConcurrency = 4

// Config represents common configuration for CLI tools
type Config struct {
	URL              string            `yaml:"-"`
	Verbose          bool              `yaml:"verbose"`
	Debug            bool              `yaml:"debug"`
	Concurrency      int               `yaml:"concurrency"`
	CrateRoot        string            `yaml:"crate_root"`
	GeneratorVersion string            `yaml:"generator_version"`
	Oracle           OracleConfig      `yaml:"oracle"`
	Index            map[string]string `yaml:"index"`
	Defaults         Defaults          `yaml:"defaults"`
	IgnoreCodes      []string          `yaml:"ignore_codes"`
	WarningsAsErrors bool              `yaml:"warnings_as_errors"`
}

// OracleConfig selects the external type oracle. Without a command the
// built-in structural oracle is used.
type OracleConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// Defaults overrides the ambient types used when a grammar declares none.
type Defaults struct {
	Location string `yaml:"location"`
	Error    string `yaml:"error"`
	Token    string `yaml:"token"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{Concurrency: DefaultConcurrency}
}

// LoadConfig loads configuration from a local path or URL. A missing file
// yields the default configuration.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	config := DefaultConfig()
	if URL == "" {
		return config, nil
	}

	fs := afs.New()
	exists, err := fs.Exists(ctx, URL)
	if err != nil {
		return nil, lperrors.InvalidConfig(URL, err)
	}
	if !exists {
		return config, nil
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, lperrors.InvalidConfig(URL, err)
	}
	if config, err = ParseConfig(data); err != nil {
		return nil, lperrors.InvalidConfig(URL, err)
	}
	config.URL = URL
	return config, nil
}

// ParseConfig decodes YAML or JSON configuration.
func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}
	return config, config.Validate()
}

// Validate validates config
func (c *Config) Validate() error {
	if _, err := CheckGeneratorVersion(c.GeneratorVersion); err != nil {
		return err
	}
	for alias, canonical := range c.Index {
		if alias == "" || canonical == "" {
			return fmt.Errorf("index entry %q => %q: empty path", alias, canonical)
		}
	}
	return nil
}

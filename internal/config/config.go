// Package config holds the tool configuration, loadable from a YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete pysymbols configuration.
type Config struct {
	// Package is the package whose API surface is gathered.
	Package string `yaml:"package" mapstructure:"package"`

	// IndexURL is the JSON API of the package index.
	IndexURL string `yaml:"index_url" mapstructure:"index_url"`

	// OutputDir receives one <version>.json inventory per gathered release.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// SourcePattern selects the files to parse below the API directory.
	SourcePattern string `yaml:"source_pattern" mapstructure:"source_pattern"`

	// APIDir is the package-relative directory holding the public API shim.
	APIDir string `yaml:"api_dir" mapstructure:"api_dir"`

	// PlatformTag selects which wheel to download: the first artifact whose
	// platform qualifier contains this substring is used.
	PlatformTag string `yaml:"platform_tag" mapstructure:"platform_tag"`
}

// Default returns a configuration with sensible defaults, targeting
// TensorFlow releases on the public index.
func Default() *Config {
	return &Config{
		Package:       "tensorflow",
		IndexURL:      "https://pypi.org/pypi",
		OutputDir:     "data",
		SourcePattern: "**/*.py",
		APIDir:        "tensorflow/_api",
		PlatformTag:   "manylinux",
	}
}

// Load builds the configuration from defaults, an optional config file, and
// PYSYMBOLS_* environment variables, in increasing precedence.
//
// With an empty cfgFile, a .pysymbols.yaml in the working directory is used
// when present and silently skipped when absent. An explicitly named file
// must exist.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("package", defaults.Package)
	v.SetDefault("index_url", defaults.IndexURL)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("source_pattern", defaults.SourcePattern)
	v.SetDefault("api_dir", defaults.APIDir)
	v.SetDefault("platform_tag", defaults.PlatformTag)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".pysymbols")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PYSYMBOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jongo-go/jongo"
	"github.com/jongo-go/jongo/pkg/constants"
)

const defaultURI = "mongodb://localhost:27017"

// Config is the CLI configuration file.
type Config struct {
	URI      string    `yaml:"uri"`
	Database string    `yaml:"database"`
	Log      LogConfig `yaml:"log"`

	TemplateCacheSize int `yaml:"template_cache_size"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func defaultConfig() *Config {
	return &Config{
		URI:               defaultURI,
		Database:          "test",
		Log:               LogConfig{Level: "warn"},
		TemplateCacheSize: constants.DefaultTemplateCacheSize,
	}
}

// loadConfig reads path over the defaults, then applies the environment.
// An empty path skips the file.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.URI = jongo.GetEnvOrDefault(constants.EnvMongoDBURI, cfg.URI)
	cfg.Database = jongo.GetEnvOrDefault(constants.EnvDatabase, cfg.Database)
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.URI == "" {
		return fmt.Errorf("uri must be set")
	}
	if c.Database == "" {
		return fmt.Errorf("database must be set")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return nil
}

func (c *Config) logLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.WarnLevel
	}
	return level
}

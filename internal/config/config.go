package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	// EnvDataDir overrides the datastore directory regardless of the
	// config file.
	EnvDataDir = "OPP"

	defaultListen = ":8080"
	defaultURL    = "http://localhost:8080"
)

type StoreConfig struct {
	DataDir string `yaml:"data_dir"`
}

type Config struct {
	Listen   string      `yaml:"listen"`
	URL      string      `yaml:"url"`
	LogLevel string      `yaml:"log_level"`
	Store    StoreConfig `yaml:"store"`
}

func (c *Config) SetDefaults() {
	c.Listen = defaultListen
	c.URL = defaultURL
	c.LogLevel = LogLevelInfo
	c.Store.DataDir = DefaultDataDir()
}

// DefaultDataDir produces the datastore directory: the OPP environment
// variable when set, otherwise ~/.config/opp.
func DefaultDataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ".opp"
	}

	return filepath.Join(home, ".config", "opp")
}

// Load reads the YAML config at path on top of the defaults. A missing
// file is not an error: the defaults plus environment are used as is.
// A .env file next to the process is honored before the environment is
// consulted.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.SetDefaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		cfg.Store.DataDir = dir
	}

	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

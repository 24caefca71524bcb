// Package config loads the project configuration from .rfl.yaml or .rfl.toml.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/chriserin/rfl/internal/version"
)

// FileNames are searched in order by Find.
var FileNames = []string{".rfl.yaml", ".rfl.yml", ".rfl.toml"}

const (
	DefaultRobotVersion = "3.1"
	DefaultDatabase     = ".rfl/rfl.db"
	DefaultChannel      = "rfl:problems"
)

type Config struct {
	RobotVersion string      `yaml:"robot_version" toml:"robot_version"`
	Ignore       []string    `yaml:"ignore" toml:"ignore"`
	Disable      []string    `yaml:"disable" toml:"disable"`
	Workers      int         `yaml:"workers" toml:"workers"`
	Database     string      `yaml:"database" toml:"database"`
	Redis        RedisConfig `yaml:"redis" toml:"redis"`
	Log          LogConfig   `yaml:"log" toml:"log"`

	path string
}

type RedisConfig struct {
	Addr    string `yaml:"addr" toml:"addr"`
	Channel string `yaml:"channel" toml:"channel"`
}

type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads path, choosing the decoder by extension.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(content), &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
	cfg.path = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Find loads the first of FileNames present in dir, or Default when none is.
func Find(dir string) (*Config, error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

func (c *Config) applyDefaults() {
	if env := os.Getenv("RFL_ROBOT_VERSION"); env != "" {
		c.RobotVersion = env
	}
	if c.RobotVersion == "" {
		c.RobotVersion = DefaultRobotVersion
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Redis.Channel == "" {
		c.Redis.Channel = DefaultChannel
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks values that would otherwise fail later and far away.
func (c *Config) Validate() error {
	if _, err := version.Parse(c.RobotVersion); err != nil {
		return fmt.Errorf("robot_version: %w", err)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Path is the file the config came from, empty for defaults.
func (c *Config) Path() string { return c.path }

func (c *Config) Version() version.Version {
	v, err := version.Parse(c.RobotVersion)
	if err != nil {
		return version.MustParse(DefaultRobotVersion)
	}
	return v
}

// Ignored reports whether path matches one of the ignore globs, tried against
// both the full path and its base name.
func (c *Config) Ignored(path string) bool {
	for _, pattern := range c.Ignore {
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return false
}

// NewLogger builds the slog logger described by the log section.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Write stores c as YAML at path.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort      = 16181
	DefaultFormat    = "atom"
	DefaultStorePath = "feedformatter.db"
	DefaultLogLevel  = "info"
	DefaultTimeoutMS = 10000
)

// DefaultPaths are tried in order when Load is called with an empty path.
var DefaultPaths = []string{"feedformatter.yml", "config.yml"}

// Default returns a configuration with every default applied and no feeds.
func Default() *AppConfig {
	cfg := &AppConfig{}
	cfg.applyDefaults()
	return cfg
}

// Load reads, defaults and validates the configuration at path. With an
// empty path the DefaultPaths are tried and, when none exists, Default() is
// returned.
func Load(path string) (*AppConfig, error) {
	data, err := read(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return Default(), nil
	}
	return Parse(data)
}

func read(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		return data, nil
	}
	for _, p := range DefaultPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", p, err)
		}
	}
	return nil, nil
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Output.Format == "" {
		c.Output.Format = DefaultFormat
	}
	if c.Output.Validate == nil {
		v := true
		c.Output.Validate = &v
	}
	if c.Store.Path == "" {
		c.Store.Path = DefaultStorePath
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	for i := range c.Feeds {
		if c.Feeds[i].TimeoutMS == 0 {
			c.Feeds[i].TimeoutMS = DefaultTimeoutMS
		}
	}
}

// Validate checks struct tags and that feed names are unique.
func (c *AppConfig) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	seen := make(map[string]bool, len(c.Feeds))
	for _, f := range c.Feeds {
		if seen[f.Name] {
			return fmt.Errorf("invalid config: duplicate feed name %q", f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Feed returns the configured feed with the given name.
func (c *AppConfig) Feed(name string) (Feed, bool) {
	for _, f := range c.Feeds {
		if f.Name == name {
			return f, true
		}
	}
	return Feed{}, false
}

// SelectFeed chooses a feed by name; fallback to first. The second result is
// false when no feeds are configured.
func (c *AppConfig) SelectFeed(name string) (Feed, bool) {
	if name != "" {
		if f, ok := c.Feed(name); ok {
			return f, true
		}
	}
	if len(c.Feeds) > 0 {
		return c.Feeds[0], true
	}
	return Feed{}, false
}

// FormatOf returns the feed's format, or the output default.
func (c *AppConfig) FormatOf(f Feed) string {
	if f.Format != "" {
		return f.Format
	}
	return c.Output.Format
}

// PrettyOf returns the feed's pretty flag, or the output default.
func (c *AppConfig) PrettyOf(f Feed) bool {
	if f.Pretty != nil {
		return *f.Pretty
	}
	return c.Output.Pretty
}

// ValidateOutput reports whether rendered feeds are validated first.
func (c *AppConfig) ValidateOutput() bool {
	return c.Output.Validate == nil || *c.Output.Validate
}

// Location resolves the configured timezone; empty means time.Local.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Output.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Output.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Output.Timezone, err)
	}
	return loc, nil
}

// RefreshInterval returns the periodic re-publish interval, zero when disabled.
func (s ServerConfig) RefreshInterval() time.Duration {
	return time.Duration(s.RefreshIntervalMS) * time.Millisecond
}

// Timeout returns the fetch timeout of f.
func (f Feed) Timeout() time.Duration {
	return time.Duration(f.TimeoutMS) * time.Millisecond
}

// Package config loads per-workspace settings from .rails-lens.yml.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/railslens/rails-lens-mcp/internal/routes"
	"github.com/railslens/rails-lens-mcp/internal/views"
)

// FileName is the workspace-relative config file name.
const FileName = ".rails-lens.yml"

// Config holds user-overridable workspace settings.
type Config struct {
	// RoutesFile is the workspace-relative path of the route listing.
	// Default: tmp/routes_file.txt.
	RoutesFile string `yaml:"routes_file"`

	// ViewExtensions is the ordered probe list for view templates.
	// Default: [html.haml, json.jbuilder].
	ViewExtensions []string `yaml:"view_extensions"`

	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig holds route cache settings.
type CacheConfig struct {
	// Enabled toggles the SQLite route cache. Default: true.
	Enabled *bool `yaml:"enabled"`

	// MaxAge is the cache entry lifetime in seconds. 0 means entries
	// never expire by age (the listing-file hash still invalidates them).
	MaxAge int `yaml:"max_age"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{}
}

// Load reads .rails-lens.yml from the workspace root.
// A missing or invalid file yields the defaults.
func Load(workspace string) *Config {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(workspace, FileName))
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return Default()
	}
	return cfg
}

// EffectiveRoutesFile returns the configured listing path or the default.
func (c *Config) EffectiveRoutesFile() string {
	if c.RoutesFile != "" {
		return c.RoutesFile
	}
	return routes.DefaultRoutesFile
}

// EffectiveViewExtensions returns the configured probe order or the default.
func (c *Config) EffectiveViewExtensions() []string {
	if len(c.ViewExtensions) > 0 {
		return c.ViewExtensions
	}
	return views.DefaultExtensions
}

// EffectiveCacheEnabled returns whether the route cache is on.
func (c *Config) EffectiveCacheEnabled() bool {
	if c.Cache.Enabled != nil {
		return *c.Cache.Enabled
	}
	return true
}

// EffectiveCacheMaxAge returns the cache lifetime as a duration.
func (c *Config) EffectiveCacheMaxAge() time.Duration {
	return time.Duration(c.Cache.MaxAge) * time.Second
}

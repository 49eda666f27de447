package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/adrg/xdg"
)

// Config represents the mdsite configuration
type Config struct {
	ContentDir      string        `json:"content_dir"`
	StaticDir       string        `json:"static_dir"`
	PublicDir       string        `json:"public_dir"`
	Template        string        `json:"template"`
	BasePath        string        `json:"base_path"`
	LogFile         string        `json:"log_file"`
	Interval        time.Duration `json:"-"` // Custom JSON handling below
	Workers         int           `json:"workers,omitempty"`
	ExcludePatterns []string      `json:"exclude_patterns,omitempty"`
}

// DefaultConfig returns default configuration rooted at the working directory
func DefaultConfig() *Config {
	return &Config{
		ContentDir:      "content",
		StaticDir:       "static",
		PublicDir:       "public",
		Template:        "template.html",
		BasePath:        "/",
		LogFile:         filepath.Join(os.TempDir(), "mdsite.log"),
		Interval:        2 * time.Second,
		Workers:         runtime.NumCPU(),
		ExcludePatterns: []string{}, // No exclusions by default
	}
}

// ConfigPath returns the path to the config file
// Uses ~/.config on all platforms for consistency
// Can be overridden for testing
var ConfigPath = func() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to XDG if home dir unavailable
		return filepath.Join(xdg.ConfigHome, "mdsite", "config.json")
	}
	return filepath.Join(home, ".config", "mdsite", "config.json")
}

// ManifestPath returns the path to the build manifest
// Uses platform-specific XDG data directory
// Can be overridden for testing
var ManifestPath = func() string {
	return filepath.Join(xdg.DataHome, "mdsite", "manifest.json")
}

// rawConfig is the on-disk form of Config, with the interval as a string
type rawConfig struct {
	ContentDir      string   `json:"content_dir"`
	StaticDir       string   `json:"static_dir"`
	PublicDir       string   `json:"public_dir"`
	Template        string   `json:"template"`
	BasePath        string   `json:"base_path"`
	LogFile         string   `json:"log_file"`
	Interval        string   `json:"interval"`
	Workers         int      `json:"workers,omitempty"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
}

// Load reads configuration from the config directory
func Load() (*Config, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		// Return default config if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	return Parse(data)
}

// Parse decodes, validates and expands a JSON configuration.
// Fields missing from the document keep their default values.
func Parse(data []byte) (*Config, error) {
	defaults := DefaultConfig()
	raw := rawConfig{
		ContentDir: defaults.ContentDir,
		StaticDir:  defaults.StaticDir,
		PublicDir:  defaults.PublicDir,
		Template:   defaults.Template,
		BasePath:   defaults.BasePath,
		LogFile:    defaults.LogFile,
		Interval:   defaults.Interval.String(),
		Workers:    defaults.Workers,
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Parse interval duration
	interval, err := time.ParseDuration(raw.Interval)
	if err != nil {
		return nil, fmt.Errorf("invalid interval format '%s': %w", raw.Interval, err)
	}

	// Set empty slice for exclude patterns if nil
	excludePatterns := raw.ExcludePatterns
	if excludePatterns == nil {
		excludePatterns = []string{}
	}

	cfg := &Config{
		ContentDir:      raw.ContentDir,
		StaticDir:       raw.StaticDir,
		PublicDir:       raw.PublicDir,
		Template:        raw.Template,
		BasePath:        raw.BasePath,
		LogFile:         raw.LogFile,
		Interval:        interval,
		Workers:         raw.Workers,
		ExcludePatterns: excludePatterns,
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Expand paths
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the config directory
func (c *Config) Save() error {
	configPath := ConfigPath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	raw := rawConfig{
		ContentDir:      c.ContentDir,
		StaticDir:       c.StaticDir,
		PublicDir:       c.PublicDir,
		Template:        c.Template,
		BasePath:        c.BasePath,
		LogFile:         c.LogFile,
		Interval:        c.Interval.String(),
		Workers:         c.Workers,
		ExcludePatterns: c.ExcludePatterns,
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return fmt.Errorf("content_dir cannot be empty")
	}
	if c.PublicDir == "" {
		return fmt.Errorf("public_dir cannot be empty")
	}
	if c.Template == "" {
		return fmt.Errorf("template cannot be empty")
	}
	if c.BasePath == "" || c.BasePath[0] != '/' {
		return fmt.Errorf("base_path must start with '/', got '%s'", c.BasePath)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1")
	}

	for _, pattern := range c.ExcludePatterns {
		if _, err := filepath.Match(pattern, "x"); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	return nil
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	var err error

	c.ContentDir, err = expandPath(c.ContentDir)
	if err != nil {
		return fmt.Errorf("failed to expand content_dir: %w", err)
	}

	c.StaticDir, err = expandPath(c.StaticDir)
	if err != nil {
		return fmt.Errorf("failed to expand static_dir: %w", err)
	}

	c.PublicDir, err = expandPath(c.PublicDir)
	if err != nil {
		return fmt.Errorf("failed to expand public_dir: %w", err)
	}

	c.Template, err = expandPath(c.Template)
	if err != nil {
		return fmt.Errorf("failed to expand template: %w", err)
	}

	c.LogFile, err = expandPath(c.LogFile)
	if err != nil {
		return fmt.Errorf("failed to expand log_file: %w", err)
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}

// Package config loads the shell settings from ~/.webdeck/config.toml.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/revden/webdeck/internal/logging"
)

var log = logging.New("config")

const (
	// DirName is the per-user data directory under $HOME.
	DirName = ".webdeck"
	// FileName is the config file inside DirName.
	FileName = "config.toml"

	// EnvRemoteURL overrides shell.remote_url.
	EnvRemoteURL = "WEBDECK_REMOTE_URL"

	DefaultAppName      = "Webdeck"
	DefaultRemoteURL    = "https://app.webdeck.io/"
	DefaultProbeHost    = "www.google.com"
	DefaultFetchTimeout = 15 * time.Second

	minFetchTimeout = 1 * time.Second
	maxFetchTimeout = 2 * time.Minute
)

// ShellConfig is the [shell] section.
type ShellConfig struct {
	AppName      string `toml:"app_name"`
	RemoteURL    string `toml:"remote_url"`
	ProbeHost    string `toml:"probe_host"`
	FetchTimeout string `toml:"fetch_timeout"` // duration string, e.g. "15s"
	CacheDir     string `toml:"cache_dir"`
	ResourcesDir string `toml:"resources_dir"`
}

// UpdateConfig is the [update] section.
type UpdateConfig struct {
	Enabled bool   `toml:"enabled"`
	Owner   string `toml:"owner"`
	Repo    string `toml:"repo"`
}

// Config is the full settings file.
type Config struct {
	Shell  ShellConfig  `toml:"shell"`
	Update UpdateConfig `toml:"update"`

	// dataDir is the directory defaults are resolved against.
	dataDir string
	timeout time.Duration
}

// DefaultPath returns ~/.webdeck/config.toml.
func DefaultPath() string {
	return filepath.Join(DefaultDataDir(), FileName)
}

// DefaultDataDir returns ~/.webdeck, or a temp dir when $HOME is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("could not determine home directory, using temp dir: %v", err)
		return filepath.Join(os.TempDir(), DirName)
	}
	return filepath.Join(home, DirName)
}

// Defaults returns the settings used when no file exists.
func Defaults(dataDir string) *Config {
	cfg := &Config{dataDir: dataDir}
	cfg.applyDefaults()
	return cfg
}

// Load reads path. A missing file yields defaults; a file that does not parse
// yields defaults and a warning. Only an unreadable existing file is an error.
func Load(path string) (*Config, error) {
	dataDir := filepath.Dir(path)
	cfg := &Config{dataDir: dataDir}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// first run
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			log.Warnf("failed to parse %s, using defaults: %v", path, err)
			cfg = &Config{dataDir: dataDir}
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvRemoteURL)); v != "" {
		cfg.Shell.RemoteURL = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Shell.AppName == "" {
		c.Shell.AppName = DefaultAppName
	}
	c.Shell.RemoteURL = strings.TrimSpace(c.Shell.RemoteURL)
	if c.Shell.RemoteURL == "" {
		c.Shell.RemoteURL = DefaultRemoteURL
	}
	if c.Shell.ProbeHost == "" {
		c.Shell.ProbeHost = DefaultProbeHost
	}
	if c.Shell.CacheDir == "" {
		c.Shell.CacheDir = filepath.Join(c.dataDir, "cache")
	} else {
		c.Shell.CacheDir = expandHome(c.Shell.CacheDir)
	}
	if c.Shell.ResourcesDir == "" {
		c.Shell.ResourcesDir = filepath.Join(c.dataDir, "resources")
	} else {
		c.Shell.ResourcesDir = expandHome(c.Shell.ResourcesDir)
	}

	c.timeout = DefaultFetchTimeout
	if c.Shell.FetchTimeout != "" {
		d, err := time.ParseDuration(c.Shell.FetchTimeout)
		if err != nil {
			log.Warnf("invalid shell.fetch_timeout %q, using %s", c.Shell.FetchTimeout, DefaultFetchTimeout)
		} else {
			c.timeout = clampTimeout(d)
		}
	}
}

func clampTimeout(d time.Duration) time.Duration {
	if d < minFetchTimeout {
		return minFetchTimeout
	} else if d > maxFetchTimeout {
		return maxFetchTimeout
	}
	return d
}

// FetchTimeout returns the parsed, clamped fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return c.timeout
}

// DataDir returns the directory holding the config, cache and log.
func (c *Config) DataDir() string {
	return c.dataDir
}

// Save writes the [shell] and [update] sections to path, preserving any other
// sections already in the file.
func Save(path string, cfg *Config) error {
	existingData, _ := os.ReadFile(path)

	var existing map[string]interface{}
	if len(existingData) > 0 {
		if err := toml.Unmarshal(existingData, &existing); err != nil {
			existing = make(map[string]interface{})
		}
	} else {
		existing = make(map[string]interface{})
	}

	existing["shell"] = map[string]interface{}{
		"app_name":      cfg.Shell.AppName,
		"remote_url":    cfg.Shell.RemoteURL,
		"probe_host":    cfg.Shell.ProbeHost,
		"fetch_timeout": cfg.FetchTimeout().String(),
		"cache_dir":     cfg.Shell.CacheDir,
		"resources_dir": cfg.Shell.ResourcesDir,
	}
	existing["update"] = map[string]interface{}{
		"enabled": cfg.Update.Enabled,
		"owner":   cfg.Update.Owner,
		"repo":    cfg.Update.Repo,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	var buf bytes.Buffer
	if len(existingData) == 0 {
		buf.WriteString("# Webdeck Configuration\n\n")
	}
	if err := toml.NewEncoder(&buf).Encode(existing); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

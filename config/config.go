// Package config loads daemon settings from a YAML file, an optional .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvAddr        = "GRAPHVIEW_ADDR"
	EnvServerHost  = "GRAPHVIEW_SERVER_HOST"
	EnvResources   = "GRAPHVIEW_RESOURCES"
	EnvOpenBrowser = "GRAPHVIEW_OPEN_BROWSER"
)

// Defaults.
const (
	DefaultAddr       = "127.0.0.1:7411"
	DefaultServerHost = "127.0.0.1"
)

// Config holds the daemon settings.
type Config struct {
	// Addr is the control API and panel listen address.
	Addr string `yaml:"addr"`
	// ServerHost is the interface embedded graph servers bind to. Panels
	// reach their server on the hostname they were loaded from, so it must
	// be a wildcard or the host panels are served from.
	ServerHost string `yaml:"server_host"`
	// Resources overrides the embedded graph client assets with a directory.
	Resources string `yaml:"resources,omitempty"`
	// OpenBrowser launches revealed panels in the default browser.
	OpenBrowser bool `yaml:"open_browser"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:       DefaultAddr,
		ServerHost: DefaultServerHost,
	}
}

// DefaultPath is the config file location under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "graphview", "config.yaml")
}

// Load reads path (missing is fine), then .env in the working directory, then
// the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvServerHost); v != "" {
		cfg.ServerHost = v
	}
	if v := os.Getenv(EnvResources); v != "" {
		cfg.Resources = v
	}
	if v := os.Getenv(EnvOpenBrowser); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvOpenBrowser, err)
		}
		cfg.OpenBrowser = b
	}
	return nil
}

// Validate checks required settings.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.ServerHost == "" {
		return errors.New("server_host is required")
	}
	if err := checkServerHost(c.Addr, c.ServerHost); err != nil {
		return err
	}
	if c.Resources != "" {
		info, err := os.Stat(c.Resources)
		if err != nil {
			return fmt.Errorf("resources: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("resources: %s is not a directory", c.Resources)
		}
	}
	return nil
}

// ResourcesFS returns the resources directory as a filesystem, or fallback
// when none is configured.
func (c Config) ResourcesFS(fallback fs.FS) (fs.FS, string) {
	if c.Resources == "" {
		return fallback, "embedded"
	}
	return os.DirFS(c.Resources), c.Resources
}

// checkServerHost rejects a server host that panels loaded from the daemon
// at addr cannot reach.
func checkServerHost(addr, serverHost string) error {
	daemonHost, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("addr %q: %w", addr, err)
	}
	if isWildcard(serverHost) {
		return nil
	}
	// Panels on a wildcard daemon are opened at the loopback address.
	if isWildcard(daemonHost) {
		daemonHost = "127.0.0.1"
	}
	if strings.EqualFold(daemonHost, serverHost) {
		return nil
	}
	if isLocalhost(daemonHost) && isLoopback(serverHost) || isLocalhost(serverHost) && isLoopback(daemonHost) {
		return nil
	}
	return fmt.Errorf("server_host %s is not reachable from panels served at %s; use %s or 0.0.0.0",
		serverHost, daemonHost, daemonHost)
}

func isWildcard(h string) bool {
	return h == "" || h == "0.0.0.0" || h == "::"
}

func isLocalhost(h string) bool {
	return strings.EqualFold(h, "localhost")
}

func isLoopback(h string) bool {
	if isLocalhost(h) {
		return true
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}

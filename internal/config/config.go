// Package config provides configuration management for go-vitrine.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/go-while/go-vitrine/internal/site"
	"gopkg.in/yaml.v3"
)

var AppVersion = "-unset-" // will be set at build time

const (
	DefaultListenPort      = 11980
	DefaultCatalogPath     = "data/jobs.json"
	DefaultMetricsPath     = "/metrics"
	DefaultShutdownTimeout = 10 * time.Second
)

var (
	// ErrInvalidPort is returned by Validate for ports outside 1024-65535
	ErrInvalidPort = errors.New("invalid port number")
	// ErrMetricsPath is returned by Validate for a metrics path the router cannot register
	ErrMetricsPath = errors.New("invalid metrics path")
)

// serverPaths are registered by the web server next to the site routes
var serverPaths = []string{"/static/*filepath", "/robots.txt", "/ping"}

// MainConfig holds the main configuration for go-vitrine
type MainConfig struct {
	// Web interface settings
	Web WebConfig `yaml:"web"`

	// Job postings catalog source
	Catalog CatalogConfig `yaml:"catalog"`

	// Prometheus exposition
	Metrics MetricsConfig `yaml:"metrics"`

	// Optional pprof web endpoint
	Profiling ProfilingConfig `yaml:"profiling"`

	AppVersion string `yaml:"-"` // Application version, set at build time
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort        int           `yaml:"listen_port"`
	SSL               bool          `yaml:"ssl"`
	CertFile          string        `yaml:"cert_file,omitempty"`
	KeyFile           string        `yaml:"key_file,omitempty"`
	StaticDir         string        `yaml:"static_dir"`    // empty: serve embedded assets
	TemplatesDir      string        `yaml:"templates_dir"` // empty: use embedded templates
	HTTPSURLs         bool          `yaml:"https_urls"`    // https_url_for rewrites http:// to https://
	TrustedProxies    []string      `yaml:"trusted_proxies"`
	BlockedUserAgents []string      `yaml:"blocked_user_agents"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	Debug             bool          `yaml:"debug"` // gin debug mode + request logging
}

// CatalogConfig holds the job postings source location
type CatalogConfig struct {
	Path string `yaml:"path"` // .json document or sqlite file (.db, .sq3, .sqlite)
}

// MetricsConfig holds prometheus settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ProfilingConfig holds pprof settings
type ProfilingConfig struct {
	PprofAddr string `yaml:"pprof_addr"` // e.g. ":51111", empty disables
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	maincfg := &MainConfig{
		AppVersion: AppVersion,
		Web: WebConfig{
			ListenPort:      DefaultListenPort,
			TrustedProxies:  []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Catalog: CatalogConfig{
			Path: DefaultCatalogPath,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
	}
	return maincfg
}

// Load reads the YAML config file at path on top of the defaults.
// ${VAR} references are expanded from the environment before parsing.
func Load(path string) (*MainConfig, error) {
	cfg := NewDefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Web.ShutdownTimeout <= 0 {
		cfg.Web.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Printf("[CONFIG]: loaded %s (port: %d, ssl: %t, catalog: %s)", path, cfg.Web.ListenPort, cfg.Web.SSL, cfg.Catalog.Path)
	return cfg, nil
}

// Validate checks the settings that would otherwise fail late at listen time
func (c *MainConfig) Validate() error {
	if c.Web.ListenPort < 1024 || c.Web.ListenPort > 65535 {
		return fmt.Errorf("%w: %d (must be between 1024 and 65535)", ErrInvalidPort, c.Web.ListenPort)
	}
	if c.Web.SSL && (c.Web.CertFile == "" || c.Web.KeyFile == "") {
		return errors.New("SSL enabled but cert_file or key_file not specified in config")
	}
	if c.Metrics.Enabled {
		if err := checkMetricsPath(c.Metrics.Path); err != nil {
			return err
		}
	}
	return nil
}

// checkMetricsPath rejects paths that collide with a site route or a server path
func checkMetricsPath(path string) error {
	if path == "" || path[0] != '/' {
		return fmt.Errorf("%w: must start with '/': %q", ErrMetricsPath, path)
	}
	patterns := append([]string{site.JobListPath, site.JobDetailPath}, serverPaths...)
	for _, p := range site.DefaultPages() {
		patterns = append(patterns, p.Path)
	}
	for _, pattern := range patterns {
		if routeConflicts(path, pattern) {
			return fmt.Errorf("%w: %q collides with route %s", ErrMetricsPath, path, pattern)
		}
	}
	return nil
}

// routeConflicts reports whether registering path next to pattern would clash:
// the same path, or a path under a :param or *wildcard segment
func routeConflicts(path, pattern string) bool {
	if i := strings.IndexAny(pattern, ":*"); i >= 0 {
		return strings.HasPrefix(path, pattern[:i])
	}
	return path == pattern
}

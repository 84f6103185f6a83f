package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	PermissionAllow    = "allow"
	PermissionDisallow = "disallow"

	DefaultUserAgent = "web-spider/1.0 (+https://github.com/alvmarrod/web-spider)"
)

// Config holds all runtime configuration parameters
type Config struct {
	SeedURL           string   `json:"seed_url" yaml:"seed_url"`
	DefaultPermission string   `json:"default_permission" yaml:"default_permission"`
	MaxPathNodes      int      `json:"max_path_nodes" yaml:"max_path_nodes"`
	MaxDomains        int      `json:"max_domains" yaml:"max_domains"`
	StepsPerRequest   int      `json:"steps_per_request" yaml:"steps_per_request"`
	MaxHostsPerRoot   int      `json:"max_hosts_per_root" yaml:"max_hosts_per_root"`
	ExcludePatterns   []string `json:"exclude_patterns" yaml:"exclude_patterns"`
	RetryAttempts     int      `json:"retry_attempts" yaml:"retry_attempts"`
	RequestTimeoutMs  int      `json:"request_timeout_ms" yaml:"request_timeout_ms"`
	ClientTimeoutMs   int      `json:"client_timeout_ms" yaml:"client_timeout_ms"`
	UserAgent         string   `json:"user_agent" yaml:"user_agent"`
	ListenAddr        string   `json:"listen_addr" yaml:"listen_addr"`
	DBPath            string   `json:"db_path" yaml:"db_path"`
	MetricsPath       string   `json:"metrics_path" yaml:"metrics_path"`
	LogLevel          string   `json:"log_level" yaml:"log_level"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads and validates configuration from a JSON or YAML file.
// An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for unspecified fields
func applyDefaults(cfg *Config) {
	if cfg.DefaultPermission == "" {
		cfg.DefaultPermission = PermissionAllow
	}
	if cfg.MaxPathNodes == 0 {
		cfg.MaxPathNodes = 50
	}
	if cfg.MaxDomains == 0 {
		cfg.MaxDomains = 10
	}
	if cfg.StepsPerRequest == 0 {
		cfg.StepsPerRequest = 3
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RequestTimeoutMs == 0 {
		cfg.RequestTimeoutMs = 5000
	}
	if cfg.ClientTimeoutMs == 0 {
		cfg.ClientTimeoutMs = 30000
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":3000"
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "metrics.json"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks that values are sensible
func (cfg *Config) Validate() error {
	if cfg.DefaultPermission != PermissionAllow && cfg.DefaultPermission != PermissionDisallow {
		return fmt.Errorf("default_permission must be %q or %q", PermissionAllow, PermissionDisallow)
	}
	if cfg.MaxPathNodes < 1 {
		return fmt.Errorf("max_path_nodes must be >= 1")
	}
	if cfg.MaxDomains < 1 {
		return fmt.Errorf("max_domains must be >= 1")
	}
	if cfg.StepsPerRequest < 1 {
		return fmt.Errorf("steps_per_request must be >= 1")
	}
	if cfg.MaxHostsPerRoot < 0 {
		return fmt.Errorf("max_hosts_per_root must be >= 0")
	}
	if cfg.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be >= 1")
	}
	if cfg.RequestTimeoutMs < 1 {
		return fmt.Errorf("request_timeout_ms must be >= 1")
	}
	if cfg.ClientTimeoutMs < 1 {
		return fmt.Errorf("client_timeout_ms must be >= 1")
	}
	if _, err := cfg.ExcludeRegexps(); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// DefaultAllow reports whether paths without a matching robots rule may be crawled
func (cfg *Config) DefaultAllow() bool {
	return cfg.DefaultPermission != PermissionDisallow
}

// RequestTimeout is the time a single fetch attempt is given before a retry starts
func (cfg *Config) RequestTimeout() time.Duration {
	return time.Duration(cfg.RequestTimeoutMs) * time.Millisecond
}

// ClientTimeout bounds one HTTP request. An attempt outlived by the retry
// timer keeps running in the background until it completes or this expires.
func (cfg *Config) ClientTimeout() time.Duration {
	return time.Duration(cfg.ClientTimeoutMs) * time.Millisecond
}

// ExcludeRegexps compiles the host exclusion patterns
func (cfg *Config) ExcludeRegexps() ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.ExcludePatterns))
	for _, expr := range cfg.ExcludePatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("exclude_patterns: %q: %w", expr, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

// Package config loads the gitfs YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
)

// Version is the only configuration format version understood.
const Version = "1.0"

// DefaultPath is where the CLI looks for a configuration file.
const DefaultPath = "gitfs.yaml"

// Config is the root of gitfs.yaml.
type Config struct {
	Version string        `yaml:"version"`
	Logging LoggingConfig `yaml:"logging"`
	Retry   RetryConfig   `yaml:"retry"`
	Fixture FixtureConfig `yaml:"fixture"`
	Publish PublishConfig `yaml:"publish"`
	Journal JournalConfig `yaml:"journal"`
	Metrics MetricsConfig `yaml:"metrics"`
	Watch   WatchConfig   `yaml:"watch"`
}

// FixtureConfig drives `gitfs fixture`.
type FixtureConfig struct {
	RemoteName    string `yaml:"remote_name"`    // remote added after the first commit
	RemoteURL     string `yaml:"remote_url"`     // URL of that remote
	Placeholder   string `yaml:"placeholder"`    // file committed in the fresh repository
	Content       string `yaml:"content"`        // content of the placeholder
	CommitMessage string `yaml:"commit_message"` // message of the single commit
	AuthorName    string `yaml:"author_name"`
	AuthorEmail   string `yaml:"author_email"`
	SkipFetch     bool   `yaml:"skip_fetch"` // do not fetch the remote after adding it
}

// PublishConfig drives `gitfs publish`.
type PublishConfig struct {
	Branch        string      `yaml:"branch"`         // CI branch allowed to publish
	TargetBranch  string      `yaml:"target_branch"`  // branch receiving the documentation
	BuildCommand  string      `yaml:"build_command"`  // shell command producing the docs
	DocsDir       string      `yaml:"docs_dir"`       // directory imported into TargetBranch
	RemoteHost    string      `yaml:"remote_host"`    // host of the push URL
	CommitMessage string      `yaml:"commit_message"` // message of the import commit
	NoJekyll      *bool       `yaml:"nojekyll,omitempty"`
	Auth          *AuthConfig `yaml:"auth,omitempty"` // overrides the token embedded in the push URL
}

// WithNoJekyll reports whether an empty .nojekyll file is added to imports.
func (p PublishConfig) WithNoJekyll() bool { return p.NoJekyll == nil || *p.NoJekyll }

// JournalConfig controls the operation journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // SQLite database file
}

// MetricsConfig controls Prometheus export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // written at exit when set
	Listen   string `yaml:"listen,omitempty"`   // address serving /metrics during watch
}

// WatchConfig controls `gitfs watch`.
type WatchConfig struct {
	Debounce string `yaml:"debounce"` // quiet period before reporting ref changes
	Rescan   string `yaml:"rescan"`   // periodic full rescan interval, empty disables it
}

// DebounceDuration parses Debounce; validated configs never fail.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(w.Debounce)
	return d
}

// RescanInterval parses Rescan, zero when disabled.
func (w WatchConfig) RescanInterval() time.Duration {
	if w.Rescan == "" {
		return 0
	}
	d, _ := time.ParseDuration(w.Rescan)
	return d
}

// Load reads, normalizes, defaults and validates a configuration file. A
// .env file next to the working directory is loaded first; ${VAR}
// references are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", slog.String("reason", err.Error()))
	}

	// #nosec G304 - path is supplied by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration file").
			WithContext("path", configPath).Build()
	}
	return Parse(data)
}

// Parse is Load for in-memory content.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse configuration").Build()
	}
	if strings.TrimSpace(cfg.Version) != Version {
		return nil, ferrors.ConfigError("unsupported configuration version").
			WithContext("version", cfg.Version).
			WithContext("expected", Version).Build()
	}
	return Finalize(&cfg)
}

// Finalize runs normalization, defaults and validation on cfg.
func Finalize(cfg *Config) (*Config, error) {
	res, err := Normalize(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Warnings {
		slog.Warn("Config normalization", slog.String("detail", w))
	}
	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Version: Version}
	_ = NewDefaultApplier().ApplyDefaults(cfg)
	return cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.NewError(ferrors.CategoryAlreadyExists, "configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	example := Default()
	example.Logging.Level = LogLevelInfo
	example.Journal.Enabled = true
	example.Metrics.Textfile = ""

	data, err := yaml.Marshal(example)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "marshal example configuration").Build()
	}
	header := "# gitfs configuration. ${VAR} references are expanded from the environment and .env.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write configuration file").
			WithContext("path", configPath).Build()
	}
	return nil
}

// LoadOrDefault loads configPath when it exists and falls back to defaults
// otherwise. An explicit path that does not exist is an error.
func LoadOrDefault(configPath string, explicit bool) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil && os.IsNotExist(err) && !explicit {
		if envErr := loadEnvFile(); envErr != nil {
			slog.Debug("No .env file loaded", slog.String("reason", envErr.Error()))
		}
		return Default(), nil
	}
	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", configPath, err)
	}
	return cfg, nil
}

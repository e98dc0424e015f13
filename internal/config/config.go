package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the machine-wide paths and tunables shared by the emberctl
// subcommands. Every singleton path (state document, lock, sentinel, updater
// log) is configuration rather than a hard-coded constant so tests and
// derivative images can point the tooling elsewhere.
type Config struct {
	// StateFile is the path of the persisted release state document.
	StateFile string `yaml:"state_file"`
	// LockFile is the path used as the machine-wide track-switch lock.
	LockFile string `yaml:"lock_file"`
	// SentinelFile is the marker path the background updater creates once a
	// triggered update has been staged and is ready to apply.
	SentinelFile string `yaml:"sentinel_file"`
	// UpdaterLogFile is the log file of the background updater, streamed to
	// the operator while a switch is waiting for completion.
	UpdaterLogFile string `yaml:"updater_log_file"`
	// PackagesFile is the custom package overlay list, one name per line.
	PackagesFile string `yaml:"packages_file"`
	// Timeout is the duration for catalog HTTP requests.
	Timeout time.Duration `yaml:"timeout"`
	// PollInterval is the fallback polling interval for sentinel detection.
	PollInterval time.Duration `yaml:"poll_interval"`
	// MaxPromptAttempts bounds the interactive track selection loop.
	MaxPromptAttempts int `yaml:"max_prompt_attempts"`
}

const (
	// DefaultConfigFilename is the default path of the settings file.
	DefaultConfigFilename = "/etc/emberctl/settings.yaml"

	// DefaultStateFilename is the default path of the release state document.
	DefaultStateFilename = "/var/lib/emberos/release.json"

	// DefaultLockFilename is the default path of the track-switch lock.
	DefaultLockFilename = "/run/emberos/track.lock"

	// DefaultSentinelFilename is the default path of the pending-update
	// sentinel, on the mount the updater stages images under.
	DefaultSentinelFilename = "/images/.update-ready"

	// DefaultUpdaterLogFilename is the default background updater log path.
	DefaultUpdaterLogFilename = "/var/log/ember-updated.log"

	// DefaultPackagesFilename is the default custom package list path.
	DefaultPackagesFilename = "/var/lib/emberos/packages"

	// DefaultTimeout is the default duration for catalog requests.
	DefaultTimeout = 15 * time.Second

	// DefaultPollInterval is the default sentinel polling interval.
	DefaultPollInterval = 2 * time.Second

	// DefaultMaxPromptAttempts is the default bound on the selection loop.
	DefaultMaxPromptAttempts = 3

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o644
)

// Load reads configuration from the provided path and applies defaults.
// A missing settings file is not an error: an image that ships no settings
// runs entirely on defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	var cfg Config

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	} else if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	ApplyDefaults(&cfg)

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// ApplyDefaults fills unset fields with their default values.
func ApplyDefaults(cfg *Config) {
	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFilename
	}

	if cfg.LockFile == "" {
		cfg.LockFile = DefaultLockFilename
	}

	if cfg.SentinelFile == "" {
		cfg.SentinelFile = DefaultSentinelFilename
	}

	if cfg.UpdaterLogFile == "" {
		cfg.UpdaterLogFile = DefaultUpdaterLogFilename
	}

	if cfg.PackagesFile == "" {
		cfg.PackagesFile = DefaultPackagesFilename
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.MaxPromptAttempts <= 0 {
		cfg.MaxPromptAttempts = DefaultMaxPromptAttempts
	}
}

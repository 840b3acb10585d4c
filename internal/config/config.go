package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the externally configurable surface of the tool.
// Everything else (retry policy, timeouts, launch arguments, probe endpoint,
// countdown duration) is a fixed constant of the setup service.
type Config struct {
	// WorkDir is the working directory where the installer artifact and its
	// logs are kept.
	WorkDir string `yaml:"work_dir"`
	// JournalFile is the path of the operator-facing run log.
	JournalFile string `yaml:"journal_file"`
	// Quiet suppresses the on-screen countdown notification.
	Quiet bool `yaml:"quiet"`
	// InstallerURL overrides the built-in distribution point URL.
	InstallerURL string `yaml:"installer_url"`
	// InstallerChecksum is an optional base64-encoded SHA-512 checksum of the
	// installer. When set, the downloaded artifact must match it.
	InstallerChecksum string `yaml:"installer_checksum"`
	// NoElevation launches the installer without requesting elevation.
	NoElevation bool `yaml:"no_elevation"`
}

const (
	// DefaultConfigFilename is the default filename for tool settings.
	DefaultConfigFilename = "silent-setup-settings.yaml"

	// DefaultInstallerURL is the built-in distribution point for the
	// installer executable. The URL is a stable redirect maintained by the
	// software owners; overriding it is only needed for mirrored setups.
	DefaultInstallerURL = "https://soft.office.lan/distrib/agent/agent-setup.exe"

	// DefaultJournalFilename is the default filename of the run log inside
	// the working directory.
	DefaultJournalFilename = "silent-setup.log"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// defaultWorkDirName is the working directory created under the system
	// temporary directory when no directory is configured.
	defaultWorkDirName = "silent-setup"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errBadChecksum is returned when the configured checksum is not base64.
	errBadChecksum = errors.New("installer checksum must be base64-encoded")
)

// Default returns a configuration filled with built-in defaults.
func Default() *Config {
	cfg := new(Config)
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults and checks the provided settings for formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if _, err := url.ParseRequestURI(cfg.InstallerURL); err != nil {
		return fmt.Errorf("invalid installer URL: %w", err)
	}

	if cfg.InstallerChecksum != "" {
		if _, err := base64.StdEncoding.DecodeString(cfg.InstallerChecksum); err != nil {
			return fmt.Errorf("%w: %v", errBadChecksum, err)
		}
	}

	return nil
}

// Checksum returns the decoded installer checksum, or nil when not configured.
// Validate must have accepted the configuration first.
func (c *Config) Checksum() []byte {
	if c.InstallerChecksum == "" {
		return nil
	}

	checksum, err := base64.StdEncoding.DecodeString(c.InstallerChecksum)
	if err != nil {
		return nil
	}

	return checksum
}

// applyDefaults substitutes built-in defaults for unset fields.
func applyDefaults(cfg *Config) {
	if cfg.WorkDir == "" {
		cfg.WorkDir = filepath.Join(os.TempDir(), defaultWorkDirName)
	}

	if cfg.JournalFile == "" {
		cfg.JournalFile = filepath.Join(cfg.WorkDir, DefaultJournalFilename)
	}

	if cfg.InstallerURL == "" {
		cfg.InstallerURL = DefaultInstallerURL
	}
}

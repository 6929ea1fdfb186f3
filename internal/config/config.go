package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds launcher settings shared by the CLI and services.
type Config struct {
	// RepoOwner is the GitHub account hosting the game repository.
	RepoOwner string `yaml:"repo_owner"`
	// RepoName is the game repository name.
	RepoName string `yaml:"repo_name"`
	// VersionsDir is the root directory holding installed versions.
	VersionsDir string `yaml:"versions_dir"`
	// UsePrebuilt prefers prebuilt release assets over building from source.
	UsePrebuilt bool `yaml:"use_prebuilt_when_possible"`
	// BuildUnsupported allows building versions without a prebuilt binary
	// for this platform from source (requires git and cmake).
	BuildUnsupported bool `yaml:"build_unsupported"`
}

const (
	// DefaultConfigFilename is the default filename for launcher settings.
	DefaultConfigFilename = "voxel-launcher-settings.yaml"

	// DefaultRepoOwner is the GitHub account hosting the game.
	DefaultRepoOwner = "MihailRis"

	// DefaultRepoName is the game repository name.
	DefaultRepoName = "VoxelEngine-Cpp"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errRepoOwnerRequired is returned when the repository owner is missing.
	errRepoOwnerRequired = errors.New("repository owner must be provided")
	// errRepoNameRequired is returned when the repository name is missing.
	errRepoNameRequired = errors.New("repository name must be provided")
)

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		RepoOwner:   DefaultRepoOwner,
		RepoName:    DefaultRepoName,
		UsePrebuilt: true,
	}
}

// Load reads configuration from the provided path and validates essential
// fields. A missing file is not an error: the launcher runs fine with
// defaults on a fresh machine.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to the provided path.
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

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.RepoOwner == "" {
		return errRepoOwnerRequired
	}

	if cfg.RepoName == "" {
		return errRepoNameRequired
	}

	return nil
}

package manager

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/voxel-launcher/internal/config"
)

// RecordFilename is the per-version install record stored inside the version directory.
const RecordFilename = "version.yaml"

// Origin identifies how a version was installed.
type Origin string

const (
	// OriginBinary marks a version installed from a prebuilt release asset.
	OriginBinary Origin = "binary"
	// OriginSource marks a version built from a release source archive.
	OriginSource Origin = "source"
	// OriginGit marks a version built from a cloned repository.
	OriginGit Origin = "git"
)

// Record describes a completed install so later runs can start the game
// without consulting the release listing.
type Record struct {
	// Binary is the game executable path relative to the version directory.
	Binary string `yaml:"binary"`
	// Origin is how this version was obtained.
	Origin Origin `yaml:"origin"`
	// URL is the download location the install came from, empty for git installs.
	URL string `yaml:"url,omitempty"`
}

// loadRecord reads the install record of a version directory.
func loadRecord(versionDir string) (*Record, error) {
	contents, err := os.ReadFile(filepath.Clean(filepath.Join(versionDir, RecordFilename)))
	if err != nil {
		return nil, err
	}

	var record Record
	if err = yaml.Unmarshal(contents, &record); err != nil {
		return nil, fmt.Errorf("unmarshal install record: %w", err)
	}

	if record.Binary == "" {
		return nil, fmt.Errorf("unmarshal install record: %w", errEmptyRecord)
	}

	return &record, nil
}

// saveRecord writes the install record into the version directory.
func saveRecord(versionDir string, record *Record) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal install record: %w", err)
	}

	path := filepath.Clean(filepath.Join(versionDir, RecordFilename))
	if err = os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write install record: %w", err)
	}

	return nil
}

package home

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDirName is the default name for the lompack home directory.
	DefaultDirName = ".lompack"

	// MediaDirName is the subdirectory holding attached media files.
	MediaDirName = "media"

	// DatabaseFileName is the SQLite database holding records and media rows.
	DatabaseFileName = "lompack.db"

	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
)

// Dir represents the lompack home directory structure.
type Dir struct {
	path string
}

// New creates a new Dir with the given path.
// If path is empty, uses the default (~/.lompack).
func New(path string) (*Dir, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(home, DefaultDirName)
	}

	return &Dir{path: path}, nil
}

// Path returns the root path of the home directory.
func (d *Dir) Path() string {
	return d.path
}

// DatabasePath returns the path to the record database.
func (d *Dir) DatabasePath() string {
	return filepath.Join(d.path, DatabaseFileName)
}

// ConfigPath returns the path to the default config file.
func (d *Dir) ConfigPath() string {
	return filepath.Join(d.path, ConfigFileName)
}

// MediaDir returns the media directory for a record.
func (d *Dir) MediaDir(recordID string) string {
	return filepath.Join(d.path, MediaDirName, recordID)
}

// MediaPath returns the path of one stored media file.
func (d *Dir) MediaPath(recordID, name string) string {
	return filepath.Join(d.MediaDir(recordID), name)
}

// EnsureExists creates the home directory and subdirectories if they don't exist.
func (d *Dir) EnsureExists() error {
	if err := os.MkdirAll(filepath.Join(d.path, MediaDirName), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	return nil
}

// EnsureMediaDir creates the media directory for a record.
func (d *Dir) EnsureMediaDir(recordID string) error {
	return os.MkdirAll(d.MediaDir(recordID), 0o755)
}

// Exists returns true if the home directory exists.
func (d *Dir) Exists() bool {
	_, err := os.Stat(d.path)
	return err == nil
}

// ConfigExists returns true if the config file exists in the home directory.
func (d *Dir) ConfigExists() bool {
	_, err := os.Stat(d.ConfigPath())
	return err == nil
}

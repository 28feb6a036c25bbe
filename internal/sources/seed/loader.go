package seed

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader reads and writes seed files.
type Loader struct {
	filePath string
}

// NewLoader creates a loader bound to one file.
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file the loader is bound to.
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads and parses the seed file.
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	return f, nil
}

// Write serializes f to the seed file, replacing it atomically.
func (l *Loader) Write(f File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode seed yaml: %w", err)
	}

	dir := filepath.Dir(l.filePath)
	tmp, err := os.CreateTemp(dir, ".seed-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write seed file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write seed file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.filePath); err != nil {
		return fmt.Errorf("failed to replace seed file: %w", err)
	}
	return nil
}

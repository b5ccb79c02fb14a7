// Package storage persists the manifest record: the structured source of
// truth for the set of generated icons. The generated index module is a
// projection of this record.
package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/iconforge/export"
)

// RecordVersion is the current record format version.
const RecordVersion = 1

const recordHeader = "# Code generated by iconforge. DO NOT EDIT.\n"

// record is the on-disk layout.
type record struct {
	Version int            `yaml:"version"`
	Icons   []export.Entry `yaml:"icons"`
}

// Store reads and writes the manifest record at a fixed path.
type Store struct {
	path string
}

// NewStore creates a store for the record at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the record location.
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether a record has been written.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the record. It returns ErrNotFound when none exists.
func (s *Store) Load() (*export.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest record: %w", err)
	}

	var rec record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse manifest record %s: %w", s.path, err)
	}
	if rec.Version > RecordVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}
	return export.NewManifest(rec.Icons...), nil
}

// Save writes m sorted by name. The file is replaced atomically so a
// failed write never leaves a truncated record.
func (s *Store) Save(m *export.Manifest) error {
	entries := m.Entries()
	if entries == nil {
		entries = []export.Entry{}
	}

	var buf bytes.Buffer
	buf.WriteString(recordHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(record{Version: RecordVersion, Icons: entries}); err != nil {
		return fmt.Errorf("marshal manifest record: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("marshal manifest record: %w", err)
	}

	return WriteFileAtomic(s.path, buf.Bytes(), 0644)
}

// Delete removes the record. A missing record is not an error.
func (s *Store) Delete() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete manifest record: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

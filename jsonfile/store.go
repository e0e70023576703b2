// Package jsonfile persists snapshot records as one JSON file per identifier.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/leohentschker/vslint"
)

// Compile-time interface verification.
var _ vslint.SnapshotStore = (*Store)(nil)

// Store reads and writes SnapshotRecords under a directory, one
// <identifier>.json file per record.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Read returns the record for identifier, or nil if the file is missing or
// cannot be parsed. Corruption is deliberately absorbed: a broken record
// forces a fresh review instead of failing the run.
func (s *Store) Read(identifier string) (*vslint.SnapshotRecord, error) {
	data, err := os.ReadFile(s.path(identifier))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var record vslint.SnapshotRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, nil
	}
	if record.ContentHash == "" {
		return nil, nil
	}
	if record.FailedRules == nil {
		record.FailedRules = []string{}
	}
	return &record, nil
}

// Write replaces the record for identifier, creating the directory if
// needed. Writing a byte-identical record leaves the existing file alone.
func (s *Store) Write(identifier string, record *vslint.SnapshotRecord) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	out := *record
	if out.FailedRules == nil {
		out.FailedRules = []string{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	path := s.path(identifier)
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) path(identifier string) string {
	return filepath.Join(s.dir, identifier+".json")
}

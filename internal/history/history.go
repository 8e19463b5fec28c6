// Package history persists per-run metric snapshots to an append-only JSON
// array file, the long-term record `pyqa watch` and `pyqa history` trend
// over.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Snapshot is one run's aggregate metrics. Field names are the on-disk
// contract; external consumers read this file.
type Snapshot struct {
	Date                time.Time `json:"date"`
	LintIssues          int       `json:"lint_issues"`
	SecurityIssues      int       `json:"security_issues"`
	FormattingIssues    int       `json:"formatting_issues"`
	DocumentationIssues int       `json:"documentation_issues"`
	DuplicationIssues   int       `json:"duplication_issues"`
	CodeCoverage        float64   `json:"code_coverage"`
	Vulnerabilities     int       `json:"vulnerabilities"`
}

// Store reads and appends snapshots at a fixed path.
type Store struct {
	path string
}

// NewStore returns a store over the given file path. The file and its
// directory are created lazily on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load returns all snapshots in append order. A missing file is an empty
// history, not an error.
func (s *Store) Load() ([]Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var snaps []Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("decoding history %s: %w", s.path, err)
	}
	return snaps, nil
}

// Append adds one snapshot to the history. The full array is rewritten to a
// temp file in the same directory and renamed over the original, so a crash
// mid-write never corrupts previously committed entries.
func (s *Store) Append(snap Snapshot) error {
	snaps, err := s.Load()
	if err != nil {
		return err
	}
	snaps = append(snaps, snap)

	data, err := json.MarshalIndent(snaps, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("creating temp history: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp history: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing history: %w", err)
	}
	return nil
}

// Latest returns the most recent snapshot, or nil when the history is empty.
func (s *Store) Latest() (*Snapshot, error) {
	snaps, err := s.Load()
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, nil
	}
	return &snaps[len(snaps)-1], nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/grant-mapper/pkg/types"
)

// ProgressStore persists the RunProgress document. Writes go through a
// temp file and rename so a crash mid-save cannot corrupt the state a
// later resume depends on.
type ProgressStore struct {
	path string
}

// NewProgressStore returns a store backed by the given file path.
func NewProgressStore(path string) ProgressStore {
	return ProgressStore{path: path}
}

// Load reads the progress document. A missing file returns (nil, nil),
// which callers treat as a fresh run.
func (s ProgressStore) Load() (*types.RunProgress, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading progress file %s: %w", s.path, err)
	}

	var p types.RunProgress
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing progress file %s: %w", s.path, err)
	}
	return &p, nil
}

// Save persists the progress document, stamping UpdatedAt.
func (s ProgressStore) Save(p types.RunProgress) error {
	p.UpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling progress: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating progress directory: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing progress temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing progress file: %w", err)
	}
	return nil
}

// Delete removes the progress document. Missing files are not errors:
// the document only exists while a run is in flight.
func (s ProgressStore) Delete() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing progress file %s: %w", s.path, err)
	}
	return nil
}

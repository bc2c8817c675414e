// Package state persists the run marker between invocations.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

type Store struct {
	filename string
}

func NewStore(dataDir string) *Store {
	return &Store{filename: filepath.Join(dataDir, "logger-state", "state.json")}
}

// Load reads the persisted run state. A missing file is a first run, not
// an error.
func (s *Store) Load(_ context.Context) (domain.RunState, error) {
	data, err := os.ReadFile(s.filename)
	if os.IsNotExist(err) {
		return domain.RunState{}, nil
	}
	if err != nil {
		return domain.RunState{}, fmt.Errorf("failed to read run state %s: %w", s.filename, err)
	}

	var state domain.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.RunState{}, fmt.Errorf("failed to parse run state %s: %w", s.filename, err)
	}

	return state, nil
}

func (s *Store) Save(_ context.Context, state domain.RunState) error {
	if err := os.MkdirAll(filepath.Dir(s.filename), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run state: %w", err)
	}

	if err := os.WriteFile(s.filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run state %s: %w", s.filename, err)
	}

	return nil
}

// Package snapshot saves and reloads inventory snapshots for
// deterministic replay of a billing run.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

type Store struct {
	filename string
}

func NewStore(filename string) *Store {
	return &Store{filename: filename}
}

// Snapshot loads a previously saved snapshot. Snapshots older than the
// current schema version lack data the pipeline depends on and are
// rejected instead of silently producing an incomplete report.
func (s *Store) Snapshot(_ context.Context) (*domain.Snapshot, error) {
	data, err := os.ReadFile(s.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", s.filename, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", s.filename, err)
	}

	if snap.Version < domain.CurrentSnapshotVersion {
		return nil, fmt.Errorf("snapshot %s has version %d, need at least %d",
			s.filename, snap.Version, domain.CurrentSnapshotVersion)
	}

	return &snap, nil
}

func (s *Store) Save(_ context.Context, snap *domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := os.WriteFile(s.filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", s.filename, err)
	}

	return nil
}

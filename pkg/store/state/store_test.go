package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

func TestStore_FirstRunHasNoMarker(t *testing.T) {
	store := NewStore(t.TempDir())

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, state.LastBilledHour)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(t.TempDir())

	hour := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, domain.RunState{LastBilledHour: &hour}))

	state, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, state.LastBilledHour)
	assert.True(t, state.LastBilledHour.Equal(hour))
}

func TestStore_UsesLastTimepointKey(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	hour := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	require.NoError(t, NewStore(dir).Save(ctx, domain.RunState{LastBilledHour: &hour}))

	data, err := os.ReadFile(filepath.Join(dir, "logger-state", "state.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "last_timepoint")
}

func TestStore_CorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logger-state"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logger-state", "state.json"), []byte("{"), 0o644))

	_, err := NewStore(dir).Load(context.Background())
	assert.Error(t, err)
}

package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
	"github.com/de-tools/cloud-ledger/pkg/services/pricing"
)

// Phase tracks where a run ended up. A run either commits completely or
// aborts without touching the persisted marker, so a retry reattempts the
// same hour.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseChecking       Phase = "checking"
	PhaseShortCircuited Phase = "short_circuited"
	PhaseRunning        Phase = "running"
	PhaseCommitted      Phase = "committed"
	PhaseAborted        Phase = "aborted"
)

// InventorySource produces the snapshot for one run, either from the live
// region APIs or from a saved snapshot file.
type InventorySource interface {
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

// ReportWriter serializes one run's records, keyed by the billed hour.
type ReportWriter interface {
	Write(ctx context.Context, hour time.Time, records *domain.RecordSet) error
}

// StateStore persists the run marker across invocations.
type StateStore interface {
	Load(ctx context.Context) (domain.RunState, error)
	Save(ctx context.Context, state domain.RunState) error
}

// SnapshotSink receives the fetched snapshot when --save-snapshot is set.
type SnapshotSink interface {
	Save(ctx context.Context, snap *domain.Snapshot) error
}

type Dependencies struct {
	Source InventorySource
	Writer ReportWriter
	States StateStore

	// SnapshotSink is optional; when set, the snapshot is persisted before
	// records are built.
	SnapshotSink SnapshotSink
}

type RunOptions struct {
	// Force bypasses the once-per-hour short circuit.
	Force bool

	// DryRun performs the full computation but writes neither the report
	// nor the run marker.
	DryRun bool
}

type Result struct {
	Phase   Phase
	Hour    time.Time
	Records *domain.RecordSet
}

// Runner gates and drives one billing run.
type Runner struct {
	settings Settings
	rates    domain.RegionRates
	tags     map[string]string
	deps     Dependencies
	now      func() time.Time
}

func NewRunner(settings Settings, rates domain.RegionRates, tags map[string]string, deps Dependencies) *Runner {
	return &Runner{
		settings: settings,
		rates:    rates,
		tags:     tags,
		deps:     deps,
		now:      time.Now,
	}
}

// Run executes at most one billing pass for the current hour. It returns
// PhaseShortCircuited without side effects when the hour is already
// billed, PhaseCommitted on success, and PhaseAborted with the error
// otherwise; an aborted run never persists the marker.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (Result, error) {
	logger := zerolog.Ctx(ctx)

	hour := r.now().UTC().Truncate(time.Hour)
	result := Result{Phase: PhaseChecking, Hour: hour}

	state, err := r.deps.States.Load(ctx)
	if err != nil {
		result.Phase = PhaseAborted
		return result, fmt.Errorf("failed to load run state: %w", err)
	}

	if !opts.Force && state.LastBilledHour != nil && state.LastBilledHour.Equal(hour) {
		logger.Info().Time("hour", hour).Msg("hour already billed, nothing to do")
		result.Phase = PhaseShortCircuited
		return result, nil
	}

	result.Phase = PhaseRunning

	snap, err := r.deps.Source.Snapshot(ctx)
	if err != nil {
		result.Phase = PhaseAborted
		return result, fmt.Errorf("failed to obtain inventory snapshot: %w", err)
	}
	if snap.Version < domain.CurrentSnapshotVersion {
		result.Phase = PhaseAborted
		return result, fmt.Errorf("snapshot version %d predates required version %d", snap.Version, domain.CurrentSnapshotVersion)
	}

	if r.deps.SnapshotSink != nil {
		if err := r.deps.SnapshotSink.Save(ctx, snap); err != nil {
			result.Phase = PhaseAborted
			return result, fmt.Errorf("failed to save snapshot: %w", err)
		}
	}

	dir := domain.NewDirectory(snap)
	resolver := pricing.NewResolver(r.rates, r.tags, dir)
	builder := NewBuilder(r.settings, resolver, dir)

	window := Window{Start: hour, End: hour.Add(time.Hour)}
	records, breakdown := builder.Build(ctx, snap, window)
	breakdown.LogSummary(ctx, records)
	result.Records = records

	if opts.DryRun {
		logger.Info().Msg("dry run, skipping report and state updates")
		result.Phase = PhaseCommitted
		return result, nil
	}

	if err := r.deps.Writer.Write(ctx, hour, records); err != nil {
		result.Phase = PhaseAborted
		return result, fmt.Errorf("failed to write report: %w", err)
	}

	state.LastBilledHour = &hour
	if err := r.deps.States.Save(ctx, state); err != nil {
		result.Phase = PhaseAborted
		return result, fmt.Errorf("failed to persist run state: %w", err)
	}

	result.Phase = PhaseCommitted
	return result, nil
}

package billing

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

// Breakdown accumulates per-project cost totals while records are built.
// It feeds the end-of-run summary log and nothing else; suppressed
// zero-cost resources still count here so operators can see them.
type Breakdown struct {
	Servers map[Category]map[string]decimal.Decimal
	Volumes map[string]decimal.Decimal
	Images  map[string]decimal.Decimal
	Buckets map[string]decimal.Decimal
}

func NewBreakdown() *Breakdown {
	return &Breakdown{
		Servers: make(map[Category]map[string]decimal.Decimal),
		Volumes: make(map[string]decimal.Decimal),
		Images:  make(map[string]decimal.Decimal),
		Buckets: make(map[string]decimal.Decimal),
	}
}

func (b *Breakdown) AddServer(cat Category, project string, cost decimal.Decimal) {
	byProject, ok := b.Servers[cat]
	if !ok {
		byProject = make(map[string]decimal.Decimal)
		b.Servers[cat] = byProject
	}
	byProject[project] = byProject[project].Add(cost)
}

func (b *Breakdown) AddVolume(project string, cost decimal.Decimal) {
	b.Volumes[project] = b.Volumes[project].Add(cost)
}

func (b *Breakdown) AddImage(project string, cost decimal.Decimal) {
	b.Images[project] = b.Images[project].Add(cost)
}

func (b *Breakdown) AddBucket(project string, cost decimal.Decimal) {
	b.Buckets[project] = b.Buckets[project].Add(cost)
}

// LogSummary writes the per-project totals for one run.
func (b *Breakdown) LogSummary(ctx context.Context, records *domain.RecordSet) {
	logger := zerolog.Ctx(ctx)

	for cat, byProject := range b.Servers {
		for project, total := range byProject {
			logger.Info().
				Str("project", project).
				Str("category", string(cat)).
				Str("total_cost", total.String()).
				Msg("server cost summary")
		}
	}
	for project, total := range b.Volumes {
		logger.Info().Str("project", project).Str("total_cost", total.String()).Msg("volume cost summary")
	}
	for project, total := range b.Images {
		logger.Info().Str("project", project).Str("total_cost", total.String()).Msg("image cost summary")
	}
	for project, total := range b.Buckets {
		logger.Info().Str("project", project).Str("total_cost", total.String()).Msg("bucket cost summary")
	}

	logger.Info().
		Int("compute_records", len(records.Compute)).
		Int("storage_records", len(records.Storage)).
		Msg("billing records built")
}

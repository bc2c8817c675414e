package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cost kinds understood by the rate table. A compute rate is keyed by the
// flavor name instead.
const (
	CostKindBlockStorage  = "storage.block"
	CostKindObjectStorage = "storage.object"
)

// CostTable maps region -> resource tag -> cost kind -> hourly rate.
type CostTable struct {
	Regions map[string]RegionRates `json:"regions"`
}

// RegionRates maps resource tag -> cost kind -> hourly rate.
type RegionRates map[string]map[string]decimal.Decimal

// RunState is the only state carried across invocations: the last hour a
// report was successfully written for.
type RunState struct {
	LastBilledHour *time.Time `json:"last_timepoint,omitempty"`
}

// Package costs loads the site's region cost table.
package costs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

// Store holds the cost table loaded once per run.
type Store struct {
	table domain.CostTable
}

// Load reads <datadir>/logger-state/costs.json.
func Load(dataDir string) (*Store, error) {
	filename := filepath.Join(dataDir, "logger-state", "costs.json")

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read cost table %s: %w", filename, err)
	}

	var table domain.CostTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse cost table %s: %w", filename, err)
	}

	return &Store{table: table}, nil
}

// RegionRates returns the rate slice for one region. A region absent from
// the table is a configuration error, not an empty result.
func (s *Store) RegionRates(region string) (domain.RegionRates, error) {
	rates, ok := s.table.Regions[region]
	if !ok {
		return nil, fmt.Errorf("region %q not found in cost table", region)
	}
	return rates, nil
}

// Package radosgw collects object storage usage by shelling out to the
// radosgw-admin tool on the gateway host.
package radosgw

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/de-tools/cloud-ledger/pkg/adapters"
	"github.com/de-tools/cloud-ledger/pkg/models/api"
	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

type Collector struct {
	command string
}

func NewCollector() *Collector {
	return &Collector{command: "radosgw-admin"}
}

// BucketStats runs `radosgw-admin bucket stats` and parses its JSON
// output into the domain representation.
func (c *Collector) BucketStats(ctx context.Context) ([]domain.BucketStats, error) {
	out, err := exec.CommandContext(ctx, c.command, "bucket", "stats").Output()
	if err != nil {
		return nil, fmt.Errorf("%s bucket stats failed: %w", c.command, err)
	}

	var stats []api.BucketStats
	if err := json.Unmarshal(out, &stats); err != nil {
		return nil, fmt.Errorf("could not parse %s output: %w", c.command, err)
	}

	ret := make([]domain.BucketStats, 0, len(stats))
	for _, s := range stats {
		ret = append(ret, adapters.MapAPIBucketStatsToDomain(s))
	}

	return ret, nil
}

package billing

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
	"github.com/de-tools/cloud-ledger/pkg/services/pricing"
)

// Sentinels used when a record has no meaningful user or zone, e.g.
// images and object buckets.
const (
	DefaultUser = "default"
	DefaultZone = "default"
)

const bytesPerGiB = uint64(1) << 30

var (
	decimalBytesPerGiB = decimal.NewFromUint64(bytesPerGiB)
	decimalKBPerGiB    = decimal.NewFromUint64(1 << 20)
)

// Window is the hour-aligned billing interval shared by every record of
// one run.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Settings carries the per-site constants stamped onto every record.
type Settings struct {
	Site   string
	Region string
}

// Builder turns one inventory snapshot into billing records. Servers are
// processed before volumes so that the discount ledger is fully populated
// when volumes are consumed.
type Builder struct {
	settings Settings
	resolver pricing.Resolver
	dir      *domain.Directory
	now      func() time.Time
}

func NewBuilder(settings Settings, resolver pricing.Resolver, dir *domain.Directory) *Builder {
	return &Builder{
		settings: settings,
		resolver: resolver,
		dir:      dir,
		now:      time.Now,
	}
}

// Build runs all four passes over the snapshot and returns the emitted
// records together with the per-project cost breakdown used for summary
// logging. Resources whose rate chain does not resolve are skipped, and
// no record with a zero cost is ever emitted.
func (b *Builder) Build(ctx context.Context, snap *domain.Snapshot, window Window) (*domain.RecordSet, *Breakdown) {
	records := &domain.RecordSet{}
	breakdown := NewBreakdown()
	ledger := NewLedger()

	b.buildCompute(ctx, snap, window, ledger, records, breakdown)
	b.buildVolumes(ctx, snap, window, ledger, records, breakdown)
	b.buildImages(ctx, snap, window, records, breakdown)
	b.buildBuckets(ctx, snap, window, records, breakdown)

	return records, breakdown
}

func (b *Builder) buildCompute(
	ctx context.Context,
	snap *domain.Snapshot,
	window Window,
	ledger *Ledger,
	records *domain.RecordSet,
	breakdown *Breakdown,
) {
	logger := zerolog.Ctx(ctx)

	for _, server := range snap.Servers {
		if server.Zone == "" {
			logger.Debug().Str("server", server.ID).Msg("skipping server without availability zone")
			continue
		}

		user, ok := b.dir.UserName(server.UserID)
		if !ok {
			logger.Debug().Str("server", server.ID).Str("user_id", server.UserID).Msg("skipping server with unknown user")
			continue
		}
		project, ok := b.dir.ProjectName(server.TenantID)
		if !ok {
			logger.Debug().Str("server", server.ID).Str("tenant_id", server.TenantID).Msg("skipping server with unknown project")
			continue
		}
		flavor, ok := snap.Flavors[server.FlavorID]
		if !ok {
			logger.Debug().Str("server", server.ID).Str("flavor_id", server.FlavorID).Msg("skipping server with unknown flavor")
			continue
		}

		cost, rateOK := b.resolver.Resolve(server.TenantID, flavor.Name)
		breakdown.AddServer(CategoryForStatus(server.Status), project, cost)
		if !rateOK {
			logger.Debug().Str("server", server.ID).Str("flavor", flavor.Name).Msg("no rate for flavor, skipping server")
			continue
		}

		if server.VolumeBacked() {
			ledger.Record(server.AttachedVolumeIDs[0], flavor.DiskGiB)
		}

		if cost.IsZero() {
			continue
		}

		tag, _ := b.resolver.ResolveTag(server.TenantID)

		records.Compute = append(records.Compute, domain.ComputeRecord{
			RecordCommon: b.common(window, recordFields{
				project:    project,
				user:       user,
				instanceID: server.ID,
				tag:        tag,
				zone:       server.Zone,
				cost:       cost,
				diskBytes:  flavor.DiskGiB * bytesPerGiB,
			}),
			Flavour:            flavor.Name,
			AllocatedCPU:       decimal.NewFromUint64(flavor.VCPUs),
			AllocatedMemoryMiB: flavor.RAMMiB,
		})
	}
}

func (b *Builder) buildVolumes(
	ctx context.Context,
	snap *domain.Snapshot,
	window Window,
	ledger *Ledger,
	records *domain.RecordSet,
	breakdown *Breakdown,
) {
	logger := zerolog.Ctx(ctx)

	for _, volume := range snap.Volumes {
		rate, ok := b.resolver.Resolve(volume.TenantID, domain.CostKindBlockStorage)
		if !ok {
			logger.Debug().Str("volume", volume.ID).Msg("no block storage rate, skipping volume")
			continue
		}

		billableGiB := ledger.Consume(volume.ID, volume.SizeGiB)

		user, ok := b.dir.UserName(volume.UserID)
		if !ok {
			logger.Debug().Str("volume", volume.ID).Str("user_id", volume.UserID).Msg("skipping volume with unknown user")
			continue
		}
		project, ok := b.dir.ProjectName(volume.TenantID)
		if !ok {
			logger.Debug().Str("volume", volume.ID).Str("tenant_id", volume.TenantID).Msg("skipping volume with unknown project")
			continue
		}

		cost := rate.Mul(decimal.NewFromUint64(billableGiB))
		breakdown.AddVolume(project, cost)
		if cost.IsZero() {
			continue
		}

		tag, _ := b.resolver.ResolveTag(volume.TenantID)

		records.Storage = append(records.Storage, domain.StorageRecord{
			RecordCommon: b.common(window, recordFields{
				project:    project,
				user:       user,
				instanceID: volume.ID,
				tag:        tag,
				zone:       volume.Zone,
				cost:       cost,
				diskBytes:  volume.SizeGiB * bytesPerGiB,
			}),
			StorageType: domain.StorageTypeBlock,
			FileCount:   0,
		})
	}
}

func (b *Builder) buildImages(
	ctx context.Context,
	snap *domain.Snapshot,
	window Window,
	records *domain.RecordSet,
	breakdown *Breakdown,
) {
	logger := zerolog.Ctx(ctx)

	for _, image := range snap.Images {
		owner, ok := image.OwnerProjectID()
		if !ok || image.SizeBytes == nil {
			continue
		}

		rate, ok := b.resolver.Resolve(owner, domain.CostKindBlockStorage)
		if !ok {
			logger.Debug().Str("image", image.ID).Msg("no block storage rate, skipping image")
			continue
		}

		project, ok := b.dir.ProjectName(owner)
		if !ok {
			logger.Debug().Str("image", image.ID).Str("owner", owner).Msg("skipping image with unknown owner project")
			continue
		}

		cost := decimal.NewFromUint64(*image.SizeBytes).Div(decimalBytesPerGiB).Mul(rate)
		breakdown.AddImage(project, cost)
		if cost.IsZero() {
			continue
		}

		user := DefaultUser
		if image.OwnerUserName != nil {
			// Only attribute the image when the name is known inside the
			// owner project's domain; the same name in another domain is a
			// different person.
			if domainID, ok := b.dir.ProjectDomainID(owner); ok && b.dir.UserKnownInDomain(*image.OwnerUserName, domainID) {
				user = *image.OwnerUserName
			}
		}

		tag, _ := b.resolver.ResolveTag(owner)

		records.Storage = append(records.Storage, domain.StorageRecord{
			RecordCommon: b.common(window, recordFields{
				project:    project,
				user:       user,
				instanceID: image.ID,
				tag:        tag,
				zone:       DefaultZone,
				cost:       cost,
				diskBytes:  *image.SizeBytes,
			}),
			StorageType: domain.StorageTypeBlock,
			FileCount:   0,
		})
	}
}

func (b *Builder) buildBuckets(
	ctx context.Context,
	snap *domain.Snapshot,
	window Window,
	records *domain.RecordSet,
	breakdown *Breakdown,
) {
	if snap.BucketStats == nil {
		zerolog.Ctx(ctx).Info().Msg("no bucket statistics in snapshot, skipping object storage")
		return
	}

	logger := zerolog.Ctx(ctx)

	for _, bucket := range snap.BucketStats {
		if len(bucket.Usage) == 0 {
			continue
		}

		var fileCount uint64
		gib := decimal.Zero
		for _, usage := range bucket.Usage {
			gib = gib.Add(decimal.NewFromUint64(usage.SizeKB).Div(decimalKBPerGiB))
			fileCount += usage.NumObjects
		}

		rate, ok := b.resolver.Resolve(bucket.Owner, domain.CostKindObjectStorage)
		if !ok {
			logger.Debug().Str("bucket", bucket.ID).Msg("no object storage rate, skipping bucket")
			continue
		}

		project, ok := b.dir.ProjectName(bucket.Owner)
		if !ok {
			logger.Debug().Str("bucket", bucket.ID).Str("owner", bucket.Owner).Msg("skipping bucket with unknown owner project")
			continue
		}

		cost := rate.Mul(gib)
		breakdown.AddBucket(project, cost)
		if cost.IsZero() {
			continue
		}

		tag, _ := b.resolver.ResolveTag(bucket.Owner)

		records.Storage = append(records.Storage, domain.StorageRecord{
			RecordCommon: b.common(window, recordFields{
				project:    project,
				user:       DefaultUser,
				instanceID: bucket.ID,
				tag:        tag,
				zone:       DefaultZone,
				cost:       cost,
				diskBytes:  uint64(gib.Mul(decimalBytesPerGiB).IntPart()),
			}),
			StorageType: domain.StorageTypeObject,
			FileCount:   fileCount,
		})
	}
}

type recordFields struct {
	project    string
	user       string
	instanceID string
	tag        string
	zone       string
	cost       decimal.Decimal
	diskBytes  uint64
}

func (b *Builder) common(window Window, f recordFields) domain.RecordCommon {
	return domain.RecordCommon{
		CreatedAt:          b.now().UTC(),
		Site:               b.settings.Site,
		Project:            f.project,
		User:               f.user,
		InstanceID:         f.instanceID,
		StartTime:          window.Start,
		EndTime:            window.End,
		Duration:           window.Duration(),
		Region:             b.settings.Region,
		ResourceTag:        f.tag,
		Zone:               f.zone,
		Cost:               f.cost,
		AllocatedDiskBytes: f.diskBytes,
	}
}

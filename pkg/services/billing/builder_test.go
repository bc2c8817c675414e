package billing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-ledger/pkg/models/domain"
	"github.com/de-tools/cloud-ledger/pkg/services/pricing"
)

var testWindow = Window{
	Start: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	End:   time.Date(2026, 8, 30, 11, 0, 0, 0, time.UTC),
}

func ptr[T any](v T) *T { return &v }

func baseSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Version: domain.CurrentSnapshotVersion,
		Flavors: map[string]domain.Flavor{
			"f-small": {ID: "f-small", Name: "m1.small", VCPUs: 1, RAMMiB: 2048, DiskGiB: 10},
			"f-free":  {ID: "f-free", Name: "m1.free", VCPUs: 1, RAMMiB: 512, DiskGiB: 5},
		},
		Users: []domain.User{
			{ID: "user-1", Name: "s11778", DomainID: "dom-1"},
		},
		Projects: []domain.Project{
			{ID: "proj-1", Name: "SNIC 2026/1-1", DomainID: "dom-1"},
		},
		Domains: []domain.Domain{
			{ID: "dom-1", Name: "snic"},
		},
	}
}

func newTestBuilder(snap *domain.Snapshot) *Builder {
	rates := domain.RegionRates{
		"SE-SNIC-SSC": {
			"m1.small":                   decimal.RequireFromString("0.5"),
			"m1.free":                    decimal.Zero,
			domain.CostKindBlockStorage:  decimal.RequireFromString("0.01"),
			domain.CostKindObjectStorage: decimal.RequireFromString("0.02"),
		},
	}
	dir := domain.NewDirectory(snap)
	resolver := pricing.NewResolver(rates, map[string]string{"snic": "SE-SNIC-SSC"}, dir)
	return NewBuilder(Settings{Site: "HPC2N", Region: "HPC2N"}, resolver, dir)
}

func TestBuilder_ComputeRecord(t *testing.T) {
	snap := baseSnapshot()
	snap.Servers = []domain.Server{
		{ID: "srv-1", UserID: "user-1", TenantID: "proj-1", FlavorID: "f-small",
			ImageRef: "img-1", Status: "ACTIVE", Zone: "nova"},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)

	require.Len(t, records.Compute, 1)
	rec := records.Compute[0]
	assert.Equal(t, "HPC2N", rec.Site)
	assert.Equal(t, "SNIC 2026/1-1", rec.Project)
	assert.Equal(t, "s11778", rec.User)
	assert.Equal(t, "srv-1", rec.InstanceID)
	assert.Equal(t, "m1.small", rec.Flavour)
	assert.Equal(t, "SE-SNIC-SSC", rec.ResourceTag)
	assert.Equal(t, "nova", rec.Zone)
	assert.True(t, rec.Cost.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, rec.AllocatedCPU.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, uint64(2048), rec.AllocatedMemoryMiB)
	assert.Equal(t, uint64(10)<<30, rec.AllocatedDiskBytes)
	assert.Equal(t, testWindow.Start, rec.StartTime)
	assert.Equal(t, testWindow.End, rec.EndTime)
	assert.Equal(t, time.Hour, rec.Duration)
}

func TestBuilder_ServerWithoutZoneSkipped(t *testing.T) {
	snap := baseSnapshot()
	snap.Servers = []domain.Server{
		{ID: "srv-1", UserID: "user-1", TenantID: "proj-1", FlavorID: "f-small",
			ImageRef: "img-1", Status: "ACTIVE"},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)
	assert.Empty(t, records.Compute)
}

func TestBuilder_ServerWithUnknownFlavorSkipped(t *testing.T) {
	snap := baseSnapshot()
	snap.Servers = []domain.Server{
		{ID: "srv-1", UserID: "user-1", TenantID: "proj-1", FlavorID: "f-gone",
			ImageRef: "img-1", Status: "ACTIVE", Zone: "nova"},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)
	assert.Empty(t, records.Compute)
}

func TestBuilder_ZeroCostComputeSuppressed(t *testing.T) {
	snap := baseSnapshot()
	snap.Servers = []domain.Server{
		{ID: "srv-1", UserID: "user-1", TenantID: "proj-1", FlavorID: "f-free",
			ImageRef: "img-1", Status: "ACTIVE", Zone: "nova"},
	}

	records, breakdown := newTestBuilder(snap).Build(context.Background(), snap, testWindow)
	assert.Empty(t, records.Compute)
	// The project still shows up in the breakdown with a zero total.
	assert.Contains(t, breakdown.Servers[CategoryActive], "SNIC 2026/1-1")
}

func TestBuilder_InactiveServerStillBilled(t *testing.T) {
	snap := baseSnapshot()
	snap.Servers = []domain.Server{
		{ID: "srv-1", UserID: "user-1", TenantID: "proj-1", FlavorID: "f-small",
			ImageRef: "img-1", Status: "SHUTOFF", Zone: "nova"},
	}

	records, breakdown := newTestBuilder(snap).Build(context.Background(), snap, testWindow)
	require.Len(t, records.Compute, 1)
	assert.Contains(t, breakdown.Servers[CategoryInactive], "SNIC 2026/1-1")
}

func TestBuilder_VolumeRecord(t *testing.T) {
	snap := baseSnapshot()
	snap.Volumes = []domain.Volume{
		{ID: "vol-1", SizeGiB: 20, UserID: "user-1", TenantID: "proj-1", Zone: "nova"},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)

	require.Len(t, records.Storage, 1)
	rec := records.Storage[0]
	assert.Equal(t, domain.StorageTypeBlock, rec.StorageType)
	assert.Equal(t, "vol-1", rec.InstanceID)
	assert.True(t, rec.Cost.Equal(decimal.RequireFromString("0.2")))
	assert.Equal(t, uint64(20)<<30, rec.AllocatedDiskBytes)
	assert.Equal(t, uint64(0), rec.FileCount)
}

func TestBuilder_RootDiskDiscountAppliedToBootVolume(t *testing.T) {
	snap := baseSnapshot()
	snap.Servers = []domain.Server{
		{ID: "srv-1", UserID: "user-1", TenantID: "proj-1", FlavorID: "f-small",
			Status: "ACTIVE", Zone: "nova", AttachedVolumeIDs: []string{"vol-boot", "vol-data"}},
	}
	snap.Volumes = []domain.Volume{
		{ID: "vol-boot", SizeGiB: 10, UserID: "user-1", TenantID: "proj-1", Zone: "nova"},
		{ID: "vol-data", SizeGiB: 20, UserID: "user-1", TenantID: "proj-1", Zone: "nova"},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)

	// The 10 GiB boot volume is fully covered by the flavor's allowance,
	// the second attachment is billed in full.
	require.Len(t, records.Storage, 1)
	assert.Equal(t, "vol-data", records.Storage[0].InstanceID)
	assert.True(t, records.Storage[0].Cost.Equal(decimal.RequireFromString("0.2")))
}

func TestBuilder_ImageBackedServerGetsNoDiscount(t *testing.T) {
	snap := baseSnapshot()
	snap.Servers = []domain.Server{
		{ID: "srv-1", UserID: "user-1", TenantID: "proj-1", FlavorID: "f-small",
			ImageRef: "img-1", Status: "ACTIVE", Zone: "nova", AttachedVolumeIDs: []string{"vol-1"}},
	}
	snap.Volumes = []domain.Volume{
		{ID: "vol-1", SizeGiB: 10, UserID: "user-1", TenantID: "proj-1", Zone: "nova"},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)

	require.Len(t, records.Storage, 1)
	assert.True(t, records.Storage[0].Cost.Equal(decimal.RequireFromString("0.1")))
}

func TestBuilder_ImageRecord(t *testing.T) {
	snap := baseSnapshot()
	snap.Images = []domain.Image{
		{ID: "img-1", SizeBytes: ptr(uint64(2) << 30), OwnerID: ptr("proj-1"), OwnerUserName: ptr("s11778")},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)

	require.Len(t, records.Storage, 1)
	rec := records.Storage[0]
	assert.Equal(t, domain.StorageTypeBlock, rec.StorageType)
	assert.Equal(t, "img-1", rec.InstanceID)
	assert.Equal(t, "s11778", rec.User)
	assert.Equal(t, DefaultZone, rec.Zone)
	assert.True(t, rec.Cost.Equal(decimal.RequireFromString("0.02")))
	assert.Equal(t, uint64(2)<<30, rec.AllocatedDiskBytes)
}

func TestBuilder_ImageUserFromForeignDomainNotAttributed(t *testing.T) {
	snap := baseSnapshot()
	snap.Domains = append(snap.Domains, domain.Domain{ID: "dom-2", Name: "other"})
	snap.Users = []domain.User{
		// Same name, wrong domain.
		{ID: "user-9", Name: "s11778", DomainID: "dom-2"},
	}
	snap.Images = []domain.Image{
		{ID: "img-1", SizeBytes: ptr(uint64(1) << 30), OwnerID: ptr("proj-1"), OwnerUserName: ptr("s11778")},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)

	require.Len(t, records.Storage, 1)
	assert.Equal(t, DefaultUser, records.Storage[0].User)
}

func TestBuilder_ImageWithoutSizeOrOwnerSkipped(t *testing.T) {
	snap := baseSnapshot()
	snap.Images = []domain.Image{
		{ID: "img-nosize", OwnerID: ptr("proj-1")},
		{ID: "img-noowner", SizeBytes: ptr(uint64(1) << 30)},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)
	assert.Empty(t, records.Storage)
}

func TestBuilder_BucketRecord(t *testing.T) {
	snap := baseSnapshot()
	snap.BucketStats = []domain.BucketStats{
		{ID: "bucket-1", Owner: "proj-1", Usage: map[string]domain.BucketUsage{
			"rgw.main": {SizeKB: 5242880, NumObjects: 42},
		}},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)

	require.Len(t, records.Storage, 1)
	rec := records.Storage[0]
	assert.Equal(t, domain.StorageTypeObject, rec.StorageType)
	assert.Equal(t, "bucket-1", rec.InstanceID)
	assert.Equal(t, DefaultUser, rec.User)
	assert.Equal(t, DefaultZone, rec.Zone)
	// 5,242,880 KB is 5 GiB at 0.02 per GiB-hour.
	assert.True(t, rec.Cost.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, uint64(5)<<30, rec.AllocatedDiskBytes)
	assert.Equal(t, uint64(42), rec.FileCount)
}

func TestBuilder_BucketWithEmptyUsageSkipped(t *testing.T) {
	snap := baseSnapshot()
	snap.BucketStats = []domain.BucketStats{
		{ID: "bucket-1", Owner: "proj-1", Usage: map[string]domain.BucketUsage{}},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)
	assert.Empty(t, records.Storage)
}

func TestBuilder_NilBucketStatsProducesNoObjectRecords(t *testing.T) {
	snap := baseSnapshot()
	snap.BucketStats = nil

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)
	assert.Empty(t, records.Storage)
}

func TestBuilder_UnresolvableProjectProducesNothing(t *testing.T) {
	snap := baseSnapshot()
	snap.Servers = []domain.Server{
		{ID: "srv-1", UserID: "user-1", TenantID: "proj-foreign", FlavorID: "f-small",
			ImageRef: "img-1", Status: "ACTIVE", Zone: "nova"},
	}
	snap.Volumes = []domain.Volume{
		{ID: "vol-1", SizeGiB: 20, UserID: "user-1", TenantID: "proj-foreign", Zone: "nova"},
	}

	records, _ := newTestBuilder(snap).Build(context.Background(), snap, testWindow)
	assert.Equal(t, 0, records.Len())
}

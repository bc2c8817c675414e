package openstack

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/cloud-ledger/pkg/adapters"
	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

// BucketStatsCollector yields per-bucket object storage usage. A failure
// here is non-fatal: object storage may not be deployed in every region.
type BucketStatsCollector interface {
	BucketStats(ctx context.Context) ([]domain.BucketStats, error)
}

// Source builds inventory snapshots from the live OpenStack APIs. The
// keystone session is established on the first Snapshot call, so wiring
// up a Source does no network I/O by itself.
type Source struct {
	creds       Credentials
	keystoneURL string
	region      string
	rewriteHost bool
	buckets     BucketStatsCollector

	client *Client
	now    func() time.Time
}

func NewSource(creds Credentials, keystoneURL, region string, rewriteHost bool, buckets BucketStatsCollector) *Source {
	return &Source{
		creds:       creds,
		keystoneURL: keystoneURL,
		region:      region,
		rewriteHost: rewriteHost,
		buckets:     buckets,
		now:         time.Now,
	}
}

func (s *Source) Snapshot(ctx context.Context) (*domain.Snapshot, error) {
	logger := zerolog.Ctx(ctx)

	if s.client == nil {
		client, err := Connect(ctx, s.creds, s.keystoneURL, s.region, s.rewriteHost)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to OpenStack: %w", err)
		}
		s.client = client
	}

	apiServers, err := s.client.Servers(ctx)
	if err != nil {
		return nil, err
	}
	apiFlavors, err := s.client.Flavors(ctx)
	if err != nil {
		return nil, err
	}
	apiVolumes, err := s.client.Volumes(ctx)
	if err != nil {
		return nil, err
	}
	apiImages, err := s.client.Images(ctx)
	if err != nil {
		return nil, err
	}
	apiUsers, err := s.client.Users(ctx)
	if err != nil {
		return nil, err
	}
	apiProjects, err := s.client.Projects(ctx)
	if err != nil {
		return nil, err
	}
	apiDomains, err := s.client.Domains(ctx)
	if err != nil {
		return nil, err
	}

	snap := &domain.Snapshot{
		Version:    domain.CurrentSnapshotVersion,
		CapturedAt: s.now().UTC(),
		Flavors:    make(map[string]domain.Flavor, len(apiFlavors)),
	}

	for _, srv := range apiServers {
		snap.Servers = append(snap.Servers, adapters.MapAPIServerToDomain(srv))
	}
	for id, f := range apiFlavors {
		snap.Flavors[id] = adapters.MapAPIFlavorToDomain(f)
	}
	for _, v := range apiVolumes {
		snap.Volumes = append(snap.Volumes, adapters.MapAPIVolumeToDomain(v))
	}
	for _, img := range apiImages {
		snap.Images = append(snap.Images, adapters.MapAPIImageToDomain(img))
	}
	for _, u := range apiUsers {
		snap.Users = append(snap.Users, adapters.MapAPIUserToDomain(u))
	}
	for _, p := range apiProjects {
		snap.Projects = append(snap.Projects, adapters.MapAPIProjectToDomain(p))
	}
	for _, d := range apiDomains {
		snap.Domains = append(snap.Domains, adapters.MapAPIDomainToDomain(d))
	}

	if s.buckets != nil {
		stats, err := s.buckets.BucketStats(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("could not collect bucket stats, skipping object storage")
		} else {
			snap.BucketStats = stats
		}
	}

	logger.Info().
		Int("servers", len(snap.Servers)).
		Int("flavors", len(snap.Flavors)).
		Int("volumes", len(snap.Volumes)).
		Int("images", len(snap.Images)).
		Int("buckets", len(snap.BucketStats)).
		Int("projects", len(snap.Projects)).
		Msg("captured inventory snapshot")

	return snap, nil
}

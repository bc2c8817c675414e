// Package adapters maps API wire payloads onto the domain model the
// billing pipeline operates on.
package adapters

import (
	"github.com/de-tools/cloud-ledger/pkg/models/api"
	"github.com/de-tools/cloud-ledger/pkg/models/domain"
)

func MapAPIServerToDomain(s api.Server) domain.Server {
	zone := ""
	if s.Zone != nil {
		zone = *s.Zone
	}

	var attached []string
	for _, v := range s.AttachedVolumes {
		attached = append(attached, v.ID)
	}

	return domain.Server{
		ID:                s.ID,
		UserID:            s.UserID,
		TenantID:          s.TenantID,
		FlavorID:          s.Flavor.ID,
		ImageRef:          s.Image.ID,
		Status:            s.Status,
		Zone:              zone,
		AttachedVolumeIDs: attached,
	}
}

func MapAPIFlavorToDomain(f api.Flavor) domain.Flavor {
	return domain.Flavor{
		ID:      f.ID,
		Name:    f.Name,
		VCPUs:   f.VCPUs,
		RAMMiB:  f.RAM,
		DiskGiB: f.Disk,
	}
}

func MapAPIVolumeToDomain(v api.Volume) domain.Volume {
	return domain.Volume{
		ID:       v.ID,
		SizeGiB:  v.Size,
		UserID:   v.UserID,
		TenantID: v.TenantID,
		Zone:     v.AvailabilityZone,
	}
}

func MapAPIImageToDomain(i api.Image) domain.Image {
	return domain.Image{
		ID:            i.ID,
		SizeBytes:     i.Size,
		Owner:         i.Owner,
		OwnerID:       i.OwnerID,
		OwnerUserName: i.UserID,
	}
}

func MapAPIBucketStatsToDomain(b api.BucketStats) domain.BucketStats {
	usage := make(map[string]domain.BucketUsage, len(b.Usage))
	for class, u := range b.Usage {
		usage[class] = domain.BucketUsage{
			SizeKB:     u.SizeKB,
			NumObjects: u.NumObjects,
		}
	}

	return domain.BucketStats{
		ID:    b.ID,
		Owner: b.Owner,
		Usage: usage,
	}
}

func MapAPIUserToDomain(u api.User) domain.User {
	return domain.User{ID: u.ID, Name: u.Name, DomainID: u.DomainID}
}

func MapAPIProjectToDomain(p api.Project) domain.Project {
	return domain.Project{ID: p.ID, Name: p.Name, DomainID: p.DomainID}
}

func MapAPIDomainToDomain(d api.Domain) domain.Domain {
	return domain.Domain{ID: d.ID, Name: d.Name}
}

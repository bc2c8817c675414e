package domain

import "time"

// CurrentSnapshotVersion is the schema version written by this build.
// Version 2 added the domain list; older snapshots cannot drive a run
// because rate resolution walks project -> domain -> resource tag.
const CurrentSnapshotVersion = 2

// Snapshot is the immutable inventory bundle consumed by one billing run.
// It is either fetched live from the region's APIs or reloaded from a
// previously saved snapshot file for deterministic replay.
type Snapshot struct {
	Version    int       `json:"version"`
	CapturedAt time.Time `json:"captured_at"`

	Servers []Server          `json:"servers"`
	Flavors map[string]Flavor `json:"flavors"`
	Images  []Image           `json:"images"`
	Volumes []Volume          `json:"volumes"`

	// BucketStats is nil when the object-storage statistics collector was
	// unavailable; the run then produces no object-storage records.
	BucketStats []BucketStats `json:"bucket_stats,omitempty"`

	Users    []User    `json:"users"`
	Projects []Project `json:"projects"`
	Domains  []Domain  `json:"domains"`
}

type Server struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	FlavorID string `json:"flavor_id"`

	// ImageRef is the flattened image reference; a server is image-backed
	// iff this is non-empty.
	ImageRef string `json:"image_ref"`

	Status string `json:"status"`
	Zone   string `json:"zone,omitempty"`

	// AttachedVolumeIDs preserves the API order; only the first entry
	// participates in the root-disk discount.
	AttachedVolumeIDs []string `json:"attached_volume_ids,omitempty"`
}

// ImageBacked reports whether the server boots from an image rather than
// directly from a volume.
func (s Server) ImageBacked() bool {
	return s.ImageRef != ""
}

// VolumeBacked reports whether the server boots from an attached volume.
func (s Server) VolumeBacked() bool {
	return !s.ImageBacked() && len(s.AttachedVolumeIDs) > 0
}

type Flavor struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	VCPUs   uint64 `json:"vcpus"`
	RAMMiB  uint64 `json:"ram_mib"`
	DiskGiB uint64 `json:"disk_gib"`
}

type Volume struct {
	ID       string `json:"id"`
	SizeGiB  uint64 `json:"size_gib"`
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
	Zone     string `json:"zone"`
}

type Image struct {
	ID            string  `json:"id"`
	SizeBytes     *uint64 `json:"size_bytes,omitempty"`
	Owner         *string `json:"owner,omitempty"`
	OwnerID       *string `json:"owner_id,omitempty"`
	OwnerUserName *string `json:"owner_user_name,omitempty"`
}

// OwnerProjectID returns the project the image is billed against,
// preferring the explicit owner id over the legacy owner field.
func (i Image) OwnerProjectID() (string, bool) {
	if i.OwnerID != nil && *i.OwnerID != "" {
		return *i.OwnerID, true
	}
	if i.Owner != nil && *i.Owner != "" {
		return *i.Owner, true
	}
	return "", false
}

type BucketStats struct {
	ID    string                 `json:"id"`
	Owner string                 `json:"owner"`
	Usage map[string]BucketUsage `json:"usage"`
}

type BucketUsage struct {
	SizeKB     uint64 `json:"size_kb"`
	NumObjects uint64 `json:"num_objects"`
}

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DomainID string `json:"domain_id"`
}

type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DomainID string `json:"domain_id"`
}

type Domain struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

package api

// BucketStats mirrors one entry of `radosgw-admin bucket stats` output.
type BucketStats struct {
	Bucket string `json:"bucket"`
	ID     string `json:"id"`
	Owner  string `json:"owner"`

	Usage map[string]BucketStatsUsage `json:"usage"`

	BucketQuota BucketQuota `json:"bucket_quota"`
}

type BucketStatsUsage struct {
	SizeKB       uint64 `json:"size_kb"`
	SizeKBActual uint64 `json:"size_kb_actual"`
	NumObjects   uint64 `json:"num_objects"`
}

type BucketQuota struct {
	Enabled    bool  `json:"enabled"`
	MaxSizeKB  int64 `json:"max_size_kb"`
	MaxObjects int64 `json:"max_objects"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Storage type labels used in emitted storage records.
const (
	StorageTypeBlock  = "Block"
	StorageTypeObject = "Object"
)

// RecordCommon holds the fields shared by every billing record. Cost is
// always strictly positive: zero-cost records are suppressed before they
// are built.
type RecordCommon struct {
	CreatedAt  time.Time
	Site       string
	Project    string
	User       string
	InstanceID string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Region      string
	ResourceTag string
	Zone        string

	Cost decimal.Decimal

	AllocatedDiskBytes uint64
}

type ComputeRecord struct {
	RecordCommon

	Flavour            string
	AllocatedCPU       decimal.Decimal
	AllocatedMemoryMiB uint64

	// Usage metrics are not produced by the inventory pipeline but remain
	// part of the record schema.
	UsedCPU         *decimal.Decimal
	UsedMemory      *uint64
	UsedNetworkUp   *uint64
	UsedNetworkDown *uint64
	IOPS            *uint64
}

type StorageRecord struct {
	RecordCommon

	StorageType string
	FileCount   uint64
}

// RecordSet is the output of one billing pass, ready for serialization.
// Compute records are written before storage records.
type RecordSet struct {
	Compute []ComputeRecord
	Storage []StorageRecord
}

func (rs *RecordSet) Len() int {
	return len(rs.Compute) + len(rs.Storage)
}

package billing

// Category classifies an instance for report aggregation. It never gates
// record emission: inactive instances are billed like active ones, only
// the summary grouping differs.
type Category string

const (
	CategoryActive   Category = "active"
	CategoryInactive Category = "inactive"
	CategoryUnbilled Category = "unbilled"
)

// CategoryForStatus maps a nova server status to its billing category.
func CategoryForStatus(status string) Category {
	switch status {
	case "PAUSED", "SUSPENDED", "SOFT_SUSPENDED", "SOFT_DELETED", "SHUTOFF":
		return CategoryInactive
	case "DELETED", "SHELVED", "SHELVED_OFFLOADED":
		return CategoryUnbilled
	default:
		return CategoryActive
	}
}

package billing

// Ledger tracks, per volume id, how much root-disk allowance a
// volume-backed server still grants for free. The server pass writes
// entries; the volume pass consumes them. One ledger lives for exactly
// one run and is never shared.
type Ledger struct {
	remaining map[string]uint64
}

func NewLedger() *Ledger {
	return &Ledger{remaining: make(map[string]uint64)}
}

// Record grants a server's first attached volume a free allowance equal
// to the flavor's disk size. Called once per volume-backed server.
func (l *Ledger) Record(volumeID string, flavorDiskGiB uint64) {
	l.remaining[volumeID] = flavorDiskGiB
}

// Consume returns the billable portion of a volume and charges the
// volume's FULL size against the remaining allowance, not just the
// discounted portion. A volume larger than its allowance therefore
// exhausts the entry even though part of it was billed. This matches the
// system's historical arithmetic; see TestLedger_ConsumeChargesFullSize.
func (l *Ledger) Consume(volumeID string, sizeGiB uint64) uint64 {
	allowance, ok := l.remaining[volumeID]
	if !ok {
		return sizeGiB
	}

	discount := allowance
	if discount > sizeGiB {
		discount = sizeGiB
	}

	if sizeGiB >= allowance {
		l.remaining[volumeID] = 0
	} else {
		l.remaining[volumeID] = allowance - sizeGiB
	}

	return sizeGiB - discount
}

// Len reports the number of tracked volume ids.
func (l *Ledger) Len() int {
	return len(l.remaining)
}

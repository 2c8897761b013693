package domain

// Availability is the advisory capacity snapshot for a variant over a period.
type Availability struct {
	VariantID  int64
	Period     Period
	Requested  int
	Total      int
	Reserved   int
	Available  int
	CanReserve bool
}

// ComputeAvailability derives available = total - reserved and whether quantity fits.
func ComputeAvailability(variantID int64, period Period, total, reserved, quantity int) Availability {
	available := total - reserved
	return Availability{
		VariantID:  variantID,
		Period:     period,
		Requested:  quantity,
		Total:      total,
		Reserved:   reserved,
		Available:  available,
		CanReserve: available >= quantity,
	}
}

package utils

import (
	"math"
	"time"
)

// PricingStrategy computes the total cost of a trip from its duration and
// distance. The strategy is pluggable; TariffPricing is the default.
type PricingStrategy interface {
	Cost(durationMinutes int64, distanceKm float64) int64
}

// TariffPricing charges a base fare plus per-minute and per-kilometer rates.
// All amounts are currency-scaled integer cents.
type TariffPricing struct {
	BaseFareCents  int64
	PerMinuteCents int64
	PerKmCents     int64
}

// Cost calculates base + minutes*per-minute + km*per-km, rounding the
// distance component to whole cents. The result is never negative.
func (t TariffPricing) Cost(durationMinutes int64, distanceKm float64) int64 {
	if durationMinutes < 0 {
		durationMinutes = 0
	}
	if distanceKm < 0 || math.IsNaN(distanceKm) {
		distanceKm = 0
	}

	distanceCents := int64(math.Round(distanceKm * float64(t.PerKmCents)))
	total := t.BaseFareCents + durationMinutes*t.PerMinuteCents + distanceCents
	if total < 0 {
		total = 0
	}
	return total
}

// TripMinutes converts a start/end pair into whole trip minutes, truncated,
// with a floor of zero.
func TripMinutes(start, end time.Time) int64 {
	minutes := int64(end.Sub(start).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

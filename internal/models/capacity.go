package models

import (
	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/types"
	"github.com/shopspring/decimal"
)

// Capacity bands for presentation, by percentage of the period capacity.
const (
	CapacityBandFull   = "full"   // 100% and above
	CapacityBandHigh   = "high"   // 80% to 100%
	CapacityBandMedium = "medium" // 50% to 80%
	CapacityBandLow    = "low"    // below 50%
)

// CapacitySummary is the derived utilization view for one person in one
// billing window.
type CapacitySummary struct {
	TotalHours decimal.Decimal `json:"totalHours" example:"147"`  // Allocated plus distributed hours
	FTE        decimal.Decimal `json:"fte" example:"0.8"`         // TotalHours divided by the period capacity
	Percent    decimal.Decimal `json:"percent" example:"80"`      // FTE as a percentage
	Band       string          `json:"band" example:"high"`       // Presentation band
}

// capacityBand classifies a utilization percentage.
func capacityBand(percent decimal.Decimal) string {
	switch {
	case percent.GreaterThanOrEqual(decimal.NewFromInt(100)):
		return CapacityBandFull
	case percent.GreaterThanOrEqual(decimal.NewFromInt(80)):
		return CapacityBandHigh
	case percent.GreaterThanOrEqual(decimal.NewFromInt(50)):
		return CapacityBandMedium
	default:
		return CapacityBandLow
	}
}

// SummaryForWindow derives the capacity view for a set of persons in the
// window starting at windowStart. It sums ledger hours across all
// subprojects plus received distribution hours per person against the
// period's capacity limit, counting a promoted distribution only once.
// Pure read, nothing persists.
func SummaryForWindow(windowStart types.Date, persons []identity.PersonID) (map[identity.PersonID]CapacitySummary, error) {
	limit := CapacityLimit(windowStart.Year(), windowStart.Month())

	summaries := make(map[identity.PersonID]CapacitySummary, len(persons))

	for _, raw := range persons {
		person, err := identity.Canonicalize(string(raw))
		if err != nil {
			return nil, err
		}

		allocated, err := sumExternalAllocatedHours(DB, windowStart, person)
		if err != nil {
			return nil, err
		}

		distributed, err := sumReceivedDistributions(windowStart, person)
		if err != nil {
			return nil, err
		}

		total := allocated.Add(distributed)

		fte := decimal.Zero
		if limit.IsPositive() {
			fte = total.DivRound(limit, 4)
		}
		percent := fte.Mul(oneHundred).Round(2)

		summaries[person] = CapacitySummary{
			TotalHours: total,
			FTE:        fte,
			Percent:    percent,
			Band:       capacityBand(percent),
		}
	}

	return summaries, nil
}

// sumReceivedDistributions sums the distribution hours a person receives as
// a reportee in a window.
func sumReceivedDistributions(windowStart types.Date, person identity.PersonID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := DB.Table("team_distributions").
		Where("reportee_id = ? AND date(window_start) = date(?) AND deleted_at IS NULL", person, windowStart).
		Select("SUM(hours)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal, nil
}

package models

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TeamDistribution is one redistribution row: a lead handing part of their
// own allocated hours for a window to a direct report.
type TeamDistribution struct {
	DefaultModel
	LeadID       identity.PersonID `json:"leadId" gorm:"uniqueIndex:distribution_key" example:"jane.doe"`
	WindowStart  types.Date        `json:"windowStart" gorm:"uniqueIndex:distribution_key" example:"2025-07-21"`
	SubprojectID *string           `json:"subprojectId" gorm:"uniqueIndex:distribution_key" example:"SUB-7"`
	ReporteeID   identity.PersonID `json:"reporteeId" gorm:"uniqueIndex:distribution_key" example:"john.smith"`
	Hours        decimal.Decimal   `json:"hours" gorm:"type:DECIMAL(20,2)" example:"40"`
}

var (
	ErrDistributionNotUnique     = errors.New("a distribution for this lead, window, subproject and reportee already exists")
	ErrDistributionHoursNegative = errors.New("distributed hours must not be negative")
	ErrCapacityExceeded          = errors.New("the distributed hours exceed the available capacity")
)

// capacityEpsilon is the tolerance for capacity comparisons. Totals may
// overshoot by at most this much before a batch is rejected.
var capacityEpsilon = decimal.New(1, -4)

func (d *TeamDistribution) BeforeSave(_ *gorm.DB) error {
	lead, err := identity.Canonicalize(string(d.LeadID))
	if err != nil {
		return err
	}
	d.LeadID = lead

	reportee, err := identity.Canonicalize(string(d.ReporteeID))
	if err != nil {
		return err
	}
	d.ReporteeID = reportee

	return nil
}

func (d *TeamDistribution) AfterSave(_ *gorm.DB) error {
	if d.Hours.IsNegative() {
		return ErrDistributionHoursNegative
	}

	return nil
}

// DistributionItem is one reportee's share in a distribution submission.
type DistributionItem struct {
	ReporteeID   identity.PersonID       `json:"reporteeId" example:"john.smith"`
	Hours        decimal.Decimal         `json:"hours" example:"40"`
	WeekPercents map[int]decimal.Decimal `json:"weekPercents"` // Optional percentage split of the hours over the window's weeks
}

// SaveDistribution validates and persists a batch of redistribution rows
// for one (lead, window, subproject) key.
//
// The whole batch is rejected when the submitted hours plus the hours of
// existing rows this call does not touch would exceed the lead's own
// allocation for the key. On success, one row per item is upserted and the
// optional week percentages become that row's weekly splits.
//
// The capacity read and the write happen in the same transaction but
// without row locking, so two racing saves for the same key may both pass
// validation. The unique key prevents duplicate rows; the race is accepted.
func SaveDistribution(leadID identity.PersonID, windowStart types.Date, subprojectID *string, items []DistributionItem) ([]TeamDistribution, error) {
	lead, err := identity.Canonicalize(string(leadID))
	if err != nil {
		return nil, err
	}

	incoming := make([]identity.PersonID, 0, len(items))
	itemsSum := decimal.Zero
	for _, item := range items {
		reportee, err := identity.Canonicalize(string(item.ReporteeID))
		if err != nil {
			return nil, err
		}

		incoming = append(incoming, reportee)
		itemsSum = itemsSum.Add(item.Hours)
	}

	var saved []TeamDistribution

	err = DB.Transaction(func(tx *gorm.DB) error {
		leadCapacity, err := sumAllocatedHours(tx, windowStart, lead, subprojectID)
		if err != nil {
			return err
		}

		othersSum, err := sumDistributedHours(tx, lead, windowStart, subprojectID, incoming)
		if err != nil {
			return err
		}

		proposed := othersSum.Add(itemsSum)
		if proposed.Sub(leadCapacity).GreaterThan(capacityEpsilon) {
			return fmt.Errorf("%w: %s hours proposed for %s on %s, %s available",
				ErrCapacityExceeded, proposed, lead, windowStart, leadCapacity)
		}

		for i, item := range items {
			row, err := upsertDistribution(tx, TeamDistribution{
				LeadID:       lead,
				WindowStart:  windowStart,
				SubprojectID: subprojectID,
				ReporteeID:   incoming[i],
				Hours:        item.Hours,
			})
			if err != nil {
				return err
			}

			if len(item.WeekPercents) > 0 {
				weeks := make([]int, 0, len(item.WeekPercents))
				for week := range item.WeekPercents {
					weeks = append(weeks, week)
				}
				sort.Ints(weeks)

				_, err = upsertPercentSplit(tx, row.ID, item.Hours, weeks, item.WeekPercents)
				if err != nil {
					return err
				}
			}

			saved = append(saved, row)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// sumDistributedHours sums the existing distribution rows of a key whose
// reportee is not part of the incoming batch.
func sumDistributedHours(db *gorm.DB, lead identity.PersonID, windowStart types.Date, subprojectID *string, exclude []identity.PersonID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	q := db.Table("team_distributions").
		Where("lead_id = ? AND date(window_start) = date(?) AND deleted_at IS NULL", lead, windowStart)
	q = scopeSubproject(q, subprojectID)

	if len(exclude) > 0 {
		q = q.Where("reportee_id NOT IN ?", exclude)
	}

	err := q.Select("SUM(hours)").Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal, nil
}

// upsertDistribution writes one distribution row, updating the hours of the
// existing row for the identity tuple when there is one.
func upsertDistribution(tx *gorm.DB, row TeamDistribution) (TeamDistribution, error) {
	var existing TeamDistribution

	q := tx.Where("lead_id = ? AND date(window_start) = date(?) AND reportee_id = ?",
		row.LeadID, row.WindowStart, row.ReporteeID)

	err := scopeSubproject(q, row.SubprojectID).First(&existing).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			err = tx.Create(&row).Error
			return row, err
		}

		return TeamDistribution{}, err
	}

	err = tx.Model(&existing).Update("hours", row.Hours).Error
	if err != nil {
		return TeamDistribution{}, err
	}

	existing.Hours = row.Hours
	return existing, nil
}

// DeleteDistribution removes one distribution row and its weekly splits.
// Only the lead who created the row may delete it.
func DeleteDistribution(id uuid.UUID, requestingLeadID identity.PersonID) error {
	lead, err := identity.Canonicalize(string(requestingLeadID))
	if err != nil {
		return err
	}

	var row TeamDistribution
	err = DB.First(&row, "id = ?", id).Error
	if err != nil {
		return err
	}

	if row.LeadID != lead {
		return fmt.Errorf("%w this distribution", ErrForbidden)
	}

	// Hard delete so that the lead can redistribute to the same reportee later
	return DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Unscoped().Where("owner_id = ?", row.ID).Delete(&WeeklySplit{}).Error
		if err != nil {
			return err
		}

		return tx.Unscoped().Delete(&row).Error
	})
}

// ListDistributions returns the distribution rows for a window, optionally
// limited to one lead.
func ListDistributions(windowStart types.Date, leadID *identity.PersonID) ([]TeamDistribution, error) {
	var rows []TeamDistribution

	q := DB.Where("date(window_start) = date(?)", windowStart)
	if leadID != nil {
		q = q.Where("lead_id = ?", *leadID)
	}

	err := q.Order("lead_id ASC, reportee_id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// DistributionBillingItem is the billing item key under which promoted
// distribution hours appear in the monthly ledger.
const DistributionBillingItem = "TEAM-DISTRIBUTION"

// ApplyDistributions promotes all distribution rows of a window into
// monthly ledger rows for the reportees.
//
// Every reportee's prospective total (existing ledger hours across all
// subprojects plus incoming distribution hours) is validated against the
// capacity limit first; a single violation rejects the whole apply before
// anything is written. Rows promoted by an earlier apply do not count as
// existing hours, so replaying an apply validates like the first run.
// With dryRun set, only the validation runs.
func ApplyDistributions(windowStart types.Date, capacityLimit decimal.Decimal, dryRun bool) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var rows []TeamDistribution
		err := tx.Where("date(window_start) = date(?)", windowStart).Find(&rows).Error
		if err != nil {
			return err
		}

		incoming := make(map[identity.PersonID]decimal.Decimal)
		for _, row := range rows {
			incoming[row.ReporteeID] = incoming[row.ReporteeID].Add(row.Hours)
		}

		for reportee, hours := range incoming {
			existing, err := sumExternalAllocatedHours(tx, windowStart, reportee)
			if err != nil {
				return err
			}

			prospective := existing.Add(hours)
			if prospective.Sub(capacityLimit).GreaterThan(capacityEpsilon) {
				return fmt.Errorf("%w: %s hours for %s on %s, limit is %s",
					ErrCapacityExceeded, prospective, reportee, windowStart, capacityLimit)
			}
		}

		if dryRun {
			return nil
		}

		for _, row := range rows {
			allocation := Allocation{
				ProjectID:     fmt.Sprintf("team/%s", row.LeadID),
				SubprojectID:  row.SubprojectID,
				BillingItemID: DistributionBillingItem,
				WindowStart:   row.WindowStart,
				PersonID:      row.ReporteeID,
				TotalHours:    row.Hours,
			}

			err := upsertAllocation(tx, allocation)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

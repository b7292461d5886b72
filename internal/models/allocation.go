package models

import (
	"errors"
	"strings"

	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Allocation is the monthly tier of the ledger: the total hours planned for
// one person on one billing item of a project within one billing window.
type Allocation struct {
	DefaultModel
	ProjectID     string            `json:"projectId" gorm:"uniqueIndex:allocation_key" example:"PRJ-0042"`
	SubprojectID  *string           `json:"subprojectId" gorm:"uniqueIndex:allocation_key" example:"SUB-7"`
	BillingItemID string            `json:"billingItemId" gorm:"uniqueIndex:allocation_key" example:"IOM-2025-113"` // The funded work order the hours are planned against
	WindowStart   types.Date        `json:"windowStart" gorm:"uniqueIndex:allocation_key" example:"2025-07-21"`
	PersonID      identity.PersonID `json:"personId" gorm:"uniqueIndex:allocation_key" example:"jane.doe"`
	TotalHours    decimal.Decimal   `json:"totalHours" gorm:"type:DECIMAL(20,2)" example:"160"`
}

var (
	ErrAllocationNotUnique     = errors.New("an allocation for this project, billing item, window and person already exists")
	ErrAllocationHoursNegative = errors.New("allocated hours must not be negative")
	ErrPeriodNotResolvable     = errors.New("the billing period for this plan could not be resolved")
)

func (a *Allocation) BeforeSave(_ *gorm.DB) error {
	a.ProjectID = strings.TrimSpace(a.ProjectID)
	a.BillingItemID = strings.TrimSpace(a.BillingItemID)

	person, err := identity.Canonicalize(string(a.PersonID))
	if err != nil {
		return err
	}
	a.PersonID = person

	return nil
}

func (a *Allocation) AfterSave(_ *gorm.DB) error {
	if a.TotalHours.IsNegative() {
		return ErrAllocationHoursNegative
	}

	return nil
}

// PlanItem is one row of a monthly plan submission.
type PlanItem struct {
	BillingItemID string            `json:"billingItemId" example:"IOM-2025-113"`
	PersonID      identity.PersonID `json:"personId" example:"jane.doe"`
	Hours         decimal.Decimal   `json:"hours" example:"160"`
}

// MonthlyPlan is the complete desired state of the monthly tier for one
// (project, subproject, window) key.
type MonthlyPlan struct {
	ProjectID    string     `json:"projectId" example:"PRJ-0042"`
	SubprojectID *string    `json:"subprojectId" example:"SUB-7"`
	WindowStart  types.Date `json:"windowStart" example:"2025-07-21"`
	Items        []PlanItem `json:"items"`
}

// scopeSubproject adds a NULL-safe subproject condition to a query.
func scopeSubproject(db *gorm.DB, subprojectID *string) *gorm.DB {
	if subprojectID == nil {
		return db.Where("subproject_id IS NULL")
	}

	return db.Where("subproject_id = ?", *subprojectID)
}

// ReplaceMonthlyPlan replaces the allocations of a plan key with the
// submitted rows.
//
// For every billing item present in the plan, all existing rows for the
// key are deleted and the submitted rows inserted in one transaction, so a
// resubmission is a full replace rather than a merge. Replaying the same
// plan yields the same stored rows.
func ReplaceMonthlyPlan(plan MonthlyPlan) ([]Allocation, error) {
	if plan.WindowStart.IsZero() {
		return nil, ErrPeriodNotResolvable
	}

	billingItems := make(map[string]bool)
	for _, item := range plan.Items {
		billingItems[strings.TrimSpace(item.BillingItemID)] = true
	}

	var saved []Allocation

	err := DB.Transaction(func(tx *gorm.DB) error {
		for billingItem := range billingItems {
			q := tx.Unscoped().
				Where("project_id = ? AND billing_item_id = ? AND date(window_start) = date(?)",
					strings.TrimSpace(plan.ProjectID), billingItem, plan.WindowStart)

			err := scopeSubproject(q, plan.SubprojectID).Delete(&Allocation{}).Error
			if err != nil {
				return err
			}
		}

		for _, item := range plan.Items {
			allocation := Allocation{
				ProjectID:     plan.ProjectID,
				SubprojectID:  plan.SubprojectID,
				BillingItemID: item.BillingItemID,
				WindowStart:   plan.WindowStart,
				PersonID:      item.PersonID,
				TotalHours:    item.Hours,
			}

			err := tx.Create(&allocation).Error
			if err != nil {
				return err
			}

			saved = append(saved, allocation)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// upsertAllocation writes one ledger row, replacing the hours of the
// existing row for the identity tuple when there is one.
func upsertAllocation(tx *gorm.DB, row Allocation) error {
	var existing Allocation

	q := tx.Where("project_id = ? AND billing_item_id = ? AND date(window_start) = date(?) AND person_id = ?",
		row.ProjectID, row.BillingItemID, row.WindowStart, row.PersonID)

	err := scopeSubproject(q, row.SubprojectID).First(&existing).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return tx.Create(&row).Error
		}

		return err
	}

	return tx.Model(&existing).Update("total_hours", row.TotalHours).Error
}

// SumForPerson returns the total allocated hours of a person for a window,
// optionally scoped to a subproject.
func SumForPerson(windowStart types.Date, person identity.PersonID, subprojectID *string) (decimal.Decimal, error) {
	return sumAllocatedHours(DB, windowStart, person, subprojectID)
}

func sumAllocatedHours(db *gorm.DB, windowStart types.Date, person identity.PersonID, subprojectID *string) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	q := db.Table("allocations").
		Where("date(window_start) = date(?) AND person_id = ? AND deleted_at IS NULL", windowStart, person)

	err := scopeSubproject(q, subprojectID).
		Select("SUM(total_hours)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal, nil
}

// sumExternalAllocatedHours sums a person's allocated hours for a window
// across all subprojects. Rows promoted from team distributions do not
// count, those hours are tracked on the distribution rows themselves.
func sumExternalAllocatedHours(db *gorm.DB, windowStart types.Date, person identity.PersonID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	err := db.Table("allocations").
		Where("date(window_start) = date(?) AND person_id = ? AND deleted_at IS NULL", windowStart, person).
		Where("billing_item_id != ?", DistributionBillingItem).
		Select("SUM(total_hours)").
		Row().
		Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal, nil
}

// ListForPersons returns all allocations of the given persons for a window.
// It is the query behind supervisor and team views.
func ListForPersons(windowStart types.Date, persons []identity.PersonID) ([]Allocation, error) {
	var allocations []Allocation

	err := DB.
		Where("date(window_start) = date(?) AND person_id IN ?", windowStart, persons).
		Order("person_id ASC, billing_item_id ASC").
		Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	return allocations, nil
}

package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DailyPunch is the daily tier of the ledger: the actual hours a person
// worked on one allocation on one date. A punch for the same date replaces
// the earlier one, it does not add to it.
type DailyPunch struct {
	Timestamps
	PersonID     identity.PersonID `json:"personId" gorm:"primaryKey" example:"jane.doe"`
	AllocationID uuid.UUID         `json:"allocationId" gorm:"primaryKey" example:"65392deb-5e92-4268-b114-297faad6cdce"`
	Date         types.Date        `json:"date" gorm:"primaryKey;column:punch_date" example:"2025-07-23"`
	Week         int               `json:"week" example:"1"` // Week bucket of the date within the billing window
	Hours        decimal.Decimal   `json:"hours" gorm:"type:DECIMAL(20,2)" example:"8"`
}

var (
	ErrPunchHoursNegative = errors.New("punched hours must not be negative")
	ErrPunchOutsideWindow = errors.New("the punch date is outside the billing window of the allocation")
	ErrPunchOverAllocated = errors.New("the punched hours exceed the allocated hours of the week")
)

func (p *DailyPunch) BeforeSave(_ *gorm.DB) error {
	person, err := identity.Canonicalize(string(p.PersonID))
	if err != nil {
		return err
	}
	p.PersonID = person

	if p.Hours.IsNegative() {
		return ErrPunchHoursNegative
	}

	return nil
}

// RecordDailyPunch validates and upserts one punch.
//
// The punch date must fall inside the allocation's billing window. The sum
// of the week's punches, not counting an earlier punch on the same date,
// plus the new hours must stay within the week's allocated ceiling. The
// ceiling comes from the allocation's stored weekly splits, or from the
// equal split when none exist.
func RecordDailyPunch(personID identity.PersonID, allocationID uuid.UUID, date types.Date, hours decimal.Decimal) (DailyPunch, error) {
	person, err := identity.Canonicalize(string(personID))
	if err != nil {
		return DailyPunch{}, err
	}

	var punch DailyPunch

	err = DB.Transaction(func(tx *gorm.DB) error {
		var allocation Allocation
		err := tx.First(&allocation, "id = ?", allocationID).Error
		if err != nil {
			return err
		}

		window := resolveWindowForDate(tx, allocation.WindowStart)
		if !window.Contains(date) {
			return fmt.Errorf("%w: %s is not in %s..%s", ErrPunchOutsideWindow, date, window.Start, window.End)
		}

		week := window.WeekNumber(date)

		weekHours, err := splitHoursForOwner(tx, allocation.ID, allocation.TotalHours, window.WeekCount())
		if err != nil {
			return err
		}
		ceiling := weekHours[week-1]

		weekStart, weekEnd := window.WeekRange(week)
		weekSum, err := sumPunchedHours(tx, person, allocationID, weekStart, weekEnd, &date)
		if err != nil {
			return err
		}

		if weekSum.Add(hours).GreaterThan(ceiling) {
			return fmt.Errorf("%w: week %d allows %s hours, %s already punched",
				ErrPunchOverAllocated, week, ceiling, weekSum)
		}

		punch = DailyPunch{
			PersonID:     person,
			AllocationID: allocationID,
			Date:         date,
			Week:         week,
			Hours:        hours,
		}

		return upsertPunch(tx, &punch)
	})
	if err != nil {
		return DailyPunch{}, err
	}

	return punch, nil
}

// sumPunchedHours sums the punches of a person on an allocation within a
// date range, optionally excluding one date.
func sumPunchedHours(db *gorm.DB, person identity.PersonID, allocationID uuid.UUID, from, until types.Date, exclude *types.Date) (decimal.Decimal, error) {
	var sum decimal.NullDecimal

	q := db.Table("daily_punches").
		Where("person_id = ? AND allocation_id = ? AND deleted_at IS NULL", person, allocationID).
		Where("date(punch_date) >= date(?) AND date(punch_date) <= date(?)", from, until)

	if exclude != nil {
		q = q.Where("date(punch_date) != date(?)", *exclude)
	}

	err := q.Select("SUM(hours)").Row().Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return sum.Decimal, nil
}

// upsertPunch writes one punch row, replacing the existing row for
// (person, allocation, date) when there is one.
func upsertPunch(tx *gorm.DB, punch *DailyPunch) error {
	var existing DailyPunch

	err := tx.
		Where("person_id = ? AND allocation_id = ? AND date(punch_date) = date(?)",
			punch.PersonID, punch.AllocationID, punch.Date).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return tx.Create(punch).Error
		}

		return err
	}

	return tx.Model(&existing).
		Updates(map[string]any{"hours": punch.Hours, "week": punch.Week}).Error
}

// PunchesFor returns the punches of a person on an allocation, optionally
// limited to a date range.
func PunchesFor(person identity.PersonID, allocationID uuid.UUID, from, until *types.Date) ([]DailyPunch, error) {
	var punches []DailyPunch

	q := DB.Where("person_id = ? AND allocation_id = ?", person, allocationID)

	if from != nil {
		q = q.Where("date(punch_date) >= date(?)", *from)
	}

	if until != nil {
		q = q.Where("date(punch_date) <= date(?)", *until)
	}

	err := q.Order("punch_date ASC").Find(&punches).Error
	if err != nil {
		return nil, err
	}

	return punches, nil
}

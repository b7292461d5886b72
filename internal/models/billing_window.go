package models

import (
	"errors"
	"time"

	"github.com/hourledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultMonthlyCapacity is the maximum hours a person may be allocated in a
// billing period without an explicit configuration.
var DefaultMonthlyCapacity = decimal.New(18375, -2)

// BillingWindow is the authoritative date range of a monthly billing cycle.
// Windows do not have to be calendar-aligned, a July window may well run
// from July 21 to August 20.
type BillingWindow struct {
	Timestamps
	Year     int             `json:"year" gorm:"primaryKey" example:"2025"`
	Month    int             `json:"month" gorm:"primaryKey" example:"7"`
	Start    types.Date      `json:"start" gorm:"column:start_date" example:"2025-07-21"`
	End      types.Date      `json:"end" gorm:"column:end_date" example:"2025-08-20"`
	MaxHours decimal.Decimal `json:"maxHours" gorm:"type:DECIMAL(20,2)" example:"183.75"` // Capacity limit for a single person in this window
}

var (
	ErrBillingWindowNotUnique = errors.New("a billing window for this year and month already exists")
	ErrWindowMonthInvalid     = errors.New("the month of a billing window must be between 1 and 12")
	ErrWindowStartAfterEnd    = errors.New("a billing window must not end before it starts")
)

func (w *BillingWindow) BeforeSave(_ *gorm.DB) error {
	if w.Month < 1 || w.Month > 12 {
		return ErrWindowMonthInvalid
	}

	if !w.Start.IsZero() && !w.End.IsZero() && w.End.Before(w.Start) {
		return ErrWindowStartAfterEnd
	}

	return nil
}

// calendarWindow is the fallback window for an unconfigured period: the
// plain calendar month with the default capacity.
func calendarWindow(year int, month time.Month) BillingWindow {
	start := types.NewDate(year, month, 1)

	return BillingWindow{
		Year:     year,
		Month:    int(month),
		Start:    start,
		End:      types.NewDate(year, month+1, 1).AddDays(-1),
		MaxHours: DefaultMonthlyCapacity,
	}
}

// ResolveWindowForMonth returns the billing window for a year and month.
//
// Missing or incomplete configuration degrades to the calendar month.
// Lookup errors degrade the same way: time tracking must stay available
// when the configuration store misbehaves.
func ResolveWindowForMonth(year int, month time.Month) BillingWindow {
	return resolveWindowForMonth(DB, year, month)
}

// resolveWindowForMonth is the transaction-aware lookup behind
// ResolveWindowForMonth. Callers inside a transaction must pass their
// transaction handle: the global DB pool holds a single connection on
// SQLite, so a lookup on it would block until the transaction commits.
func resolveWindowForMonth(db *gorm.DB, year int, month time.Month) BillingWindow {
	var window BillingWindow

	err := db.First(&window, "year = ? AND month = ?", year, int(month)).Error
	if err != nil || window.Start.IsZero() || window.End.IsZero() {
		return calendarWindow(year, month)
	}

	if !window.MaxHours.IsPositive() {
		window.MaxHours = DefaultMonthlyCapacity
	}

	return window
}

// ResolveWindowForDate returns the billing window containing the date. When
// no configured window contains it, the date's calendar month applies.
func ResolveWindowForDate(date types.Date) BillingWindow {
	return resolveWindowForDate(DB, date)
}

func resolveWindowForDate(db *gorm.DB, date types.Date) BillingWindow {
	var window BillingWindow

	err := db.
		Where("date(start_date) <= date(?) AND date(end_date) >= date(?)", date, date).
		First(&window).Error
	if err != nil || window.Start.IsZero() || window.End.IsZero() {
		return resolveWindowForMonth(db, date.Year(), date.Month())
	}

	if !window.MaxHours.IsPositive() {
		window.MaxHours = DefaultMonthlyCapacity
	}

	return window
}

// CapacityLimit returns the maximum hours a single person may be allocated
// in the given period.
func CapacityLimit(year int, month time.Month) decimal.Decimal {
	return ResolveWindowForMonth(year, month).MaxHours
}

// Days returns the number of days in the window, inclusive of both ends.
func (w BillingWindow) Days() int {
	return w.Start.DaysUntil(w.End) + 1
}

// WeekCount returns the number of week buckets in the window. A trailing
// partial week counts as a full bucket.
func (w BillingWindow) WeekCount() int {
	count := (w.Days() + 6) / 7
	if count < 1 {
		count = 1
	}

	return count
}

// WeekNumber returns the 1-based week bucket of a date relative to the
// window start. Dates before the window clamp to the first week, dates
// after it clamp to the last week.
func (w BillingWindow) WeekNumber(date types.Date) int {
	week := w.Start.DaysUntil(date)/7 + 1

	if week < 1 {
		week = 1
	}

	if count := w.WeekCount(); week > count {
		week = count
	}

	return week
}

// WeekRange returns the first and last date of a week bucket, clamped to
// the window. The last bucket may be shorter than seven days.
func (w BillingWindow) WeekRange(week int) (types.Date, types.Date) {
	if week < 1 {
		week = 1
	}

	start := w.Start.AddDays((week - 1) * 7)
	if start.After(w.End) {
		start = w.End
	}

	end := start.AddDays(6)
	if end.After(w.End) {
		end = w.End
	}

	return start, end
}

// Contains reports whether the date falls inside the window.
func (w BillingWindow) Contains(date types.Date) bool {
	return !date.Before(w.Start) && !date.After(w.End)
}

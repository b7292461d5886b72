package models

import (
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Split statuses. A split starts out pending and is accepted or rejected by
// the planner reviewing the week.
const (
	SplitStatusPending  = "PENDING"
	SplitStatusAccepted = "ACCEPTED"
	SplitStatusRejected = "REJECTED"
)

// WeeklySplit is the weekly tier of the ledger: one week bucket's share of
// its owner's total hours. The owner is either an Allocation or a
// TeamDistribution.
type WeeklySplit struct {
	Timestamps
	OwnerID uuid.UUID       `json:"ownerId" gorm:"primaryKey" example:"65392deb-5e92-4268-b114-297faad6cdce"`
	Week    int             `json:"week" gorm:"primaryKey" example:"1"`
	Percent decimal.Decimal `json:"percent" gorm:"type:DECIMAL(20,2)" example:"25"`
	Hours   decimal.Decimal `json:"hours" gorm:"type:DECIMAL(20,2)" example:"40"`
	Status  string          `json:"status" gorm:"default:PENDING" example:"PENDING"`
}

var (
	ErrSplitWeekInvalid   = errors.New("the week of a weekly split must be 1 or larger")
	ErrSplitStatusInvalid = errors.New("the status of a weekly split must be PENDING, ACCEPTED or REJECTED")
)

func (s *WeeklySplit) BeforeSave(_ *gorm.DB) error {
	if s.Week < 1 {
		return ErrSplitWeekInvalid
	}

	if s.Status == "" {
		s.Status = SplitStatusPending
	}

	if s.Status != SplitStatusPending && s.Status != SplitStatusAccepted && s.Status != SplitStatusRejected {
		return ErrSplitStatusInvalid
	}

	return nil
}

var oneHundred = decimal.NewFromInt(100)

// clampPercent limits a percentage to [0, 100].
func clampPercent(percent decimal.Decimal) decimal.Decimal {
	if percent.IsNegative() {
		return decimal.Zero
	}

	if percent.GreaterThan(oneHundred) {
		return oneHundred
	}

	return percent
}

// upsertSplit writes one split row, updating the existing row for
// (owner, week) when there is one.
func upsertSplit(tx *gorm.DB, split WeeklySplit) error {
	var existing WeeklySplit

	err := tx.Where("owner_id = ? AND week = ?", split.OwnerID, split.Week).First(&existing).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return tx.Create(&split).Error
		}

		return err
	}

	return tx.Model(&existing).
		Where("owner_id = ? AND week = ?", split.OwnerID, split.Week).
		Updates(map[string]any{"percent": split.Percent, "hours": split.Hours}).Error
}

// UpsertPercentSplit records a percentage split of the owner's total hours.
//
// Each percentage is clamped to [0, 100] and the week's hours are computed
// as total × percent / 100, rounded half up to two decimals. Percentages
// are recorded exactly as given, the sum over all weeks is deliberately not
// normalized to 100.
func UpsertPercentSplit(ownerID uuid.UUID, totalHours decimal.Decimal, percents map[int]decimal.Decimal) (map[int]decimal.Decimal, error) {
	weeks := make([]int, 0, len(percents))
	for week := range percents {
		weeks = append(weeks, week)
	}
	sort.Ints(weeks)

	var hours map[int]decimal.Decimal

	err := DB.Transaction(func(tx *gorm.DB) (err error) {
		hours, err = upsertPercentSplit(tx, ownerID, totalHours, weeks, percents)
		return err
	})
	if err != nil {
		return nil, err
	}

	return hours, nil
}

func upsertPercentSplit(tx *gorm.DB, ownerID uuid.UUID, totalHours decimal.Decimal, weeks []int, percents map[int]decimal.Decimal) (map[int]decimal.Decimal, error) {
	hours := make(map[int]decimal.Decimal, len(percents))

	for _, week := range weeks {
		percent := clampPercent(percents[week])
		weekHours := totalHours.Mul(percent).Div(oneHundred).Round(2)

		err := upsertSplit(tx, WeeklySplit{
			OwnerID: ownerID,
			Week:    week,
			Percent: percent,
			Hours:   weekHours,
			Status:  SplitStatusPending,
		})
		if err != nil {
			return nil, err
		}

		hours[week] = weekHours
	}

	return hours, nil
}

// UpsertHoursForWeek records absolute hours for one week of the owner. The
// stored percentage is zero unless it was supplied independently.
func UpsertHoursForWeek(ownerID uuid.UUID, week int, hours decimal.Decimal) error {
	if week < 1 {
		return ErrSplitWeekInvalid
	}

	var existing WeeklySplit

	err := DB.Where("owner_id = ? AND week = ?", ownerID, week).First(&existing).Error
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return DB.Create(&WeeklySplit{
				OwnerID: ownerID,
				Week:    week,
				Hours:   hours.Round(2),
				Status:  SplitStatusPending,
			}).Error
		}

		return err
	}

	return DB.Model(&existing).
		Where("owner_id = ? AND week = ?", ownerID, week).
		Update("hours", hours.Round(2)).Error
}

// SetSplitStatus moves one split row through its review lifecycle.
func SetSplitStatus(ownerID uuid.UUID, week int, status string) error {
	if status != SplitStatusPending && status != SplitStatusAccepted && status != SplitStatusRejected {
		return ErrSplitStatusInvalid
	}

	var split WeeklySplit
	err := DB.Where("owner_id = ? AND week = ?", ownerID, week).First(&split).Error
	if err != nil {
		return err
	}

	return DB.Model(&split).
		Where("owner_id = ? AND week = ?", ownerID, week).
		Update("status", status).Error
}

// EqualSplit divides total hours evenly over the weeks of a window.
//
// Every week is rounded down to two decimals and the rounding remainder
// goes to the last week, so the returned hours always sum exactly to the
// total.
func EqualSplit(totalHours decimal.Decimal, weekCount int) []decimal.Decimal {
	if weekCount < 1 {
		return nil
	}

	hours := make([]decimal.Decimal, weekCount)

	perWeek := totalHours.Div(decimal.NewFromInt(int64(weekCount))).RoundDown(2)
	for i := range hours {
		hours[i] = perWeek
	}

	hours[weekCount-1] = totalHours.Sub(perWeek.Mul(decimal.NewFromInt(int64(weekCount - 1))))

	return hours
}

// SplitsForOwner returns the stored split rows of an owner ordered by week.
func SplitsForOwner(ownerID uuid.UUID) ([]WeeklySplit, error) {
	return splitsForOwner(DB, ownerID)
}

func splitsForOwner(db *gorm.DB, ownerID uuid.UUID) ([]WeeklySplit, error) {
	var splits []WeeklySplit

	err := db.Where("owner_id = ?", ownerID).Order("week ASC").Find(&splits).Error
	if err != nil {
		return nil, err
	}

	return splits, nil
}

// SplitHoursForOwner returns the hours per week bucket for an owner.
//
// When no split rows exist at all, the equal split of the total applies, so
// callers always get a non-empty split to validate against. Stored rows win
// over the fallback, weeks without a row count as zero.
func SplitHoursForOwner(ownerID uuid.UUID, totalHours decimal.Decimal, weekCount int) ([]decimal.Decimal, error) {
	return splitHoursForOwner(DB, ownerID, totalHours, weekCount)
}

func splitHoursForOwner(db *gorm.DB, ownerID uuid.UUID, totalHours decimal.Decimal, weekCount int) ([]decimal.Decimal, error) {
	splits, err := splitsForOwner(db, ownerID)
	if err != nil {
		return nil, err
	}

	if len(splits) == 0 {
		return EqualSplit(totalHours, weekCount), nil
	}

	hours := make([]decimal.Decimal, weekCount)
	for i := range hours {
		hours[i] = decimal.Zero
	}

	for _, split := range splits {
		if split.Week >= 1 && split.Week <= weekCount {
			hours[split.Week-1] = split.Hours
		}
	}

	return hours, nil
}

package models_test

import (
	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/models"
	"github.com/hourledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestSummaryForWindow() {
	windowStart := types.NewDate(2025, 7, 1)

	_ = suite.createTestWindow(models.BillingWindow{
		Year:     2025,
		Month:    7,
		Start:    windowStart,
		End:      types.NewDate(2025, 7, 31),
		MaxHours: decimal.NewFromInt(160),
	})

	_ = suite.createTestAllocation(models.Allocation{
		ProjectID:     "PRJ-0042",
		BillingItemID: "IOM-2025-113",
		WindowStart:   windowStart,
		PersonID:      "jane.doe",
		TotalHours:    decimal.NewFromInt(128),
	})

	summaries, err := models.SummaryForWindow(windowStart, []identity.PersonID{"jane.doe", "john.smith"})
	assert.Nil(suite.T(), err)

	jane := summaries["jane.doe"]
	assert.True(suite.T(), jane.TotalHours.Equal(decimal.NewFromInt(128)), "total is %s", jane.TotalHours)
	assert.True(suite.T(), jane.FTE.Equal(decimal.RequireFromString("0.8")), "fte is %s", jane.FTE)
	assert.True(suite.T(), jane.Percent.Equal(decimal.NewFromInt(80)), "percent is %s", jane.Percent)
	assert.Equal(suite.T(), models.CapacityBandHigh, jane.Band)

	john := summaries["john.smith"]
	assert.True(suite.T(), john.TotalHours.IsZero())
	assert.True(suite.T(), john.FTE.IsZero())
	assert.Equal(suite.T(), models.CapacityBandLow, john.Band)
}

func (suite *TestSuiteStandard) TestSummaryForWindowIncludesSubprojectHours() {
	windowStart := types.NewDate(2025, 7, 1)

	_ = suite.createTestWindow(models.BillingWindow{
		Year:     2025,
		Month:    7,
		Start:    windowStart,
		End:      types.NewDate(2025, 7, 31),
		MaxHours: decimal.NewFromInt(160),
	})

	subproject := "SUB-7"
	_ = suite.createTestAllocation(models.Allocation{
		ProjectID:     "PRJ-0042",
		SubprojectID:  &subproject,
		BillingItemID: "IOM-2025-113",
		WindowStart:   windowStart,
		PersonID:      "jane.doe",
		TotalHours:    decimal.NewFromInt(128),
	})

	summaries, err := models.SummaryForWindow(windowStart, []identity.PersonID{"jane.doe"})
	assert.Nil(suite.T(), err)

	// Subproject-scoped allocations count toward the person's total
	jane := summaries["jane.doe"]
	assert.True(suite.T(), jane.TotalHours.Equal(decimal.NewFromInt(128)), "total is %s", jane.TotalHours)
	assert.True(suite.T(), jane.FTE.Equal(decimal.RequireFromString("0.8")), "fte is %s", jane.FTE)
}

func (suite *TestSuiteStandard) TestSummaryForWindowIncludesDistributions() {
	windowStart := types.NewDate(2025, 7, 1)

	_ = suite.createTestWindow(models.BillingWindow{
		Year:     2025,
		Month:    7,
		Start:    windowStart,
		End:      types.NewDate(2025, 7, 31),
		MaxHours: decimal.NewFromInt(160),
	})

	_ = suite.createTestAllocation(models.Allocation{
		ProjectID:     "PRJ-0042",
		BillingItemID: "IOM-2025-113",
		WindowStart:   windowStart,
		PersonID:      "jane.doe",
		TotalHours:    decimal.NewFromInt(160),
	})

	// Hours received as a reportee count toward the total
	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(80)},
	})
	assert.Nil(suite.T(), err)

	summaries, err := models.SummaryForWindow(windowStart, []identity.PersonID{"person.a"})
	assert.Nil(suite.T(), err)

	a := summaries["person.a"]
	assert.True(suite.T(), a.TotalHours.Equal(decimal.NewFromInt(80)), "total is %s", a.TotalHours)
	assert.True(suite.T(), a.FTE.Equal(decimal.RequireFromString("0.5")), "fte is %s", a.FTE)
	assert.Equal(suite.T(), models.CapacityBandMedium, a.Band)
}

func (suite *TestSuiteStandard) TestSummaryForWindowCanonicalizes() {
	windowStart := types.NewDate(2025, 7, 1)

	_ = suite.createTestAllocation(models.Allocation{
		ProjectID:     "PRJ-0042",
		BillingItemID: "IOM-2025-113",
		WindowStart:   windowStart,
		PersonID:      "jane.doe",
		TotalHours:    decimal.NewFromInt(100),
	})

	summaries, err := models.SummaryForWindow(windowStart, []identity.PersonID{"Jane.Doe@example.com"})
	assert.Nil(suite.T(), err)

	jane := summaries["jane.doe"]
	assert.True(suite.T(), jane.TotalHours.Equal(decimal.NewFromInt(100)), "total is %s", jane.TotalHours)
}

func (suite *TestSuiteStandard) TestCapacityBands() {
	windowStart := types.NewDate(2025, 7, 1)

	_ = suite.createTestWindow(models.BillingWindow{
		Year:     2025,
		Month:    7,
		Start:    windowStart,
		End:      types.NewDate(2025, 7, 31),
		MaxHours: decimal.NewFromInt(100),
	})

	tests := []struct {
		person identity.PersonID
		hours  int64
		band   string
	}{
		{"person.full", 110, models.CapacityBandFull},
		{"person.exact", 100, models.CapacityBandFull},
		{"person.high", 85, models.CapacityBandHigh},
		{"person.medium", 50, models.CapacityBandMedium},
		{"person.low", 20, models.CapacityBandLow},
	}

	persons := make([]identity.PersonID, 0, len(tests))
	for _, tt := range tests {
		_ = suite.createTestAllocation(models.Allocation{
			ProjectID:     "PRJ-0042",
			BillingItemID: "IOM-2025-113",
			WindowStart:   windowStart,
			PersonID:      tt.person,
			TotalHours:    decimal.NewFromInt(tt.hours),
		})
		persons = append(persons, tt.person)
	}

	summaries, err := models.SummaryForWindow(windowStart, persons)
	assert.Nil(suite.T(), err)

	for _, tt := range tests {
		assert.Equal(suite.T(), tt.band, summaries[tt.person].Band, "person %s", tt.person)
	}
}

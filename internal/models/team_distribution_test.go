package models_test

import (
	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/models"
	"github.com/hourledger/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func (suite *TestSuiteStandard) TestTeamDistributionBeforeSave() {
	distribution := models.TeamDistribution{
		LeadID:     "Jane.Doe@example.com",
		ReporteeID: "John Smith",
	}

	err := distribution.BeforeSave(&gorm.DB{})
	assert.Nil(suite.T(), err)

	assert.Equal(suite.T(), identity.PersonID("jane.doe"), distribution.LeadID)
	assert.Equal(suite.T(), identity.PersonID("john.smith"), distribution.ReporteeID)
}

func (suite *TestSuiteStandard) TestTeamDistributionAfterSave() {
	d := models.TeamDistribution{Hours: decimal.NewFromInt(-1)}
	assert.ErrorIs(suite.T(), d.AfterSave(&gorm.DB{}), models.ErrDistributionHoursNegative)

	d = models.TeamDistribution{Hours: decimal.NewFromInt(40)}
	assert.Nil(suite.T(), d.AfterSave(&gorm.DB{}))
}

// allocateLead gives the lead their own allocation to distribute from.
func (suite *TestSuiteStandard) allocateLead(windowStart types.Date, lead identity.PersonID, hours int64) {
	_ = suite.createTestAllocation(models.Allocation{
		ProjectID:     "PRJ-0042",
		BillingItemID: "IOM-2025-113",
		WindowStart:   windowStart,
		PersonID:      lead,
		TotalHours:    decimal.NewFromInt(hours),
	})
}

func (suite *TestSuiteStandard) TestSaveDistribution() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	saved, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
		{ReporteeID: "person.b", Hours: decimal.NewFromInt(60)},
	})

	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), saved, 2)
	assert.Equal(suite.T(), identity.PersonID("jane.doe"), saved[0].LeadID)
}

func (suite *TestSuiteStandard) TestSaveDistributionOverCapacity() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	// 40 + 70 = 110 exceeds the lead's 100 hours, the whole batch is rejected
	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
		{ReporteeID: "person.b", Hours: decimal.NewFromInt(70)},
	})

	assert.ErrorIs(suite.T(), err, models.ErrCapacityExceeded)

	rows, listErr := models.ListDistributions(windowStart, nil)
	assert.Nil(suite.T(), listErr)
	assert.Len(suite.T(), rows, 0, "a rejected batch must not persist anything")
}

func (suite *TestSuiteStandard) TestSaveDistributionExactCapacity() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	// Distributing exactly the full allocation is allowed
	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
		{ReporteeID: "person.b", Hours: decimal.NewFromInt(60)},
	})

	assert.Nil(suite.T(), err)
}

func (suite *TestSuiteStandard) TestSaveDistributionCountsUntouchedRows() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(50)},
	})
	assert.Nil(suite.T(), err)

	// person.a's existing 50 hours plus 60 for person.b exceed the allocation
	_, err = models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.b", Hours: decimal.NewFromInt(60)},
	})
	assert.ErrorIs(suite.T(), err, models.ErrCapacityExceeded)

	// Resubmitting person.a with fewer hours replaces the row instead of adding
	_, err = models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(30)},
		{ReporteeID: "person.b", Hours: decimal.NewFromInt(60)},
	})
	assert.Nil(suite.T(), err)

	rows, err := models.ListDistributions(windowStart, nil)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), rows, 2)
}

func (suite *TestSuiteStandard) TestSaveDistributionWithWeekPercents() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	saved, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{
			ReporteeID: "person.a",
			Hours:      decimal.NewFromInt(40),
			WeekPercents: map[int]decimal.Decimal{
				1: decimal.NewFromInt(50),
				2: decimal.NewFromInt(50),
			},
		},
	})
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), saved, 1)

	splits, err := models.SplitsForOwner(saved[0].ID)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), splits, 2)
	assert.True(suite.T(), splits[0].Hours.Equal(decimal.NewFromInt(20)))
}

func (suite *TestSuiteStandard) TestSaveDistributionResolvesSpellings() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	_, err := models.SaveDistribution("Jane.Doe@example.com", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "John Smith", Hours: decimal.NewFromInt(40)},
	})
	assert.Nil(suite.T(), err)

	rows, err := models.ListDistributions(windowStart, nil)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), identity.PersonID("john.smith"), rows[0].ReporteeID)
}

func (suite *TestSuiteStandard) TestDeleteDistribution() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	saved, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{
			ReporteeID:   "person.a",
			Hours:        decimal.NewFromInt(40),
			WeekPercents: map[int]decimal.Decimal{1: decimal.NewFromInt(100)},
		},
	})
	assert.Nil(suite.T(), err)

	err = models.DeleteDistribution(saved[0].ID, "jane.doe")
	assert.Nil(suite.T(), err)

	rows, err := models.ListDistributions(windowStart, nil)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), rows, 0)

	// The splits are gone with the row
	splits, err := models.SplitsForOwner(saved[0].ID)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), splits, 0)
}

func (suite *TestSuiteStandard) TestDeleteDistributionOnlyByOwner() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	saved, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
	})
	assert.Nil(suite.T(), err)

	err = models.DeleteDistribution(saved[0].ID, "someone.else")
	assert.ErrorIs(suite.T(), err, models.ErrForbidden)
}

func (suite *TestSuiteStandard) TestListDistributionsFilteredByLead() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	_ = suite.createTestAllocation(models.Allocation{
		ProjectID:     "PRJ-0043",
		BillingItemID: "IOM-2025-200",
		WindowStart:   windowStart,
		PersonID:      "other.lead",
		TotalHours:    decimal.NewFromInt(50),
	})

	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
	})
	assert.Nil(suite.T(), err)

	_, err = models.SaveDistribution("other.lead", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.b", Hours: decimal.NewFromInt(20)},
	})
	assert.Nil(suite.T(), err)

	lead := identity.PersonID("jane.doe")
	rows, err := models.ListDistributions(windowStart, &lead)
	assert.Nil(suite.T(), err)
	assert.Len(suite.T(), rows, 1)
	assert.Equal(suite.T(), identity.PersonID("person.a"), rows[0].ReporteeID)
}

func (suite *TestSuiteStandard) TestApplyDistributions() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
	})
	assert.Nil(suite.T(), err)

	err = models.ApplyDistributions(windowStart, models.DefaultMonthlyCapacity, false)
	assert.Nil(suite.T(), err)

	// The reportee now has a ledger row under the lead's team key
	sum, err := models.SumForPerson(windowStart, "person.a", nil)
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), sum.Equal(decimal.NewFromInt(40)), "sum is %s", sum)

	var allocation models.Allocation
	err = models.DB.First(&allocation, "person_id = ?", "person.a").Error
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), "team/jane.doe", allocation.ProjectID)
	assert.Equal(suite.T(), models.DistributionBillingItem, allocation.BillingItemID)
}

func (suite *TestSuiteStandard) TestApplyDistributionsIsIdempotent() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	// 100 hours exceed half the 183.75 limit, so the replay only passes
	// validation when the promoted rows of the first apply are not counted
	// as existing hours
	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(100)},
	})
	assert.Nil(suite.T(), err)

	err = models.ApplyDistributions(windowStart, models.DefaultMonthlyCapacity, false)
	assert.Nil(suite.T(), err)

	err = models.ApplyDistributions(windowStart, models.DefaultMonthlyCapacity, false)
	assert.Nil(suite.T(), err)

	sum, err := models.SumForPerson(windowStart, "person.a", nil)
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), sum.Equal(decimal.NewFromInt(100)), "sum is %s", sum)
}

func (suite *TestSuiteStandard) TestApplyDistributionsCountsSubprojectHours() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	// person.a already has 150 subproject-scoped ledger hours
	subproject := "SUB-7"
	_ = suite.createTestAllocation(models.Allocation{
		ProjectID:     "PRJ-0099",
		SubprojectID:  &subproject,
		BillingItemID: "IOM-2025-300",
		WindowStart:   windowStart,
		PersonID:      "person.a",
		TotalHours:    decimal.NewFromInt(150),
	})

	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(80)},
	})
	assert.Nil(suite.T(), err)

	// 150 + 80 exceed the 183.75 limit even though the 150 hours live on a
	// subproject, a dry run already rejects the apply
	err = models.ApplyDistributions(windowStart, models.DefaultMonthlyCapacity, true)
	assert.ErrorIs(suite.T(), err, models.ErrCapacityExceeded)
}

func (suite *TestSuiteStandard) TestApplyDistributionsOverCapacity() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	// person.a already has 170 ledger hours of their own
	_ = suite.createTestAllocation(models.Allocation{
		ProjectID:     "PRJ-0099",
		BillingItemID: "IOM-2025-300",
		WindowStart:   windowStart,
		PersonID:      "person.a",
		TotalHours:    decimal.NewFromInt(170),
	})

	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
	})
	assert.Nil(suite.T(), err)

	// 170 + 40 exceeds the 183.75 limit
	err = models.ApplyDistributions(windowStart, models.DefaultMonthlyCapacity, false)
	assert.ErrorIs(suite.T(), err, models.ErrCapacityExceeded)

	// Nothing was promoted
	sum, err := models.SumForPerson(windowStart, "person.a", nil)
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), sum.Equal(decimal.NewFromInt(170)), "sum is %s", sum)
}

func (suite *TestSuiteStandard) TestApplyDistributionsDryRun() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
	})
	assert.Nil(suite.T(), err)

	err = models.ApplyDistributions(windowStart, models.DefaultMonthlyCapacity, true)
	assert.Nil(suite.T(), err)

	sum, err := models.SumForPerson(windowStart, "person.a", nil)
	assert.Nil(suite.T(), err)
	assert.True(suite.T(), sum.IsZero(), "dry run must not write, sum is %s", sum)
}

func (suite *TestSuiteStandard) TestListDirectReports() {
	windowStart := types.NewDate(2025, 7, 21)
	suite.allocateLead(windowStart, "jane.doe", 100)

	_, err := models.SaveDistribution("jane.doe", windowStart, nil, []models.DistributionItem{
		{ReporteeID: "person.b", Hours: decimal.NewFromInt(20)},
		{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
	})
	assert.Nil(suite.T(), err)

	reports, err := models.Directory{}.ListDirectReports("Jane Doe")
	assert.Nil(suite.T(), err)
	assert.Equal(suite.T(), []identity.PersonID{"person.a", "person.b"}, reports)
}

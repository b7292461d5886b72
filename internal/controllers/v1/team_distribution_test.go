package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/hourledger/backend/internal/controllers/v1"
	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/models"
	"github.com/hourledger/backend/test"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestLeadAllocation books a plan giving jane.doe 100 hours for the
// default window.
func (suite *TestSuiteStandard) createTestLeadAllocation() {
	_ = suite.createTestWindow(defaultTestWindow())

	_ = suite.createTestPlan(v1.MonthlyPlanEditable{
		ProjectID: "PRJ-0042",
		Year:      2025,
		Month:     7,
		Items: []v1.PlanItemEditable{
			{BillingItemID: "IOM-2025-113", PersonID: "jane.doe", Hours: decimal.NewFromInt(100)},
		},
	})
}

func defaultTestDistribution() v1.DistributionEditable {
	return v1.DistributionEditable{
		LeadID: "jane.doe",
		Year:   2025,
		Month:  7,
		Items: []v1.DistributionItemEditable{
			{ReporteeID: "person.a", Hours: decimal.NewFromInt(40)},
			{ReporteeID: "person.b", Hours: decimal.NewFromInt(60)},
		},
	}
}

// TestTeamDistributionsDBClosed verifies that errors are processed correctly
// when the database is closed.
func (suite *TestSuiteStandard) TestTeamDistributionsDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Save fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodPost, "http://example.com/v1/team-distributions", defaultTestDistribution())
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/team-distributions?windowStart=2025-07-21", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

func (suite *TestSuiteStandard) TestTeamDistributionsSave() {
	suite.createTestLeadAllocation()

	response := suite.createTestDistribution(defaultTestDistribution())
	require.Len(suite.T(), response.Data, 2)

	assert.Equal(suite.T(), identity.PersonID("jane.doe"), response.Data[0].LeadID)
	assert.Equal(suite.T(), "2025-07-21", response.Data[0].WindowStart.String())
}

func (suite *TestSuiteStandard) TestTeamDistributionsSaveOverCapacity() {
	suite.createTestLeadAllocation()

	over := defaultTestDistribution()
	over.Items[1].Hours = decimal.NewFromInt(70)

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/team-distributions", over)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)

	var response v1.TeamDistributionListResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Equal(suite.T(), models.ErrCapacityExceeded.Error(), *response.Error)

	// The batch is all or nothing, so no row was persisted
	recorder = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/team-distributions?windowStart=2025-07-21", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Len(suite.T(), response.Data, 0)
}

func (suite *TestSuiteStandard) TestTeamDistributionsSaveSpellings() {
	suite.createTestLeadAllocation()

	distribution := defaultTestDistribution()
	distribution.LeadID = "Jane.Doe@example.com"
	distribution.Items[0].ReporteeID = "Person A"

	response := suite.createTestDistribution(distribution)
	require.Len(suite.T(), response.Data, 2)
	assert.Equal(suite.T(), identity.PersonID("jane.doe"), response.Data[0].LeadID)
	assert.Equal(suite.T(), identity.PersonID("person.a"), response.Data[0].ReporteeID)
}

func (suite *TestSuiteStandard) TestTeamDistributionsSaveInvalid() {
	tests := []struct {
		name string
		body any
	}{
		{"broken JSON", `{ "leadId": `},
		{"period missing", v1.DistributionEditable{LeadID: "jane.doe"}},
		{"lead not canonicalizable", v1.DistributionEditable{LeadID: "@example.com", Year: 2025, Month: 7}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodPost, "http://example.com/v1/team-distributions", tt.body)
			test.AssertHTTPStatus(t, &recorder, http.StatusBadRequest)
		})
	}
}

func (suite *TestSuiteStandard) TestTeamDistributionsWeekPercents() {
	suite.createTestLeadAllocation()

	distribution := v1.DistributionEditable{
		LeadID: "jane.doe",
		Year:   2025,
		Month:  7,
		Items: []v1.DistributionItemEditable{
			{
				ReporteeID: "person.a",
				Hours:      decimal.NewFromInt(40),
				WeekPercents: map[int]decimal.Decimal{
					1: decimal.NewFromInt(50),
					2: decimal.NewFromInt(50),
				},
			},
		},
	}

	response := suite.createTestDistribution(distribution)
	require.Len(suite.T(), response.Data, 1)

	recorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/weekly-splits?owner=%s", response.Data[0].ID), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var splits v1.WeeklySplitListResponse
	test.DecodeResponse(suite.T(), &recorder, &splits)
	require.Len(suite.T(), splits.Data, 2)
	assert.True(suite.T(), splits.Data[0].Hours.Equal(decimal.NewFromInt(20)))
	assert.True(suite.T(), splits.Data[1].Hours.Equal(decimal.NewFromInt(20)))
}

func (suite *TestSuiteStandard) TestTeamDistributionsGetFilter() {
	suite.createTestLeadAllocation()
	_ = suite.createTestDistribution(defaultTestDistribution())

	tests := []struct {
		name   string
		query  string
		len    int
		status int
	}{
		{"window", "windowStart=2025-07-21", 2, http.StatusOK},
		{"window and lead", "windowStart=2025-07-21&lead=Jane.Doe%40example.com", 2, http.StatusOK},
		{"other lead", "windowStart=2025-07-21&lead=someone.else", 0, http.StatusOK},
		{"other window", "windowStart=2025-08-21", 0, http.StatusOK},
		{"window missing", "", 0, http.StatusBadRequest},
		{"window not a date", "windowStart=lastmonth", 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/team-distributions?%s", tt.query), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)

			if tt.status == http.StatusOK {
				var response v1.TeamDistributionListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Len(t, response.Data, tt.len)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestTeamDistributionsGetSingle() {
	suite.createTestLeadAllocation()
	response := suite.createTestDistribution(defaultTestDistribution())

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"existing distribution", response.Data[0].ID.String(), http.StatusOK},
		{"unknown ID", uuid.New().String(), http.StatusNotFound},
		{"invalid UUID", "NotParseableAsUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/team-distributions/%s", tt.id), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestTeamDistributionsDelete() {
	suite.createTestLeadAllocation()
	response := suite.createTestDistribution(defaultTestDistribution())
	id := response.Data[0].ID

	tests := []struct {
		name   string
		lead   string
		status int
	}{
		{"missing header", "", http.StatusBadRequest},
		{"wrong lead", "someone.else", http.StatusForbidden},
		{"owning lead", "Jane.Doe@example.com", http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var headers map[string]string
			if tt.lead != "" {
				headers = map[string]string{"X-Lead": tt.lead}
			}

			recorder := test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v1/team-distributions/%s", id), "", headers)
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}

	recorder := test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/team-distributions/%s", id), "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestTeamDistributionsApply() {
	suite.createTestLeadAllocation()
	_ = suite.createTestDistribution(defaultTestDistribution())

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/team-distributions/apply", v1.DistributionApplyEditable{
		Year:  2025,
		Month: 7,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.DistributionApplyResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.False(suite.T(), response.DryRun)

	// The reportees now have ledger rows under the lead's team project
	listRecorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocations?project=team%2Fjane.doe", "")
	test.AssertHTTPStatus(suite.T(), &listRecorder, http.StatusOK)

	var allocations v1.AllocationListResponse
	test.DecodeResponse(suite.T(), &listRecorder, &allocations)
	require.Len(suite.T(), allocations.Data, 2)
	assert.Equal(suite.T(), models.DistributionBillingItem, allocations.Data[0].BillingItemID)
}

func (suite *TestSuiteStandard) TestTeamDistributionsApplyDryRun() {
	suite.createTestLeadAllocation()
	_ = suite.createTestDistribution(defaultTestDistribution())

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/team-distributions/apply", v1.DistributionApplyEditable{
		Year:   2025,
		Month:  7,
		DryRun: true,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.DistributionApplyResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.True(suite.T(), response.DryRun)

	// Nothing was promoted
	listRecorder := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocations?project=team%2Fjane.doe", "")
	test.AssertHTTPStatus(suite.T(), &listRecorder, http.StatusOK)

	var allocations v1.AllocationListResponse
	test.DecodeResponse(suite.T(), &listRecorder, &allocations)
	assert.Len(suite.T(), allocations.Data, 0)
}

func (suite *TestSuiteStandard) TestTeamDistributionsApplyOverCapacity() {
	suite.createTestLeadAllocation()
	_ = suite.createTestDistribution(defaultTestDistribution())

	// A limit below the distributed hours rejects the apply
	limit := decimal.NewFromInt(50)
	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/team-distributions/apply", v1.DistributionApplyEditable{
		Year:          2025,
		Month:         7,
		CapacityLimit: &limit,
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusConflict)

	var response v1.DistributionApplyResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Contains(suite.T(), *response.Error, models.ErrCapacityExceeded.Error())
}

func (suite *TestSuiteStandard) TestTeamDistributionsApplyInvalid() {
	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/team-distributions/apply", v1.DistributionApplyEditable{})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestTeamDistributionsOptions() {
	suite.createTestLeadAllocation()
	response := suite.createTestDistribution(defaultTestDistribution())

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"existing distribution", response.Data[0].ID.String(), http.StatusNoContent},
		{"unknown ID", uuid.New().String(), http.StatusNotFound},
		{"invalid UUID", "NotParseableAsUUID", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodOptions, fmt.Sprintf("http://example.com/v1/team-distributions/%s", tt.id), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, DELETE", recorder.Header().Get("allow"))
			}
		})
	}
}

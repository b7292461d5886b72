package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/hourledger/backend/internal/controllers/v1"
	"github.com/hourledger/backend/internal/models"
	"github.com/hourledger/backend/internal/types"
	"github.com/hourledger/backend/test"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// TestBillingWindowsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestBillingWindowsDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodPost, "http://example.com/v1/billing-windows", []v1.BillingWindowEditable{defaultTestWindow()})
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "http://example.com/v1/billing-windows", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.BillingWindowListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
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

func (suite *TestSuiteStandard) TestBillingWindowsCreate() {
	window := suite.createTestWindow(defaultTestWindow())

	assert.Equal(suite.T(), 2025, window.Data.Year)
	assert.Equal(suite.T(), 7, window.Data.Month)
	assert.True(suite.T(), window.Data.Start.Equal(types.NewDate(2025, 7, 21)))
	assert.True(suite.T(), window.Data.End.Equal(types.NewDate(2025, 8, 20)))
	assert.True(suite.T(), window.Data.MaxHours.Equal(decimal.New(18375, -2)))
	assert.Equal(suite.T(), "http://example.com/v1/billing-windows/2025/7", window.Data.Links.Self)
}

func (suite *TestSuiteStandard) TestBillingWindowsCreateDuplicate() {
	_ = suite.createTestWindow(defaultTestWindow())

	recorder := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/billing-windows", []v1.BillingWindowEditable{defaultTestWindow()})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)

	var response v1.BillingWindowCreateResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.Equal(suite.T(), models.ErrBillingWindowNotUnique.Error(), *response.Data[0].Error)
}

func (suite *TestSuiteStandard) TestBillingWindowsCreateInvalid() {
	tests := []struct {
		name   string
		window v1.BillingWindowEditable
		err    error
	}{
		{
			"month invalid",
			v1.BillingWindowEditable{Year: 2025, Month: 13, Start: types.NewDate(2025, 7, 21), End: types.NewDate(2025, 8, 20)},
			models.ErrWindowMonthInvalid,
		},
		{
			"end before start",
			v1.BillingWindowEditable{Year: 2025, Month: 7, Start: types.NewDate(2025, 7, 21), End: types.NewDate(2025, 7, 20)},
			models.ErrWindowStartAfterEnd,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodPost, "http://example.com/v1/billing-windows", []v1.BillingWindowEditable{tt.window})
			test.AssertHTTPStatus(t, &recorder, http.StatusBadRequest)

			var response v1.BillingWindowCreateResponse
			test.DecodeResponse(t, &recorder, &response)
			assert.Equal(t, tt.err.Error(), *response.Data[0].Error)
		})
	}
}

func (suite *TestSuiteStandard) TestBillingWindowsGetFilter() {
	_ = suite.createTestWindow(defaultTestWindow())
	_ = suite.createTestWindow(v1.BillingWindowEditable{
		Year:  2025,
		Month: 8,
		Start: types.NewDate(2025, 8, 21),
		End:   types.NewDate(2025, 9, 20),
	})
	_ = suite.createTestWindow(v1.BillingWindowEditable{
		Year:  2024,
		Month: 7,
		Start: types.NewDate(2024, 7, 22),
		End:   types.NewDate(2024, 8, 20),
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"all", "", 3},
		{"year 2025", "year=2025", 2},
		{"month 7", "month=7", 2},
		{"year and month", "year=2024&month=7", 1},
		{"no match", "year=2023", 0},
		{"limit", "limit=2", 2},
		{"offset", "offset=2", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/billing-windows?%s", tt.query), "")
			test.AssertHTTPStatus(t, &recorder, http.StatusOK)

			var response v1.BillingWindowListResponse
			test.DecodeResponse(t, &recorder, &response)
			assert.Len(t, response.Data, tt.len)
		})
	}
}

func (suite *TestSuiteStandard) TestBillingWindowsGetSingle() {
	_ = suite.createTestWindow(defaultTestWindow())

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"existing window", "2025/7", http.StatusOK},
		{"unknown period", "2025/9", http.StatusNotFound},
		{"year not numeric", "definitely-not-a-year/7", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/billing-windows/%s", tt.path), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestBillingWindowsUpdate() {
	_ = suite.createTestWindow(defaultTestWindow())

	recorder := test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/billing-windows/2025/7", map[string]any{
		"maxHours": "160",
	})
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusOK)

	var response v1.BillingWindowResponse
	test.DecodeResponse(suite.T(), &recorder, &response)
	assert.True(suite.T(), response.Data.MaxHours.Equal(decimal.NewFromInt(160)))

	// The dates stay untouched
	assert.True(suite.T(), response.Data.Start.Equal(types.NewDate(2025, 7, 21)))
}

func (suite *TestSuiteStandard) TestBillingWindowsUpdateBrokenJSON() {
	_ = suite.createTestWindow(defaultTestWindow())

	recorder := test.Request(suite.T(), http.MethodPatch, "http://example.com/v1/billing-windows/2025/7", `{ "maxHours": `)
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestBillingWindowsDelete() {
	_ = suite.createTestWindow(defaultTestWindow())

	recorder := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1/billing-windows/2025/7", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNoContent)

	// The period can be configured again after the delete
	_ = suite.createTestWindow(defaultTestWindow())
}

func (suite *TestSuiteStandard) TestBillingWindowsDeleteUnknown() {
	recorder := test.Request(suite.T(), http.MethodDelete, "http://example.com/v1/billing-windows/2025/7", "")
	test.AssertHTTPStatus(suite.T(), &recorder, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestBillingWindowsOptions() {
	_ = suite.createTestWindow(defaultTestWindow())

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"existing window", "2025/7", http.StatusNoContent},
		{"unknown period", "2026/1", http.StatusNotFound},
		{"month not numeric", "2025/NaN", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			recorder := test.Request(t, http.MethodOptions, fmt.Sprintf("http://example.com/v1/billing-windows/%s", tt.path), "")
			test.AssertHTTPStatus(t, &recorder, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", recorder.Header().Get("allow"))
			}
		})
	}
}

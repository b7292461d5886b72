package v1

import (
	"fmt"

	"github.com/hourledger/backend/internal/models"
	"github.com/hourledger/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PlanItemEditable is one row of a monthly plan submission.
type PlanItemEditable struct {
	BillingItemID string          `json:"billingItemId" example:"IOM-2025-113"` // The funded work order the hours are planned against
	PersonID      string          `json:"personId" example:"Jane.Doe@example.com"`
	Hours         decimal.Decimal `json:"hours" example:"160" minimum:"0" multipleOf:"0.01"`
}

// MonthlyPlanEditable is the complete desired state of the monthly tier for
// one (project, subproject, period) key. Submitting it replaces all stored
// rows for the billing items it contains.
type MonthlyPlanEditable struct {
	ProjectID    string             `json:"projectId" example:"PRJ-0042"`
	SubprojectID *string            `json:"subprojectId" example:"SUB-7"`
	Year         int                `json:"year" example:"2025"`
	Month        int                `json:"month" example:"7"`
	Items        []PlanItemEditable `json:"items"`
}

type AllocationLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/allocations/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // The allocation itself
	Punches string `json:"punches" example:"https://example.com/api/v1/daily-punches?allocation=438cc6c0"`             // The punches against this allocation
	Splits  string `json:"splits" example:"https://example.com/api/v1/weekly-splits?owner=438cc6c0"`                   // The weekly splits of this allocation
}

type Allocation struct {
	models.Allocation
	Links AllocationLinks `json:"links"`
}

// newAllocation returns the API v1 representation of the resource
func newAllocation(c *gin.Context, model models.Allocation) Allocation {
	url := c.GetString(string(models.DBContextURL))

	return Allocation{
		Allocation: model,
		Links: AllocationLinks{
			Self:    fmt.Sprintf("%s/v1/allocations/%s", url, model.ID),
			Punches: fmt.Sprintf("%s/v1/daily-punches?allocation=%s", url, model.ID),
			Splits:  fmt.Sprintf("%s/v1/weekly-splits?owner=%s", url, model.ID),
		},
	}
}

type AllocationListResponse struct {
	Data       []Allocation `json:"data"`                                                          // List of resources
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination  `json:"pagination"`                                                    // Pagination information
}

type AllocationPlanResponse struct {
	Error *string      `json:"error" example:"the billing period for this plan could not be resolved"` // The error, if any occurred
	Data  []Allocation `json:"data"`                                                                   // The stored rows after the replace
}

type AllocationResponse struct {
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *Allocation `json:"data"`                                                          // The resource
}

type AllocationQueryFilter struct {
	ProjectID     string `form:"project"`                         // Filter by project
	SubprojectID  string `form:"subproject" filterField:"false"`  // Filter by subproject
	BillingItemID string `form:"billingItem"`                     // Filter by billing item
	PersonID      string `form:"person" filterField:"false"`      // Filter by person, any known spelling
	WindowStart   string `form:"windowStart" filterField:"false"` // Window start date in YYYY-MM-DD format
	Offset        uint   `form:"offset" filterField:"false"`      // The offset of the first allocation returned. Defaults to 0.
	Limit         int    `form:"limit" filterField:"false"`       // Maximum number of allocations to return. Defaults to 50.
}

func (f AllocationQueryFilter) model() models.Allocation {
	// Person, subproject and window are handled in the handler
	return models.Allocation{
		ProjectID:     f.ProjectID,
		BillingItemID: f.BillingItemID,
	}
}

// parseWindowStart parses the windowStart query parameter.
func parseWindowStart(value string) (types.Date, error) {
	date, err := types.ParseDate(value)
	if err != nil {
		return types.Date{}, fmt.Errorf("the windowStart parameter must be a date in YYYY-MM-DD format")
	}

	return date, nil
}

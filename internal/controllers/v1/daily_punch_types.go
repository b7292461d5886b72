package v1

import (
	"fmt"

	"github.com/hourledger/backend/internal/models"
	"github.com/hourledger/backend/internal/types"
	"github.com/hourledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PunchEditable is a single day's hours for one ledger row. Submitting the
// same (person, ledger row, date) again replaces the stored value.
type PunchEditable struct {
	PersonID     string          `json:"personId" example:"jane.doe"`
	AllocationID uuid.UUID       `json:"allocationId" example:"438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
	Date         types.Date      `json:"date" example:"2025-07-23"`
	Hours        decimal.Decimal `json:"hours" example:"7.5" minimum:"0" multipleOf:"0.01"`
}

type DailyPunchLinks struct {
	Allocation string `json:"allocation" example:"https://example.com/api/v1/allocations/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // The ledger row this punch books against
}

type DailyPunch struct {
	models.DailyPunch
	Links DailyPunchLinks `json:"links"`
}

// newDailyPunch returns the API v1 representation of the resource
func newDailyPunch(c *gin.Context, model models.DailyPunch) DailyPunch {
	url := c.GetString(string(models.DBContextURL))

	return DailyPunch{
		DailyPunch: model,
		Links: DailyPunchLinks{
			Allocation: fmt.Sprintf("%s/v1/allocations/%s", url, model.AllocationID),
		},
	}
}

type DailyPunchListResponse struct {
	Data  []DailyPunch `json:"data"`                                                    // List of resources
	Error *string      `json:"error" example:"the person query parameter must be set"` // The error, if any occurred
}

type DailyPunchResponse struct {
	Error *string     `json:"error" example:"the punched hours exceed the weekly ceiling"` // The error, if any occurred
	Data  *DailyPunch `json:"data"`                                                        // The resource
}

type DailyPunchQueryFilter struct {
	PersonID     string `form:"person"`     // The person the punches belong to, any known spelling
	AllocationID string `form:"allocation"` // The ledger row the punches book against
	From         string `form:"from"`       // Earliest date to include in YYYY-MM-DD format
	Until        string `form:"until"`      // Latest date to include in YYYY-MM-DD format
}

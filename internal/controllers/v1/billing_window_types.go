package v1

import (
	"fmt"

	"github.com/hourledger/backend/internal/models"
	"github.com/hourledger/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type BillingWindowEditable struct {
	Year     int             `json:"year" example:"2025"`                                       // Year the window is configured for
	Month    int             `json:"month" example:"7"`                                         // Month the window is configured for
	Start    types.Date      `json:"start" example:"2025-07-21"`                                // First day of the window
	End      types.Date      `json:"end" example:"2025-08-20"`                                  // Last day of the window, inclusive
	MaxHours decimal.Decimal `json:"maxHours" example:"183.75" minimum:"0" multipleOf:"0.01"` // Capacity limit for a single person
}

// model returns the database resource for the API representation of the editable fields
func (editable BillingWindowEditable) model() models.BillingWindow {
	return models.BillingWindow{
		Year:     editable.Year,
		Month:    editable.Month,
		Start:    editable.Start,
		End:      editable.End,
		MaxHours: editable.MaxHours,
	}
}

type BillingWindowLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/billing-windows/2025/7"` // The window itself
}

type BillingWindow struct {
	models.Timestamps
	BillingWindowEditable
	Links BillingWindowLinks `json:"links"`
}

// newBillingWindow returns the API v1 representation of the resource
func newBillingWindow(c *gin.Context, model models.BillingWindow) BillingWindow {
	url := c.GetString(string(models.DBContextURL))

	return BillingWindow{
		Timestamps: model.Timestamps,
		BillingWindowEditable: BillingWindowEditable{
			Year:     model.Year,
			Month:    model.Month,
			Start:    model.Start,
			End:      model.End,
			MaxHours: model.MaxHours,
		},
		Links: BillingWindowLinks{
			Self: fmt.Sprintf("%s/v1/billing-windows/%d/%d", url, model.Year, model.Month),
		},
	}
}

type BillingWindowListResponse struct {
	Data       []BillingWindow `json:"data"`                                               // List of resources
	Error      *string         `json:"error" example:"the year parameter must be numeric"` // The error, if any occurred
	Pagination *Pagination     `json:"pagination"`                                         // Pagination information
}

type BillingWindowCreateResponse struct {
	Error *string                 `json:"error" example:"the year parameter must be numeric"` // The error, if any occurred
	Data  []BillingWindowResponse `json:"data"`                                               // List of created resources
}

func (t *BillingWindowCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, BillingWindowResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type BillingWindowResponse struct {
	Error *string        `json:"error" example:"the year parameter must be numeric"` // The error, if any occurred
	Data  *BillingWindow `json:"data"`                                               // The resource
}

type BillingWindowQueryFilter struct {
	Year   int  `form:"year"`                       // Filter by year
	Month  int  `form:"month"`                      // Filter by month
	Offset uint `form:"offset" filterField:"false"` // The offset of the first window returned. Defaults to 0.
	Limit  int  `form:"limit" filterField:"false"`  // Maximum number of windows to return. Defaults to 50.
}

func (f BillingWindowQueryFilter) model() models.BillingWindow {
	return models.BillingWindow{
		Year:  f.Year,
		Month: f.Month,
	}
}

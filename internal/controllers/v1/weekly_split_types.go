package v1

import (
	"errors"
	"fmt"

	"github.com/hourledger/backend/internal/models"
	hl_uuid "github.com/hourledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PercentSplitEditable distributes an owner's total hours over week buckets
// by percentage. The owner is a monthly allocation or a team distribution.
type PercentSplitEditable struct {
	OwnerID    hl_uuid.UUID            `json:"ownerId" example:"65392deb-5e92-4268-b114-297faad6cdce"`
	TotalHours *decimal.Decimal        `json:"totalHours" example:"160"` // Optional, defaults to the owner's stored total
	Percents   map[int]decimal.Decimal `json:"percents"`                 // Percentage per week, clamped to [0,100]. The sum is recorded as given.
}

// SplitCellEditable updates a single week bucket of an owner.
type SplitCellEditable struct {
	Hours  *decimal.Decimal `json:"hours" example:"32"`      // Absolute hours for the week
	Status *string          `json:"status" example:"ACCEPTED"` // New review status for the week
}

type WeeklySplitLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/weekly-splits/438cc6c0-9baf-49fd-a75a-d76bd5cab19c/1"` // The split itself
}

type WeeklySplit struct {
	models.WeeklySplit
	Links WeeklySplitLinks `json:"links"`
}

// newWeeklySplit returns the API v1 representation of the resource
func newWeeklySplit(c *gin.Context, model models.WeeklySplit) WeeklySplit {
	url := c.GetString(string(models.DBContextURL))

	return WeeklySplit{
		WeeklySplit: model,
		Links: WeeklySplitLinks{
			Self: fmt.Sprintf("%s/v1/weekly-splits/%s/%d", url, model.OwnerID, model.Week),
		},
	}
}

type WeeklySplitListResponse struct {
	Data  []WeeklySplit `json:"data"`                                                          // List of resources
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type WeeklySplitResponse struct {
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *WeeklySplit `json:"data"`                                                          // The resource
}

type WeeklySplitQueryFilter struct {
	OwnerID string `form:"owner"` // ID of the owning allocation or distribution
}

var errOwnerUnknown = errors.New("there is no allocation or distribution with this id")

// splitTotalHours returns the total hours a percent split applies to,
// preferring the explicit value over the owner's stored total.
func splitTotalHours(editable PercentSplitEditable) (decimal.Decimal, error) {
	if editable.TotalHours != nil {
		return *editable.TotalHours, nil
	}

	return ownerTotalHours(editable.OwnerID.UUID)
}

// ownerTotalHours returns the stored total of a split owner.
func ownerTotalHours(ownerID uuid.UUID) (decimal.Decimal, error) {
	var allocation models.Allocation
	err := models.DB.First(&allocation, "id = ?", ownerID).Error
	if err == nil {
		return allocation.TotalHours, nil
	}

	var distribution models.TeamDistribution
	err = models.DB.First(&distribution, "id = ?", ownerID).Error
	if err == nil {
		return distribution.Hours, nil
	}

	return decimal.Zero, errOwnerUnknown
}

package v1

import (
	"net/http"

	"github.com/hourledger/backend/internal/httputil"
	"github.com/hourledger/backend/internal/models"
	"github.com/gin-gonic/gin"
)

func RegisterRootRoutes(r *gin.RouterGroup) {
	r.GET("", Get)
	r.DELETE("", Cleanup)
	r.OPTIONS("", Options)
}

type Response struct {
	Links Links `json:"links"` // Links for the v1 API
}

type Links struct {
	Allocations       string `json:"allocations" example:"https://example.com/api/v1/allocations"`              // URL of the monthly allocation endpoint
	BillingWindows    string `json:"billingWindows" example:"https://example.com/api/v1/billing-windows"`       // URL of the billing window configuration endpoint
	Capacity          string `json:"capacity" example:"https://example.com/api/v1/capacity"`                    // URL of the capacity summary endpoint
	IdentityAliases   string `json:"identityAliases" example:"https://example.com/api/v1/identity-aliases"`     // URL of the identity alias endpoint
	Punches           string `json:"punches" example:"https://example.com/api/v1/daily-punches"`                // URL of the daily punch endpoint
	TeamDistributions string `json:"teamDistributions" example:"https://example.com/api/v1/team-distributions"` // URL of the team distribution endpoint
	WeeklySplits      string `json:"weeklySplits" example:"https://example.com/api/v1/weekly-splits"`           // URL of the weekly split endpoint
}

// Get returns the link list for v1
//
//	@Summary		v1 API
//	@Description	Returns general information about the v1 API
//	@Tags			v1
//	@Success		200	{object}	Response
//	@Router			/v1 [get]
func Get(c *gin.Context) {
	url := c.GetString(string(models.DBContextURL))

	c.JSON(http.StatusOK, Response{
		Links: Links{
			Allocations:       url + "/v1/allocations",
			BillingWindows:    url + "/v1/billing-windows",
			Capacity:          url + "/v1/capacity",
			IdentityAliases:   url + "/v1/identity-aliases",
			Punches:           url + "/v1/daily-punches",
			TeamDistributions: url + "/v1/team-distributions",
			WeeklySplits:      url + "/v1/weekly-splits",
		},
	})
}

// Options returns the allowed HTTP methods
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			v1
//	@Success		204
//	@Router			/v1 [options]
func Options(c *gin.Context) {
	httputil.OptionsGetDelete(c)
}

// Cleanup permanently deletes all resources
//
//	@Summary		Delete everything
//	@Description	Permanently deletes all resources
//	@Tags			v1
//	@Success		204
//	@Failure		400		{object}	httpError
//	@Failure		500		{object}	httpError
//	@Param			confirm	query		string	false	"Confirmation to delete all resources. Must have the value 'yes-please-delete-everything'"
//	@Router			/v1 [delete]
func Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-everything" {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errCleanupConfirmation.Error(),
		})
		return
	}

	// Delete dependent rows before the rows they reference
	resources := []any{
		models.DailyPunch{},
		models.WeeklySplit{},
		models.TeamDistribution{},
		models.Allocation{},
		models.IdentityAlias{},
		models.BillingWindow{},
	}

	// Use a transaction so that we can roll back if errors happen
	tx := models.DB.Begin()

	for _, model := range resources {
		err := tx.Unscoped().Where("true").Delete(&model).Error
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpError{
				Error: err.Error(),
			})
			tx.Rollback()
			return
		}
	}

	tx.Commit()
	c.JSON(http.StatusNoContent, nil)
}

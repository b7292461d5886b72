package v1

import (
	"fmt"

	"github.com/hourledger/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// DistributionItemEditable is one reportee's share in a distribution submission.
type DistributionItemEditable struct {
	ReporteeID   string                  `json:"reporteeId" example:"John Smith"`
	Hours        decimal.Decimal         `json:"hours" example:"40" minimum:"0" multipleOf:"0.01"`
	WeekPercents map[int]decimal.Decimal `json:"weekPercents"` // Optional percentage split of the hours over the window's weeks
}

// DistributionEditable is a batch of redistribution rows for one
// (lead, period, subproject) key. The batch is all-or-nothing: it is
// rejected entirely when it would exceed the lead's own allocation.
type DistributionEditable struct {
	LeadID       string                     `json:"leadId" example:"Jane.Doe@example.com"`
	Year         int                        `json:"year" example:"2025"`
	Month        int                        `json:"month" example:"7"`
	SubprojectID *string                    `json:"subprojectId" example:"SUB-7"`
	Items        []DistributionItemEditable `json:"items"`
}

// DistributionApplyEditable promotes the distribution rows of a window into
// the monthly ledger.
type DistributionApplyEditable struct {
	Year          int              `json:"year" example:"2025"`
	Month         int              `json:"month" example:"7"`
	CapacityLimit *decimal.Decimal `json:"capacityLimit" example:"183.75"` // Optional, defaults to the period's configured limit
	DryRun        bool             `json:"dryRun" example:"true"`          // Validate only, write nothing
}

type TeamDistributionLinks struct {
	Self   string `json:"self" example:"https://example.com/api/v1/team-distributions/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // The distribution itself
	Splits string `json:"splits" example:"https://example.com/api/v1/weekly-splits?owner=438cc6c0"`                          // The weekly splits of this distribution
}

type TeamDistribution struct {
	models.TeamDistribution
	Links TeamDistributionLinks `json:"links"`
}

// newTeamDistribution returns the API v1 representation of the resource
func newTeamDistribution(c *gin.Context, model models.TeamDistribution) TeamDistribution {
	url := c.GetString(string(models.DBContextURL))

	return TeamDistribution{
		TeamDistribution: model,
		Links: TeamDistributionLinks{
			Self:   fmt.Sprintf("%s/v1/team-distributions/%s", url, model.ID),
			Splits: fmt.Sprintf("%s/v1/weekly-splits?owner=%s", url, model.ID),
		},
	}
}

type TeamDistributionListResponse struct {
	Data  []TeamDistribution `json:"data"`                                                       // List of resources
	Error *string            `json:"error" example:"the windowStart query parameter must be set"` // The error, if any occurred
}

type TeamDistributionResponse struct {
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *TeamDistribution `json:"data"`                                                          // The resource
}

type DistributionApplyResponse struct {
	Error  *string `json:"error" example:"the distributed hours exceed the available capacity"` // The error, if any occurred
	DryRun bool    `json:"dryRun" example:"true"`                                               // Whether only the validation ran
}

type TeamDistributionQueryFilter struct {
	WindowStart string `form:"windowStart"` // Window start date in YYYY-MM-DD format
	LeadID      string `form:"lead"`        // Filter by lead, any known spelling
}

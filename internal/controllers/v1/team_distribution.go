package v1

import (
	"net/http"
	"time"

	"github.com/hourledger/backend/internal/httputil"
	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/models"
	"github.com/gin-gonic/gin"
)

func RegisterTeamDistributionRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsTeamDistributions)
		r.GET("", GetTeamDistributions)
		r.POST("", SaveTeamDistribution)
	}
	{
		r.OPTIONS("/apply", OptionsTeamDistributionApply)
		r.POST("/apply", ApplyTeamDistributions)
	}
	{
		r.OPTIONS("/:id", OptionsTeamDistributionDetail)
		r.GET("/:id", GetTeamDistribution)
		r.DELETE("/:id", DeleteTeamDistribution)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			TeamDistributions
// @Success		204
// @Router			/v1/team-distributions [options]
func OptionsTeamDistributions(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			TeamDistributions
// @Success		204
// @Router			/v1/team-distributions/apply [options]
func OptionsTeamDistributionApply(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			TeamDistributions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/team-distributions/{id} [options]
func OptionsTeamDistributionDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.TeamDistribution{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetDelete(c)
}

// @Summary		Save team distribution
// @Description	Validates and persists a batch of redistribution rows for one (lead, period, subproject) key. The whole batch is rejected when the submitted hours plus the untouched existing rows would exceed the lead's own allocation for the key.
// @Tags			TeamDistributions
// @Accept			json
// @Produce		json
// @Success		201				{object}	TeamDistributionListResponse
// @Failure		400				{object}	TeamDistributionListResponse
// @Failure		409				{object}	TeamDistributionListResponse
// @Failure		500				{object}	TeamDistributionListResponse
// @Param			distribution	body		DistributionEditable	true	"Distribution batch"
// @Router			/v1/team-distributions [post]
func SaveTeamDistribution(c *gin.Context) {
	var editable DistributionEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TeamDistributionListResponse{
			Error: &e,
		})
		return
	}

	if editable.Year == 0 || editable.Month == 0 {
		e := models.ErrPeriodNotResolvable.Error()
		c.JSON(http.StatusBadRequest, TeamDistributionListResponse{
			Error: &e,
		})
		return
	}

	lead, err := models.ResolvePersonID(editable.LeadID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TeamDistributionListResponse{
			Error: &e,
		})
		return
	}

	window := models.ResolveWindowForMonth(editable.Year, time.Month(editable.Month))

	items := make([]models.DistributionItem, 0, len(editable.Items))
	for _, item := range editable.Items {
		reportee, err := models.ResolvePersonID(item.ReporteeID)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), TeamDistributionListResponse{
				Error: &e,
			})
			return
		}

		items = append(items, models.DistributionItem{
			ReporteeID:   reportee,
			Hours:        item.Hours,
			WeekPercents: item.WeekPercents,
		})
	}

	saved, err := models.SaveDistribution(lead, window.Start, editable.SubprojectID, items)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TeamDistributionListResponse{
			Error: &e,
		})
		return
	}

	data := make([]TeamDistribution, 0, len(saved))
	for _, row := range saved {
		data = append(data, newTeamDistribution(c, row))
	}

	c.JSON(http.StatusCreated, TeamDistributionListResponse{Data: data})
}

// @Summary		Apply team distributions
// @Description	Promotes all distribution rows of a period into monthly ledger rows for the reportees. Every reportee's prospective total is validated against the capacity limit first, a single violation rejects the whole apply.
// @Tags			TeamDistributions
// @Accept			json
// @Produce		json
// @Success		200		{object}	DistributionApplyResponse
// @Failure		400		{object}	DistributionApplyResponse
// @Failure		409		{object}	DistributionApplyResponse
// @Failure		500		{object}	DistributionApplyResponse
// @Param			apply	body		DistributionApplyEditable	true	"Apply request"
// @Router			/v1/team-distributions/apply [post]
func ApplyTeamDistributions(c *gin.Context) {
	var editable DistributionApplyEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DistributionApplyResponse{
			Error: &e,
		})
		return
	}

	if editable.Year == 0 || editable.Month == 0 {
		e := models.ErrPeriodNotResolvable.Error()
		c.JSON(http.StatusBadRequest, DistributionApplyResponse{
			Error: &e,
		})
		return
	}

	window := models.ResolveWindowForMonth(editable.Year, time.Month(editable.Month))

	limit := window.MaxHours
	if editable.CapacityLimit != nil {
		limit = *editable.CapacityLimit
	}

	err = models.ApplyDistributions(window.Start, limit, editable.DryRun)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DistributionApplyResponse{
			Error:  &e,
			DryRun: editable.DryRun,
		})
		return
	}

	c.JSON(http.StatusOK, DistributionApplyResponse{DryRun: editable.DryRun})
}

// @Summary		Get team distributions
// @Description	Returns the distribution rows of a period
// @Tags			TeamDistributions
// @Produce		json
// @Success		200	{object}	TeamDistributionListResponse
// @Failure		400	{object}	TeamDistributionListResponse
// @Failure		500	{object}	TeamDistributionListResponse
// @Param			windowStart	query	string	true	"Window start date in YYYY-MM-DD format"
// @Param			lead		query	string	false	"Filter by lead, any known spelling"
// @Router			/v1/team-distributions [get]
func GetTeamDistributions(c *gin.Context) {
	var filter TeamDistributionQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TeamDistributionListResponse{
			Error: &s,
		})
		return
	}

	if filter.WindowStart == "" {
		s := errWindowStartNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, TeamDistributionListResponse{
			Error: &s,
		})
		return
	}

	windowStart, err := parseWindowStart(filter.WindowStart)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, TeamDistributionListResponse{
			Error: &s,
		})
		return
	}

	var lead *identity.PersonID
	if filter.LeadID != "" {
		resolved, err := models.ResolvePersonID(filter.LeadID)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), TeamDistributionListResponse{
				Error: &s,
			})
			return
		}
		lead = &resolved
	}

	rows, err := models.ListDistributions(windowStart, lead)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TeamDistributionListResponse{
			Error: &s,
		})
		return
	}

	data := make([]TeamDistribution, 0, len(rows))
	for _, row := range rows {
		data = append(data, newTeamDistribution(c, row))
	}

	c.JSON(http.StatusOK, TeamDistributionListResponse{Data: data})
}

// @Summary		Get team distribution
// @Description	Returns a specific distribution row
// @Tags			TeamDistributions
// @Produce		json
// @Success		200	{object}	TeamDistributionResponse
// @Failure		400	{object}	TeamDistributionResponse
// @Failure		404	{object}	TeamDistributionResponse
// @Failure		500	{object}	TeamDistributionResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/team-distributions/{id} [get]
func GetTeamDistribution(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TeamDistributionResponse{
			Error: &e,
		})
		return
	}

	var row models.TeamDistribution
	err = models.DB.First(&row, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TeamDistributionResponse{
			Error: &e,
		})
		return
	}

	apiResource := newTeamDistribution(c, row)
	c.JSON(http.StatusOK, TeamDistributionResponse{Data: &apiResource})
}

// @Summary		Delete team distribution
// @Description	Deletes a distribution row and its weekly splits. Only the lead who created the row may delete it, identified by the X-Lead header.
// @Tags			TeamDistributions
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		403		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			id		path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			X-Lead	header		string	true	"The acting lead, any known spelling"
// @Router			/v1/team-distributions/{id} [delete]
func DeleteTeamDistribution(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	rawLead := c.GetHeader("X-Lead")
	if rawLead == "" {
		c.JSON(http.StatusBadRequest, httpError{
			Error: errLeadHeaderNotSet.Error(),
		})
		return
	}

	lead, err := models.ResolvePersonID(rawLead)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DeleteDistribution(uri.ID.UUID, lead)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

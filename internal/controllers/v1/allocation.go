package v1

import (
	"net/http"
	"time"

	"github.com/hourledger/backend/internal/httputil"
	"github.com/hourledger/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

func RegisterAllocationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsAllocations)
		r.GET("", GetAllocations)
		r.POST("", ReplaceMonthlyPlan)
	}
	{
		r.OPTIONS("/:id", OptionsAllocationDetail)
		r.GET("/:id", GetAllocation)
		r.DELETE("/:id", DeleteAllocation)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations [options]
func OptionsAllocations(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/allocations/{id} [options]
func OptionsAllocationDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.Allocation{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetDelete(c)
}

// @Summary		Replace monthly plan
// @Description	Replaces the monthly allocations for a (project, subproject, period) key. For every billing item in the body, all stored rows are replaced by the submitted ones, so the body must contain the complete desired state. Submitting the same plan twice yields the same rows.
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		201		{object}	AllocationPlanResponse
// @Failure		400		{object}	AllocationPlanResponse
// @Failure		500		{object}	AllocationPlanResponse
// @Param			plan	body		MonthlyPlanEditable	true	"Monthly plan"
// @Router			/v1/allocations [post]
func ReplaceMonthlyPlan(c *gin.Context) {
	var editable MonthlyPlanEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationPlanResponse{
			Error: &e,
		})
		return
	}

	if editable.Year == 0 || editable.Month == 0 {
		e := models.ErrPeriodNotResolvable.Error()
		c.JSON(http.StatusBadRequest, AllocationPlanResponse{
			Error: &e,
		})
		return
	}

	window := models.ResolveWindowForMonth(editable.Year, time.Month(editable.Month))

	plan := models.MonthlyPlan{
		ProjectID:    editable.ProjectID,
		SubprojectID: editable.SubprojectID,
		WindowStart:  window.Start,
	}

	for _, item := range editable.Items {
		person, err := models.ResolvePersonID(item.PersonID)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), AllocationPlanResponse{
				Error: &e,
			})
			return
		}

		plan.Items = append(plan.Items, models.PlanItem{
			BillingItemID: item.BillingItemID,
			PersonID:      person,
			Hours:         item.Hours,
		})
	}

	saved, err := models.ReplaceMonthlyPlan(plan)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationPlanResponse{
			Error: &e,
		})
		return
	}

	data := make([]Allocation, 0, len(saved))
	for _, allocation := range saved {
		data = append(data, newAllocation(c, allocation))
	}

	c.JSON(http.StatusCreated, AllocationPlanResponse{Data: data})
}

// @Summary		Get allocations
// @Description	Returns a list of monthly allocations
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationListResponse
// @Failure		400	{object}	AllocationListResponse
// @Failure		500	{object}	AllocationListResponse
// @Param			project		query	string	false	"Filter by project"
// @Param			subproject	query	string	false	"Filter by subproject"
// @Param			billingItem	query	string	false	"Filter by billing item"
// @Param			person		query	string	false	"Filter by person, any known spelling"
// @Param			windowStart	query	string	false	"Window start date in YYYY-MM-DD format"
// @Param			offset		query	uint	false	"The offset of the first allocation returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of allocations to return. Defaults to 50."
// @Router			/v1/allocations [get]
func GetAllocations(c *gin.Context) {
	var filter AllocationQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AllocationListResponse{
			Error: &s,
		})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("date(window_start) ASC, person_id ASC, billing_item_id ASC").
		Where(filter.model(), queryFields...)

	if slices.Contains(setFields, "SubprojectID") {
		if filter.SubprojectID == "" {
			q = q.Where("subproject_id IS NULL")
		} else {
			q = q.Where("subproject_id = ?", filter.SubprojectID)
		}
	}

	if filter.PersonID != "" {
		person, err := models.ResolvePersonID(filter.PersonID)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), AllocationListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("person_id = ?", person)
	}

	if filter.WindowStart != "" {
		windowStart, err := parseWindowStart(filter.WindowStart)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, AllocationListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("date(window_start) = date(?)", windowStart)
	}

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 allocations and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var allocations []models.Allocation
	err := q.Find(&allocations).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationListResponse{
			Error: &e,
		})
		return
	}

	data := make([]Allocation, 0, len(allocations))
	for _, allocation := range allocations {
		data = append(data, newAllocation(c, allocation))
	}

	c.JSON(http.StatusOK, AllocationListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get allocation
// @Description	Returns a specific monthly allocation
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationResponse
// @Failure		400	{object}	AllocationResponse
// @Failure		404	{object}	AllocationResponse
// @Failure		500	{object}	AllocationResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/allocations/{id} [get]
func GetAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	var allocation models.Allocation
	err = models.DB.First(&allocation, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), AllocationResponse{
			Error: &e,
		})
		return
	}

	apiResource := newAllocation(c, allocation)
	c.JSON(http.StatusOK, AllocationResponse{Data: &apiResource})
}

// @Summary		Delete allocation
// @Description	Deletes a monthly allocation and its weekly splits
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/allocations/{id} [delete]
func DeleteAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var allocation models.Allocation
	err = models.DB.First(&allocation, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	tx := models.DB.Begin()

	err = tx.Unscoped().Where("owner_id = ?", allocation.ID).Delete(&models.WeeklySplit{}).Error
	if err == nil {
		err = tx.Unscoped().Delete(&allocation).Error
	}

	if err != nil {
		tx.Rollback()
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	tx.Commit()
	c.JSON(http.StatusNoContent, nil)
}

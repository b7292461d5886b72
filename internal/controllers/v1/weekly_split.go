package v1

import (
	"net/http"

	"github.com/hourledger/backend/internal/httputil"
	"github.com/hourledger/backend/internal/models"
	hl_uuid "github.com/hourledger/backend/internal/uuid"
	"github.com/gin-gonic/gin"
)

func RegisterWeeklySplitRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsWeeklySplits)
		r.GET("", GetWeeklySplits)
		r.POST("", UpsertPercentSplit)
	}
	{
		r.OPTIONS("/:id/:week", OptionsWeeklySplitDetail)
		r.GET("/:id/:week", GetWeeklySplit)
		r.PATCH("/:id/:week", UpdateWeeklySplit)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			WeeklySplits
// @Success		204
// @Router			/v1/weekly-splits [options]
func OptionsWeeklySplits(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			WeeklySplits
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id		path	string	true	"ID of the owning allocation or distribution"
// @Param			week	path	int		true	"Week bucket"
// @Router			/v1/weekly-splits/{id}/{week} [options]
func OptionsWeeklySplitDetail(c *gin.Context) {
	var uri URISplit
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.WeeklySplit{}, "owner_id = ? AND week = ?", uri.ID.UUID, uri.Week).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Upsert percentage split
// @Description	Records a percentage split of the owner's total hours over week buckets. Percentages are clamped to [0,100] and recorded as given, their sum is not normalized to 100.
// @Tags			WeeklySplits
// @Accept			json
// @Produce		json
// @Success		200		{object}	WeeklySplitListResponse
// @Failure		400		{object}	WeeklySplitListResponse
// @Failure		404		{object}	WeeklySplitListResponse
// @Failure		500		{object}	WeeklySplitListResponse
// @Param			split	body		PercentSplitEditable	true	"Percentage split"
// @Router			/v1/weekly-splits [post]
func UpsertPercentSplit(c *gin.Context) {
	var editable PercentSplitEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WeeklySplitListResponse{
			Error: &e,
		})
		return
	}

	totalHours, err := splitTotalHours(editable)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusNotFound, WeeklySplitListResponse{
			Error: &e,
		})
		return
	}

	_, err = models.UpsertPercentSplit(editable.OwnerID.UUID, totalHours, editable.Percents)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WeeklySplitListResponse{
			Error: &e,
		})
		return
	}

	splits, err := models.SplitsForOwner(editable.OwnerID.UUID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WeeklySplitListResponse{
			Error: &e,
		})
		return
	}

	data := make([]WeeklySplit, 0, len(splits))
	for _, split := range splits {
		data = append(data, newWeeklySplit(c, split))
	}

	c.JSON(http.StatusOK, WeeklySplitListResponse{Data: data})
}

// @Summary		Get weekly splits
// @Description	Returns the stored weekly splits of an owner
// @Tags			WeeklySplits
// @Produce		json
// @Success		200	{object}	WeeklySplitListResponse
// @Failure		400	{object}	WeeklySplitListResponse
// @Failure		500	{object}	WeeklySplitListResponse
// @Param			owner	query	string	true	"ID of the owning allocation or distribution"
// @Router			/v1/weekly-splits [get]
func GetWeeklySplits(c *gin.Context) {
	var filter WeeklySplitQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, WeeklySplitListResponse{
			Error: &s,
		})
		return
	}

	if filter.OwnerID == "" {
		s := errOwnerNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, WeeklySplitListResponse{
			Error: &s,
		})
		return
	}

	var owner hl_uuid.UUID
	if err := owner.UnmarshalParam(filter.OwnerID); err != nil {
		s := httputil.ErrInvalidUUID.Error()
		c.JSON(http.StatusBadRequest, WeeklySplitListResponse{
			Error: &s,
		})
		return
	}

	splits, err := models.SplitsForOwner(owner.UUID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), WeeklySplitListResponse{
			Error: &s,
		})
		return
	}

	data := make([]WeeklySplit, 0, len(splits))
	for _, split := range splits {
		data = append(data, newWeeklySplit(c, split))
	}

	c.JSON(http.StatusOK, WeeklySplitListResponse{Data: data})
}

// @Summary		Get weekly split
// @Description	Returns a single week bucket of an owner
// @Tags			WeeklySplits
// @Produce		json
// @Success		200	{object}	WeeklySplitResponse
// @Failure		400	{object}	WeeklySplitResponse
// @Failure		404	{object}	WeeklySplitResponse
// @Failure		500	{object}	WeeklySplitResponse
// @Param			id		path	string	true	"ID of the owning allocation or distribution"
// @Param			week	path	int		true	"Week bucket"
// @Router			/v1/weekly-splits/{id}/{week} [get]
func GetWeeklySplit(c *gin.Context) {
	var uri URISplit
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WeeklySplitResponse{
			Error: &e,
		})
		return
	}

	var split models.WeeklySplit
	err = models.DB.First(&split, "owner_id = ? AND week = ?", uri.ID.UUID, uri.Week).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WeeklySplitResponse{
			Error: &e,
		})
		return
	}

	apiResource := newWeeklySplit(c, split)
	c.JSON(http.StatusOK, WeeklySplitResponse{Data: &apiResource})
}

// @Summary		Update weekly split
// @Description	Updates the hours or the review status of a single week bucket
// @Tags			WeeklySplits
// @Accept			json
// @Produce		json
// @Success		200		{object}	WeeklySplitResponse
// @Failure		400		{object}	WeeklySplitResponse
// @Failure		404		{object}	WeeklySplitResponse
// @Failure		500		{object}	WeeklySplitResponse
// @Param			id		path		string				true	"ID of the owning allocation or distribution"
// @Param			week	path		int					true	"Week bucket"
// @Param			cell	body		SplitCellEditable	true	"Week bucket update"
// @Router			/v1/weekly-splits/{id}/{week} [patch]
func UpdateWeeklySplit(c *gin.Context) {
	var uri URISplit
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WeeklySplitResponse{
			Error: &e,
		})
		return
	}

	var editable SplitCellEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WeeklySplitResponse{
			Error: &e,
		})
		return
	}

	if editable.Hours != nil {
		err = models.UpsertHoursForWeek(uri.ID.UUID, uri.Week, *editable.Hours)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), WeeklySplitResponse{
				Error: &e,
			})
			return
		}
	}

	if editable.Status != nil {
		err = models.SetSplitStatus(uri.ID.UUID, uri.Week, *editable.Status)
		if err != nil {
			e := err.Error()
			c.JSON(status(err), WeeklySplitResponse{
				Error: &e,
			})
			return
		}
	}

	var split models.WeeklySplit
	err = models.DB.First(&split, "owner_id = ? AND week = ?", uri.ID.UUID, uri.Week).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), WeeklySplitResponse{
			Error: &e,
		})
		return
	}

	apiResource := newWeeklySplit(c, split)
	c.JSON(http.StatusOK, WeeklySplitResponse{Data: &apiResource})
}

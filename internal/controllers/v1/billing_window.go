package v1

import (
	"net/http"

	"github.com/hourledger/backend/internal/httputil"
	"github.com/hourledger/backend/internal/models"
	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"
)

func RegisterBillingWindowRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsBillingWindows)
		r.GET("", GetBillingWindows)
		r.POST("", CreateBillingWindows)
	}
	{
		r.OPTIONS("/:year/:month", OptionsBillingWindowDetail)
		r.GET("/:year/:month", GetBillingWindow)
		r.PATCH("/:year/:month", UpdateBillingWindow)
		r.DELETE("/:year/:month", DeleteBillingWindow)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			BillingWindows
// @Success		204
// @Router			/v1/billing-windows [options]
func OptionsBillingWindows(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			BillingWindows
// @Success		204
// @Failure		400		{object}	httpError
// @Failure		404		{object}	httpError
// @Failure		500		{object}	httpError
// @Param			year	path		int	true	"Year of the window"
// @Param			month	path		int	true	"Month of the window"
// @Router			/v1/billing-windows/{year}/{month} [options]
func OptionsBillingWindowDetail(c *gin.Context) {
	var uri URIWindow
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.BillingWindow{}, "year = ? AND month = ?", uri.Year, uri.Month).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create billing windows
// @Description	Creates new billing window configurations
// @Tags			BillingWindows
// @Produce		json
// @Success		201		{object}	BillingWindowCreateResponse
// @Failure		400		{object}	BillingWindowCreateResponse
// @Failure		500		{object}	BillingWindowCreateResponse
// @Param			windows	body		[]BillingWindowEditable	true	"Billing windows"
// @Router			/v1/billing-windows [post]
func CreateBillingWindows(c *gin.Context) {
	var editables []BillingWindowEditable

	// Bind data and return error if not possible
	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BillingWindowCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := BillingWindowCreateResponse{}

	for _, editable := range editables {
		window := editable.model()
		err = models.DB.Create(&window).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		apiResource := newBillingWindow(c, window)
		r.Data = append(r.Data, BillingWindowResponse{Data: &apiResource})
	}

	c.JSON(status, r)
}

// @Summary		Get billing windows
// @Description	Returns a list of billing window configurations
// @Tags			BillingWindows
// @Produce		json
// @Success		200	{object}	BillingWindowListResponse
// @Failure		400	{object}	BillingWindowListResponse
// @Failure		500	{object}	BillingWindowListResponse
// @Param			year	query	int		false	"Filter by year"
// @Param			month	query	int		false	"Filter by month"
// @Param			offset	query	uint	false	"The offset of the first window returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of windows to return. Defaults to 50."
// @Router			/v1/billing-windows [get]
func GetBillingWindows(c *gin.Context) {
	var filter BillingWindowQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, BillingWindowListResponse{
			Error: &s,
		})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)

	q := models.DB.
		Order("year ASC, month ASC").
		Where(filter.model(), queryFields...)

	// Set the offset. Does not need checking since the default is 0
	q = q.Offset(int(filter.Offset))

	// Default to 50 windows and set the limit
	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var windows []models.BillingWindow
	err := q.Find(&windows).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BillingWindowListResponse{
			Error: &s,
		})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BillingWindowListResponse{
			Error: &e,
		})
		return
	}

	data := make([]BillingWindow, 0, len(windows))
	for _, window := range windows {
		data = append(data, newBillingWindow(c, window))
	}

	c.JSON(http.StatusOK, BillingWindowListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  count,
			Offset: filter.Offset,
			Limit:  limit,
		},
	})
}

// @Summary		Get billing window
// @Description	Returns a specific billing window configuration
// @Tags			BillingWindows
// @Produce		json
// @Success		200	{object}	BillingWindowResponse
// @Failure		400	{object}	BillingWindowResponse
// @Failure		404	{object}	BillingWindowResponse
// @Failure		500	{object}	BillingWindowResponse
// @Param			year	path	int	true	"Year of the window"
// @Param			month	path	int	true	"Month of the window"
// @Router			/v1/billing-windows/{year}/{month} [get]
func GetBillingWindow(c *gin.Context) {
	var uri URIWindow
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BillingWindowResponse{
			Error: &e,
		})
		return
	}

	var window models.BillingWindow
	err = models.DB.First(&window, "year = ? AND month = ?", uri.Year, uri.Month).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BillingWindowResponse{
			Error: &e,
		})
		return
	}

	apiResource := newBillingWindow(c, window)
	c.JSON(http.StatusOK, BillingWindowResponse{Data: &apiResource})
}

// @Summary		Update billing window
// @Description	Updates an existing billing window configuration. Only values to be updated need to be specified.
// @Tags			BillingWindows
// @Accept			json
// @Produce		json
// @Success		200		{object}	BillingWindowResponse
// @Failure		400		{object}	BillingWindowResponse
// @Failure		404		{object}	BillingWindowResponse
// @Failure		500		{object}	BillingWindowResponse
// @Param			year	path		int						true	"Year of the window"
// @Param			month	path		int						true	"Month of the window"
// @Param			window	body		BillingWindowEditable	true	"Billing window"
// @Router			/v1/billing-windows/{year}/{month} [patch]
func UpdateBillingWindow(c *gin.Context) {
	var uri URIWindow
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BillingWindowResponse{
			Error: &e,
		})
		return
	}

	var window models.BillingWindow
	err = models.DB.First(&window, "year = ? AND month = ?", uri.Year, uri.Month).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BillingWindowResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, BillingWindowEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BillingWindowResponse{
			Error: &e,
		})
		return
	}

	var data BillingWindowEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BillingWindowResponse{
			Error: &e,
		})
		return
	}

	// The primary key is the URI, not the body
	data.Year = window.Year
	data.Month = window.Month

	err = models.DB.Model(&window).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), BillingWindowResponse{
			Error: &e,
		})
		return
	}

	apiResource := newBillingWindow(c, window)
	c.JSON(http.StatusOK, BillingWindowResponse{Data: &apiResource})
}

// @Summary		Delete billing window
// @Description	Deletes a billing window configuration. The period falls back to its calendar month.
// @Tags			BillingWindows
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			year	path	int	true	"Year of the window"
// @Param			month	path	int	true	"Month of the window"
// @Router			/v1/billing-windows/{year}/{month} [delete]
func DeleteBillingWindow(c *gin.Context) {
	var uri URIWindow
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var window models.BillingWindow
	err = models.DB.First(&window, "year = ? AND month = ?", uri.Year, uri.Month).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	// Hard delete so that the period can be configured again
	err = models.DB.Unscoped().Delete(&window).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

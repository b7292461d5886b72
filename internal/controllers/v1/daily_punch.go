package v1

import (
	"net/http"

	"github.com/hourledger/backend/internal/httputil"
	"github.com/hourledger/backend/internal/models"
	"github.com/hourledger/backend/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RegisterDailyPunchRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsDailyPunches)
		r.GET("", GetDailyPunches)
		r.POST("", RecordDailyPunch)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			DailyPunches
// @Success		204
// @Router			/v1/daily-punches [options]
func OptionsDailyPunches(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Record daily punch
// @Description	Records the hours of one day against a ledger row. Submitting the same (person, ledger row, date) again replaces the stored value. The punch is rejected when the date falls outside the row's period or when the week's total would exceed the weekly ceiling.
// @Tags			DailyPunches
// @Accept			json
// @Produce		json
// @Success		201		{object}	DailyPunchResponse
// @Failure		400		{object}	DailyPunchResponse
// @Failure		404		{object}	DailyPunchResponse
// @Failure		409		{object}	DailyPunchResponse
// @Failure		500		{object}	DailyPunchResponse
// @Param			punch	body		PunchEditable	true	"Daily punch"
// @Router			/v1/daily-punches [post]
func RecordDailyPunch(c *gin.Context) {
	var editable PunchEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyPunchResponse{
			Error: &e,
		})
		return
	}

	person, err := models.ResolvePersonID(editable.PersonID)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyPunchResponse{
			Error: &e,
		})
		return
	}

	punch, err := models.RecordDailyPunch(person, editable.AllocationID.UUID, editable.Date, editable.Hours)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), DailyPunchResponse{
			Error: &e,
		})
		return
	}

	apiResource := newDailyPunch(c, punch)
	c.JSON(http.StatusCreated, DailyPunchResponse{Data: &apiResource})
}

// @Summary		Get daily punches
// @Description	Returns the punches of one person for one ledger row, optionally limited to a date range
// @Tags			DailyPunches
// @Produce		json
// @Success		200	{object}	DailyPunchListResponse
// @Failure		400	{object}	DailyPunchListResponse
// @Failure		500	{object}	DailyPunchListResponse
// @Param			person		query	string	true	"The person the punches belong to, any known spelling"
// @Param			allocation	query	string	true	"The ledger row the punches book against"
// @Param			from		query	string	false	"Earliest date to include in YYYY-MM-DD format"
// @Param			until		query	string	false	"Latest date to include in YYYY-MM-DD format"
// @Router			/v1/daily-punches [get]
func GetDailyPunches(c *gin.Context) {
	var filter DailyPunchQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, DailyPunchListResponse{
			Error: &s,
		})
		return
	}

	if filter.PersonID == "" {
		s := errPersonNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, DailyPunchListResponse{
			Error: &s,
		})
		return
	}

	if filter.AllocationID == "" {
		s := errAllocationNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, DailyPunchListResponse{
			Error: &s,
		})
		return
	}

	allocationID, err := uuid.Parse(filter.AllocationID)
	if err != nil {
		s := httputil.ErrInvalidUUID.Error()
		c.JSON(http.StatusBadRequest, DailyPunchListResponse{
			Error: &s,
		})
		return
	}

	person, err := models.ResolvePersonID(filter.PersonID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DailyPunchListResponse{
			Error: &s,
		})
		return
	}

	var from, until *types.Date
	if filter.From != "" {
		parsed, err := types.ParseDate(filter.From)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, DailyPunchListResponse{
				Error: &s,
			})
			return
		}
		from = &parsed
	}

	if filter.Until != "" {
		parsed, err := types.ParseDate(filter.Until)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, DailyPunchListResponse{
				Error: &s,
			})
			return
		}
		until = &parsed
	}

	punches, err := models.PunchesFor(person, allocationID, from, until)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), DailyPunchListResponse{
			Error: &s,
		})
		return
	}

	data := make([]DailyPunch, 0, len(punches))
	for _, punch := range punches {
		data = append(data, newDailyPunch(c, punch))
	}

	c.JSON(http.StatusOK, DailyPunchListResponse{Data: data})
}

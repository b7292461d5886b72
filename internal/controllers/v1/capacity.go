package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/hourledger/backend/internal/httputil"
	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/models"
	"github.com/hourledger/backend/internal/types"
	"github.com/gin-gonic/gin"
)

func RegisterCapacityRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsCapacity)
		r.GET("", GetCapacity)
	}
}

// PersonCapacity is one person's aggregated booking state for a period.
type PersonCapacity struct {
	PersonID identity.PersonID `json:"personId" example:"jane.doe"`
	models.CapacitySummary
}

type CapacityResponse struct {
	Data  []PersonCapacity `json:"data"`                                                         // List of per-person summaries
	Error *string          `json:"error" example:"the persons query parameter must be set"`      // The error, if any occurred
}

type CapacityQueryFilter struct {
	WindowStart string `form:"windowStart"` // Window start date in YYYY-MM-DD format
	Month       string `form:"month"`       // Period in YYYY-MM format, used when windowStart is not set
	Persons     string `form:"persons"`     // Comma-separated list of persons, any known spelling
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Capacity
// @Success		204
// @Router			/v1/capacity [options]
func OptionsCapacity(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get capacity summaries
// @Description	Returns total booked hours, FTE ratio, utilization percent and the capacity band for each requested person in a period. Hours received through team distributions count toward the total.
// @Tags			Capacity
// @Produce		json
// @Success		200	{object}	CapacityResponse
// @Failure		400	{object}	CapacityResponse
// @Failure		500	{object}	CapacityResponse
// @Param			windowStart	query	string	false	"Window start date in YYYY-MM-DD format"
// @Param			month		query	string	false	"Period in YYYY-MM format, used when windowStart is not set"
// @Param			persons		query	string	true	"Comma-separated list of persons, any known spelling"
// @Router			/v1/capacity [get]
func GetCapacity(c *gin.Context) {
	var filter CapacityQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, CapacityResponse{
			Error: &s,
		})
		return
	}

	if filter.Persons == "" {
		s := errPersonsNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, CapacityResponse{
			Error: &s,
		})
		return
	}

	var windowStart types.Date
	switch {
	case filter.WindowStart != "":
		start, err := parseWindowStart(filter.WindowStart)
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusBadRequest, CapacityResponse{
				Error: &s,
			})
			return
		}

		windowStart = start

	case filter.Month != "":
		month, err := types.ParseMonth(filter.Month)
		if err != nil {
			s := errMonthNotParseable.Error()
			c.JSON(http.StatusBadRequest, CapacityResponse{
				Error: &s,
			})
			return
		}

		window := models.ResolveWindowForMonth(time.Time(month).Year(), time.Time(month).Month())
		windowStart = window.Start

	default:
		s := errWindowStartNotSetInQuery.Error()
		c.JSON(http.StatusBadRequest, CapacityResponse{
			Error: &s,
		})
		return
	}

	persons := make([]identity.PersonID, 0)
	for _, raw := range strings.Split(filter.Persons, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		person, err := models.ResolvePersonID(raw)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), CapacityResponse{
				Error: &s,
			})
			return
		}

		persons = append(persons, person)
	}

	summaries, err := models.SummaryForWindow(windowStart, persons)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CapacityResponse{
			Error: &s,
		})
		return
	}

	data := make([]PersonCapacity, 0, len(persons))
	for _, person := range persons {
		data = append(data, PersonCapacity{
			PersonID:        person,
			CapacitySummary: summaries[person],
		})
	}

	c.JSON(http.StatusOK, CapacityResponse{Data: data})
}

package v1

import (
	"errors"
	"net/http"

	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the appropriate status for a database error
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, models.ErrForbidden) {
		return http.StatusForbidden
	}

	if errors.Is(err, models.ErrCapacityExceeded) || errors.Is(err, models.ErrPunchOverAllocated) {
		return http.StatusConflict
	}

	if errors.Is(err, identity.ErrInvalidIdentity) {
		return http.StatusBadRequest
	}

	return http.StatusBadRequest
}

var (
	errWindowStartNotSetInQuery = errors.New("the windowStart query parameter must be set")
	errMonthNotParseable        = errors.New("the month query parameter must be in YYYY-MM format")
	errPersonsNotSetInQuery     = errors.New("the persons query parameter must be set")
	errOwnerNotSetInQuery       = errors.New("the owner query parameter must be set")
	errPersonNotSetInQuery      = errors.New("the person query parameter must be set")
	errAllocationNotSetInQuery  = errors.New("the allocation query parameter must be set")
	errLeadHeaderNotSet         = errors.New("the X-Lead header must be set to the acting lead")
)

// Cleanup errors
var (
	errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")
)

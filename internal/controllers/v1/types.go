package v1

import (
	hl_uuid "github.com/hourledger/backend/internal/uuid"
)

type URIID struct {
	ID hl_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type URIWindow struct {
	Year  int `uri:"year" binding:"required" example:"2025"` // Year of the billing window
	Month int `uri:"month" binding:"required" example:"7"`   // Month of the billing window
}

type URISplit struct {
	URIID
	Week int `uri:"week" binding:"required" example:"1"` // Week bucket of the split
}

type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}

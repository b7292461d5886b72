package v1

import (
	"fmt"

	"github.com/hourledger/backend/internal/identity"
	"github.com/hourledger/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// IdentityAliasEditable contains all values of an alias rule that can be set.
type IdentityAliasEditable struct {
	Priority uint   `json:"priority" example:"10"`                     // Rules are tried in ascending priority order
	Match    string `json:"match" example:"j*doe*"`                    // Glob pattern matched against the raw spelling and its variants
	PersonID string `json:"personId" example:"jane.doe@example.com"`   // The person the rule maps to, any known spelling
}

func (editable IdentityAliasEditable) model() models.IdentityAlias {
	return models.IdentityAlias{
		Priority: editable.Priority,
		Match:    editable.Match,
		PersonID: identity.PersonID(editable.PersonID),
	}
}

type IdentityAliasLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/identity-aliases/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"` // The alias rule itself
}

type IdentityAlias struct {
	models.IdentityAlias
	Links IdentityAliasLinks `json:"links"`
}

// newIdentityAlias returns the API v1 representation of the resource
func newIdentityAlias(c *gin.Context, model models.IdentityAlias) IdentityAlias {
	url := c.GetString(string(models.DBContextURL))

	return IdentityAlias{
		IdentityAlias: model,
		Links: IdentityAliasLinks{
			Self: fmt.Sprintf("%s/v1/identity-aliases/%s", url, model.ID),
		},
	}
}

type IdentityAliasListResponse struct {
	Data  []IdentityAlias `json:"data"`                                                          // List of resources
	Error *string         `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type IdentityAliasResponse struct {
	Error *string        `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  *IdentityAlias `json:"data"`                                                          // The resource
}

// ResolvedIdentityResponse is the result of resolving a raw spelling.
type ResolvedIdentityResponse struct {
	Error *string            `json:"error" example:"the identity could not be canonicalized"` // The error, if any occurred
	Data  *identity.PersonID `json:"data" example:"jane.doe"`                                 // The canonical identifier
}

type IdentityAliasQueryFilter struct {
	Match    string `form:"match" filterField:"false"` // Filter by match pattern
	PersonID string `form:"person"`                    // Filter by target person
}

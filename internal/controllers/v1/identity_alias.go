package v1

import (
	"errors"
	"net/http"

	"github.com/hourledger/backend/internal/httputil"
	"github.com/hourledger/backend/internal/models"
	"github.com/gin-gonic/gin"
)

var errResolveQueryNotSet = errors.New("the q query parameter must be set")

func RegisterIdentityAliasRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsIdentityAliases)
		r.GET("", GetIdentityAliases)
		r.POST("", CreateIdentityAliases)
	}
	{
		r.OPTIONS("/resolve", OptionsIdentityResolve)
		r.GET("/resolve", ResolveIdentity)
	}
	{
		r.OPTIONS("/:id", OptionsIdentityAliasDetail)
		r.GET("/:id", GetIdentityAlias)
		r.PATCH("/:id", UpdateIdentityAlias)
		r.DELETE("/:id", DeleteIdentityAlias)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			IdentityAliases
// @Success		204
// @Router			/v1/identity-aliases [options]
func OptionsIdentityAliases(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			IdentityAliases
// @Success		204
// @Router			/v1/identity-aliases/resolve [options]
func OptionsIdentityResolve(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			IdentityAliases
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/identity-aliases/{id} [options]
func OptionsIdentityAliasDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.First(&models.IdentityAlias{}, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create alias rules
// @Description	Creates new alias rules for mapping raw spellings to canonical person identifiers
// @Tags			IdentityAliases
// @Produce		json
// @Success		201		{object}	IdentityAliasListResponse
// @Failure		400		{object}	IdentityAliasListResponse
// @Failure		500		{object}	IdentityAliasListResponse
// @Param			aliases	body		[]IdentityAliasEditable	true	"Alias rules"
// @Router			/v1/identity-aliases [post]
func CreateIdentityAliases(c *gin.Context) {
	var editables []IdentityAliasEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IdentityAliasListResponse{
			Error: &e,
		})
		return
	}

	data := make([]IdentityAlias, 0, len(editables))
	for _, editable := range editables {
		alias := editable.model()
		err = models.DB.Create(&alias).Error
		if err != nil {
			e := err.Error()
			c.JSON(status(err), IdentityAliasListResponse{
				Error: &e,
			})
			return
		}

		data = append(data, newIdentityAlias(c, alias))
	}

	c.JSON(http.StatusCreated, IdentityAliasListResponse{Data: data})
}

// @Summary		Resolve identity
// @Description	Resolves a raw spelling to its canonical person identifier, applying the alias rules in priority order
// @Tags			IdentityAliases
// @Produce		json
// @Success		200	{object}	ResolvedIdentityResponse
// @Failure		400	{object}	ResolvedIdentityResponse
// @Failure		500	{object}	ResolvedIdentityResponse
// @Param			q	query		string	true	"The raw spelling to resolve"
// @Router			/v1/identity-aliases/resolve [get]
func ResolveIdentity(c *gin.Context) {
	raw := c.Query("q")
	if raw == "" {
		s := errResolveQueryNotSet.Error()
		c.JSON(http.StatusBadRequest, ResolvedIdentityResponse{
			Error: &s,
		})
		return
	}

	person, err := models.ResolvePersonID(raw)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ResolvedIdentityResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, ResolvedIdentityResponse{Data: &person})
}

// @Summary		Get alias rules
// @Description	Returns a list of alias rules, ordered by ascending priority
// @Tags			IdentityAliases
// @Produce		json
// @Success		200	{object}	IdentityAliasListResponse
// @Failure		400	{object}	IdentityAliasListResponse
// @Failure		500	{object}	IdentityAliasListResponse
// @Param			match	query	string	false	"Filter by match pattern"
// @Param			person	query	string	false	"Filter by target person"
// @Router			/v1/identity-aliases [get]
func GetIdentityAliases(c *gin.Context) {
	var filter IdentityAliasQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, IdentityAliasListResponse{
			Error: &s,
		})
		return
	}

	q := models.DB.Order("priority ASC")

	if filter.Match != "" {
		q = q.Where("match = ?", filter.Match)
	}

	if filter.PersonID != "" {
		person, err := models.ResolvePersonID(filter.PersonID)
		if err != nil {
			s := err.Error()
			c.JSON(status(err), IdentityAliasListResponse{
				Error: &s,
			})
			return
		}
		q = q.Where("person_id = ?", person)
	}

	var aliases []models.IdentityAlias
	err := q.Find(&aliases).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), IdentityAliasListResponse{
			Error: &s,
		})
		return
	}

	data := make([]IdentityAlias, 0, len(aliases))
	for _, alias := range aliases {
		data = append(data, newIdentityAlias(c, alias))
	}

	c.JSON(http.StatusOK, IdentityAliasListResponse{Data: data})
}

// @Summary		Get alias rule
// @Description	Returns a specific alias rule
// @Tags			IdentityAliases
// @Produce		json
// @Success		200	{object}	IdentityAliasResponse
// @Failure		400	{object}	IdentityAliasResponse
// @Failure		404	{object}	IdentityAliasResponse
// @Failure		500	{object}	IdentityAliasResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/identity-aliases/{id} [get]
func GetIdentityAlias(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IdentityAliasResponse{
			Error: &e,
		})
		return
	}

	var alias models.IdentityAlias
	err = models.DB.First(&alias, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IdentityAliasResponse{
			Error: &e,
		})
		return
	}

	apiResource := newIdentityAlias(c, alias)
	c.JSON(http.StatusOK, IdentityAliasResponse{Data: &apiResource})
}

// @Summary		Update alias rule
// @Description	Updates an existing alias rule. Only values to be updated need to be specified.
// @Tags			IdentityAliases
// @Accept			json
// @Produce		json
// @Success		200		{object}	IdentityAliasResponse
// @Failure		400		{object}	IdentityAliasResponse
// @Failure		404		{object}	IdentityAliasResponse
// @Failure		500		{object}	IdentityAliasResponse
// @Param			id		path		URIID					true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			alias	body		IdentityAliasEditable	true	"Alias rule"
// @Router			/v1/identity-aliases/{id} [patch]
func UpdateIdentityAlias(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IdentityAliasResponse{
			Error: &e,
		})
		return
	}

	var alias models.IdentityAlias
	err = models.DB.First(&alias, uri.ID).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IdentityAliasResponse{
			Error: &e,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, IdentityAliasEditable{})
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IdentityAliasResponse{
			Error: &e,
		})
		return
	}

	var data IdentityAliasEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IdentityAliasResponse{
			Error: &e,
		})
		return
	}

	err = models.DB.Model(&alias).Select("", updateFields...).Updates(data.model()).Error
	if err != nil {
		e := err.Error()
		c.JSON(status(err), IdentityAliasResponse{
			Error: &e,
		})
		return
	}

	apiResource := newIdentityAlias(c, alias)
	c.JSON(http.StatusOK, IdentityAliasResponse{Data: &apiResource})
}

// @Summary		Delete alias rule
// @Description	Deletes an alias rule. Spellings previously covered by the rule fall back to plain canonicalization.
// @Tags			IdentityAliases
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/identity-aliases/{id} [delete]
func DeleteIdentityAlias(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var alias models.IdentityAlias
	err = models.DB.First(&alias, uri.ID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = models.DB.Unscoped().Delete(&alias).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

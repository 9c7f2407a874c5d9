// internal/api/v1/types.go
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/tkarvinen/pokedex-go/internal/datastore"
)

// typeListCacheKey is the cache entry holding the full type vocabulary.
const typeListCacheKey = "types:all"

// initTypeRoutes registers the type vocabulary endpoints
func (c *Controller) initTypeRoutes() {
	c.Group.GET("/types", c.ListTypes)
	c.Group.GET("/types/:id", c.GetType)

	typeGroup := c.Group.Group("/types", c.AuthMiddleware)
	typeGroup.POST("", c.CreateType)
	typeGroup.PUT("/:id", c.UpdateType)
	typeGroup.PATCH("/:id", c.UpdateType)
	typeGroup.DELETE("/:id", c.DeleteType)
}

// TypeRequest is the write payload for the type endpoints.
type TypeRequest struct {
	Name string `json:"name" form:"name"`
}

// cachedTypes returns the type vocabulary, serving repeat reads from the
// in-process cache. The vocabulary is small and changes rarely.
func (c *Controller) cachedTypes() ([]datastore.TypeList, error) {
	if cached, found := c.typeCache.Get(typeListCacheKey); found {
		if types, ok := cached.([]datastore.TypeList); ok {
			return types, nil
		}
	}

	types, err := c.DS.ListTypes()
	if err != nil {
		return nil, err
	}

	c.typeCache.Set(typeListCacheKey, types, cache.DefaultExpiration)
	return types, nil
}

// invalidateTypeCache drops the cached vocabulary after any write.
func (c *Controller) invalidateTypeCache() {
	c.typeCache.Delete(typeListCacheKey)
}

// ListTypes handles GET /api/v1/types
func (c *Controller) ListTypes(ctx echo.Context) error {
	types, err := c.cachedTypes()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list types", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "success", Data: types})
}

// GetType handles GET /api/v1/types/:id
func (c *Controller) GetType(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid type id", http.StatusBadRequest)
	}

	t, err := c.DS.GetType(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Type not found", statusForError(err))
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "success", Data: t})
}

// CreateType handles POST /api/v1/types
func (c *Controller) CreateType(ctx echo.Context) error {
	var req TypeRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusBadRequest)
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return ctx.JSON(http.StatusBadRequest, ValidationResponse{
			Error:    "validation failed",
			Messages: []string{"name is required"},
		})
	}

	t := datastore.TypeList{Name: req.Name}
	if err := c.DS.CreateType(&t); err != nil {
		return c.HandleError(ctx, err, "Failed to create type", http.StatusInternalServerError)
	}

	c.invalidateTypeCache()
	c.logAPIRequest(ctx, "Type created", "type_id", t.ID)

	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "created", Data: t})
}

// UpdateType handles PUT and PATCH /api/v1/types/:id
func (c *Controller) UpdateType(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid type id", http.StatusBadRequest)
	}

	t, err := c.DS.GetType(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Type not found", statusForError(err))
	}

	var req TypeRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request payload", http.StatusBadRequest)
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return ctx.JSON(http.StatusBadRequest, ValidationResponse{
			Error:    "validation failed",
			Messages: []string{"name is required"},
		})
	}

	t.Name = req.Name
	if err := c.DS.UpdateType(&t); err != nil {
		return c.HandleError(ctx, err, "Failed to update type", http.StatusInternalServerError)
	}

	c.invalidateTypeCache()
	c.logAPIRequest(ctx, "Type updated", "type_id", t.ID)

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "updated", Data: t})
}

// DeleteType handles DELETE /api/v1/types/:id. Removing a vocabulary entry
// also removes its associations, the tagged pokemons themselves are kept.
func (c *Controller) DeleteType(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid type id", http.StatusBadRequest)
	}

	t, err := c.DS.GetType(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Type not found", statusForError(err))
	}

	if err := c.DS.DeleteType(t.ID); err != nil {
		return c.HandleError(ctx, err, "Failed to delete type", statusForError(err))
	}

	c.invalidateTypeCache()
	c.logAPIRequest(ctx, "Type deleted", "type_id", t.ID)

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "deleted", Data: t})
}

// internal/api/v1/categories.go
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tkarvinen/pokedex-go/internal/datastore"
)

// initCategoryRoutes registers the category vocabulary endpoints
func (c *Controller) initCategoryRoutes() {
	c.Group.GET("/categories", c.ListCategories)
	c.Group.GET("/categories/:id", c.GetCategory)

	categoryGroup := c.Group.Group("/categories", c.AuthMiddleware)
	categoryGroup.POST("", c.CreateCategory)
	categoryGroup.PUT("/:id", c.UpdateCategory)
	categoryGroup.PATCH("/:id", c.UpdateCategory)
	categoryGroup.DELETE("/:id", c.DeleteCategory)
}

// CategoryRequest is the write payload for the category endpoints.
type CategoryRequest struct {
	Name string `json:"name" form:"name"`
}

// ListCategories handles GET /api/v1/categories
func (c *Controller) ListCategories(ctx echo.Context) error {
	categories, err := c.DS.ListCategories()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list categories", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "success", Data: categories})
}

// GetCategory handles GET /api/v1/categories/:id
func (c *Controller) GetCategory(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid category id", http.StatusBadRequest)
	}

	category, err := c.DS.GetCategory(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Category not found", statusForError(err))
	}

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "success", Data: category})
}

// CreateCategory handles POST /api/v1/categories
func (c *Controller) CreateCategory(ctx echo.Context) error {
	var req CategoryRequest
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

	// Names are unique, a concurrent or repeated create returns the
	// existing row instead of a constraint error
	category, err := c.DS.ResolveCategory(req.Name)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to create category", http.StatusInternalServerError)
	}

	c.logAPIRequest(ctx, "Category created", "category_id", category.ID)

	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "created", Data: category})
}

// UpdateCategory handles PUT and PATCH /api/v1/categories/:id
func (c *Controller) UpdateCategory(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid category id", http.StatusBadRequest)
	}

	category, err := c.DS.GetCategory(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Category not found", statusForError(err))
	}

	var req CategoryRequest
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

	category.Name = req.Name
	if err := c.DS.UpdateCategory(&category); err != nil {
		return c.HandleError(ctx, err, "Failed to update category", http.StatusInternalServerError)
	}

	c.logAPIRequest(ctx, "Category updated", "category_id", category.ID)

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "updated", Data: category})
}

// DeleteCategory handles DELETE /api/v1/categories/:id. Deleting a category
// cascades to the pokemons filed under it.
func (c *Controller) DeleteCategory(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid category id", http.StatusBadRequest)
	}

	category, err := c.DS.GetCategory(uint(id))
	if err != nil {
		return c.HandleError(ctx, err, "Category not found", statusForError(err))
	}

	if err := c.DS.DeleteCategory(category.ID); err != nil {
		return c.HandleError(ctx, err, "Failed to delete category", statusForError(err))
	}

	c.logAPIRequest(ctx, "Category deleted", "category_id", category.ID)

	return ctx.JSON(http.StatusOK, MessageResponse{Message: "deleted", Data: datastore.Category{ID: category.ID, Name: category.Name}})
}

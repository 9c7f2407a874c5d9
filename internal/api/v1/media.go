// internal/api/v1/media.go
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// initMediaRoutes registers the uploaded image serving endpoint
func (c *Controller) initMediaRoutes() {
	c.Group.GET("/media/pokemons/:filename", c.ServePokemonImage)
}

// ServePokemonImage handles GET /api/v1/media/pokemons/:filename. The
// filename is resolved inside the asset directory only, traversal attempts
// are rejected before touching the filesystem.
func (c *Controller) ServePokemonImage(ctx echo.Context) error {
	filename := ctx.Param("filename")

	path, err := c.Images.Path(filename)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid image filename", statusForError(err))
	}

	if !c.Images.Exists(filename) {
		return c.HandleError(ctx, nil, "Image not found", http.StatusNotFound)
	}

	return ctx.File(path)
}

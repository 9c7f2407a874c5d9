// internal/api/v1/middleware.go
package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tkarvinen/pokedex-go/internal/errors"
	"github.com/tkarvinen/pokedex-go/internal/imagestore"
)

// contextKeyUserID is the echo context key carrying the authenticated user id.
const contextKeyUserID = "user_id"

// AuthMiddleware validates the bearer token and stores the acting user's id
// in the request context.
func (c *Controller) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		authHeader := ctx.Request().Header.Get(echo.HeaderAuthorization)
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			return c.HandleError(ctx, nil, "Missing or malformed bearer token", http.StatusUnauthorized)
		}

		claims, err := c.Tokens.ValidateToken(token)
		if err != nil {
			return c.HandleError(ctx, err, "Invalid or expired access token", http.StatusUnauthorized)
		}

		ctx.Set(contextKeyUserID, claims.UserID)
		return next(ctx)
	}
}

// currentUserID returns the authenticated user id placed in the context by
// AuthMiddleware. The second return is false on unauthenticated requests.
func currentUserID(ctx echo.Context) (uint, bool) {
	id, ok := ctx.Get(contextKeyUserID).(uint)
	return id, ok
}

// statusForError translates datastore and upload errors into HTTP statuses:
// upload rejections and validation failures map to 400, missing records to
// 404, everything else is a storage failure.
func statusForError(err error) int {
	var rejected *imagestore.ErrUploadRejected
	switch {
	case errors.As(err, &rejected):
		return http.StatusBadRequest
	case errors.CategoryOf(err) == errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.CategoryOf(err) == errors.CategoryUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

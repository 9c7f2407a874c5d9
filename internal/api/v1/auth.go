// internal/api/v1/auth.go
package api

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tkarvinen/pokedex-go/internal/datastore"
	"github.com/tkarvinen/pokedex-go/internal/errors"
	"github.com/tkarvinen/pokedex-go/internal/security"
)

// initAuthRoutes registers the authentication endpoints
func (c *Controller) initAuthRoutes() {
	authGroup := c.Group.Group("/auth")
	authGroup.POST("/register", c.Register)
	authGroup.POST("/login", c.Login)
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// AuthResponse is the envelope returned on successful register and login.
type AuthResponse struct {
	User        datastore.User `json:"user"`
	AccessToken string         `json:"access_token"`
}

// ValidationResponse carries the per-field validation messages on a 400.
type ValidationResponse struct {
	Error    string   `json:"error"`
	Messages []string `json:"messages"`
}

// validateRegistration applies the registration field rules and returns one
// message per violation.
func validateRegistration(req *RegisterRequest) []string {
	var messages []string

	if len(req.Username) < 4 || len(req.Username) > 24 {
		messages = append(messages, "username must be between 4 and 24 characters")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		messages = append(messages, "email must be a valid email address")
	}
	if len(req.Password) < 8 || len(req.Password) > 30 {
		messages = append(messages, "password must be between 8 and 30 characters")
	}

	return messages
}

// Register handles POST /api/v1/auth/register
func (c *Controller) Register(ctx echo.Context) error {
	var req RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid registration request", http.StatusBadRequest)
	}

	if messages := validateRegistration(&req); len(messages) > 0 {
		return ctx.JSON(http.StatusBadRequest, ValidationResponse{
			Error:    "validation failed",
			Messages: messages,
		})
	}

	// Email uniqueness is also enforced by the unique index, this check
	// produces the friendlier message.
	if _, err := c.DS.GetUserByEmail(req.Email); err == nil {
		return ctx.JSON(http.StatusBadRequest, ValidationResponse{
			Error:    "validation failed",
			Messages: []string{"email is already registered"},
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return c.HandleError(ctx, err, "Failed to check email", http.StatusInternalServerError)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to process password", http.StatusInternalServerError)
	}

	user := datastore.User{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
	}
	if err := c.DS.CreateUser(&user); err != nil {
		return c.HandleError(ctx, err, "Failed to create user", http.StatusInternalServerError)
	}

	token, err := c.Tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to issue access token", http.StatusInternalServerError)
	}

	c.logAPIRequest(ctx, "User registered", "user_id", user.ID, "username", user.Username)

	return ctx.JSON(http.StatusOK, AuthResponse{User: user, AccessToken: token})
}

// Login handles POST /api/v1/auth/login
func (c *Controller) Login(ctx echo.Context) error {
	var req LoginRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid login request", http.StatusBadRequest)
	}

	if req.Email == "" || req.Password == "" {
		return c.HandleError(ctx, nil, "Email and password are required", http.StatusBadRequest)
	}

	user, err := c.DS.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.HandleError(ctx, nil, "Invalid credentials", http.StatusUnauthorized)
		}
		return c.HandleError(ctx, err, "Failed to look up user", http.StatusInternalServerError)
	}

	if !security.CheckPassword(user.Password, req.Password) {
		return c.HandleError(ctx, nil, "Invalid credentials", http.StatusUnauthorized)
	}

	token, err := c.Tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to issue access token", http.StatusInternalServerError)
	}

	c.logAPIRequest(ctx, "User logged in", "user_id", user.ID)

	return ctx.JSON(http.StatusOK, AuthResponse{User: user, AccessToken: token})
}

// logAPIRequest is a helper to log API events with common context fields.
func (c *Controller) logAPIRequest(ctx echo.Context, msg string, args ...any) {
	if c.apiLogger == nil {
		return
	}

	baseAttrs := []any{
		"path", ctx.Request().URL.Path,
		"ip", ctx.RealIP(),
	}
	baseAttrs = append(baseAttrs, args...)

	c.apiLogger.Info(msg, baseAttrs...)
}

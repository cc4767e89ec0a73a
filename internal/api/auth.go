package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/zancompute/zanconfig/internal/auth"
	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/errors"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func newUserResponse(u *entities.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func (c *Controller) initAuthRoutes(limiter echo.MiddlewareFunc) {
	authGroup := c.Group.Group("/auth", limiter)
	authGroup.POST("/login", c.Login)
	authGroup.POST("/register", c.Register)

	c.Group.GET("/user/profile", c.GetProfile)
	c.Group.PUT("/user/profile", c.UpdateProfile)
	c.Group.POST("/user/change-password", c.ChangePassword, limiter)
}

// Login verifies credentials and returns the username as a bearer token. No
// session is kept.
func (c *Controller) Login(ctx echo.Context) error {
	var req credentialsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	user, err := c.auth.Authenticate(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return c.HandleError(ctx, err, "Invalid username or password", http.StatusUnauthorized)
		}
		return c.HandleError(ctx, err, "Login failed", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"ok":    true,
		"token": user.Username,
		"user":  newUserResponse(user),
	})
}

// Register creates a dashboard account.
func (c *Controller) Register(ctx echo.Context) error {
	var req credentialsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if _, err := c.auth.Register(ctx.Request().Context(), req.Username, req.Email, req.Password); err != nil {
		if errors.Is(err, errors.ErrValidation) {
			return c.handleServiceError(ctx, err)
		}
		return c.HandleError(ctx, err, "Registration failed", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, okResponse{OK: true, Message: "Account created successfully"})
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(ctx echo.Context) (string, bool) {
	token, ok := strings.CutPrefix(ctx.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// GetProfile returns the account named by the Authorization bearer token.
func (c *Controller) GetProfile(ctx echo.Context) error {
	token, ok := bearerToken(ctx)
	if !ok {
		return c.HandleError(ctx, errors.ErrUnauthorized, "Unauthorized", http.StatusUnauthorized)
	}
	user, err := c.auth.UserForToken(ctx.Request().Context(), token)
	if err != nil {
		if errors.Is(err, errors.ErrUnauthorized) {
			return c.HandleError(ctx, err, "Unauthorized", http.StatusUnauthorized)
		}
		return c.HandleError(ctx, err, "Failed to load profile", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"ok": true, "user": newUserResponse(user)})
}

// UpdateProfile changes the username and email of the bearer's account. The
// response carries the new token when the username changed.
func (c *Controller) UpdateProfile(ctx echo.Context) error {
	token, ok := bearerToken(ctx)
	if !ok {
		return c.HandleError(ctx, errors.ErrUnauthorized, "Unauthorized", http.StatusUnauthorized)
	}
	var req credentialsRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	user, err := c.auth.UpdateProfile(ctx.Request().Context(), token, req.Username, req.Email)
	switch {
	case errors.Is(err, errors.ErrUnauthorized):
		return c.HandleError(ctx, err, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, errors.ErrValidation):
		return c.handleServiceError(ctx, err)
	case err != nil:
		return c.HandleError(ctx, err, "Update failed", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"ok":    true,
		"token": user.Username,
		"user":  newUserResponse(user),
	})
}

// ChangePassword replaces the bearer's password after checking the current one.
func (c *Controller) ChangePassword(ctx echo.Context) error {
	token, ok := bearerToken(ctx)
	if !ok {
		return c.HandleError(ctx, errors.ErrUnauthorized, "Unauthorized", http.StatusUnauthorized)
	}
	var req changePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	err := c.auth.ChangePassword(ctx.Request().Context(), token, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, errors.ErrUnauthorized):
		return c.HandleError(ctx, err, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, auth.ErrCurrentPasswordIncorrect):
		return c.HandleError(ctx, err, "Current password incorrect", http.StatusBadRequest)
	case errors.Is(err, errors.ErrValidation):
		return c.handleServiceError(ctx, err)
	case err != nil:
		return c.HandleError(ctx, err, "Failed", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, okResponse{OK: true, Message: "Password updated"})
}

// Package api exposes the client configuration service over HTTP.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zancompute/zanconfig/internal/clientconfig"
	"github.com/zancompute/zanconfig/internal/datastore/entities"
	"github.com/zancompute/zanconfig/internal/errors"
	"github.com/zancompute/zanconfig/internal/freshness"
	"github.com/zancompute/zanconfig/internal/logger"
)

// ClientService is the client configuration surface the handlers call.
type ClientService interface {
	Create(ctx context.Context, p clientconfig.Payload) error
	Update(ctx context.Context, id uint, p clientconfig.Payload) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context) ([]entities.ClientView, error)
	Get(ctx context.Context, id uint) (*entities.ClientView, error)
	ListOperatingConfigs(ctx context.Context) ([]entities.OperatingConfigRow, error)
	ListNotificationConfigs(ctx context.Context) ([]entities.NotificationConfigRow, error)
	Defaults() (clientconfig.DefaultsGroups, error)
}

// FreshnessReporter produces the last-updated report.
type FreshnessReporter interface {
	Report(ctx context.Context, year, month string) []freshness.Row
}

// Authenticator verifies dashboard logins.
type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (*entities.User, error)
	Register(ctx context.Context, username, email, password string) (*entities.User, error)
	UserForToken(ctx context.Context, token string) (*entities.User, error)
	UpdateProfile(ctx context.Context, token, username, email string) (*entities.User, error)
	ChangePassword(ctx context.Context, token, current, next string) error
}

// HealthInfo is reported by the health endpoint.
type HealthInfo struct {
	Environment string
	Profile     string
}

// Controller holds the handlers of the /api group.
type Controller struct {
	Group     *echo.Group
	clients   ClientService
	freshness FreshnessReporter
	auth      Authenticator
	health    HealthInfo
	reporter  ErrorReporter
	log       logger.Logger
}

// okResponse is the body of a successful write.
type okResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (c *Controller) initRoutes(loginLimiter echo.MiddlewareFunc) {
	c.initClientRoutes()
	c.initFreshnessRoutes()
	c.initAuthRoutes(loginLimiter)
	c.Group.GET("/health", c.Health)
}

// Health reports the selected environment and profile.
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"ok":      true,
		"env":     c.health.Environment,
		"profile": c.health.Profile,
	})
}

// HandleError renders err with the given status code. Server errors are
// logged; client errors are not.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	if code >= http.StatusInternalServerError {
		c.log.Error("request failed",
			logger.String("method", ctx.Request().Method),
			logger.String("path", ctx.Path()),
			logger.Error(err))
		c.reporter.CaptureError(err, requestTags(ctx))
	}
	if message == "" {
		message = err.Error()
	}
	return ctx.JSON(code, errorResponse{Error: message})
}

// handleServiceError maps an error category to a status code. Store failures
// expose the underlying message.
func (c *Controller) handleServiceError(ctx echo.Context, err error) error {
	return c.HandleError(ctx, err, err.Error(), statusFor(err))
}

func requestTags(ctx echo.Context) map[string]string {
	route := ctx.Path()
	if route == "" {
		route = "unmatched"
	}
	return map[string]string{
		"method":     ctx.Request().Method,
		"route":      route,
		"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func parseUintParam(ctx echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zancompute/zanconfig/internal/clientconfig"
	"github.com/zancompute/zanconfig/internal/errors"
)

func (c *Controller) initClientRoutes() {
	c.Group.GET("/clients", c.ListClients)
	c.Group.GET("/client/:id", c.GetClient)
	c.Group.POST("/create-client", c.CreateClient)
	c.Group.PUT("/update-client/:id", c.UpdateClient)
	c.Group.DELETE("/delete-client/:id", c.DeleteClient)
	c.Group.GET("/client-details", c.ListClientDetails)
	c.Group.GET("/notification-configs", c.ListNotificationConfigs)
	c.Group.GET("/client-defaults", c.GetClientDefaults)
}

// ListClients returns every client, newest first, as flattened records.
func (c *Controller) ListClients(ctx echo.Context) error {
	views, err := c.clients.List(ctx.Request().Context())
	if err != nil {
		return c.handleServiceError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, views)
}

// GetClient returns one flattened client, or an empty object when the id
// matches nothing.
func (c *Controller) GetClient(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid client ID", http.StatusBadRequest)
	}
	view, err := c.clients.Get(ctx.Request().Context(), id)
	if errors.Is(err, errors.ErrNotFound) {
		return ctx.JSON(http.StatusOK, map[string]any{})
	}
	if err != nil {
		return c.handleServiceError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, view)
}

// CreateClient creates a client and its companion records.
func (c *Controller) CreateClient(ctx echo.Context) error {
	payload, err := clientconfig.DecodePayload(ctx.Request().Body)
	if err != nil {
		return c.handleServiceError(ctx, err)
	}
	if err := c.clients.Create(ctx.Request().Context(), payload); err != nil {
		return c.handleServiceError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, okResponse{OK: true, Message: "Client created successfully"})
}

// UpdateClient overwrites a client. Omitted fields return to their defaults.
func (c *Controller) UpdateClient(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid client ID", http.StatusBadRequest)
	}
	payload, err := clientconfig.DecodePayload(ctx.Request().Body)
	if err != nil {
		return c.handleServiceError(ctx, err)
	}
	if err := c.clients.Update(ctx.Request().Context(), id, payload); err != nil {
		return c.handleServiceError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, okResponse{OK: true, Message: "Updated successfully"})
}

// DeleteClient removes a client and its companion records.
func (c *Controller) DeleteClient(ctx echo.Context) error {
	id, err := parseUintParam(ctx, "id")
	if err != nil {
		return c.HandleError(ctx, err, "Invalid client ID", http.StatusBadRequest)
	}
	if err := c.clients.Delete(ctx.Request().Context(), id); err != nil {
		return c.handleServiceError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, okResponse{OK: true, Message: "Deleted successfully"})
}

// ListClientDetails returns the raw operating configuration rows.
func (c *Controller) ListClientDetails(ctx echo.Context) error {
	rows, err := c.clients.ListOperatingConfigs(ctx.Request().Context())
	if err != nil {
		return c.handleServiceError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, rows)
}

// ListNotificationConfigs returns the raw notification threshold rows.
func (c *Controller) ListNotificationConfigs(ctx echo.Context) error {
	rows, err := c.clients.ListNotificationConfigs(ctx.Request().Context())
	if err != nil {
		return c.handleServiceError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, rows)
}

// GetClientDefaults returns the defaults groups used by the creation form.
func (c *Controller) GetClientDefaults(ctx echo.Context) error {
	groups, err := c.clients.Defaults()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to load defaults", http.StatusInternalServerError)
	}
	return ctx.JSON(http.StatusOK, groups)
}

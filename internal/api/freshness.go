package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) initFreshnessRoutes() {
	c.Group.GET("/lastupdated", c.GetLastUpdated)
}

// GetLastUpdated returns the freshness report for ?year=&month=. The report
// never fails; problems surface as an empty array.
func (c *Controller) GetLastUpdated(ctx echo.Context) error {
	rows := c.freshness.Report(ctx.Request().Context(), ctx.QueryParam("year"), ctx.QueryParam("month"))
	return ctx.JSON(http.StatusOK, rows)
}

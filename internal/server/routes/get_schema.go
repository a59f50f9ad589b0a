package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pomelo/internal/server/middleware"
	"pomelo/pkg/logger"
)

func GetSchemaHandler(c echo.Context) error {
	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	summary, err := app.Store.SchemaSummary(ctx)
	if err != nil {
		logger.Error("Failed to get schema summary", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	return c.JSON(http.StatusOK, summary)
}

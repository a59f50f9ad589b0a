package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pomelo/internal/server/middleware"
	"pomelo/pkg/logger"
)

func DeleteChatHandler(c echo.Context) error {
	type deleteChatParams struct {
		SessionID string `param:"session_id" validate:"required"`
	}

	params := new(deleteChatParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	if err := app.Store.DeleteHistory(ctx, params.SessionID); err != nil {
		logger.Error("Failed to delete chat history", "session_id", params.SessionID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	return c.NoContent(http.StatusNoContent)
}

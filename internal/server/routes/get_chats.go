package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"pomelo/internal/server/middleware"
	"pomelo/pkg/logger"
	"pomelo/pkg/store"
)

func GetChatHandler(c echo.Context) error {
	type getChatParams struct {
		SessionID string `param:"session_id" validate:"required"`
	}

	params := new(getChatParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	messages, err := app.Store.GetHistory(ctx, params.SessionID)
	if err != nil {
		logger.Error("Failed to get chat history", "session_id", params.SessionID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}
	if messages == nil {
		messages = []store.ChatMessage{}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"session_id": params.SessionID,
		"messages":   messages,
	})
}

package routes

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"pomelo/internal/server/middleware"
	"pomelo/pkg/ai"
	"pomelo/pkg/logger"
	"pomelo/pkg/query"
	"pomelo/pkg/store"
)

// QueryStreamHandler answers a question as an NDJSON stream of orchestrator
// events. With a session id the question and the synthesized answer are
// persisted as chat history around the stream.
func QueryStreamHandler(c echo.Context) error {
	type queryRequest struct {
		Question          string `json:"question" validate:"required"`
		SessionID         string `json:"session_id"`
		UseKnowledgeGraph bool   `json:"use_knowledge_graph"`
	}

	data := new(queryRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if strings.TrimSpace(data.Question) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Question must not be empty"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	var history []ai.ChatMessage
	if data.SessionID != "" {
		saved, err := app.Store.GetHistory(ctx, data.SessionID)
		if err != nil {
			logger.Error("Failed to load chat history", "session_id", data.SessionID, "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to load chat history"})
		}
		history = make([]ai.ChatMessage, 0, len(saved))
		for _, msg := range saved {
			role := "user"
			if msg.Type == store.MessageTypeAI {
				role = "assistant"
			}
			history = append(history, ai.ChatMessage{Message: msg.Text, Role: role})
		}

		if _, err := app.Store.SaveMessage(ctx, data.SessionID, store.MessageTypeUser, data.Question); err != nil {
			logger.Error("Failed to save user message", "session_id", data.SessionID, "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to save message"})
		}
	}

	events, err := app.Orchestrator.Ask(ctx, data.Question, history, data.UseKnowledgeGraph)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid question"})
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().WriteHeader(http.StatusOK)

	enc := json.NewEncoder(c.Response())
	var answer strings.Builder
	completed := false

	for event := range events {
		if event.Type == query.EventToken {
			answer.WriteString(event.Content)
		}
		if event.Type == query.EventCompleted {
			completed = true
		}
		if err := enc.Encode(event); err != nil {
			return err
		}
		c.Response().Flush()
	}

	if data.SessionID != "" && completed && answer.Len() > 0 {
		if _, err := app.Store.SaveMessage(ctx, data.SessionID, store.MessageTypeAI, answer.String()); err != nil {
			logger.Error("Failed to save answer", "session_id", data.SessionID, "err", err)
		}
	}

	return nil
}

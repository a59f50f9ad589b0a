package server

import (
	"pomelo/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Document routes
	apiRoutes.POST("/documents", routes.IngestDocumentHandler)

	// Query routes
	apiRoutes.POST("/query/stream", routes.QueryStreamHandler)

	// Chat history routes
	apiRoutes.GET("/chats/:session_id", routes.GetChatHandler)
	apiRoutes.DELETE("/chats/:session_id", routes.DeleteChatHandler)

	// Graph schema route
	apiRoutes.GET("/schema", routes.GetSchemaHandler)
}

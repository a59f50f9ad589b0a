package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"pomelo/internal/ingest"
	"pomelo/pkg/ai"
	"pomelo/pkg/query"
	"pomelo/pkg/store"
)

// App carries the shared service objects, constructed once at startup.
type App struct {
	DBConn       *pgxpool.Pool
	Queue        *amqp091.Channel
	S3           *s3.Client
	AiClient     ai.Client
	Store        store.GraphStore
	Pipeline     *ingest.Pipeline
	Orchestrator *query.Orchestrator
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}

package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pomelo/internal/db"
	"pomelo/internal/ingest"
	"pomelo/internal/queue"
	mid "pomelo/internal/server/middleware"
	"pomelo/internal/storage"
	"pomelo/internal/util"
	"pomelo/pkg/ai"
	oai "pomelo/pkg/ai/ollama"
	gai "pomelo/pkg/ai/openai"
	"pomelo/pkg/graph"
	"pomelo/pkg/logger"
	"pomelo/pkg/query"
	neostore "pomelo/pkg/store/neo4j"
	vecpgx "pomelo/pkg/vector/pgx"

	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// NewAIClient builds the configured AI adapter. Both the server and the
// worker construct their client through this once at startup.
func NewAIClient() ai.Client {
	dim := util.GetEnvInt("AI_EMBED_DIM", 1536)
	maxReq := int64(util.GetEnvInt("AI_PARALLEL_REQ", 15))

	adapter := util.GetEnv("AI_ADAPTER")
	switch adapter {
	case "ollama":
		client, err := oai.NewClient(oai.NewClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),

			EmbeddingDim: dim,

			BaseURL: util.GetEnv("AI_CHAT_URL"),
			ApiKey:  util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: maxReq,
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return gai.NewClient(gai.NewClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			ChatModel:      util.GetEnv("AI_CHAT_MODEL"),

			EmbeddingDim: dim,

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
			ChatURL:      util.GetEnv("AI_CHAT_URL"),
			ChatKey:      util.GetEnv("AI_CHAT_KEY"),

			MaxConcurrentRequests: maxReq,
		})
	}
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := db.Migrate(databaseURL); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		logger.Fatal("Invalid database URL", "err", err)
	}
	poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	conn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	graphStore, err := neostore.NewStore(ctx, neostore.NewStoreParams{
		URI:      util.GetEnv("NEO4J_URI"),
		Username: util.GetEnv("NEO4J_USER"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
		DBName:   util.GetEnvString("NEO4J_DATABASE", "neo4j"),
	})
	if err != nil {
		logger.Fatal("Failed to connect to graph database", "err", err)
	}
	defer graphStore.Close(ctx)

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3 := storage.NewS3Client(ctx)

	aiClient := NewAIClient()
	gateway := ai.NewEmbeddingGateway(aiClient, util.GetEnvInt("AI_EMBED_DIM", 1536))
	index := vecpgx.NewVectorIndex(conn)
	extractor := graph.NewExtractor(aiClient, util.GetEnv("AI_EXTRACT_MODEL"))
	collection := util.GetEnvString("VECTOR_COLLECTION", "documents")

	pipeline := ingest.NewPipeline(ingest.PipelineParams{
		Gateway:      gateway,
		Index:        index,
		Extractor:    extractor,
		Store:        graphStore,
		Collection:   collection,
		ChunkSize:    util.GetEnvInt("CHUNK_SIZE", 1200),
		ChunkOverlap: util.GetEnvInt("CHUNK_OVERLAP", 120),
	})

	orchestrator := query.NewOrchestrator(query.OrchestratorParams{
		Client:     aiClient,
		Gateway:    gateway,
		Store:      graphStore,
		Index:      index,
		Describe:   neostore.Describe,
		Collection: collection,
		TopK:       util.GetEnvInt("QUERY_TOP_K", 3),
	})

	app := &mid.App{
		DBConn:       conn,
		Queue:        ch,
		S3:           s3,
		AiClient:     aiClient,
		Store:        graphStore,
		Pipeline:     pipeline,
		Orchestrator: orchestrator,
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1G"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

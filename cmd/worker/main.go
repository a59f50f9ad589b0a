package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pomelo/internal/db"
	"pomelo/internal/ingest"
	"pomelo/internal/queue"
	"pomelo/internal/server"
	"pomelo/internal/storage"
	"pomelo/internal/util"
	"pomelo/pkg/ai"
	"pomelo/pkg/graph"
	"pomelo/pkg/logger"
	"pomelo/pkg/logger/console"
	neostore "pomelo/pkg/store/neo4j"
	vecpgx "pomelo/pkg/vector/pgx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	s3Client := storage.NewS3Client(ctx)
	aiClient := server.NewAIClient()

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
	pgConn, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

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

	gateway := ai.NewEmbeddingGateway(aiClient, util.GetEnvInt("AI_EMBED_DIM", 1536))
	pipeline := ingest.NewPipeline(ingest.PipelineParams{
		Gateway:      gateway,
		Index:        vecpgx.NewVectorIndex(pgConn),
		Extractor:    graph.NewExtractor(aiClient, util.GetEnv("AI_EXTRACT_MODEL")),
		Store:        graphStore,
		Collection:   util.GetEnvString("VECTOR_COLLECTION", "documents"),
		ChunkSize:    util.GetEnvInt("CHUNK_SIZE", 1200),
		ChunkOverlap: util.GetEnvInt("CHUNK_OVERLAP", 120),
	})

	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	// One unacked message at a time keeps document ingestion strictly
	// sequential across the queue.
	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.IngestQueue,
		"ingest_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.IngestQueue, "err", err)
	}

	logger.Info("Listening for messages")

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Info("Message channel closed")
					return
				}

				startTime := time.Now()
				logger.Info("Received message", "queue", queue.IngestQueue)

				err := queue.ProcessIngestMessage(ctx, s3Client, pipeline, string(msg.Body))
				if err != nil {
					logger.Error("Error processing message", "queue", queue.IngestQueue, "err", err)
					queue.HandleProcessingError(consumerCh, msg, queue.IngestQueue)
				} else {
					if err := msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", queue.IngestQueue)
				}

				logger.Info("Processing time", "duration", time.Since(startTime).Round(time.Millisecond).String())
				logger.Info("Waiting for next message")
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

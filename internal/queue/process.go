package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"pomelo/internal/ingest"
	"pomelo/internal/storage"
	"pomelo/internal/util"
	"pomelo/pkg/logger"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
)

// IngestFileMsg is the payload published to the ingest queue. The document
// bytes live in S3 under FileKey; the message only references them.
type IngestFileMsg struct {
	FileKey     string `json:"file_key"`
	ContentType string `json:"content_type"`
	Source      string `json:"source"`
	BuildGraph  bool   `json:"build_graph"`
}

// ProcessIngestMessage fetches the referenced document from S3 and runs it
// through the ingestion pipeline. The object is deleted after successful
// ingestion so replayed messages fetch nothing stale.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	pipeline *ingest.Pipeline,
	msg string,
) error {
	data := new(IngestFileMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return fmt.Errorf("failed to decode ingest message: %w", err)
	}
	if data.FileKey == "" {
		return fmt.Errorf("ingest message without file key")
	}

	fileBytes, err := util.Retry(3, func() ([]byte, error) {
		return storage.GetFile(ctx, s3Client, data.FileKey)
	})
	if err != nil {
		return err
	}

	source := data.Source
	if source == "" {
		source = data.FileKey
	}

	result, err := pipeline.IngestDocument(ctx, fileBytes, data.ContentType, source, data.BuildGraph)
	if err != nil {
		return err
	}
	logger.Info(
		"Ingested document from queue",
		"file_key", data.FileKey,
		"chunks", result.ChunksIndexed,
		"nodes", result.Nodes,
		"relationships", result.Relationships,
	)

	if err := storage.DeleteFile(ctx, s3Client, data.FileKey); err != nil {
		logger.Warn("Failed to delete ingested file from S3", "file_key", data.FileKey, "err", err)
	}
	return nil
}

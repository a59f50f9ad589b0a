package routes

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"pomelo/internal/queue"
	"pomelo/internal/server/middleware"
	"pomelo/internal/storage"
	"pomelo/pkg/logger"
)

// IngestDocumentHandler accepts a document upload. Synchronous requests run
// the full pipeline and return the ingestion result; async requests park the
// file in S3, enqueue a reference and return 202.
func IngestDocumentHandler(c echo.Context) error {
	type ingestRequest struct {
		ContentType string `form:"content_type"`
		Source      string `form:"source"`
		BuildGraph  bool   `form:"build_graph"`
		Async       bool   `form:"async"`
	}

	data := new(ingestRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Missing file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Unreadable file"})
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil || len(fileBytes) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Empty file"})
	}

	contentType := data.ContentType
	if contentType == "" {
		contentType = fileHeader.Header.Get("Content-Type")
	}
	source := data.Source
	if source == "" {
		source = fileHeader.Filename
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	if data.Async {
		key, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		}

		fileKey, err := storage.PutFile(ctx, app.S3, key, contentType, fileBytes)
		if err != nil {
			logger.Error("Failed to store uploaded file", "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to store file"})
		}

		msg := queue.IngestFileMsg{
			FileKey:     fileKey,
			ContentType: contentType,
			Source:      source,
			BuildGraph:  data.BuildGraph,
		}
		msgBytes, err := json.Marshal(msg)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
		}
		if err := queue.PublishFIFO(app.Queue, queue.IngestQueue, msgBytes); err != nil {
			logger.Error("Failed to enqueue document", "err", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to enqueue document"})
		}

		return c.JSON(http.StatusAccepted, map[string]string{"file_key": fileKey})
	}

	result, err := app.Pipeline.IngestDocument(ctx, fileBytes, contentType, source, data.BuildGraph)
	if err != nil {
		logger.Error("Failed to ingest document", "source", source, "err", err)
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{"message": "Failed to ingest document"})
	}

	return c.JSON(http.StatusOK, result)
}

// Package ingest implements the document ingestion pipeline: load, chunk,
// embed, index, and optionally extract graph elements.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"pomelo/internal/loader"
	"pomelo/internal/util"
	"pomelo/pkg/ai"
	"pomelo/pkg/chunker"
	"pomelo/pkg/graph"
	"pomelo/pkg/logger"
	"pomelo/pkg/store"
	"pomelo/pkg/vector"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkoukk/tiktoken-go"
)

// Pipeline runs documents through chunking, embedding, vector indexing and
// optional graph extraction. One instance is shared between the HTTP layer
// and the queue worker.
type Pipeline struct {
	gateway      *ai.EmbeddingGateway
	index        vector.Index
	extractor    *graph.Extractor
	store        store.GraphStore
	collection   string
	chunkSize    int
	chunkOverlap int
	encoder      *tiktoken.Tiktoken
}

type PipelineParams struct {
	Gateway      *ai.EmbeddingGateway
	Index        vector.Index
	Extractor    *graph.Extractor
	Store        store.GraphStore
	Collection   string
	ChunkSize    int
	ChunkOverlap int
}

// Result summarizes one document's ingestion. ChunksIndexed of zero with a
// nil error means the document was processed but empty.
type Result struct {
	ChunksIndexed int `json:"chunks_indexed"`
	Nodes         int `json:"nodes"`
	Relationships int `json:"relationships"`
}

func NewPipeline(params PipelineParams) *Pipeline {
	chunkSize := params.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 1200
	}
	chunkOverlap := params.ChunkOverlap
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 10
	}

	encoder, err := tiktoken.GetEncoding("o200k_base")
	if err != nil {
		logger.Warn("Failed to load token encoder, chunk token counts disabled", "err", err)
	}

	return &Pipeline{
		gateway:      params.Gateway,
		index:        params.Index,
		extractor:    params.Extractor,
		store:        params.Store,
		collection:   params.Collection,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		encoder:      encoder,
	}
}

// IngestDocument loads, chunks, embeds and indexes one document. With
// buildGraph set, every chunk additionally runs through extraction and the
// resulting elements are merged into the graph store, strictly in chunk
// order.
func (p *Pipeline) IngestDocument(
	ctx context.Context,
	data []byte,
	contentType string,
	source string,
	buildGraph bool,
) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("document is empty")
	}

	text, err := loader.Load(data, contentType, source)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load document: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		logger.Info("Document produced no text, nothing to index", "source", source)
		return Result{}, nil
	}

	chunks, err := chunker.SplitFixed(text, p.chunkSize, p.chunkOverlap)
	if err != nil {
		return Result{}, fmt.Errorf("failed to chunk document: %w", err)
	}
	if len(chunks) == 0 {
		return Result{}, nil
	}

	sourceID := source
	if sourceID == "" {
		sourceID, err = gonanoid.New()
		if err != nil {
			return Result{}, fmt.Errorf("failed to generate source id: %w", err)
		}
	}

	embeddings := p.gateway.Embed(ctx, chunks)

	docs := make([]vector.Document, 0, len(chunks))
	for i, chunk := range chunks {
		chunkID, err := gonanoid.New()
		if err != nil {
			return Result{}, fmt.Errorf("failed to generate chunk id: %w", err)
		}
		docs = append(docs, vector.Document{
			ID:        chunkID,
			Text:      chunk,
			Embedding: embeddings[i],
			Metadata: map[string]any{
				"source_id": sourceID,
				"ordinal":   i,
				"tokens":    p.countTokens(chunk),
			},
		})
	}

	err = util.RetryErrWithContext(ctx, 3, func(ctx context.Context) error {
		return p.index.Upsert(ctx, p.collection, docs)
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to index chunks: %w", err)
	}

	result := Result{ChunksIndexed: len(chunks)}
	if !buildGraph {
		return result, nil
	}

	for i, chunk := range chunks {
		elements := p.extractor.Extract(ctx, chunk)
		if elements.Empty() {
			continue
		}
		if err := p.store.MergeElements(ctx, elements); err != nil {
			return result, fmt.Errorf("failed to merge graph elements of chunk %d: %w", i, err)
		}
		result.Nodes += len(elements.Nodes)
		result.Relationships += len(elements.Relationships)
	}

	return result, nil
}

// Document is one batch item for IngestBatch.
type Document struct {
	Data        []byte
	ContentType string
	Source      string
	BuildGraph  bool
}

// IngestBatch processes documents strictly sequentially. A failing document
// is logged and skipped; its Result slot reports zero chunks. The returned
// error is the first failure, for callers that want to surface it.
func (p *Pipeline) IngestBatch(ctx context.Context, documents []Document) ([]Result, error) {
	results := make([]Result, len(documents))
	var firstErr error

	for i, doc := range documents {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := p.IngestDocument(ctx, doc.Data, doc.ContentType, doc.Source, doc.BuildGraph)
		if err != nil {
			logger.Error("Failed to ingest document", "source", doc.Source, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results[i] = result
	}

	return results, firstErr
}

func (p *Pipeline) countTokens(text string) int {
	if p.encoder == nil {
		return 0
	}
	return len(p.encoder.Encode(text, nil, nil))
}

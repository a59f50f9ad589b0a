package ingest

import (
	"context"
	"errors"
	"testing"

	"pomelo/pkg/ai"
	"pomelo/pkg/graph"
	"pomelo/pkg/store"
	"pomelo/pkg/vector"
)

type fakeClient struct {
	available  bool
	completion string
}

func (f *fakeClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	if !f.available {
		return "", ai.ErrUnavailable
	}
	return f.completion, nil
}

func (f *fakeClient) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	return ai.ErrUnavailable
}

func (f *fakeClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return "", ai.ErrUnavailable
}

func (f *fakeClient) GenerateChatStream(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (<-chan ai.StreamEvent, error) {
	return nil, ai.ErrUnavailable
}

func (f *fakeClient) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	if !f.available {
		return nil, ai.ErrUnavailable
	}
	vecs := make([][]float32, len(inputs))
	for i := range vecs {
		vecs[i] = []float32{1, 0}
	}
	return vecs, nil
}

func (f *fakeClient) Available() bool { return f.available }

type fakeIndex struct {
	upserts   map[string][]vector.Document
	upsertErr error
}

func (f *fakeIndex) Upsert(ctx context.Context, collection string, docs []vector.Document) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.upserts == nil {
		f.upserts = make(map[string][]vector.Document)
	}
	f.upserts[collection] = append(f.upserts[collection], docs...)
	return nil
}

func (f *fakeIndex) Query(ctx context.Context, collection string, embedding []float32, topK int) ([]vector.Match, error) {
	return nil, nil
}

func (f *fakeIndex) DeleteCollection(ctx context.Context, collection string) error { return nil }

type fakeStore struct {
	merged []graph.Elements
}

func (f *fakeStore) MergeElements(ctx context.Context, elements graph.Elements) error {
	f.merged = append(f.merged, elements)
	return nil
}

func (f *fakeStore) RunQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	return nil, nil
}

func (f *fakeStore) SchemaSummary(ctx context.Context) (store.SchemaSummary, error) {
	return store.SchemaSummary{}, nil
}

func (f *fakeStore) SaveMessage(ctx context.Context, sessionID string, msgType string, text string) (store.ChatMessage, error) {
	return store.ChatMessage{}, nil
}

func (f *fakeStore) GetHistory(ctx context.Context, sessionID string) ([]store.ChatMessage, error) {
	return nil, nil
}

func (f *fakeStore) DeleteHistory(ctx context.Context, sessionID string) error { return nil }

func newTestPipeline(client *fakeClient, idx *fakeIndex, gs *fakeStore) *Pipeline {
	return NewPipeline(PipelineParams{
		Gateway:      ai.NewEmbeddingGateway(client, 2),
		Index:        idx,
		Extractor:    graph.NewExtractor(client, ""),
		Store:        gs,
		Collection:   "documents",
		ChunkSize:    40,
		ChunkOverlap: 0,
	})
}

func TestIngestDocumentIndexesChunks(t *testing.T) {
	client := &fakeClient{available: true, completion: `{"nodes":[{"id":"alice","type":"Person"}],"relationships":[]}`}
	idx := &fakeIndex{}
	gs := &fakeStore{}
	p := newTestPipeline(client, idx, gs)

	text := "Alice works at Acme. Bob works at Initech. Carol runs the warehouse in Hamburg."
	result, err := p.IngestDocument(context.Background(), []byte(text), "text/plain", "doc-1", false)
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}
	if result.ChunksIndexed == 0 {
		t.Fatal("no chunks indexed")
	}

	docs := idx.upserts["documents"]
	if len(docs) != result.ChunksIndexed {
		t.Errorf("indexed %d documents, result reports %d", len(docs), result.ChunksIndexed)
	}
	for i, doc := range docs {
		if doc.ID == "" {
			t.Errorf("doc %d has no id", i)
		}
		if doc.Metadata["source_id"] != "doc-1" {
			t.Errorf("doc %d source_id = %v", i, doc.Metadata["source_id"])
		}
		if doc.Metadata["ordinal"] != i {
			t.Errorf("doc %d ordinal = %v", i, doc.Metadata["ordinal"])
		}
	}
	if len(gs.merged) != 0 {
		t.Errorf("graph merged without build_graph: %d batches", len(gs.merged))
	}
}

func TestIngestDocumentBuildsGraph(t *testing.T) {
	client := &fakeClient{available: true, completion: `{"nodes":[{"id":"alice","type":"Person"}],"relationships":[{"source":"alice","target":"acme","type":"works at"}]}`}
	idx := &fakeIndex{}
	gs := &fakeStore{}
	p := newTestPipeline(client, idx, gs)

	result, err := p.IngestDocument(context.Background(), []byte("Alice works at Acme."), "text/plain", "doc-1", true)
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}
	if len(gs.merged) != 1 {
		t.Fatalf("merged %d batches, want 1", len(gs.merged))
	}
	if result.Nodes != 1 || result.Relationships != 1 {
		t.Errorf("result = %+v, want 1 node and 1 relationship", result)
	}
	if got := gs.merged[0].Relationships[0].Type; got != graph.RelKind("WORKS_AT") {
		t.Errorf("relationship type = %s, want WORKS_AT", got)
	}
}

func TestIngestDocumentEmptyTextIsNotAnError(t *testing.T) {
	p := newTestPipeline(&fakeClient{available: true}, &fakeIndex{}, &fakeStore{})

	result, err := p.IngestDocument(context.Background(), []byte("   \n  "), "text/plain", "doc-1", true)
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}
	if result.ChunksIndexed != 0 {
		t.Errorf("chunks indexed = %d, want 0", result.ChunksIndexed)
	}
}

func TestIngestDocumentRejectsEmptyBytes(t *testing.T) {
	p := newTestPipeline(&fakeClient{available: true}, &fakeIndex{}, &fakeStore{})
	if _, err := p.IngestDocument(context.Background(), nil, "text/plain", "", false); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestIngestDocumentUnavailableEmbeddingStillIndexes(t *testing.T) {
	client := &fakeClient{available: false}
	idx := &fakeIndex{}
	p := newTestPipeline(client, idx, &fakeStore{})

	result, err := p.IngestDocument(context.Background(), []byte("some text"), "text/plain", "doc-1", false)
	if err != nil {
		t.Fatalf("IngestDocument() error = %v", err)
	}
	if result.ChunksIndexed != 1 {
		t.Fatalf("chunks indexed = %d, want 1", result.ChunksIndexed)
	}
	emb := idx.upserts["documents"][0].Embedding
	for _, v := range emb {
		if v != 0 {
			t.Fatalf("expected zero-vector fallback, got %v", emb)
		}
	}
}

func TestIngestBatchContinuesAfterFailure(t *testing.T) {
	client := &fakeClient{available: true}
	idx := &fakeIndex{}
	p := newTestPipeline(client, idx, &fakeStore{})

	docs := []Document{
		{Data: []byte("first document text"), ContentType: "text/plain", Source: "a"},
		{Data: []byte{1, 2, 3}, ContentType: "application/pdf", Source: "b"},
		{Data: []byte("third document text"), ContentType: "text/plain", Source: "c"},
	}
	results, err := p.IngestBatch(context.Background(), docs)
	if err == nil {
		t.Error("expected the first failure to be reported")
	}
	if results[0].ChunksIndexed != 1 || results[2].ChunksIndexed != 1 {
		t.Errorf("surviving documents not ingested: %+v", results)
	}
	if results[1].ChunksIndexed != 0 {
		t.Errorf("failed document reports chunks: %+v", results)
	}
}

func TestIngestBatchStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(&fakeClient{available: true}, &fakeIndex{}, &fakeStore{})
	_, err := p.IngestBatch(ctx, []Document{{Data: []byte("x"), ContentType: "text/plain"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

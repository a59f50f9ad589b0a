package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pomelo/pkg/ai"
	"pomelo/pkg/logger"
	"pomelo/pkg/store"
	"pomelo/pkg/vector"
)

const (
	// placeholderQuery is executed instead of an empty generation so the
	// graph step always runs a valid statement.
	placeholderQuery = "RETURN null LIMIT 0"

	offlineAnswer   = "The language model is currently offline, so no answer can be generated. Please try again later."
	noContextMarker = "No relevant context was found for this question."

	couldNotEmbedItem = "The question could not be embedded; semantic search was skipped."

	maxGraphRecords = 10

	embedTimeout      = 30 * time.Second
	graphTimeout      = 30 * time.Second
	vectorTimeout     = 15 * time.Second
	completionTimeout = 120 * time.Second
)

// SchemaDescriber turns a schema summary into prompt text. It matches the
// signature of the neo4j store's Describe function.
type SchemaDescriber func(store.SchemaSummary) string

// Orchestrator answers questions by combining graph query results and
// vector search hits into context for a streamed completion. A single
// instance is shared between requests; per-question state lives on the stack.
type Orchestrator struct {
	client     ai.Client
	gateway    *ai.EmbeddingGateway
	store      store.GraphStore
	index      vector.Index
	describe   SchemaDescriber
	collection string
	topK       int
}

type OrchestratorParams struct {
	Client     ai.Client
	Gateway    *ai.EmbeddingGateway
	Store      store.GraphStore
	Index      vector.Index
	Describe   SchemaDescriber
	Collection string
	TopK       int
}

func NewOrchestrator(params OrchestratorParams) *Orchestrator {
	topK := params.TopK
	if topK <= 0 {
		topK = 3
	}
	return &Orchestrator{
		client:     params.Client,
		gateway:    params.Gateway,
		store:      params.Store,
		index:      params.Index,
		describe:   params.Describe,
		collection: params.Collection,
		topK:       topK,
	}
}

// Ask runs the question through the retrieval pipeline and returns the event
// stream. The channel is closed after exactly one terminal event. Cancelling
// ctx cancels in-flight capability calls and ends the stream.
func (o *Orchestrator) Ask(
	ctx context.Context,
	question string,
	history []ai.ChatMessage,
	useGraph bool,
) (<-chan Event, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	events := make(chan Event, 16)
	go o.run(ctx, question, history, useGraph, events)
	return events, nil
}

func (o *Orchestrator) run(
	ctx context.Context,
	question string,
	history []ai.ChatMessage,
	useGraph bool,
	events chan<- Event,
) {
	defer close(events)

	var contextItems []string
	hasUsableContext := false
	schemaFailed := false

	if useGraph {
		if !emit(ctx, events, Event{Type: EventStep, Step: StepSchema}) {
			return
		}
		schemaText := o.fetchSchema(ctx, &schemaFailed)

		if !emit(ctx, events, Event{Type: EventStep, Step: StepGraphQuery}) {
			return
		}
		graphItems, usable := o.graphContext(ctx, schemaText, question, events)
		contextItems = append(contextItems, graphItems...)
		if usable {
			hasUsableContext = true
		}
	}

	if !emit(ctx, events, Event{Type: EventStep, Step: StepVectorSearch}) {
		return
	}
	embedFailed := false
	vectorItems := o.vectorContext(ctx, question, events, &embedFailed)
	contextItems = append(contextItems, vectorItems...)
	if !embedFailed && len(vectorItems) > 0 {
		hasUsableContext = true
	}

	if ctx.Err() != nil {
		return
	}

	// Both retrieval paths collapsing before any usable context exists is
	// the one terminal failure; every lesser failure degrades.
	if useGraph && schemaFailed && embedFailed && !hasUsableContext {
		logger.Error("Both retrieval paths failed", "question", question)
		emit(ctx, events, Event{Type: EventFailed, Content: "no retrieval path available"})
		return
	}

	o.synthesize(ctx, question, history, contextItems, events)
}

// emit delivers an event unless the caller has gone away. A false return
// means ctx was cancelled and the producer must stop; the send must never
// block past cancellation since nobody drains the channel after that.
func emit(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) fetchSchema(ctx context.Context, failed *bool) string {
	callCtx, cancel := context.WithTimeout(ctx, graphTimeout)
	defer cancel()

	summary, err := o.store.SchemaSummary(callCtx)
	if err != nil {
		logger.Warn("Schema fetch failed, using generic description", "err", err)
		*failed = true
		return ai.GenericSchemaDescription
	}
	return o.describe(summary)
}

// graphContext generates and executes a graph query. The second return value
// reports whether any real records were retrieved.
func (o *Orchestrator) graphContext(
	ctx context.Context,
	schemaText string,
	question string,
	events chan<- Event,
) ([]string, bool) {
	graphQuery, degraded := o.generateGraphQuery(ctx, schemaText, question)
	if degraded {
		if !emit(ctx, events, Event{Type: EventDegraded, Step: StepGraphQuery, Content: "graph query could not be generated"}) {
			return nil, false
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, graphTimeout)
	defer cancel()

	records, err := o.store.RunQuery(execCtx, graphQuery, nil)
	if err != nil {
		logger.Warn("Graph query execution failed", "query", graphQuery, "err", err)
		item := fmt.Sprintf("Graph lookup failed: %v", err)
		emit(ctx, events, Event{Type: EventDegraded, Step: StepGraphQuery, Content: item})
		return []string{item}, false
	}

	formatted := FormatRecords(records, maxGraphRecords)
	return formatted, len(formatted) > 0
}

func (o *Orchestrator) generateGraphQuery(ctx context.Context, schemaText string, question string) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	prompt := fmt.Sprintf(ai.CypherPrompt, schemaText, question)
	raw, err := o.client.GenerateCompletion(callCtx, prompt)
	if err != nil {
		if !errors.Is(err, ai.ErrUnavailable) {
			logger.Warn("Graph query generation failed", "err", err)
		}
		return placeholderQuery, true
	}

	cleaned := CleanGeneratedQuery(raw)
	if cleaned == "" {
		return placeholderQuery, true
	}
	return cleaned, false
}

// CleanGeneratedQuery strips markdown fences, surrounding whitespace and one
// trailing statement terminator from a generated query.
func CleanGeneratedQuery(raw string) string {
	cleaned := strings.TrimSpace(ai.StripFences(raw))
	cleaned = strings.TrimSuffix(cleaned, ";")
	return strings.TrimSpace(cleaned)
}

func (o *Orchestrator) vectorContext(
	ctx context.Context,
	question string,
	events chan<- Event,
	embedFailed *bool,
) []string {
	if !o.gateway.Available() {
		*embedFailed = true
		emit(ctx, events, Event{Type: EventDegraded, Step: StepVectorSearch, Content: couldNotEmbedItem})
		return []string{couldNotEmbedItem}
	}

	embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
	embedding := o.gateway.EmbedOne(embedCtx, question)
	cancel()

	queryCtx, cancel := context.WithTimeout(ctx, vectorTimeout)
	defer cancel()

	matches, err := o.index.Query(queryCtx, o.collection, embedding, o.topK)
	if err != nil {
		logger.Warn("Vector search failed", "err", err)
		item := fmt.Sprintf("Semantic search failed: %v", err)
		emit(ctx, events, Event{Type: EventDegraded, Step: StepVectorSearch, Content: item})
		return []string{item}
	}

	items := make([]string, 0, len(matches))
	for _, m := range matches {
		items = append(items, m.Text)
	}
	return items
}

func (o *Orchestrator) synthesize(
	ctx context.Context,
	question string,
	history []ai.ChatMessage,
	contextItems []string,
	events chan<- Event,
) {
	if !emit(ctx, events, Event{Type: EventStep, Step: StepSynthesis}) {
		return
	}

	if !o.client.Available() {
		if emit(ctx, events, Event{Type: EventToken, Content: offlineAnswer}) {
			emit(ctx, events, Event{Type: EventCompleted})
		}
		return
	}

	if len(contextItems) == 0 {
		contextItems = []string{noContextMarker}
	}
	systemPrompt := fmt.Sprintf(ai.AnswerPrompt, strings.Join(contextItems, "\n\n"))

	messages := make([]ai.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, ai.ChatMessage{Message: question, Role: "user"})

	streamCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	stream, err := o.client.GenerateChatStream(streamCtx, messages, ai.WithSystemPrompts(systemPrompt))
	if err != nil {
		if errors.Is(err, ai.ErrUnavailable) {
			if emit(ctx, events, Event{Type: EventToken, Content: offlineAnswer}) {
				emit(ctx, events, Event{Type: EventCompleted})
			}
			return
		}
		logger.Error("Failed to open synthesis stream", "err", err)
		emit(ctx, events, Event{Type: EventFailed, Content: "answer generation failed"})
		return
	}

	var answer strings.Builder
	for ev := range stream {
		if ev.Type == "content" && ev.Content != "" {
			answer.WriteString(ev.Content)
			if !emit(ctx, events, Event{Type: EventToken, Content: ev.Content}) {
				return
			}
		}
	}

	if err := streamCtx.Err(); err != nil {
		logger.Error("Synthesis stream aborted", "err", err)
		emit(ctx, events, Event{Type: EventFailed, Content: "answer generation interrupted"})
		return
	}

	logger.Debug("Synthesis completed", "question", question, "answer_len", answer.Len())
	emit(ctx, events, Event{Type: EventCompleted})
}

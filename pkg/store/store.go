// Package store defines the persistence interface for the knowledge graph
// and chat history. Implementations live in subpackages.
package store

import (
	"context"
	"time"

	"pomelo/pkg/graph"
)

// MessageTypeUser and MessageTypeAI are the two chat message kinds.
const (
	MessageTypeUser = "user"
	MessageTypeAI   = "ai"
)

// ChatMessage is one persisted message of a chat session. Seq is a
// server-assigned, per-session monotonic sequence number; retrieval orders
// by it, never by traversing chain edges.
type ChatMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
}

// SchemaSummary describes the graph's current shape for query generation.
type SchemaSummary struct {
	Labels            []string `json:"labels"`
	RelationshipTypes []string `json:"relationship_types"`
	PropertyKeys      []string `json:"property_keys"`
}

// GraphStore persists extracted graph elements, executes arbitrary typed
// queries, and keeps per-session chat history.
//
// MergeElements is idempotent: merging the same elements twice leaves the
// stored graph unchanged after the second application. Relationships whose
// endpoints do not both exist are not created.
type GraphStore interface {
	MergeElements(ctx context.Context, elements graph.Elements) error

	RunQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	SchemaSummary(ctx context.Context) (SchemaSummary, error)

	SaveMessage(ctx context.Context, sessionID string, msgType string, text string) (ChatMessage, error)
	GetHistory(ctx context.Context, sessionID string) ([]ChatMessage, error)
	DeleteHistory(ctx context.Context, sessionID string) error
}

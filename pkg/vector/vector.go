// Package vector defines the embedding index used for semantic retrieval.
// Documents are grouped into named collections so one database can serve
// several indexes side by side.
package vector

import "context"

// Document is one indexed chunk of text. Embedding must match the dimension
// the index was created with.
type Document struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]any
}

// Match is a query result. Distance is the cosine distance to the query
// embedding, so lower means more similar.
type Match struct {
	ID       string
	Text     string
	Metadata map[string]any
	Distance float32
}

// Index stores embedded documents and answers nearest-neighbor queries.
type Index interface {
	// Upsert inserts the documents into the collection, replacing any
	// existing document with the same ID.
	Upsert(ctx context.Context, collection string, docs []Document) error

	// Query returns the topK documents of the collection closest to the
	// given embedding, nearest first. Fewer than topK results are returned
	// when the collection holds fewer documents.
	Query(ctx context.Context, collection string, embedding []float32, topK int) ([]Match, error)

	// DeleteCollection removes every document of the collection. Deleting
	// an unknown collection is not an error.
	DeleteCollection(ctx context.Context, collection string) error
}

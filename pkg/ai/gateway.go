package ai

import (
	"context"
	"errors"

	"pomelo/pkg/logger"
)

// EmbeddingGateway wraps a Client's embedding capability with a fixed
// never-fail contract: one vector per input, zero vectors when the provider
// is unavailable or errors, an empty result for empty input. Availability is
// surfaced explicitly so callers can tell a real vector from a fallback
// instead of inspecting the values.
type EmbeddingGateway struct {
	client Client
	dim    int
}

// NewEmbeddingGateway creates a gateway producing vectors of the given
// dimensionality. dim must match the embedding provider configuration.
func NewEmbeddingGateway(client Client, dim int) *EmbeddingGateway {
	return &EmbeddingGateway{client: client, dim: dim}
}

// Dim returns the configured vector dimensionality.
func (g *EmbeddingGateway) Dim() int {
	return g.dim
}

// Available reports whether real embeddings can be produced. When false,
// Embed still succeeds but returns zero vectors.
func (g *EmbeddingGateway) Available() bool {
	type embeddingAvailability interface {
		EmbeddingAvailable() bool
	}
	if ea, ok := g.client.(embeddingAvailability); ok {
		return ea.EmbeddingAvailable()
	}
	return g.client.Available()
}

// Embed returns one vector per input text. It never returns an error: on
// provider failure every input gets a zero vector and the failure is logged.
func (g *EmbeddingGateway) Embed(ctx context.Context, inputs []string) [][]float32 {
	if len(inputs) == 0 {
		return nil
	}

	vecs, err := g.client.GenerateEmbeddings(ctx, inputs)
	if err != nil || len(vecs) != len(inputs) {
		if err != nil && !errors.Is(err, ErrUnavailable) {
			logger.Warn("Embedding call failed, substituting zero vectors", "err", err)
		}
		zeros := make([][]float32, len(inputs))
		for i := range zeros {
			zeros[i] = make([]float32, g.dim)
		}
		return zeros
	}
	return vecs
}

// EmbedOne embeds a single text.
func (g *EmbeddingGateway) EmbedOne(ctx context.Context, input string) []float32 {
	vecs := g.Embed(ctx, []string{input})
	if len(vecs) != 1 {
		return make([]float32, g.dim)
	}
	return vecs[0]
}

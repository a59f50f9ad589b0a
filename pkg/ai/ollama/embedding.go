package ollama

import (
	"context"
	"strings"

	"pomelo/pkg/ai"

	"github.com/ollama/ollama/api"
)

// GenerateEmbeddings creates one vector per input text using the configured
// embedding model. Empty or whitespace-only inputs produce zero vectors
// without a server round trip.
func (c *Client) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	if c.embeddingModel == "" {
		return nil, ai.ErrUnavailable
	}

	dim := c.embeddingDim
	out := make([][]float32, len(inputs))
	nonEmpty := make([]string, 0, len(inputs))
	idxMap := make([]int, 0, len(inputs))
	for i, in := range inputs {
		if strings.TrimSpace(in) == "" {
			out[i] = make([]float32, dim)
			continue
		}
		nonEmpty = append(nonEmpty, in)
		idxMap = append(idxMap, i)
	}
	if len(nonEmpty) == 0 {
		return out, nil
	}

	req := &api.EmbedRequest{
		Model: c.embeddingModel,
		Input: nonEmpty,
	}

	if err := c.reqLock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.reqLock.Release(1)

	res, err := c.client.Embed(ctx, req)
	if err != nil {
		return nil, err
	}

	c.modifyMetrics(ai.ModelMetrics{
		InputTokens: res.PromptEvalCount,
		TotalTokens: res.PromptEvalCount,
		DurationMs:  res.TotalDuration.Milliseconds(),
	})

	for i, emb := range res.Embeddings {
		if i >= len(idxMap) {
			break
		}
		vec := make([]float32, 0, dim)
		for _, v := range emb {
			if len(vec) >= dim {
				break
			}
			vec = append(vec, float32(v))
		}
		if len(vec) < dim {
			padded := make([]float32, dim)
			copy(padded, vec)
			vec = padded
		}
		out[idxMap[i]] = vec
	}
	for i := range out {
		if out[i] == nil {
			out[i] = make([]float32, dim)
		}
	}
	return out, nil
}

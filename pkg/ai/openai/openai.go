package openai

import (
	"sync"

	"pomelo/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

// Client talks to an OpenAI-compatible API. Separate underlying clients are
// kept for embeddings and chat so the two capabilities can point at
// different endpoints (e.g. a local embedding server plus a hosted chat
// model). A Client without any configured key is still constructible; its
// methods then return ai.ErrUnavailable.
type Client struct {
	embeddingModel string
	chatModel      string

	embeddingDim int

	chatURL      string
	embeddingURL string

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	chatClient      *openai.Client
	embeddingClient *openai.Client
}

// NewClientParams configures a Client.
type NewClientParams struct {
	EmbeddingModel string
	ChatModel      string

	EmbeddingDim int

	EmbeddingURL string
	EmbeddingKey string
	ChatURL      string
	ChatKey      string

	MaxConcurrentRequests int64
}

// NewClient creates a Client from the given parameters. Endpoints without a
// key stay nil and surface as ai.ErrUnavailable at call time.
func NewClient(params NewClientParams) *Client {
	maxReq := params.MaxConcurrentRequests
	if maxReq <= 0 {
		maxReq = 8
	}

	return &Client{
		embeddingModel: params.EmbeddingModel,
		chatModel:      params.ChatModel,
		embeddingDim:   params.EmbeddingDim,
		chatURL:        params.ChatURL,
		embeddingURL:   params.EmbeddingURL,

		reqLock: semaphore.NewWeighted(maxReq),

		chatClient:      newOpenaiClient(params.ChatURL, params.ChatKey),
		embeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newOpenaiClient(baseURL string, apiKey string) *openai.Client {
	if apiKey == "" {
		return nil
	}

	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)
	return &client
}

// Available reports whether the chat endpoint was configured.
func (c *Client) Available() bool {
	return c.chatClient != nil
}

// EmbeddingAvailable reports whether the embedding endpoint was configured.
func (c *Client) EmbeddingAvailable() bool {
	return c.embeddingClient != nil
}

func (c *Client) modifyMetrics(m ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	c.metrics.Add(m)
}

// GetMetrics returns the accumulated usage metrics.
func (c *Client) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.metrics
}

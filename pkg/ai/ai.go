package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by client methods when the backing capability
// was never configured (missing API key or endpoint). Callers branch on it
// to substitute degraded results instead of failing the whole operation.
var ErrUnavailable = errors.New("ai capability unavailable")

// ChatMessage is a single message in a multi-turn conversation.
//
// Role must be one of:
//   - "user"      → a user-provided message
//   - "assistant" → a message from the AI assistant
type ChatMessage struct {
	Message string `json:"message"`
	Role    string `json:"role"`
}

// GenerateOptions holds configuration for generation requests.
type GenerateOptions struct {
	Model         string
	SystemPrompts []string
	Temperature   float64
}

// GenerateOption is a functional option for configuring generation requests.
type GenerateOption func(*GenerateOptions)

// WithModel sets the model to use for generation.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts sets the system prompts prepended to the request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// StreamEvent is one event on a streaming generation channel.
type StreamEvent struct {
	Type    string // "step" | "content"
	Step    string // step name (when Type="step")
	Content string // text content (when Type="content")
}

// Client is the capability surface consumed by extraction, ingestion and the
// query orchestrator. Implementations wrap a concrete model provider.
//
// Available reports whether the provider was configured at construction time.
// When it returns false, every generation method returns ErrUnavailable
// without performing I/O; callers are expected to check the flag once and
// branch, rather than sniffing sentinel outputs.
type Client interface {
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	GenerateChat(
		ctx context.Context,
		messages []ChatMessage,
		opts ...GenerateOption,
	) (string, error)
	GenerateChatStream(
		ctx context.Context,
		messages []ChatMessage,
		opts ...GenerateOption,
	) (<-chan StreamEvent, error)

	GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error)

	Available() bool
}

package graph

import (
	"context"
	"errors"
	"testing"

	"pomelo/pkg/ai"
)

type fakeAIClient struct {
	available       bool
	formatResult    extractResponse
	formatErr       error
	formatCalls     int
	completion      string
	completionErr   error
	completionCalls int
}

func (f *fakeAIClient) GenerateCompletion(ctx context.Context, prompt string, opts ...ai.GenerateOption) (string, error) {
	f.completionCalls++
	return f.completion, f.completionErr
}

func (f *fakeAIClient) GenerateCompletionWithFormat(ctx context.Context, name string, description string, prompt string, out any, opts ...ai.GenerateOption) error {
	f.formatCalls++
	if f.formatErr != nil {
		return f.formatErr
	}
	res, ok := out.(*extractResponse)
	if !ok {
		return errors.New("unexpected output type")
	}
	*res = f.formatResult
	return nil
}

func (f *fakeAIClient) GenerateChat(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (string, error) {
	return "", ai.ErrUnavailable
}

func (f *fakeAIClient) GenerateChatStream(ctx context.Context, messages []ai.ChatMessage, opts ...ai.GenerateOption) (<-chan ai.StreamEvent, error) {
	return nil, ai.ErrUnavailable
}

func (f *fakeAIClient) GenerateEmbeddings(ctx context.Context, inputs []string) ([][]float32, error) {
	return nil, ai.ErrUnavailable
}

func (f *fakeAIClient) Available() bool {
	return f.available
}

func TestExtractUsesStructuredOutput(t *testing.T) {
	client := &fakeAIClient{
		available: true,
		formatResult: extractResponse{
			Nodes: []Node{{ID: "ada", Type: "PERSON", Properties: map[string]any{"name": "Ada"}}},
			Relationships: []rawRelationship{
				{SourceID: "ada", TargetID: "acme", Type: "works at"},
				{SourceID: "ada", TargetID: "acme", Type: "%%%"},
			},
		},
	}

	got := NewExtractor(client, "").Extract(context.Background(), "Ada works at Acme.")

	if client.formatCalls != 1 {
		t.Errorf("format calls = %d, want 1", client.formatCalls)
	}
	if client.completionCalls != 0 {
		t.Errorf("completion calls = %d, want 0", client.completionCalls)
	}
	if len(got.Nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(got.Nodes))
	}
	if len(got.Relationships) != 1 {
		t.Fatalf("relationships = %d, want 1", len(got.Relationships))
	}
	if got.Relationships[0].Type != "WORKS_AT" {
		t.Errorf("relationship type = %q, want WORKS_AT", got.Relationships[0].Type)
	}
}

func TestExtractFallsBackToPlainCompletion(t *testing.T) {
	client := &fakeAIClient{
		available:  true,
		formatErr:  errors.New("response_format not supported"),
		completion: `{"nodes":[{"id":"ada","type":"PERSON","properties":{}}],"relationships":[]}`,
	}

	got := NewExtractor(client, "").Extract(context.Background(), "Ada.")

	if client.formatCalls != 1 {
		t.Errorf("format calls = %d, want 1", client.formatCalls)
	}
	if client.completionCalls != 1 {
		t.Errorf("completion calls = %d, want 1", client.completionCalls)
	}
	if len(got.Nodes) != 1 {
		t.Errorf("nodes = %d, want 1", len(got.Nodes))
	}
}

func TestExtractUnavailableClient(t *testing.T) {
	client := &fakeAIClient{available: false}

	got := NewExtractor(client, "").Extract(context.Background(), "Ada.")

	if client.formatCalls != 0 || client.completionCalls != 0 {
		t.Errorf("calls = (%d, %d), want none", client.formatCalls, client.completionCalls)
	}
	if got.Nodes == nil || got.Relationships == nil {
		t.Fatal("Extract() returned nil slices")
	}
	if len(got.Nodes) != 0 || len(got.Relationships) != 0 {
		t.Errorf("elements = %+v, want empty", got)
	}
}

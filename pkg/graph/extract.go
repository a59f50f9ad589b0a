package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"pomelo/pkg/ai"
	"pomelo/pkg/logger"
)

// Extractor turns chunks of document text into Elements via a
// text-completion capability. Extraction is best-effort and lossy: malformed
// model output is logged and yields empty Elements, never an error.
type Extractor struct {
	client ai.Client
	model  string
}

// NewExtractor creates an Extractor. model overrides the client's default
// chat model when non-empty.
func NewExtractor(client ai.Client, model string) *Extractor {
	return &Extractor{client: client, model: model}
}

type rawElements struct {
	Nodes         json.RawMessage `json:"nodes"`
	Relationships json.RawMessage `json:"relationships"`
}

type rawRelationship struct {
	SourceID   string         `json:"source" jsonschema_description:"Id of the source entity, as listed in nodes"`
	TargetID   string         `json:"target" jsonschema_description:"Id of the target entity, as listed in nodes"`
	Type       string         `json:"type" jsonschema_description:"Relationship kind as a short verb phrase, for example 'works at'"`
	Properties map[string]any `json:"properties" jsonschema_description:"Further attributes of the relationship stated in the text"`
}

type extractResponse struct {
	Nodes         []Node            `json:"nodes" jsonschema_description:"Entities identified in the text"`
	Relationships []rawRelationship `json:"relationships" jsonschema_description:"Relationships between the identified entities"`
}

// Extract asks the model for a node/relationship graph describing text. It
// requests schema-constrained output first and falls back to a plain
// completion with lossy parsing when the provider rejects the format.
// Relationship labels are sanitized here, at the extraction boundary;
// relationships whose label sanitizes to nothing are dropped with a warning.
func (e *Extractor) Extract(ctx context.Context, text string) Elements {
	empty := Elements{Nodes: []Node{}, Relationships: []Relationship{}}
	if e.client == nil || !e.client.Available() {
		return empty
	}

	opts := []ai.GenerateOption{ai.WithTemperature(0.1)}
	if e.model != "" {
		opts = append(opts, ai.WithModel(e.model))
	}

	prompt := fmt.Sprintf(ai.ExtractPrompt, text)

	var res extractResponse
	err := e.client.GenerateCompletionWithFormat(
		ctx,
		"extract_graph_elements",
		"Extract entities and relationships from a fragment of a document.",
		prompt,
		&res,
		opts...,
	)
	if err == nil {
		nodes := res.Nodes
		if nodes == nil {
			nodes = []Node{}
		}
		return Elements{Nodes: nodes, Relationships: sanitizeRelationships(res.Relationships)}
	}
	logger.Warn("Schema-constrained extraction failed, retrying as plain completion", "err", err)

	response, err := e.client.GenerateCompletion(ctx, prompt, opts...)
	if err != nil {
		logger.Warn("Graph extraction call failed", "err", err)
		return empty
	}

	return ParseElements(response)
}

// ParseElements parses model output into Elements. It strips an optional
// markdown fence, recovers the outermost JSON object when the output is not
// brace-bounded, and validates that nodes and relationships are arrays. Any
// failure produces empty Elements.
func ParseElements(response string) Elements {
	empty := Elements{Nodes: []Node{}, Relationships: []Relationship{}}

	payload, ok := ai.ExtractJSONObject(ai.StripFences(response))
	if !ok {
		logger.Warn("Graph extraction output contains no JSON object")
		return empty
	}

	var raw rawElements
	if err := ai.UnmarshalFlexible(payload, &raw); err != nil {
		logger.Warn("Graph extraction output is not parseable JSON", "err", err)
		return empty
	}
	if !isJSONArray(raw.Nodes) || !isJSONArray(raw.Relationships) {
		logger.Warn("Graph extraction output missing nodes/relationships arrays")
		return empty
	}

	var nodes []Node
	if err := json.Unmarshal(raw.Nodes, &nodes); err != nil {
		logger.Warn("Graph extraction nodes are malformed", "err", err)
		return empty
	}

	var rawRels []rawRelationship
	if err := json.Unmarshal(raw.Relationships, &rawRels); err != nil {
		logger.Warn("Graph extraction relationships are malformed", "err", err)
		return empty
	}

	if nodes == nil {
		nodes = []Node{}
	}
	return Elements{Nodes: nodes, Relationships: sanitizeRelationships(rawRels)}
}

// sanitizeRelationships converts raw relationships into validated ones,
// dropping any whose label sanitizes to nothing.
func sanitizeRelationships(rawRels []rawRelationship) []Relationship {
	relationships := make([]Relationship, 0, len(rawRels))
	for _, rel := range rawRels {
		kind, ok := SanitizeRelType(rel.Type)
		if !ok {
			logger.Warn("Dropping relationship with unsanitizable type", "type", rel.Type)
			continue
		}
		relationships = append(relationships, Relationship{
			SourceID:   rel.SourceID,
			TargetID:   rel.TargetID,
			Type:       kind,
			Properties: rel.Properties,
		})
	}
	return relationships
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

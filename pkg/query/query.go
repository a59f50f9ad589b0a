// Package query implements the question-answering orchestrator. It combines
// graph-derived and vector-derived context and streams a synthesized answer
// as a sequence of typed events that any transport can encode.
package query

// Event types emitted on the orchestrator's stream.
const (
	EventToken     = "token"
	EventStep      = "step"
	EventDegraded  = "degraded_context"
	EventCompleted = "completed"
	EventFailed    = "failed"
)

// Step names reported with EventStep before each phase begins.
const (
	StepSchema       = "schema"
	StepGraphQuery   = "graph_query"
	StepVectorSearch = "vector_search"
	StepSynthesis    = "synthesis"
)

// Event is one item on the answer stream. Exactly one terminal event
// (EventCompleted or EventFailed) closes every stream.
type Event struct {
	Type    string `json:"type"`
	Step    string `json:"step,omitempty"`
	Content string `json:"content,omitempty"`
}

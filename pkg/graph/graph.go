// Package graph defines the transient node/relationship model produced by
// extraction and consumed by the graph store. Elements live for one document
// ingestion; the persisted graph is the durable record.
package graph

import (
	"strings"
	"unicode"
)

// Node is one extracted entity. ID is a stable, caller-chosen key unique
// within a batch; Type is a free-text category tag.
type Node struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
}

// Relationship connects two nodes of the same batch by their IDs. Type is a
// validated RelKind; raw extraction labels must pass through SanitizeRelType
// before a Relationship is constructed.
type Relationship struct {
	SourceID   string         `json:"source"`
	TargetID   string         `json:"target"`
	Type       RelKind        `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Elements is the unit of transfer between extraction and the graph store.
type Elements struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// Empty reports whether the batch carries nothing to merge.
func (e Elements) Empty() bool {
	return len(e.Nodes) == 0 && len(e.Relationships) == 0
}

// RelKind is a relationship type that passed sanitization and is safe to use
// as a structural identifier in the graph store.
type RelKind string

// SanitizeRelType turns a free-text relationship label into a RelKind:
// every non-alphanumeric rune becomes an underscore, runs of underscores
// collapse, the result is upper-cased and trimmed. Labels that leave no
// alphanumeric content sanitize to nothing; ok is false and the
// relationship must be skipped, not merged.
func SanitizeRelType(label string) (RelKind, bool) {
	var b strings.Builder
	b.Grow(len(label))
	lastUnderscore := true
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	kind := strings.Trim(b.String(), "_")
	if kind == "" {
		return "", false
	}
	return RelKind(kind), true
}

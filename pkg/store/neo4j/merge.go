package neo4j

import (
	"context"
	"fmt"

	"pomelo/pkg/graph"
	"pomelo/pkg/logger"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const mergeNodeQuery = `
MERGE (n:` + NodeLabel + ` {id: $id})
SET n += $props
SET n.nodeType = $nodeType
`

// mergeRelationshipQuery requires both endpoints to already exist: the MATCH
// clauses make the merge a no-op for dangling relationships instead of
// creating placeholder nodes. The relationship type is interpolated, not
// parameterized, which is why only sanitized RelKind values are accepted.
const mergeRelationshipQueryFmt = `
MATCH (a:` + NodeLabel + ` {id: $sourceId})
MATCH (b:` + NodeLabel + ` {id: $targetId})
MERGE (a)-[r:%s]->(b)
SET r += $props
`

// validRelKind reports whether a relationship type survives sanitization
// unchanged. Anything else gets skipped before it reaches the interpolated
// Cypher statement, regardless of how the RelKind was constructed.
func validRelKind(kind graph.RelKind) bool {
	sanitized, ok := graph.SanitizeRelType(string(kind))
	return ok && sanitized == kind
}

// MergeElements persists a batch of extracted elements in one write
// transaction. Node merges are keyed by id with last-write-wins property
// semantics; relationship merges are keyed by (source, target, type).
// An empty batch is a no-op. The whole merge is idempotent.
func (s *Store) MergeElements(ctx context.Context, elements graph.Elements) error {
	if elements.Empty() {
		return nil
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, node := range elements.Nodes {
			if node.ID == "" {
				logger.Warn("Skipping node without id during merge")
				continue
			}
			nodeType := node.Type
			if kind, ok := graph.SanitizeRelType(node.Type); ok {
				nodeType = string(kind)
			}
			props := node.Properties
			if props == nil {
				props = map[string]any{}
			}
			if _, err := tx.Run(ctx, mergeNodeQuery, map[string]any{
				"id":       node.ID,
				"props":    props,
				"nodeType": nodeType,
			}); err != nil {
				return nil, fmt.Errorf("failed to merge node %q: %w", node.ID, err)
			}
		}

		for _, rel := range elements.Relationships {
			if !validRelKind(rel.Type) {
				logger.Warn("Skipping relationship with unsanitized type during merge",
					"type", rel.Type, "source", rel.SourceID, "target", rel.TargetID)
				continue
			}
			props := rel.Properties
			if props == nil {
				props = map[string]any{}
			}
			query := fmt.Sprintf(mergeRelationshipQueryFmt, rel.Type)
			if _, err := tx.Run(ctx, query, map[string]any{
				"sourceId": rel.SourceID,
				"targetId": rel.TargetID,
				"props":    props,
			}); err != nil {
				return nil, fmt.Errorf("failed to merge relationship %s-[%s]->%s: %w",
					rel.SourceID, rel.Type, rel.TargetID, err)
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("graph merge failed: %w", err)
	}

	logger.Debug("Merged graph elements",
		"nodes", len(elements.Nodes), "relationships", len(elements.Relationships))
	return nil
}

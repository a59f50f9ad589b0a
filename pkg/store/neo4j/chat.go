package neo4j

import (
	"context"
	"fmt"
	"time"

	"pomelo/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const saveMessageQuery = `
MERGE (s:ChatSession {sessionId: $sessionId})
ON CREATE SET s.createdAt = timestamp()
WITH s
OPTIONAL MATCH (s)-[:HAS_MESSAGE]->(prev:ChatMessage)
WITH s, coalesce(max(prev.seq), 0) AS lastSeq
CREATE (m:ChatMessage {
	messageId: $messageId,
	type: $type,
	text: $text,
	seq: lastSeq + 1,
	ts: timestamp()
})
CREATE (s)-[:HAS_MESSAGE]->(m)
RETURN m.messageId AS id, m.seq AS seq, m.ts AS ts
`

const getHistoryQuery = `
MATCH (s:ChatSession {sessionId: $sessionId})-[:HAS_MESSAGE]->(m:ChatMessage)
RETURN m.messageId AS id, m.type AS type, m.text AS text, m.seq AS seq, m.ts AS ts
ORDER BY m.seq ASC, m.ts ASC
`

const deleteMessagesQuery = `
MATCH (:ChatSession {sessionId: $sessionId})-[:HAS_MESSAGE]->(m:ChatMessage)
DETACH DELETE m
`

const deleteSessionQuery = `
MATCH (s:ChatSession {sessionId: $sessionId})
DETACH DELETE s
`

// SaveMessage merges the session node, creates the message with a
// server-assigned timestamp and sequence number, and links it to the
// session, all in one transaction. Ordering is carried by the sequence
// number alone; messages are not chained to each other.
func (s *Store) SaveMessage(ctx context.Context, sessionID string, msgType string, text string) (store.ChatMessage, error) {
	if msgType != store.MessageTypeUser && msgType != store.MessageTypeAI {
		return store.ChatMessage{}, fmt.Errorf("invalid message type %q", msgType)
	}

	messageID, err := gonanoid.New()
	if err != nil {
		return store.ChatMessage{}, fmt.Errorf("failed to generate message id: %w", err)
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, saveMessageQuery, map[string]any{
			"sessionId": sessionID,
			"messageId": messageID,
			"type":      msgType,
			"text":      text,
		})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		return record.AsMap(), nil
	})
	if err != nil {
		return store.ChatMessage{}, fmt.Errorf("failed to save chat message: %w", err)
	}

	record := result.(map[string]any)
	msg := store.ChatMessage{
		ID:   messageID,
		Type: msgType,
		Text: text,
	}
	if seq, ok := record["seq"].(int64); ok {
		msg.Seq = seq
	}
	if ts, ok := record["ts"].(int64); ok {
		msg.Timestamp = time.UnixMilli(ts)
	}
	return msg, nil
}

// GetHistory returns all messages of a session in ascending sequence order.
func (s *Store) GetHistory(ctx context.Context, sessionID string) ([]store.ChatMessage, error) {
	records, err := s.RunQuery(ctx, getHistoryQuery, map[string]any{"sessionId": sessionID})
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	messages := make([]store.ChatMessage, 0, len(records))
	for _, record := range records {
		msg := store.ChatMessage{}
		if v, ok := record["id"].(string); ok {
			msg.ID = v
		}
		if v, ok := record["type"].(string); ok {
			msg.Type = v
		}
		if v, ok := record["text"].(string); ok {
			msg.Text = v
		}
		if v, ok := record["seq"].(int64); ok {
			msg.Seq = v
		}
		if v, ok := record["ts"].(int64); ok {
			msg.Timestamp = time.UnixMilli(v)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// DeleteHistory removes every message of a session and then the session
// node, two statements inside one transaction. Deleting a nonexistent
// session succeeds with zero effect; a failure of the first statement
// aborts before the second runs.
func (s *Store) DeleteHistory(ctx context.Context, sessionID string) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, deleteMessagesQuery, map[string]any{"sessionId": sessionID}); err != nil {
			return nil, fmt.Errorf("failed to delete session messages: %w", err)
		}
		if _, err := tx.Run(ctx, deleteSessionQuery, map[string]any{"sessionId": sessionID}); err != nil {
			return nil, fmt.Errorf("failed to delete session node: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete chat history: %w", err)
	}
	return nil
}

// Package neo4j implements store.GraphStore on the official Neo4j driver.
// One DriverWithContext is shared process-wide; sessions are scoped to a
// single logical operation and always closed.
package neo4j

import (
	"context"
	"fmt"

	"pomelo/pkg/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"golang.org/x/sync/errgroup"
)

// NodeLabel is the generic label every merged resource node carries. Typing
// lives in the nodeType property so extraction categories never become
// structural identifiers.
const NodeLabel = "Resource"

// Store implements store.GraphStore.
type Store struct {
	driver neo4j.DriverWithContext
	dbName string
}

// NewStoreParams configures a Store.
type NewStoreParams struct {
	URI      string
	Username string
	Password string
	DBName   string
}

// NewStore creates a driver and verifies connectivity.
func NewStore(ctx context.Context, params NewStoreParams) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(params.URI, neo4j.BasicAuth(params.Username, params.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach neo4j: %w", err)
	}
	return &Store{driver: driver, dbName: params.DBName}, nil
}

// NewStoreWithDriver wraps an existing driver, mainly for tests.
func NewStoreWithDriver(driver neo4j.DriverWithContext, dbName string) *Store {
	return &Store{driver: driver, dbName: dbName}
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Store) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.dbName})
}

// RunQuery executes an arbitrary Cypher query and returns the raw result
// records as maps. Backend failures are wrapped into a single error kind
// with the original message preserved.
func (s *Store) RunQuery(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	result, err := neo4j.ExecuteQuery(
		ctx,
		s.driver,
		query,
		params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(s.dbName),
	)
	if err != nil {
		return nil, fmt.Errorf("graph query failed: %w", err)
	}

	records := make([]map[string]any, 0, len(result.Records))
	for _, record := range result.Records {
		records = append(records, record.AsMap())
	}
	return records, nil
}

// SchemaSummary runs the three introspection procedures concurrently. A
// failing procedure contributes an empty list instead of failing the call.
func (s *Store) SchemaSummary(ctx context.Context) (store.SchemaSummary, error) {
	var summary store.SchemaSummary

	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		summary.Labels = s.introspect(ectx, "CALL db.labels() YIELD label RETURN label", "label")
		return nil
	})
	eg.Go(func() error {
		summary.RelationshipTypes = s.introspect(ectx, "CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType", "relationshipType")
		return nil
	})
	eg.Go(func() error {
		summary.PropertyKeys = s.introspect(ectx, "CALL db.propertyKeys() YIELD propertyKey RETURN propertyKey", "propertyKey")
		return nil
	})
	_ = eg.Wait()

	return summary, nil
}

func (s *Store) introspect(ctx context.Context, query string, key string) []string {
	records, err := s.RunQuery(ctx, query, nil)
	if err != nil {
		return []string{}
	}
	values := make([]string, 0, len(records))
	for _, record := range records {
		if v, ok := record[key].(string); ok {
			values = append(values, v)
		}
	}
	return values
}

// Describe renders a SchemaSummary into the textual form prompts expect.
func Describe(summary store.SchemaSummary) string {
	return fmt.Sprintf(
		"Node labels: %v\nRelationship types: %v\nProperty keys: %v",
		summary.Labels, summary.RelationshipTypes, summary.PropertyKeys,
	)
}

package query

import (
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func TestFormatRecord(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   string
	}{
		{
			name:   "scalar values sorted by key",
			record: map[string]any{"b": 2, "a": "x"},
			want:   "a=x; b=2",
		},
		{
			name: "node flattened",
			record: map[string]any{
				"n": dbtype.Node{
					Labels: []string{"Resource"},
					Props:  map[string]any{"id": "alice", "nodeType": "Person"},
				},
			},
			want: "n=(Resource {id: alice, nodeType: Person})",
		},
		{
			name: "relationship flattened",
			record: map[string]any{
				"r": dbtype.Relationship{Type: "WORKS_AT", Props: map[string]any{"since": 2020}},
			},
			want: "r=[WORKS_AT {since: 2020}]",
		},
		{
			name:   "null value",
			record: map[string]any{"x": nil},
			want:   "x=null",
		},
		{
			name:   "list of values",
			record: map[string]any{"xs": []any{"a", 1}},
			want:   "xs=[a, 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRecord(tt.record); got != tt.want {
				t.Errorf("FormatRecord() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRecordsTruncates(t *testing.T) {
	records := make([]map[string]any, 25)
	for i := range records {
		records[i] = map[string]any{"i": fmt.Sprintf("%d", i)}
	}

	got := FormatRecords(records, maxGraphRecords)
	if len(got) != maxGraphRecords {
		t.Fatalf("len = %d, want %d", len(got), maxGraphRecords)
	}
	if got[0] != "i=0" || got[len(got)-1] != "i=9" {
		t.Errorf("unexpected boundary records: first=%q last=%q", got[0], got[len(got)-1])
	}
}

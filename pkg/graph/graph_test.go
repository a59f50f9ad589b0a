package graph

import (
	"reflect"
	"testing"
)

func TestSanitizeRelType(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  RelKind
		ok    bool
	}{
		{name: "verb phrase", label: "works at", want: "WORKS_AT", ok: true},
		{name: "already upper", label: "LOCATED_IN", want: "LOCATED_IN", ok: true},
		{name: "mixed punctuation", label: "is-part.of!", want: "IS_PART_OF", ok: true},
		{name: "digits kept", label: "ranked #1 in", want: "RANKED_1_IN", ok: true},
		{name: "leading and trailing junk", label: "  (owns)  ", want: "OWNS", ok: true},
		{name: "only punctuation", label: "%%%", want: "", ok: false},
		{name: "empty", label: "", want: "", ok: false},
		{name: "whitespace only", label: "   ", want: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SanitizeRelType(tt.label)
			if got != tt.want || ok != tt.ok {
				t.Errorf("SanitizeRelType(%q) = (%q, %v), want (%q, %v)", tt.label, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestParseElements(t *testing.T) {
	valid := `{"nodes":[{"id":"ada","type":"PERSON","properties":{"name":"Ada"}}],"relationships":[{"source":"ada","target":"babbage","type":"works with","properties":{}}]}`

	tests := []struct {
		name      string
		response  string
		wantNodes int
		wantRels  int
	}{
		{name: "plain object", response: valid, wantNodes: 1, wantRels: 1},
		{name: "fenced object", response: "```json\n" + valid + "\n```", wantNodes: 1, wantRels: 1},
		{name: "prose around object", response: "Here is the graph:\n" + valid + "\nDone.", wantNodes: 1, wantRels: 1},
		{name: "not json at all", response: "I could not find any entities."},
		{name: "empty string", response: ""},
		{name: "nodes not an array", response: `{"nodes":{"id":"x"},"relationships":[]}`},
		{name: "missing relationships key", response: `{"nodes":[]}`},
		{name: "unsanitizable relationship dropped", response: `{"nodes":[{"id":"a","type":"X","properties":{}}],"relationships":[{"source":"a","target":"a","type":"%%%"}]}`, wantNodes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseElements(tt.response)
			if got.Nodes == nil || got.Relationships == nil {
				t.Fatal("ParseElements() returned nil slices")
			}
			if len(got.Nodes) != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", len(got.Nodes), tt.wantNodes)
			}
			if len(got.Relationships) != tt.wantRels {
				t.Errorf("relationships = %d, want %d", len(got.Relationships), tt.wantRels)
			}
		})
	}
}

func TestParseElementsSanitizesTypes(t *testing.T) {
	got := ParseElements(`{"nodes":[],"relationships":[{"source":"a","target":"b","type":"reports to"}]}`)
	want := []Relationship{{SourceID: "a", TargetID: "b", Type: "REPORTS_TO"}}
	if !reflect.DeepEqual(got.Relationships, want) {
		t.Errorf("relationships = %+v, want %+v", got.Relationships, want)
	}
}

func TestElementsEmpty(t *testing.T) {
	if !(Elements{}).Empty() {
		t.Error("zero Elements should be empty")
	}
	if (Elements{Nodes: []Node{{ID: "x"}}}).Empty() {
		t.Error("Elements with a node should not be empty")
	}
}

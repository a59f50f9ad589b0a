package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// FormatRecords renders query result records into human-readable strings for
// prompt context, truncated to at most max records.
func FormatRecords(records []map[string]any, max int) []string {
	if max > 0 && len(records) > max {
		records = records[:max]
	}
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, FormatRecord(record))
	}
	return out
}

// FormatRecord renders a single record as "key=value; key=value" with keys
// sorted for deterministic output.
func FormatRecord(record map[string]any) string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, formatValue(record[k])))
	}
	return strings.Join(parts, "; ")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case dbtype.Node:
		return fmt.Sprintf("(%s %s)", strings.Join(val.Labels, ":"), formatProps(val.Props))
	case dbtype.Relationship:
		return fmt.Sprintf("[%s %s]", val.Type, formatProps(val.Props))
	case map[string]any:
		return formatProps(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, formatValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func formatProps(props map[string]any) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, formatValue(props[k])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

package search

import (
	"fmt"
	"strings"
)

// Separator joins normalized result pieces so downstream prompts can tell
// one record from the next.
const Separator = "\n\n---\n\n"

// Normalize flattens a raw provider result into one string. Shapes are tried
// in fixed priority order: record sequence, wrapper map with a "results" key
// (a map without one counts as a single record), bare string, then a last
// resort print of whatever arrived. Records pair their best-available title
// and source header with their best-available text field.
func Normalize(raw any) string {
	switch v := raw.(type) {
	case []any:
		return joinRecords(v)
	case map[string]any:
		if results, ok := v["results"].([]any); ok {
			return joinRecords(results)
		}
		return joinRecords([]any{v})
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(raw)
	}
}

func joinRecords(records []any) string {
	pieces := make([]string, 0, len(records))
	for _, record := range records {
		rec, ok := record.(map[string]any)
		if !ok {
			pieces = append(pieces, fmt.Sprint(record))
			continue
		}

		title := stringField(rec, "title", "headline")
		snippet := stringField(rec, "snippet", "summary", "content")
		source := stringField(rec, "url", "source")

		header := title
		if source != "" {
			header = fmt.Sprintf("%s — %s", title, source)
		}

		piece := strings.TrimSpace(header + "\n" + snippet)
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return strings.Join(pieces, Separator)
}

// stringField returns the first non-empty string among keys.
func stringField(rec map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := rec[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

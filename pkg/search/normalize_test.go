package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_RecordSequence(t *testing.T) {
	raw := []any{
		map[string]any{"title": "Diabetes overview", "url": "https://example.org/a", "snippet": "Blood sugar basics."},
		map[string]any{"title": "Insulin", "content": "A hormone."},
	}

	got := Normalize(raw)

	assert.Contains(t, got, "Diabetes overview — https://example.org/a\nBlood sugar basics.")
	assert.Contains(t, got, "Insulin\nA hormone.")
	assert.Contains(t, got, Separator)
}

func TestNormalize_WrapperWithResultsKey(t *testing.T) {
	raw := map[string]any{
		"results": []any{
			map[string]any{"title": "Asthma", "snippet": "Airway inflammation."},
		},
		"query": "ignored",
	}

	got := Normalize(raw)

	assert.Equal(t, "Asthma\nAirway inflammation.", got)
}

func TestNormalize_SingleRecordMap(t *testing.T) {
	raw := map[string]any{"title": "Gout", "summary": "Uric acid buildup."}

	assert.Equal(t, "Gout\nUric acid buildup.", Normalize(raw))
}

func TestNormalize_BareString(t *testing.T) {
	assert.Equal(t, "plain text result", Normalize("plain text result"))
}

func TestNormalize_FieldPriority(t *testing.T) {
	// snippet wins over summary and content; headline fills in for title.
	raw := []any{map[string]any{
		"headline": "Fallback title",
		"snippet":  "first choice",
		"summary":  "second choice",
		"content":  "third choice",
	}}

	got := Normalize(raw)

	assert.Equal(t, "Fallback title\nfirst choice", got)
}

func TestNormalize_SkipsEmptyRecords(t *testing.T) {
	raw := []any{
		map[string]any{},
		map[string]any{"title": "Kept", "snippet": "text"},
	}

	got := Normalize(raw)

	assert.Equal(t, "Kept\ntext", got)
	assert.False(t, strings.Contains(got, Separator))
}

func TestNormalize_NonMapEntries(t *testing.T) {
	got := Normalize([]any{"just a string", 42})

	assert.Contains(t, got, "just a string")
	assert.Contains(t, got, "42")
}

func TestNormalize_NilAndUnknown(t *testing.T) {
	assert.Equal(t, "", Normalize(nil))
	assert.Equal(t, "7", Normalize(7))
}

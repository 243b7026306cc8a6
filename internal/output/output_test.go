package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/holon-run/claudegrep/internal/engine"
)

func sampleResults() []engine.SearchResult {
	return []engine.SearchResult{
		{
			File: "a.jsonl", UUID: "u1", Timestamp: "2024-01-02T00:00:00Z",
			SessionID: "s1", Role: "user", MessageType: "user",
			Text: strings.Repeat("x", 250), ProjectPath: "/p",
		},
		{
			File: "a.jsonl", UUID: "u2", Timestamp: "2024-01-01T00:00:00Z",
			SessionID: "s1", Role: "assistant", MessageType: "assistant",
			Text: "short reply", HasThinking: true,
		},
	}
}

func TestRegistryHasAllThreeFormats(t *testing.T) {
	for _, name := range []string{"text", "json", "jsonl"} {
		if _, ok := Get(name); !ok {
			t.Fatalf("Get(%q) missing from registry; have %v", name, Names())
		}
	}
}

func TestTextFormatterTruncatesBodyByDefault(t *testing.T) {
	f, _ := Get("text")
	var buf bytes.Buffer
	if err := f.Format(&buf, sampleResults(), Metadata{}, Options{}); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, strings.Repeat("x", 200)+"...") {
		t.Fatalf("expected truncated body with ellipsis, got: %s", out)
	}
	if strings.Contains(out, strings.Repeat("x", 250)) {
		t.Fatalf("expected body not to contain the full untruncated text")
	}
}

func TestTextFormatterFullTextSkipsTruncation(t *testing.T) {
	f, _ := Get("text")
	var buf bytes.Buffer
	if err := f.Format(&buf, sampleResults(), Metadata{}, Options{FullText: true}); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(buf.String(), strings.Repeat("x", 250)) {
		t.Fatalf("expected untruncated body under --full-text")
	}
}

func TestTextFormatterHeaderContainsRoleTimestampSession(t *testing.T) {
	f, _ := Get("text")
	var buf bytes.Buffer
	if err := f.Format(&buf, sampleResults()[:1], Metadata{}, Options{NoColor: true}); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	want := "[user] 2024-01-02T00:00:00Z s1"
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("output = %q, want it to contain %q", buf.String(), want)
	}
}

func TestJSONFormatterProducesAnArray(t *testing.T) {
	f, _ := Get("json")
	var buf bytes.Buffer
	if err := f.Format(&buf, sampleResults(), Metadata{TotalCount: 2, ReturnedCount: 2}, Options{}); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "[") || !strings.HasSuffix(out, "]") {
		t.Fatalf("expected a JSON array, got: %s", out)
	}
	if !strings.Contains(out, `"session_id": "s1"`) {
		t.Fatalf("expected snake_case session_id field, got: %s", out)
	}
}

func TestJSONLFormatterEmitsOneLinePerResultPlusMetadata(t *testing.T) {
	f, _ := Get("jsonl")
	var buf bytes.Buffer
	meta := Metadata{DurationMS: 42, TotalCount: 2, ReturnedCount: 2}
	if err := f.Format(&buf, sampleResults(), meta, Options{}); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (2 results + 1 metadata)", len(lines))
	}
	last := lines[len(lines)-1]
	if !strings.Contains(last, `"_metadata"`) || !strings.Contains(last, `"duration_ms":42`) {
		t.Fatalf("last line = %q, want a _metadata object with duration_ms", last)
	}
}

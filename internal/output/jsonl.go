package output

import (
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/holon-run/claudegrep/internal/engine"
)

// jsonlMetadataLine is the trailing line JSONL mode appends (§6.5).
type jsonlMetadataLine struct {
	Metadata Metadata `json:"_metadata"`
}

// jsonlFormatter renders one JSON object per line, one per result,
// followed by a final `{"_metadata": {...}}` line — the shape a
// streaming consumer (jq, another process's stdin) expects.
type jsonlFormatter struct{}

func (jsonlFormatter) Name() string { return "jsonl" }

func (jsonlFormatter) Format(w Writer, results []engine.SearchResult, meta Metadata, opts Options) error {
	for _, r := range results {
		data, err := gojson.Marshal(toWireResult(r))
		if err != nil {
			return fmt.Errorf("output: marshal jsonl result: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("output: write jsonl result: %w", err)
		}
	}
	data, err := gojson.Marshal(jsonlMetadataLine{Metadata: meta})
	if err != nil {
		return fmt.Errorf("output: marshal jsonl metadata: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("output: write jsonl metadata: %w", err)
	}
	return nil
}

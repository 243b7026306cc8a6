package output

import (
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/holon-run/claudegrep/internal/engine"
)

// wireResult is SearchResult's serialised shape (§3), decoupling the
// engine's Go field names from the wire's snake_case contract.
type wireResult struct {
	File        string `json:"file"`
	UUID        string `json:"uuid"`
	Timestamp   string `json:"timestamp"`
	SessionID   string `json:"session_id"`
	Role        string `json:"role"`
	MessageType string `json:"message_type"`
	Text        string `json:"text"`
	HasTools    bool   `json:"has_tools"`
	HasThinking bool   `json:"has_thinking"`
	ProjectPath string `json:"project_path"`
	RawJSON     string `json:"raw_json,omitempty"`
}

func toWireResult(r engine.SearchResult) wireResult {
	return wireResult{
		File:        r.File,
		UUID:        r.UUID,
		Timestamp:   r.Timestamp,
		SessionID:   r.SessionID,
		Role:        r.Role,
		MessageType: r.MessageType,
		Text:        r.Text,
		HasTools:    r.HasTools,
		HasThinking: r.HasThinking,
		ProjectPath: r.ProjectPath,
		RawJSON:     r.RawJSON,
	}
}

// jsonFormatter renders the full result set as a single JSON array
// (§6.5), with no trailing metadata object — json mode is meant for a
// single-shot tool consuming one value, unlike jsonl's streamed lines.
type jsonFormatter struct{}

func (jsonFormatter) Name() string { return "json" }

func (jsonFormatter) Format(w Writer, results []engine.SearchResult, meta Metadata, opts Options) error {
	wire := make([]wireResult, len(results))
	for i, r := range results {
		wire[i] = toWireResult(r)
	}
	data, err := gojson.MarshalIndent(wire, "", "  ")
	if err != nil {
		return fmt.Errorf("output: marshal json results: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("output: write json results: %w", err)
	}
	return nil
}

package schema

import (
	"bytes"
	"time"

	json "github.com/goccy/go-json"
)

// wireEnvelope captures only the fields needed to route to a variant
// decoder and the fields common to every variant. goccy/go-json is used
// in place of encoding/json for its lower per-line allocation overhead
// on the hot NDJSON-scan path (see DESIGN.md).
type wireEnvelope struct {
	Type        string          `json:"type"`
	UUID        string          `json:"uuid"`
	Timestamp   json.RawMessage `json:"timestamp"`
	SessionID   string          `json:"sessionId"`
	ParentUUID  *string         `json:"parentUuid"`
	IsSidechain bool            `json:"isSidechain"`
	UserType    string          `json:"userType"`
	Cwd         string          `json:"cwd"`
	Version     string          `json:"version"`
	RequestID   *string         `json:"requestId"`
	Message     json.RawMessage `json:"message"`
	Content     json.RawMessage `json:"content"`
	Summary     string          `json:"summary"`
}

type wireUserMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type wireAssistantMessage struct {
	Role         string          `json:"role"`
	Model        string          `json:"model"`
	Content      json.RawMessage `json:"content"`
	StopReason   *string         `json:"stop_reason"`
	StopSequence *string         `json:"stop_sequence"`
	Usage        wireUsage       `json:"usage"`
}

type wireUsage struct {
	InputTokens              int  `json:"input_tokens"`
	OutputTokens             int  `json:"output_tokens"`
	CacheCreationInputTokens *int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     *int `json:"cache_read_input_tokens"`
}

type wireBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text"`
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Input     json.RawMessage `json:"input"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
}

// Decode decodes one NDJSON line into a Record. It returns false when
// the line is empty (after trimming) or decodes into none of the known
// variants; callers must skip the line in that case (§3 invariant: bad
// lines never abort the scan).
func Decode(line []byte) (Record, bool) {
	trimmed := trimSpace(line)
	if len(trimmed) == 0 {
		return Record{}, false
	}

	var env wireEnvelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Record{}, false
	}

	if env.UUID == "" || env.SessionID == "" {
		return Record{}, false
	}
	ts, ok := normaliseTimestamp(env.Timestamp)
	if !ok {
		return Record{}, false
	}

	rec := Record{
		UUID:        env.UUID,
		Timestamp:   ts,
		SessionID:   env.SessionID,
		IsSidechain: env.IsSidechain,
		UserType:    env.UserType,
		Cwd:         env.Cwd,
		Version:     env.Version,
	}
	if env.ParentUUID != nil {
		rec.ParentUUID = *env.ParentUUID
		rec.HasParent = true
	}
	if env.RequestID != nil {
		rec.RequestID = *env.RequestID
		rec.HasRequestID = true
	}

	switch env.Type {
	case "user":
		if !decodeUser(&rec, env) {
			return Record{}, false
		}
	case "assistant":
		if !decodeAssistant(&rec, env) {
			return Record{}, false
		}
	case "system":
		rec.Kind = KindSystem
		rec.SystemContent = decodeContentString(env.Content)
	case "summary":
		rec.Kind = KindSummary
		rec.SummaryText = env.Summary
	default:
		return Record{}, false
	}

	rec.raw = append([]byte(nil), line...)
	return rec, true
}

func decodeUser(rec *Record, env wireEnvelope) bool {
	rec.Kind = KindUser
	content := env.Content
	if len(env.Message) > 0 {
		var msg wireUserMessage
		if err := json.Unmarshal(env.Message, &msg); err == nil {
			content = msg.Content
		}
	}
	decodeContentInto(content, &rec.User.Content, &rec.User.Blocks, &rec.User.IsBlocks)
	return true
}

func decodeAssistant(rec *Record, env wireEnvelope) bool {
	if len(env.Message) == 0 {
		return false
	}
	var msg wireAssistantMessage
	if err := json.Unmarshal(env.Message, &msg); err != nil {
		return false
	}
	rec.Kind = KindAssistant
	rec.Assistant.Model = msg.Model
	if msg.StopReason != nil {
		rec.Assistant.StopReason = *msg.StopReason
	}
	if msg.StopSequence != nil {
		rec.Assistant.StopSequence = *msg.StopSequence
	}
	rec.Assistant.Usage = Usage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	if msg.Usage.CacheCreationInputTokens != nil {
		rec.Assistant.Usage.HasCacheCreation = true
		rec.Assistant.Usage.CacheCreationInputTokens = *msg.Usage.CacheCreationInputTokens
	}
	if msg.Usage.CacheReadInputTokens != nil {
		rec.Assistant.Usage.HasCacheRead = true
		rec.Assistant.Usage.CacheReadInputTokens = *msg.Usage.CacheReadInputTokens
	}

	blocks, ok := decodeBlocks(msg.Content)
	if !ok {
		// A bare string content on an assistant message is tolerated
		// too, projected as a single text block.
		if s := decodeContentString(msg.Content); s != "" {
			blocks = []ContentBlock{{Kind: BlockText, Text: s}}
		}
	}
	rec.Assistant.Content = blocks
	return true
}

// decodeContentInto fills either a bare string or a block list,
// matching §3's "content is either a bare string or an ordered list".
func decodeContentInto(raw json.RawMessage, str *string, blocks *[]ContentBlock, isBlocks *bool) {
	if len(raw) == 0 {
		return
	}
	if b, ok := decodeBlocks(raw); ok {
		*blocks = b
		*isBlocks = true
		return
	}
	*str = decodeContentString(raw)
}

func decodeContentString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeBlocks(raw json.RawMessage) ([]ContentBlock, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var wire []wireBlock
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, false
	}
	blocks := make([]ContentBlock, 0, len(wire))
	for _, w := range wire {
		switch w.Type {
		case "text":
			blocks = append(blocks, ContentBlock{Kind: BlockText, Text: w.Text})
		case "thinking":
			blocks = append(blocks, ContentBlock{Kind: BlockThinking, Text: w.Text})
		case "tool_use":
			blocks = append(blocks, ContentBlock{
				Kind:          BlockToolUse,
				ToolUseID:     w.ID,
				ToolName:      w.Name,
				ToolInputJSON: string(w.Input),
			})
		case "tool_result":
			cb := ContentBlock{Kind: BlockToolResult, ToolResultID: w.ToolUseID}
			if nested, ok := decodeBlocks(w.Content); ok {
				cb.ToolResultBlocks = nested
				cb.ToolResultIsBlocks = true
			} else {
				cb.ToolResultText = decodeContentString(w.Content)
			}
			blocks = append(blocks, cb)
		default:
			// Unknown block types are skipped; they never prevent
			// decoding the rest of the record.
		}
	}
	return blocks, true
}

// normaliseTimestamp resolves spec.md's Open Question by converting
// either a numeric-seconds or RFC3339 timestamp into one canonical
// RFC3339Nano UTC string, so every downstream comparison is a single
// lexicographic string comparison.
func normaliseTimestamp(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return "", false
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC().Format(time.RFC3339Nano), true
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC().Format(time.RFC3339Nano), true
		}
		return "", false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		sec := int64(f)
		nsec := int64((f - float64(sec)) * 1e9)
		return time.Unix(sec, nsec).UTC().Format(time.RFC3339Nano), true
	}
	return "", false
}

func trimSpace(b []byte) []byte {
	return bytes.TrimSpace(b)
}

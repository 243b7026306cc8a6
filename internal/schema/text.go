package schema

import "strings"

// Text computes the canonical text view used for matching (§3). The
// projection is pure: for user/system/summary records it is the
// content itself; for assistant records it is the concatenation of all
// block texts, tool inputs rendered as JSON, and tool results
// flattened. It is computed on demand and cached on the Record, but the
// cache is never populated during Decode and never shared across
// Records, so it cannot go stale (the Record itself is immutable after
// decode per §3).
func (r *Record) Text() string {
	if r.textCacheValid {
		return r.textCache
	}
	var b strings.Builder
	switch r.Kind {
	case KindUser:
		if r.User.IsBlocks {
			writeBlocks(&b, r.User.Blocks)
		} else {
			b.WriteString(r.User.Content)
		}
	case KindAssistant:
		writeBlocks(&b, r.Assistant.Content)
	case KindSystem:
		b.WriteString(r.SystemContent)
	case KindSummary:
		b.WriteString(r.SummaryText)
	}
	r.textCache = b.String()
	r.textCacheValid = true
	return r.textCache
}

func writeBlocks(b *strings.Builder, blocks []ContentBlock) {
	for i, blk := range blocks {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch blk.Kind {
		case BlockText, BlockThinking:
			b.WriteString(blk.Text)
		case BlockToolUse:
			b.WriteString(blk.ToolName)
			if blk.ToolInputJSON != "" {
				b.WriteByte(' ')
				b.WriteString(blk.ToolInputJSON)
			}
		case BlockToolResult:
			if blk.ToolResultIsBlocks {
				writeBlocks(b, blk.ToolResultBlocks)
			} else {
				b.WriteString(blk.ToolResultText)
			}
		}
	}
}

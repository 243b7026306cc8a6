package output

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/holon-run/claudegrep/internal/engine"
)

const bodyTruncateLen = 200

var roleStyles = map[string]lipgloss.Style{
	"user":      lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true),
	"assistant": lipgloss.NewStyle().Foreground(lipgloss.Color("#101F38")).Bold(true),
	"system":    lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true),
	"summary":   lipgloss.NewStyle().Faint(true),
}

// textFormatter renders one-line headers (§6.5 "[role] timestamp
// session_id") followed by a truncated body, rendering the whole header
// line in its role's terminal style unless Options.NoColor is set.
type textFormatter struct{}

func (textFormatter) Name() string { return "text" }

func (textFormatter) Format(w Writer, results []engine.SearchResult, meta Metadata, opts Options) error {
	for _, r := range results {
		role := r.Role
		if role == "" {
			role = r.MessageType
		}
		header := fmt.Sprintf("[%s] %s %s", role, r.Timestamp, r.SessionID)
		if !opts.NoColor {
			if style, ok := roleStyles[role]; ok {
				header = style.Render(header)
			}
		}
		body := r.Text
		if !opts.FullText && len(body) > bodyTruncateLen {
			body = body[:bodyTruncateLen] + "..."
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n\n", header, body); err != nil {
			return fmt.Errorf("output: write text result: %w", err)
		}
	}
	return nil
}

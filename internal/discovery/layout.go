package discovery

import (
	"path/filepath"
	"strings"
)

// LayoutResolver isolates the one client-specific on-disk convention
// (§6.4) behind a small interface, per spec.md §9, so the engine stays
// filesystem-layout-agnostic and alternate layouts can be supported by
// swapping the implementation.
type LayoutResolver interface {
	// ProjectDir returns the conventional directory under home that
	// holds transcripts for the project at projectPath.
	ProjectDir(home, projectPath string) string
}

// ClaudeLayout implements the conventional layout described in §6.4:
// <home>/.claude/projects/<encoded-project-path>/<session-id>.jsonl
// where the encoded project path replaces OS path separators with '-'.
type ClaudeLayout struct{}

// ProjectDir implements LayoutResolver.
func (ClaudeLayout) ProjectDir(home, projectPath string) string {
	abs := projectPath
	if !filepath.IsAbs(abs) {
		if a, err := filepath.Abs(abs); err == nil {
			abs = a
		}
	}
	encoded := strings.ReplaceAll(abs, string(filepath.Separator), "-")
	return filepath.Join(home, ".claude", "projects", encoded)
}

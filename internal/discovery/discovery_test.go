package discovery

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverSortsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "older.jsonl")
	newer := filepath.Join(dir, "newer.jsonl")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	writeFile(t, older, base)
	writeFile(t, newer, base.Add(time.Hour))

	files, err := Discover(filepath.Join(dir, "*.jsonl"), Options{})
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].Path != newer || files[1].Path != older {
		t.Fatalf("unexpected order: %+v", files)
	}
}

func TestDiscoverRecursiveGlob(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "sub", "dir", "session.jsonl")
	writeFile(t, nested, time.Now())

	files, err := Discover(filepath.Join(dir, "**", "*.jsonl"), Options{})
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(files) != 1 || files[0].Path != nested {
		t.Fatalf("expected recursive match of %q, got %+v", nested, files)
	}
}

func TestDiscoverDedupesCommaSeparatedPatterns(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.jsonl")
	writeFile(t, f, time.Now())

	pattern := filepath.Join(dir, "*.jsonl") + "," + filepath.Join(dir, "a.jsonl")
	files, err := Discover(pattern, Options{})
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected dedupe to produce 1 file, got %d", len(files))
	}
}

func TestDiscoverProjectFilter(t *testing.T) {
	home := t.TempDir()
	layout := ClaudeLayout{}
	projectPath := "/some/project"
	dir := layout.ProjectDir(home, projectPath)
	inside := filepath.Join(dir, "session.jsonl")
	writeFile(t, inside, time.Now())

	otherDir := filepath.Join(home, ".claude", "projects", "-other-project")
	outside := filepath.Join(otherDir, "session.jsonl")
	writeFile(t, outside, time.Now())

	pattern := filepath.Join(home, ".claude", "projects", "**", "*.jsonl")
	files, err := Discover(pattern, Options{Layout: layout, ProjectFilter: projectPath, Home: home})
	if err != nil {
		t.Fatalf("Discover returned error: %v", err)
	}
	if len(files) != 1 || files[0].Path != inside {
		t.Fatalf("expected only %q, got %+v", inside, files)
	}
}

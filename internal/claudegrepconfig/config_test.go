package claudegrepconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReturnsZeroConfigWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg != (Config{}) {
		t.Fatalf("Load() = %+v, want zero value", cfg)
	}
}

func TestLoadParsesProjectConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ConfigDir), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "format: json\nmax_results: 100\n"
	if err := os.WriteFile(filepath.Join(dir, ConfigPath), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Format != "json" || cfg.MaxResults != 100 {
		t.Fatalf("Load() = %+v, want format=json max_results=100", cfg)
	}
}

func TestLoadSearchesParentDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ConfigDir), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ConfigPath), []byte("format: jsonl\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Format != "jsonl" {
		t.Fatalf("Load() = %+v, want the ancestor's format=jsonl", cfg)
	}
}

func TestResolvePrecedenceCLIBeatsProjectBeatsDefault(t *testing.T) {
	project := Config{Format: "json", MaxResults: 100}
	cli := Config{Format: "jsonl"}

	resolved, err := Resolve(project, cli)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved.Format != "jsonl" {
		t.Fatalf("Format = %q, want cli value jsonl", resolved.Format)
	}
	if resolved.MaxResults != 100 {
		t.Fatalf("MaxResults = %d, want project value 100", resolved.MaxResults)
	}
	if resolved.NoColor != false {
		t.Fatalf("NoColor = %v, want default false", resolved.NoColor)
	}
}

func TestResolveFallsBackToDefaults(t *testing.T) {
	resolved, err := Resolve(Config{}, Config{})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if resolved != Defaults() {
		t.Fatalf("Resolve({}, {}) = %+v, want %+v", resolved, Defaults())
	}
}

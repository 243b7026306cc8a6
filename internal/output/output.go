// Package output renders engine.SearchResult values into the three
// formats of §6.5, using a small named-implementation registry in the
// style of the teacher's pkg/publisher: each Formatter identifies
// itself by name and is looked up by that name rather than switched on
// by the caller.
package output

import (
	"fmt"
	"sync"

	"github.com/holon-run/claudegrep/internal/engine"
)

// Metadata is the trailing object JSONL mode appends once, after the
// last result line (§6.5 "_metadata: { duration_ms, total_count,
// returned_count }").
type Metadata struct {
	DurationMS    int64 `json:"duration_ms"`
	TotalCount    int   `json:"total_count"`
	ReturnedCount int   `json:"returned_count"`
}

// Formatter renders a batch of results (plus run metadata) to w.
type Formatter interface {
	// Name returns the format's --format value ("text", "json", "jsonl").
	Name() string
	// Format writes results and meta to w.
	Format(w Writer, results []engine.SearchResult, meta Metadata, opts Options) error
}

// Writer is the subset of io.Writer formatters need; kept narrow so
// tests can pass a *bytes.Buffer without importing io directly here.
type Writer interface {
	Write(p []byte) (int, error)
}

// Options controls formatting details that are independent of the
// chosen format (§6.3 --full-text, --no-color).
type Options struct {
	FullText bool
	NoColor  bool
}

var (
	mu         sync.RWMutex
	formatters = make(map[string]Formatter)
)

// Register adds a Formatter under its own Name(). Registering a
// duplicate name is a programmer error and panics, matching the
// package-init-time registration pattern this mirrors.
func Register(f Formatter) {
	if f == nil {
		panic("output: cannot register a nil Formatter")
	}
	name := f.Name()
	if name == "" {
		panic("output: Formatter name cannot be empty")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := formatters[name]; exists {
		panic(fmt.Sprintf("output: formatter %q is already registered", name))
	}
	formatters[name] = f
}

// Get retrieves a registered Formatter by name, or reports ok=false.
func Get(name string) (Formatter, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := formatters[name]
	return f, ok
}

// Names lists every registered format name.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	return names
}

func init() {
	Register(textFormatter{})
	Register(jsonFormatter{})
	Register(jsonlFormatter{})
}

// Package engine orchestrates file discovery, chunked NDJSON scanning,
// per-line decoding and predicate evaluation into the single
// search(pattern, compiled_query, options) -> (results, elapsed,
// total_before_cap) contract (§4.4).
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/holon-run/claudegrep/internal/discovery"
	"github.com/holon-run/claudegrep/internal/query"
	"github.com/holon-run/claudegrep/internal/schema"
)

// ErrNoFiles is returned when discovery produces zero candidate files
// and the caller gave an explicit single path that does not exist
// (§7 "the engine returns a single top-level failure only when it
// cannot produce any result").
var ErrNoFiles = errors.New("engine: no files matched the given pattern")

// splitThreshold is the size above which a file is divided into
// newline-aligned chunks scanned as separate tasks (§4.4.2 step 2).
const splitThreshold = 1 << 20 // 1 MiB

// chunkTargetSize is the approximate size of each split chunk.
const chunkTargetSize = 1 << 20

// earlyTerminateFactor scales MaxResults into a rough "enough newer
// records have probably been seen" threshold for the optional
// early-termination path (§4.4.3). Records are not discovered in
// timestamp order, so this is a heuristic, not a guarantee: it trades a
// small chance of missing a genuinely-newest record for bounded work on
// a huge corpus when the caller opts in via EarlyTerminate.
const earlyTerminateFactor = 20

// SearchResult is one matched record, fully owned (§3).
type SearchResult struct {
	File        string
	UUID        string
	Timestamp   string
	SessionID   string
	Role        string
	MessageType string
	Text        string
	HasTools    bool
	HasThinking bool
	ProjectPath string
	RawJSON     string
	lineOffset  int
}

// Options configures one search call (§4.4.1).
type Options struct {
	MaxResults int // 0 means "use the default of 50"

	Role         string // "", or one of user/assistant/system/summary
	HasRole      bool
	SessionID    string
	HasSessionID bool
	Before       string // RFC3339Nano upper bound, inclusive
	HasBefore    bool
	After        string // RFC3339Nano lower bound, inclusive
	HasAfter     bool
	ProjectPath  string
	HasProject   bool

	Verbose bool

	// EarlyTerminate enables the optional early-abort path of §4.4.3.
	// Off by default, keeping the full-pass design the primary path.
	EarlyTerminate bool

	// Layout, together with a non-empty ProjectPath, feeds discovery's
	// project-path restriction (§4.3); independent of the per-record
	// ProjectPath guard above, which applies to decoded records when
	// HasProject is set.
	Layout discovery.LayoutResolver

	// Logf receives progress lines when Verbose is set; nil is safe
	// (progress logging is then a no-op). Kept as a plain function
	// rather than importing internal/cglog directly, so the engine has
	// no dependency on the logging package's concrete type.
	Logf func(format string, args ...any)

	// OnDecodeFailure, when non-nil, is invoked once per line that
	// failed to decode, letting callers aggregate a count (§9 "MAY
	// expose an aggregate count") without the engine importing metrics.
	OnDecodeFailure func()
}

const defaultMaxResults = 50

func (o Options) maxResults() int {
	if o.MaxResults <= 0 {
		return defaultMaxResults
	}
	return o.MaxResults
}

func (o Options) logf(format string, args ...any) {
	if o.Verbose && o.Logf != nil {
		o.Logf(format, args...)
	}
}

// Search runs the full discover -> dispatch -> scan -> reduce pipeline
// of §4.4.2.
func Search(ctx context.Context, patterns string, q *query.Query, opts Options) ([]SearchResult, time.Duration, int, error) {
	start := time.Now()

	files, err := discovery.Discover(patterns, discovery.Options{
		Layout:        opts.Layout,
		ProjectFilter: opts.ProjectPath,
	})
	if err != nil {
		return nil, time.Since(start), 0, fmt.Errorf("engine: discovery failed: %w", err)
	}
	if len(files) == 0 {
		// Only a pattern with no glob metacharacters that names a
		// missing path is a failure; an empty glob expansion is not.
		for _, p := range strings.Split(patterns, ",") {
			p = strings.TrimSpace(p)
			if p == "" || strings.ContainsAny(p, "*?[{") {
				continue
			}
			if _, statErr := os.Stat(p); statErr != nil {
				return nil, time.Since(start), 0, ErrNoFiles
			}
		}
		return nil, time.Since(start), 0, nil
	}

	tasks := planTasks(files)
	opts.logf("engine: %d file(s), %d task(s)", len(files), len(tasks))

	runCtx, abort := context.WithCancel(ctx)
	defer abort()
	group, groupCtx := errgroup.WithContext(runCtx)
	group.SetLimit(runtime.NumCPU())

	// found accumulates the number of matches across all tasks so the
	// optional early-termination path (§4.4.3) can decide when enough
	// results have been collected; unused unless opts.EarlyTerminate.
	var found atomic.Int64
	earlyTarget := int64(opts.maxResults()) * earlyTerminateFactor

	accumulators := make([][]SearchResult, len(tasks))
	for i, task := range tasks {
		i, task := i, task
		group.Go(func() error {
			if groupCtx.Err() != nil {
				return nil
			}
			results, err := scanTask(groupCtx, task, q, opts, &found)
			if err != nil {
				opts.logf("engine: task %s failed: %v", task.file.Path, err)
				return nil
			}
			accumulators[i] = results
			if opts.EarlyTerminate && found.Load() >= earlyTarget {
				abort()
			}
			return nil
		})
	}
	_ = group.Wait()

	var merged []SearchResult
	for _, acc := range accumulators {
		merged = append(merged, acc...)
	}

	sort.Slice(merged, func(i, j int) bool {
		return lessResult(merged[i], merged[j])
	})

	total := len(merged)
	max := opts.maxResults()
	if total > max {
		merged = merged[:max]
	}

	return merged, time.Since(start), total, nil
}

// lessResult implements §4.4.1's ordering: timestamp desc, then
// (file, line-offset) ascending.
func lessResult(a, b SearchResult) bool {
	if a.Timestamp != b.Timestamp {
		return a.Timestamp > b.Timestamp
	}
	if a.File != b.File {
		return a.File < b.File
	}
	return a.lineOffset < b.lineOffset
}

type scanTaskSpec struct {
	file  discovery.FileInfo
	start int64
	end   int64 // exclusive; 0 means "to EOF"
}

// planTasks splits each file into newline-aligned byte-range tasks once
// its size exceeds splitThreshold (§4.4.2 step 2); smaller files are
// scanned whole. Files that vanished or became unreadable between
// discovery and now are silently skipped here (§4.4.5 "unreadable file:
// task reports error; overall search continues" applies at the scan
// step proper, not to this planning pass).
func planTasks(files []discovery.FileInfo) []scanTaskSpec {
	var tasks []scanTaskSpec
	for _, f := range files {
		if f.StatFailed {
			continue
		}
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		size := info.Size()
		if size <= splitThreshold {
			tasks = append(tasks, scanTaskSpec{file: f})
			continue
		}
		bounds, err := alignedBoundaries(f.Path, size)
		if err != nil {
			tasks = append(tasks, scanTaskSpec{file: f})
			continue
		}
		for i := 0; i+1 < len(bounds); i++ {
			tasks = append(tasks, scanTaskSpec{file: f, start: bounds[i], end: bounds[i+1]})
		}
	}
	return tasks
}

// alignedBoundaries returns a sorted list of byte offsets, starting at
// 0 and ending at size, each (after the first) the offset of the
// character immediately following a newline closest at or after the
// target chunk boundary — so every resulting [offsets[i], offsets[i+1])
// range contains only whole lines.
func alignedBoundaries(path string, size int64) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bounds := []int64{0}
	target := int64(chunkTargetSize)
	buf := make([]byte, 4096)
	for target < size {
		if _, err := f.Seek(target, io.SeekStart); err != nil {
			return nil, err
		}
		offset := target
		found := false
		for {
			n, err := f.Read(buf)
			if n > 0 {
				if idx := bytes.IndexByte(buf[:n], '\n'); idx >= 0 {
					offset += int64(idx) + 1
					found = true
					break
				}
				offset += int64(n)
			}
			if err != nil {
				break
			}
		}
		if !found || offset >= size {
			break
		}
		bounds = append(bounds, offset)
		target = offset + chunkTargetSize
	}
	bounds = append(bounds, size)
	return bounds, nil
}

// applyFilters reports whether rec survives the role/session/time/
// project post-filters of §4.4.2 step e.
func applyFilters(rec *schema.Record, opts Options) bool {
	if opts.HasRole && rec.Role() != opts.Role {
		return false
	}
	if opts.HasSessionID && rec.SessionID != opts.SessionID {
		return false
	}
	if opts.HasBefore && rec.Timestamp > opts.Before {
		return false
	}
	if opts.HasAfter && rec.Timestamp < opts.After {
		return false
	}
	if opts.HasProject && rec.ProjectPath() != opts.ProjectPath {
		return false
	}
	return true
}

func toSearchResult(file string, lineOffset int, rec *schema.Record) SearchResult {
	return SearchResult{
		File:        file,
		UUID:        rec.UUID,
		Timestamp:   rec.Timestamp,
		SessionID:   rec.SessionID,
		Role:        rec.Role(),
		MessageType: rec.Kind.String(),
		Text:        rec.Text(),
		HasTools:    rec.HasTools(),
		HasThinking: rec.HasThinking(),
		ProjectPath: rec.ProjectPath(),
		RawJSON:     string(rec.Raw()),
		lineOffset:  lineOffset,
	}
}

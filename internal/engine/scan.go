package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/holon-run/claudegrep/internal/query"
	"github.com/holon-run/claudegrep/internal/schema"
)

// maxLineSize bounds a single NDJSON line's buffer growth, mirroring
// the teacher's bufio.Scanner sizing in pkg/logview.Parse.
const maxLineSize = 16 * 1024 * 1024

// scanTask implements §4.4.2 step 3: read the assigned byte range into
// a reusable buffer, iterate lines, prefilter, decode, filter, evaluate
// and accumulate SearchResults local to this task.
func scanTask(ctx context.Context, task scanTaskSpec, q *query.Query, opts Options, found *atomic.Int64) ([]SearchResult, error) {
	f, err := os.Open(task.file.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", task.file.Path, err)
	}
	defer f.Close()

	offset := task.start
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return nil, fmt.Errorf("seek %s: %w", task.file.Path, err)
		}
	}

	var r io.Reader = f
	if task.end > 0 {
		r = io.LimitReader(f, task.end-task.start)
	}

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)

	var results []SearchResult
	linesSinceCheck := 0
	for scanner.Scan() {
		lineStart := offset
		line := scanner.Bytes()
		offset += int64(len(line)) + 1 // +1 for the stripped newline

		if len(line) == 0 {
			continue
		}

		linesSinceCheck++
		if linesSinceCheck >= 256 {
			linesSinceCheck = 0
			if ctx.Err() != nil {
				break
			}
		}

		if !q.MatchesRawLine(line) {
			continue
		}

		rec, ok := schema.Decode(line)
		if !ok {
			if opts.OnDecodeFailure != nil {
				opts.OnDecodeFailure()
			}
			continue
		}

		if !applyFilters(&rec, opts) {
			continue
		}

		text := rec.Text()
		if !query.Eval(q.Root, text) {
			continue
		}

		results = append(results, toSearchResult(task.file.Path, int(lineStart), &rec))
		if found != nil {
			found.Add(1)
		}
	}
	if err := scanner.Err(); err != nil {
		return results, fmt.Errorf("scan %s: %w", task.file.Path, err)
	}
	return results, nil
}

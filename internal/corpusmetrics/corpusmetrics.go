// Package corpusmetrics aggregates the counters claudegrep surfaces
// under --verbose: decode failures from internal/engine (§9's Open
// Question resolution — decoding stays silent-drop by default, but an
// aggregate count is available for verbose output) plus the session
// cache's hit/miss/eviction counters (§4.5).
package corpusmetrics

import (
	"sync/atomic"

	"github.com/holon-run/claudegrep/internal/sessioncache"
)

// Recorder collects decode failures across a single search run. Its
// zero value is ready to use; pass Record as an engine.Options.OnDecodeFailure
// callback.
type Recorder struct {
	decodeFailures atomic.Int64
}

// Record increments the decode-failure count. Safe for concurrent use
// by the engine's worker pool.
func (r *Recorder) Record() {
	r.decodeFailures.Add(1)
}

// DecodeFailures returns the count observed so far.
func (r *Recorder) DecodeFailures() int64 {
	return r.decodeFailures.Load()
}

// Snapshot is the combined, read-only view printed under --verbose.
type Snapshot struct {
	DecodeFailures int64
	CacheHits      int64
	CacheMisses    int64
	CacheEvictions int64
	CacheBytesUsed int64
}

// Collect merges a decode-failure Recorder and a session cache's
// lifetime Metrics into one Snapshot. cache may be nil when a search
// run did not use the session cache.
func Collect(r *Recorder, cache *sessioncache.Cache) Snapshot {
	snap := Snapshot{}
	if r != nil {
		snap.DecodeFailures = r.DecodeFailures()
	}
	if cache != nil {
		m := cache.Metrics()
		snap.CacheHits = m.Hits
		snap.CacheMisses = m.Misses
		snap.CacheEvictions = m.Evictions
		snap.CacheBytesUsed = m.BytesLoaded - m.BytesEvicted
	}
	return snap
}

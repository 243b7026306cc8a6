// Package sessioncache holds a process-wide, modification-time
// invalidated map from absolute file path to decoded transcript
// contents (§4.5), used by the interactive viewer so repeated lookups
// of the same session file avoid re-reading and re-decoding it.
package sessioncache

import (
	"bufio"
	"container/list"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/holon-run/claudegrep/internal/schema"
)

// maxLineSize mirrors internal/engine's scanner buffer cap.
const maxLineSize = 16 * 1024 * 1024

// avgRecordOverhead is the per-record estimate used by the bounded
// variant's memory accounting (§4.5 "Memory accounting is an
// estimate: average record size x count + raw bytes").
const avgRecordOverhead = 256

// CachedFile is one session cache entry (§3 "CachedFile"). It owns
// both views; it is never partially updated, only replaced wholesale
// on rebuild.
type CachedFile struct {
	Records      []schema.Record
	RawLines     [][]byte
	LastModified time.Time

	rawBytes int64
}

func (cf *CachedFile) estimatedBytes() int64 {
	return cf.rawBytes + int64(len(cf.Records))*avgRecordOverhead
}

// Metrics reports the cache's lifetime counters (§4.5 "metrics()").
type Metrics struct {
	Hits         int64
	Misses       int64
	Evictions    int64
	BytesLoaded  int64
	BytesEvicted int64
}

type cacheNode struct {
	path string
	file *CachedFile
	elem *list.Element // this node's element in order; nil when unbounded
}

// Cache is a mutex-guarded map from absolute path to CachedFile, with
// an optional bounded/LRU eviction policy (§4.5). The zero value is not
// usable; construct with New or NewBounded so tests can always inject
// a fresh instance rather than relying on an implicit global (§9).
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheNode
	order   *list.List // LRU order, most-recently-used at front; nil when unbounded

	maxEntries int
	maxBytes   int64
	bytesUsed  int64

	hits, misses, evictions   int64
	bytesLoaded, bytesEvicted int64
}

// New creates an unbounded cache: entries are never evicted except by
// an explicit Clear.
func New() *Cache {
	return &Cache{entries: make(map[string]*cacheNode)}
}

// NewBounded creates a cache that evicts least-recently-used entries
// once entries >= maxEntries or bytesUsed+incoming >= maxBytes (§4.5).
// A non-positive bound disables that axis of the check.
func NewBounded(maxEntries int, maxBytes int64) *Cache {
	return &Cache{
		entries:    make(map[string]*cacheNode),
		order:      list.New(),
		maxEntries: maxEntries,
		maxBytes:   maxBytes,
	}
}

func (c *Cache) bounded() bool {
	return c.order != nil
}

// GetMessages returns the CachedFile for path, rebuilding it if absent
// or if the file's modification time has changed since it was cached
// (§4.5). The rebuild itself (file I/O + decode) runs outside the
// lock; if a concurrent caller installs a fresher or equal entry first,
// this call discards its own rebuilt copy and returns the installed
// one.
func (c *Cache) GetMessages(path string) (*CachedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("sessioncache: stat %s: %w", path, err)
	}

	c.mu.Lock()
	if node, ok := c.entries[path]; ok && node.file.LastModified.Equal(info.ModTime()) {
		c.hits++
		if c.bounded() {
			c.order.MoveToFront(node.elem)
		}
		c.mu.Unlock()
		return node.file, nil
	}
	c.misses++
	c.mu.Unlock()

	built, err := buildCachedFile(path, info.ModTime())
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if node, ok := c.entries[path]; ok {
		if !node.file.LastModified.Before(built.LastModified) {
			// A concurrent writer already installed an entry at least
			// as fresh as ours; discard this rebuild (§4.5 "the losing
			// writer discards its work").
			if c.bounded() {
				c.order.MoveToFront(node.elem)
			}
			return node.file, nil
		}
		c.removeLocked(path, node)
	}

	c.installLocked(path, built)
	return built, nil
}

func (c *Cache) installLocked(path string, cf *CachedFile) {
	c.bytesLoaded += cf.estimatedBytes()
	node := &cacheNode{path: path, file: cf}

	if c.bounded() {
		for (c.maxEntries > 0 && len(c.entries) >= c.maxEntries) ||
			(c.maxBytes > 0 && c.bytesUsed+cf.estimatedBytes() >= c.maxBytes) {
			if !c.evictOldestLocked() {
				break
			}
		}
		node.elem = c.order.PushFront(node)
		c.bytesUsed += cf.estimatedBytes()
	}

	c.entries[path] = node
}

func (c *Cache) evictOldestLocked() bool {
	back := c.order.Back()
	if back == nil {
		return false
	}
	node := back.Value.(*cacheNode)
	c.order.Remove(back)
	delete(c.entries, node.path)
	c.bytesUsed -= node.file.estimatedBytes()
	c.evictions++
	c.bytesEvicted += node.file.estimatedBytes()
	return true
}

func (c *Cache) removeLocked(path string, node *cacheNode) {
	if c.bounded() {
		c.order.Remove(node.elem)
		c.bytesUsed -= node.file.estimatedBytes()
	}
	delete(c.entries, path)
}

// Clear drops all entries (§4.5 "clear()").
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheNode)
	if c.bounded() {
		c.order = list.New()
	}
	c.bytesUsed = 0
}

// Metrics returns a snapshot of the cache's lifetime counters.
func (c *Cache) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Metrics{
		Hits:         c.hits,
		Misses:       c.misses,
		Evictions:    c.evictions,
		BytesLoaded:  c.bytesLoaded,
		BytesEvicted: c.bytesEvicted,
	}
}

func buildCachedFile(path string, modTime time.Time) (*CachedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sessioncache: open %s: %w", path, err)
	}
	defer f.Close()

	cf := &CachedFile{LastModified: modTime}

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineSize)
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		cf.RawLines = append(cf.RawLines, line)
		cf.rawBytes += int64(len(line))
		if rec, ok := schema.Decode(line); ok {
			cf.Records = append(cf.Records, rec)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sessioncache: read %s: %w", path, err)
	}
	return cf, nil
}

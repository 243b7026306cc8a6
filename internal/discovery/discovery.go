// Package discovery resolves glob patterns to an ordered list of
// candidate files (§4.3), optionally restricted to a project's
// conventional on-disk directory.
package discovery

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// FileInfo describes one discovered candidate file.
type FileInfo struct {
	Path    string
	ModTime time.Time
	// StatFailed is true when the file could not be stat'd after
	// matching; such files sort to the end (§4.3).
	StatFailed bool
}

// Options configures Discover's project-path restriction (§6.4).
type Options struct {
	Layout        LayoutResolver
	ProjectFilter string
	// Home overrides the resolved user home directory; tests set this
	// explicitly. Production callers leave it empty to use
	// os.UserHomeDir().
	Home string
}

// Discover expands patterns (comma-separated, each may use ** for
// recursive matching) into a deduplicated, newest-first ordered file
// list. When opts.Layout/opts.ProjectFilter are non-empty, files are
// restricted to the project's conventional directory (§6.4).
func Discover(patterns string, opts Options) ([]FileInfo, error) {
	var restrictTo string
	if opts.ProjectFilter != "" && opts.Layout != nil {
		home := opts.Home
		if home == "" {
			if h, err := os.UserHomeDir(); err == nil {
				home = h
			}
		}
		restrictTo = opts.Layout.ProjectDir(home, opts.ProjectFilter)
	}

	seen := make(map[string]struct{})
	var files []FileInfo

	for _, pattern := range splitPatterns(patterns) {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			// A malformed pattern is skipped; enumeration of the
			// remaining patterns proceeds (§4.3/§4.4.5).
			continue
		}
		for _, m := range matches {
			if restrictTo != "" && !strings.HasPrefix(m, restrictTo) {
				continue
			}
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}

			fi := FileInfo{Path: m}
			info, statErr := os.Stat(m)
			if statErr != nil {
				fi.StatFailed = true
			} else {
				fi.ModTime = info.ModTime()
			}
			files = append(files, fi)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a.StatFailed != b.StatFailed {
			return !a.StatFailed // non-failed sort before failed
		}
		if a.StatFailed && b.StatFailed {
			return a.Path < b.Path
		}
		if !a.ModTime.Equal(b.ModTime) {
			return a.ModTime.After(b.ModTime)
		}
		return a.Path < b.Path
	})

	return files, nil
}

func splitPatterns(patterns string) []string {
	parts := strings.Split(patterns, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

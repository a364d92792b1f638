// Package discovery locates the most recently modified file of a kind
// across a set of candidate directories.
//
// Recency is a weak signal: two sessions finishing within the same window
// can pick each other's files. Callers should try explicit paths first
// and use a Finder only as a fallback.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Options configures a Finder.
type Options struct {
	// Dirs are searched in order; missing directories are ignored.
	Dirs []string

	// Include and Exclude are glob patterns matched against file names.
	Include []string
	Exclude []string

	// MaxDepth limits how far below each dir files are considered;
	// 1 means direct children only.
	MaxDepth int

	// Window is the maximum age of a candidate; zero disables the bound.
	Window time.Duration

	// Now returns the reference time, time.Now when nil.
	Now func() time.Time
}

// Candidate is a file that satisfied the Finder's rules.
type Candidate struct {
	Path    string
	ModTime time.Time
}

// Finder searches directories for recent files.
type Finder struct {
	opts    Options
	matcher *PatternMatcher
}

// NewFinder creates a Finder, compiling its patterns.
func NewFinder(opts Options) (*Finder, error) {
	matcher, err := NewPatternMatcher(opts.Include, opts.Exclude)
	if err != nil {
		return nil, fmt.Errorf("failed to create pattern matcher: %w", err)
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Finder{opts: opts, matcher: matcher}, nil
}

// Candidates returns every matching file within the window, newest first.
// Unreadable directories and entries are skipped.
func (f *Finder) Candidates() []Candidate {
	now := f.opts.Now()
	seen := make(map[string]bool)
	var found []Candidate

	for _, dir := range f.opts.Dirs {
		dir = filepath.Clean(dir)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		// WalkDir does not descend into a symlinked root
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			dir = resolved
		}

		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() && path != dir {
					return fs.SkipDir
				}
				return nil
			}

			depth := pathDepth(dir, path)
			if d.IsDir() {
				if path != dir && depth >= f.opts.MaxDepth {
					return fs.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() || !f.matcher.Matches(path) || seen[path] {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return nil
			}
			if !f.withinWindow(now, info.ModTime()) {
				return nil
			}

			seen[path] = true
			found = append(found, Candidate{Path: path, ModTime: info.ModTime()})
			return nil
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].ModTime.After(found[j].ModTime)
	})
	return found
}

// MostRecent returns the newest matching file.
func (f *Finder) MostRecent() (Candidate, bool) {
	candidates := f.Candidates()
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	return candidates[0], true
}

func (f *Finder) withinWindow(now, modTime time.Time) bool {
	if f.opts.Window <= 0 {
		return true
	}
	age := now.Sub(modTime)
	if age < 0 {
		// clock skew, treat as just written
		return true
	}
	return age <= f.opts.Window
}

func pathDepth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

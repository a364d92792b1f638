package discovery

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"
)

// PatternMatcher handles glob pattern matching on file names
type PatternMatcher struct {
	includePatterns []glob.Glob
	excludePatterns []glob.Glob
}

// NewPatternMatcher creates a new pattern matcher
func NewPatternMatcher(include, exclude []string) (*PatternMatcher, error) {
	pm := &PatternMatcher{}

	for _, pattern := range include {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern '%s': %w", pattern, err)
		}
		pm.includePatterns = append(pm.includePatterns, g)
	}

	for _, pattern := range exclude {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
		pm.excludePatterns = append(pm.excludePatterns, g)
	}

	return pm, nil
}

// Matches returns true if the file name passes the pattern rules.
// Only the base name of path is considered.
func (pm *PatternMatcher) Matches(path string) bool {
	name := filepath.Base(path)

	// Exclude patterns take precedence
	for _, pattern := range pm.excludePatterns {
		if pattern.Match(name) {
			return false
		}
	}

	if len(pm.includePatterns) == 0 {
		return true
	}

	for _, pattern := range pm.includePatterns {
		if pattern.Match(name) {
			return true
		}
	}

	return false
}

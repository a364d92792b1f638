package transcript

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/entrhq/plansave/pkg/fsutil"
)

// ExitPlanModeTool is the tool an agent calls to leave planning mode.
const ExitPlanModeTool = "ExitPlanMode"

// ToolUses returns every tool invocation with the given name, in order.
func (t *Transcript) ToolUses(name string) []ToolUseBlock {
	if t == nil {
		return nil
	}
	var uses []ToolUseBlock
	for _, entry := range t.Entries {
		for _, block := range entry.Content.Blocks {
			if use, ok := block.(ToolUseBlock); ok && use.Name == name {
				uses = append(uses, use)
			}
		}
	}
	return uses
}

// HasExitPlanMode reports whether the session left planning mode.
func (t *Transcript) HasExitPlanMode() bool {
	return len(t.ToolUses(ExitPlanModeTool)) > 0
}

// ExitedPlanModeInLastTurn reports whether ExitPlanMode was invoked after the
// most recent user prompt. Tool results travel as user entries but do not
// start a new turn.
func (t *Transcript) ExitedPlanModeInLastTurn() bool {
	if t == nil {
		return false
	}
	for i := len(t.Entries) - 1; i >= 0; i-- {
		entry := t.Entries[i]
		for _, block := range entry.Content.Blocks {
			if use, ok := block.(ToolUseBlock); ok && use.Name == ExitPlanModeTool {
				return true
			}
		}
		if entry.Role == RoleUser && isPrompt(entry.Content) {
			return false
		}
	}
	return false
}

func isPrompt(c Content) bool {
	if strings.TrimSpace(c.Text) != "" {
		return true
	}
	for _, block := range c.Blocks {
		if _, ok := block.(ToolResultBlock); ok {
			return false
		}
	}
	for _, block := range c.Blocks {
		if text, ok := block.(TextBlock); ok && strings.TrimSpace(text.Text) != "" {
			return true
		}
	}
	return false
}

// ExitPlanModePlan returns the plan text passed to the last ExitPlanMode
// invocation that carried one.
func (t *Transcript) ExitPlanModePlan() (string, bool) {
	uses := t.ToolUses(ExitPlanModeTool)
	for i := len(uses) - 1; i >= 0; i-- {
		var input struct {
			Plan string `json:"plan"`
		}
		if err := json.Unmarshal(uses[i].Input, &input); err != nil {
			continue
		}
		if plan := strings.TrimSpace(input.Plan); plan != "" {
			return input.Plan, true
		}
	}
	return "", false
}

// ReferencedPaths scans raw transcript text for Markdown files under any of
// dirs, ordered by their last mention, without duplicates. Mentions that
// climb out of their directory with ".." are ignored. Paths written with a
// "~/" prefix are matched when the directory lives under the home
// directory, and are returned in absolute form.
func ReferencedPaths(raw string, dirs []string) []string {
	if raw == "" || len(dirs) == 0 {
		return nil
	}
	raw = strings.ReplaceAll(raw, `\/`, "/")

	home, _ := os.UserHomeDir()

	type match struct {
		pos  int
		path string
	}
	var matches []match

	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		prefixes := map[string]string{dir: dir}
		if home != "" {
			if rel, err := filepath.Rel(home, dir); err == nil && !strings.HasPrefix(rel, "..") {
				prefixes[filepath.ToSlash(filepath.Join("~", rel))] = dir
			}
		}
		for prefix, abs := range prefixes {
			re := regexp.MustCompile(regexp.QuoteMeta(filepath.ToSlash(prefix)) + `/[^\s"'\x60\\<>()\[\]]+?\.md\b`)
			for _, loc := range re.FindAllStringIndex(raw, -1) {
				found := raw[loc[0]:loc[1]]
				path := filepath.Join(abs, filepath.FromSlash(strings.TrimPrefix(found, filepath.ToSlash(prefix))))
				if !fsutil.IsWithin(abs, path) {
					continue
				}
				matches = append(matches, match{pos: loc[0], path: path})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	// keep each path at its last mention
	seen := make(map[string]bool)
	var paths []string
	for i := len(matches) - 1; i >= 0; i-- {
		if seen[matches[i].path] {
			continue
		}
		seen[matches[i].path] = true
		paths = append(paths, matches[i].path)
	}
	for i, j := 0, len(paths)-1; i < j; i, j = i+1, j-1 {
		paths[i], paths[j] = paths[j], paths[i]
	}
	return paths
}

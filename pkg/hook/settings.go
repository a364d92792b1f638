package hook

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/entrhq/plansave/pkg/fsutil"
)

// DefaultCommand is the hook command written by Install.
const DefaultCommand = "plansave run"

// SessionEndMatcher limits the SessionEnd hook to context clears, which is
// how a plan approved with "clear context" ends its session.
const SessionEndMatcher = "clear"

// SettingsPath returns the project-level settings file under projectDir.
func SettingsPath(projectDir string) string {
	return filepath.Join(projectDir, ".claude", "settings.json")
}

// InstallResult reports which hook events gained an entry.
type InstallResult struct {
	Path  string
	Added []string
}

// Install registers command as a Stop hook and as a SessionEnd hook matching
// "clear" in the project's settings file. Existing entries that already run
// command are left alone. Unrelated keys keep their order and their exact
// values; comments are dropped when the file is rewritten.
func Install(projectDir, command string) (*InstallResult, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		command = DefaultCommand
	}

	path := SettingsPath(projectDir)
	settings, perm, err := readSettings(path)
	if err != nil {
		return nil, err
	}

	switch hooks := gjson.GetBytes(settings, "hooks"); {
	case !hooks.Exists() || hooks.Type == gjson.Null:
		if settings, err = sjson.SetRawBytes(settings, "hooks", []byte("{}")); err != nil {
			return nil, fmt.Errorf("failed to update settings: %w", err)
		}
	case !hooks.IsObject():
		return nil, fmt.Errorf("settings field %q is not an object", "hooks")
	}

	result := &InstallResult{Path: path}
	for _, target := range []struct {
		event   string
		matcher string
	}{
		{EventStop, ""},
		{EventSessionEnd, SessionEndMatcher},
	} {
		updated, added, err := addHook(settings, target.event, target.matcher, command)
		if err != nil {
			return nil, err
		}
		if added {
			settings = updated
			result.Added = append(result.Added, target.event)
		}
	}

	if len(result.Added) == 0 {
		return result, nil
	}

	if err := fsutil.WriteFileAtomic(path, pretty.Pretty(settings), perm); err != nil {
		return nil, fmt.Errorf("failed to write settings: %w", err)
	}
	return result, nil
}

// readSettings loads a settings file that may carry comments and trailing
// commas, returning it as plain JSON. A missing file yields "{}".
func readSettings(path string) ([]byte, fs.FileMode, error) {
	perm := fs.FileMode(0o644)
	empty := []byte("{}")

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return empty, perm, nil
	}
	if err != nil {
		return nil, perm, fmt.Errorf("failed to read settings: %w", err)
	}
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	stripped := jsonc.ToJSON(data)
	if len(strings.TrimSpace(string(stripped))) == 0 {
		return empty, perm, nil
	}
	if !gjson.ValidBytes(stripped) || !gjson.ParseBytes(stripped).IsObject() {
		return nil, perm, fmt.Errorf("failed to parse %s: not a JSON object", path)
	}
	return stripped, perm, nil
}

// addHook appends a matcher group running command to hooks.<event> unless a
// group with the same matcher already runs it.
func addHook(settings []byte, event, matcher, command string) ([]byte, bool, error) {
	key := "hooks." + event
	groups := gjson.GetBytes(settings, key)
	exists := groups.Exists() && groups.Type != gjson.Null
	if exists && !groups.IsArray() {
		return nil, false, fmt.Errorf("hooks.%s is not an array", event)
	}

	for _, group := range groups.Array() {
		if group.Get("matcher").String() != matcher {
			continue
		}
		for _, entry := range group.Get("hooks").Array() {
			if strings.TrimSpace(entry.Get("command").String()) == command {
				return settings, false, nil
			}
		}
	}

	group := []byte(`{"hooks":[{"type":"command"}]}`)
	group, err := sjson.SetBytes(group, "hooks.0.command", command)
	if err == nil && matcher != "" {
		group, err = sjson.SetBytes(group, "matcher", matcher)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to build %s hook: %w", event, err)
	}

	if exists {
		settings, err = sjson.SetRawBytes(settings, key+".-1", group)
	} else {
		settings, err = sjson.SetRawBytes(settings, key, append(append([]byte("["), group...), ']'))
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, true, nil
}

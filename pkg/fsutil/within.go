package fsutil

import (
	"path/filepath"
	"strings"
)

// ResolvePath evaluates symlinks in path. For paths that do not exist yet,
// the nearest existing ancestor is resolved and the missing tail appended,
// so /var/x and /private/var/x compare equal on macOS before x is created.
func ResolvePath(path string) string {
	path = filepath.Clean(path)
	var missing []string
	current := path
	for {
		if resolved, err := filepath.EvalSymlinks(current); err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved
		}

		parent := filepath.Dir(current)
		if parent == current {
			return path
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}

// IsWithin reports whether path is root or lies below it once symlinks
// are resolved.
func IsWithin(root, path string) bool {
	root = ResolvePath(root)
	path = ResolvePath(path)
	if path == root {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, strings.TrimSuffix(root, sep)+sep)
}

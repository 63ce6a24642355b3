// Package filex prepares the on-disk location of the local store.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDataDir expands a leading "~/" in path and creates its parent
// directory. In-memory and URI style SQLite DSNs are returned unchanged.
func EnsureDataDir(path string) (string, error) {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return path, nil
}

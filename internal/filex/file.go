// Package filex contains small filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir creates the directory that will hold path. SQLite DSNs in
// "file:" form and in-memory databases are understood: the prefix and query
// string are stripped, and nothing is created for ":memory:".
func EnsureParentDir(path string) error {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}

	clean := strings.TrimPrefix(path, "file:")
	clean, _, _ = strings.Cut(clean, "?")

	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return nil
}

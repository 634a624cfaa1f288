// Package testsupport provides helpers shared by tests: temp file trees,
// seeded configs, and unlocked identities.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path (and any parent directories) with the given content.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteTree materializes a file tree under root from relative path to
// content, returning the absolute path of each created file in map order.
func WriteTree(t testing.TB, root string, files map[string]string) map[string]string {
	t.Helper()

	paths := make(map[string]string, len(files))
	for rel, content := range files {
		abs := filepath.Join(root, rel)
		WriteFile(t, abs, content)
		paths[rel] = abs
	}
	return paths
}

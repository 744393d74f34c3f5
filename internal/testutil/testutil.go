// Package testutil provides shared test helpers for setting up backend
// configuration documents.
package testutil

import (
	"os"
	"testing"
)

// FSDoc creates a temporary root directory and returns it together with
// an fs configuration document rooted there.
func FSDoc(t *testing.T) (string, map[string]any) {
	t.Helper()
	root := t.TempDir()
	return root, map[string]any{"root": root}
}

// MemoryDoc returns a memory configuration document with a store name
// unique to the calling test.
func MemoryDoc(t *testing.T) map[string]any {
	t.Helper()
	return map[string]any{"name": t.Name()}
}

// SQLiteDoc creates a temporary database file and returns a sqlite
// configuration document pointing at it.
func SQLiteDoc(t *testing.T) map[string]any {
	t.Helper()
	f, err := os.CreateTemp("", "laguz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })
	return map[string]any{"path": f.Name()}
}

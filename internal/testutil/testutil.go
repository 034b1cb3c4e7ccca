// Package testutil provides testing utilities for liquers tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Eventually polls cond until it returns true or the timeout elapses. It
// fails the test on timeout with the given message.
func Eventually(t *testing.T, timeout time.Duration, msg string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s: %s", timeout, msg)
}

// SetupStoreDir creates a temporary directory populated with the given
// files. The files map contains slash-separated relative paths to file
// contents. The directory is cleaned up when the test completes.
func SetupStoreDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}
	return dir
}

// Package testsupport provides shared helpers for exercising archive roots
// in tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"odea/internal/archive"
	"odea/internal/config"
	"odea/internal/scanindex"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// WithChecksum selects the checksum algorithm for the test config.
func WithChecksum(alg string) ConfigOption {
	return func(c *config.Config) { c.Archive.ChecksumAlgorithm = alg }
}

// WithoutIndex disables the scan index for the test config.
func WithoutIndex() ConfigOption {
	return func(c *config.Config) { c.Index.Enabled = false }
}

// NewConfig returns the default configuration with test-friendly settings
// and any provided options applied.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Derive.MinFreeGiB = 0
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// NewRoot initializes an archive in a fresh temp directory and returns its
// path.
func NewRoot(t testing.TB) string {
	t.Helper()

	root := t.TempDir()
	if err := archive.Init(root); err != nil {
		t.Fatalf("archive.Init: %v", err)
	}
	return root
}

// WritePayload writes content under the archive root, creating intermediate
// directories, and returns the root-relative path unchanged.
func WritePayload(t testing.TB, root, rel, content string) string {
	t.Helper()

	abs := archive.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return rel
}

// MustOpenIndex opens the scan index for tests and registers cleanup.
func MustOpenIndex(t testing.TB, root string) *scanindex.Store {
	t.Helper()

	store, err := scanindex.Open(root)
	if err != nil {
		t.Fatalf("scanindex.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

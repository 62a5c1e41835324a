package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// payloadBytes is deliberately non-text so content sniffing never dispatches
// a thumbnail conversion during CLI tests.
var payloadBytes = []byte{0x00, 0x01, 0x02, 0x03, 0xff, 0xfe}

func setupCLITestEnv(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	root := filepath.Join(base, "arc")
	if _, _, err := runCLI(t, "", "new", root, "--title", "Test Collection"); err != nil {
		t.Fatalf("new: %v", err)
	}
	return root
}

func runCLI(t *testing.T, root string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if root != "" {
		args = append([]string{"--root", root}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeBinaryPayload(t *testing.T, root, rel string) string {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(abs, payloadBytes, 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
	return abs
}

func findPayload(t *testing.T, root, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(root, "data", pattern))
	if err != nil || len(matches) != 1 {
		t.Fatalf("glob %s: %v (matches %v)", pattern, err, matches)
	}
	return matches[0]
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

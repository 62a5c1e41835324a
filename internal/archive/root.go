package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoRoot reports that no archive root encloses the given path. This is
// the one fatal condition in the toolkit: without a root there is no bag
// context to operate in.
var ErrNoRoot = errors.New("no archive root found")

// IsRoot reports whether path is an archive root: a directory containing a
// bagit.txt file and a data subdirectory. The declaration's contents are not
// verified.
func IsRoot(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	if info, err := os.Stat(filepath.Join(path, BagItFile)); err != nil || info.IsDir() {
		return false
	}
	info, err = os.Stat(filepath.Join(path, DataDir))
	return err == nil && info.IsDir()
}

// FindRoot resolves the archive root enclosing path. The path does not need
// to exist; it is resolved against the working directory and each ancestor
// is tested in turn, so the nearest enclosing root wins when archives nest.
func FindRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	for dir := abs; ; {
		if IsRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: searched from %s", ErrNoRoot, abs)
		}
		dir = parent
	}
}

// Rel rewrites an absolute or working-directory-relative path as a
// root-relative slash path, the form stored in metadata.
func Rel(root, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("relativize %s against %s: %w", path, root, err)
	}
	return filepath.ToSlash(rel), nil
}

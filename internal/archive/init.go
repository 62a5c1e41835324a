package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Init creates the archive structure in dir, which must already exist. The
// operation is additive: existing files and directories are left alone, so
// initializing a partially populated directory is safe. The collection-level
// bag-info.txt is not written here; the catalog owns that record.
func Init(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("cannot create an archive in %s: not a directory", dir)
	}

	declPath := filepath.Join(dir, BagItFile)
	if _, err := os.Stat(declPath); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", declPath, err)
		}
		if err := os.WriteFile(declPath, []byte(bagItDeclaration), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", declPath, err)
		}
	}

	for _, rel := range payloadDirs {
		if err := os.MkdirAll(Join(dir, rel), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", rel, err)
		}
	}
	return nil
}

// EnsureStateDir creates the toolkit state directory under root and returns
// its path.
func EnsureStateDir(root string) (string, error) {
	dir := filepath.Join(root, StateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	return dir, nil
}

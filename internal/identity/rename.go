package identity

import (
	"fmt"
	"os"
	"path/filepath"
)

// Rename moves the file at oldName (relative to root) to the composed name
// for the given components. The operation is idempotent: when the composed
// name already matches, nothing touches the disk. The returned name is the
// filename now in effect; a non-nil error means the rename was abandoned and
// oldName is still the on-disk truth.
func Rename(root, oldName string, c Components) (string, error) {
	newName := Compose(c)
	if newName == oldName {
		return oldName, nil
	}
	oldPath := filepath.Join(root, filepath.FromSlash(oldName))
	newPath := filepath.Join(root, filepath.FromSlash(newName))
	if _, err := os.Lstat(newPath); err == nil {
		return oldName, fmt.Errorf("rename %s -> %s: target exists", oldName, newName)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return oldName, fmt.Errorf("rename %s -> %s: %w", oldName, newName, err)
	}
	return newName, nil
}

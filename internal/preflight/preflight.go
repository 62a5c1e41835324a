// Package preflight runs environment checks before expensive operations:
// directory access, free space for derivative output, and the presence of
// the external converter tools.
package preflight

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// Result is the outcome of one check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// gib is one gibibyte in bytes.
const gib = 1 << 30

// statfs is a test seam over unix.Statfs.
var statfs = func(path string) (free uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// CheckFreeSpace verifies that the filesystem holding path has at least
// minGiB gibibytes available. A zero minimum always passes.
func CheckFreeSpace(path string, minGiB int) Result {
	const name = "Free space"
	if minGiB <= 0 {
		return Result{Name: name, Passed: true, Detail: "no minimum configured"}
	}
	free, err := statfs(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	if free < uint64(minGiB)*gib {
		return Result{Name: name, Detail: fmt.Sprintf("%s has %.1f GiB free, need %d GiB", path, float64(free)/gib, minGiB)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%.1f GiB free", float64(free)/gib)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable
// and writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckTool reports whether an external converter binary is on PATH.
// Conversions degrade per-rule rather than failing the whole run, so a
// missing tool is informational.
func CheckTool(name, binary string) Result {
	path, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH", binary)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

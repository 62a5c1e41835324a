package probe

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// hashBlockSize is the read chunk used when digesting files.
const hashBlockSize = 512 * 1024

// Checksum digests the file at path with the named algorithm ("sha256" or
// "sha512") and returns the lowercase hex digest. A missing path returns
// ("", false, nil).
func Checksum(path, alg string) (string, bool, error) {
	var h hash.Hash
	switch alg {
	case "sha256":
		h = sha256.New()
	case "sha512":
		h = sha512.New()
	default:
		return "", false, fmt.Errorf("unsupported checksum algorithm %q", alg)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, hashBlockSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", false, fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), true, nil
}

// Size returns the byte size of a regular file, absent when the path does
// not exist or is not a regular file.
func Size(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// MtimeISO returns the file's modification time as an ISO-8601 UTC string
// (second precision, Z suffix), absent when the path does not exist.
func MtimeISO(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false
	}
	return info.ModTime().UTC().Format("2006-01-02T15:04:05Z"), true
}

package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"odea/internal/archive"
	"odea/internal/diag"
)

// ManifestName returns the manifest filename for a checksum algorithm.
func ManifestName(alg string) string {
	return "manifest-" + alg + ".txt"
}

// WriteManifest regenerates the payload manifest for the given algorithm
// ("sha512" or "sha256"). Every regular file under data/ is listed, in
// sorted path order, one "digest filename" line per file. Digests recorded
// in sidecars are trusted; files without one are hashed on the spot.
// Manifest validation is a separate concern and not performed here.
func WriteManifest(root, alg string, rep *diag.Reporter) error {
	var lines []string
	dataRoot := archive.Join(root, archive.DataDir)
	err := filepath.WalkDir(dataRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		f, err := LoadFile(root, p, rep)
		if f == nil {
			return err
		}
		if err != nil {
			// Reported already; the manifest still needs the digest.
			f = NewFile(f.Filename)
		}
		digest := f.SHA512
		if alg == "sha256" {
			digest = f.SHA256
		}
		if digest == "" {
			digest, err = f.Checksum(root, alg)
			if err != nil {
				return err
			}
		}
		lines = append(lines, digest+" "+f.Filename)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", archive.DataDir, err)
	}

	manifest := archive.Join(root, ManifestName(alg))
	if err := os.WriteFile(manifest, []byte(strings.Join(lines, "\r\n")), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", ManifestName(alg), err)
	}
	return nil
}

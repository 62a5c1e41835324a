package derive

import (
	"path/filepath"
	"strings"

	"odea/internal/identity"
)

// TargetName builds the bare derivative filename for a source identity:
// the source's basename stem, the canonical rule name as the format tag,
// the source's identifier, and the target extension.
func TargetName(source identity.Components, rule, ext string) string {
	stem := filepath.Base(source.Basename)
	return identity.Compose(identity.Components{
		Basename:   stem,
		FormatTag:  CanonicalName(rule),
		Identifier: source.Identifier,
		Extension:  strings.TrimPrefix(ext, "."),
	})
}

// TargetPath joins the derivative directory with the derivative filename.
// Deriving the same source with the same rule always yields the same path,
// which is what makes the no-overwrite policy idempotent.
func TargetPath(derivDir string, source identity.Components, rule, ext string) string {
	return filepath.Join(derivDir, TargetName(source, rule, ext))
}

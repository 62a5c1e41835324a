package identity

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// FormatSource tags the original ingested copy of an item.
const FormatSource = "SRC"

// uuidPattern matches canonical hyphenated UUID strings embedded in
// filenames, case-insensitive.
var uuidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)

// Components is the decomposed form of an archive filename. FormatTag and
// Identifier are empty when the corresponding segment is missing; a missing
// FormatTag defaults to FormatSource only at tagging time, so legacy names
// stay untouched until they are deliberately tagged.
type Components struct {
	Basename   string
	FormatTag  string
	Identifier string
	Extension  string
}

// Compose joins the components into a filename, omitting empty segments.
// This is the exact inverse used by rename.
func Compose(c Components) string {
	parts := make([]string, 0, 4)
	for _, part := range []string{c.Basename, c.FormatTag, c.Identifier, c.Extension} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, ".")
}

// Decompose splits a filename into components. A non-empty identifier that
// appears verbatim in the filename anchors the split: everything before the
// match (minus a trailing dot) is basename[.formatTag], everything after is
// the extension. Without an anchor the identifier is recovered from the name
// when present, otherwise ordinary extension splitting applies.
func Decompose(filename, identifier string) Components {
	if identifier == "" || !strings.Contains(filename, identifier) {
		if found, ok := FindIdentifier(filename); ok {
			identifier = found
		}
	}

	var stem, ext string
	if identifier != "" && strings.Contains(filename, identifier) {
		idx := strings.LastIndex(filename, identifier)
		stem = strings.Trim(filename[:idx], ".")
		ext = strings.TrimPrefix(filename[idx+len(identifier):], ".")
	} else {
		identifier = ""
		ext = strings.TrimPrefix(path.Ext(filename), ".")
		stem = strings.TrimSuffix(filename, path.Ext(filename))
	}

	c := Components{Identifier: identifier, Extension: ext}
	if base, tag, ok := strings.Cut(stem, "."); ok {
		c.Basename = base
		c.FormatTag = tag
	} else {
		c.Basename = stem
	}
	return c
}

// FindIdentifier scans a filename for an embedded UUID and returns the last
// match, mirroring the precedence of derivative names where the identifier
// segment follows the format tag.
func FindIdentifier(filename string) (string, bool) {
	matches := uuidPattern.FindAllString(filename, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1], true
}

// NewIdentifier returns a fresh random (version 4) UUID in canonical
// lowercase form.
func NewIdentifier() string {
	return uuid.NewString()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

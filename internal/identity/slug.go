package identity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// slugMaxLength bounds a slugged basename, including the path from the
// archive root but excluding the format tag, identifier, and extension.
const slugMaxLength = 60

// slugSeparator replaces runs of characters that are unsafe in filenames.
const slugSeparator = "-"

// slugInvalidPattern matches runs of characters outside the slug alphabet.
// Path separators and dots are kept so slugs survive as relative paths.
var slugInvalidPattern = regexp.MustCompile(`[^-a-z0-9_/.]+`)

// diacriticStripper decomposes characters and removes combining marks, so
// accented letters fold to their ASCII base before slugging.
var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify returns a shortened, sanitized form of a file basename: lowercase,
// diacritics stripped, anything outside [a-z0-9_/.-] collapsed to a single
// separator, truncated to slugMaxLength on a separator boundary (never
// mid-token).
func Slugify(basename string) string {
	slug := strings.ToLower(basename)
	if stripped, _, err := transform.String(diacriticStripper, slug); err == nil {
		slug = stripped
	}
	slug = slugInvalidPattern.ReplaceAllString(slug, slugSeparator)
	slug = strings.Trim(slug, slugSeparator)

	if len(slug) <= slugMaxLength {
		return slug
	}
	cut := slugMaxLength
	if idx := strings.LastIndexAny(slug[:slugMaxLength+1], "-_/."); idx > 0 {
		cut = idx + 1
	}
	return slug[:cut]
}

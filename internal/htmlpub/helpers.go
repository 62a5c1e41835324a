package htmlpub

import (
	"html/template"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
)

// truncateLength bounds card descriptions on the collection index.
const truncateLength = 200

var (
	bracketURLPattern = regexp.MustCompile(`&lt;((?:http://|https://|mailto:)[^&]*?)&gt;`)
	hashtagPattern    = regexp.MustCompile(`#[\p{L}\p{N}\-_]+`)
)

// Truncate shortens a description for index pages, preferring to cut at the
// last full stop under the limit. With no full stop in range the text is cut
// at the limit and marked with an ellipsis.
func Truncate(text string, length int) string {
	if length == -1 || len(text) <= length {
		return text
	}
	head := text[:length]
	if idx := strings.LastIndex(head, ". "); idx >= 0 {
		return head[:idx+1]
	}
	return head + " ..."
}

// urlize escapes a metadata value and turns its URLs into links: a value
// that is nothing but a URL becomes one, and URLs written in angle brackets
// inside running text are linked in place.
func urlize(text string) template.HTML {
	if strings.HasPrefix(text, "http") && !strings.Contains(text, " ") {
		escaped := template.HTMLEscapeString(text)
		return template.HTML(`<a href="` + escaped + `">` + escaped + `</a>`)
	}
	escaped := template.HTMLEscapeString(text)
	linked := bracketURLPattern.ReplaceAllString(escaped, `<a href="$1">$1</a>`)
	return template.HTML(linked)
}

// formatNote renders a note value, additionally styling #hashtags as badges.
func formatNote(text string) template.HTML {
	linked := string(urlize(text))
	badged := hashtagPattern.ReplaceAllStringFunc(linked, func(tag string) string {
		return `<span class="badge bg-secondary">` + tag + `</span>`
	})
	return template.HTML(badged)
}

// byteSize formats a file size for display, empty when unknown.
func byteSize(size int64) string {
	if size < 0 {
		return ""
	}
	return humanize.IBytes(uint64(size))
}

package tagfile

import "strings"

const (
	// wrapWidth is the soft-wrap column for rendered tag lines.
	wrapWidth = 70
	// continuationIndent prefixes folded continuation lines.
	continuationIndent = "    "
)

// wrapLine soft-wraps a rendered "name: value" line at wrapWidth columns.
// Breaks happen only on whitespace, never inside hyphenated compounds or
// long unbroken tokens (filenames, hashes, URLs stay greppable on one
// line even when they exceed the width).
func wrapLine(line string) []string {
	var out []string
	indent := ""
	rest := line
	for {
		budget := wrapWidth - len(indent)
		if len(rest) <= budget {
			out = append(out, indent+rest)
			return out
		}
		cut := breakIndex(rest, budget)
		if cut <= 0 {
			// No usable whitespace break: emit the oversized token whole.
			cut = nextSpace(rest)
			if cut < 0 {
				out = append(out, indent+rest)
				return out
			}
		}
		out = append(out, indent+strings.TrimRight(rest[:cut], " "))
		rest = strings.TrimLeft(rest[cut:], " ")
		indent = continuationIndent
		if rest == "" {
			return out
		}
	}
}

// breakIndex finds the last space at or before the budget, so the head
// fits the wrap column. Returns -1 when no space qualifies.
func breakIndex(s string, budget int) int {
	if budget >= len(s) {
		budget = len(s) - 1
	}
	for i := budget; i > 0; i-- {
		if s[i] == ' ' {
			return i
		}
	}
	return -1
}

func nextSpace(s string) int {
	return strings.IndexByte(s, ' ')
}

package tagfile

import (
	"regexp"
	"sort"
	"strings"
)

// absentToken is the literal emitted for explicitly absent values.
const absentToken = "None"

var newlinePattern = regexp.MustCompile(`\r\n|\r|\n`)

// EncodeOptions controls serialization behaviour.
type EncodeOptions struct {
	// StripEmpties drops fields whose values are absent or the literal
	// "None"/"null" instead of emitting an explicit None token. Used for
	// File sidecars and other ephemeral records; Bag and Item persistence
	// keeps the tokens so cleared fields survive a reload.
	StripEmpties bool
}

// Encode renders a record in tag-file form. Well-known terms are emitted
// first in presentation order, remaining fields alphabetically. Multi-valued
// fields repeat the field name, one logical line per value. Every logical
// line is soft-wrapped and CRLF terminated.
func Encode(record *Record, opts EncodeOptions) []byte {
	var b strings.Builder
	for _, name := range encodeOrder(record) {
		values, _ := record.Get(name)
		label := strings.ReplaceAll(name, "_", " ")
		for _, value := range values {
			text, keep := renderValue(value, opts.StripEmpties)
			if !keep {
				continue
			}
			for _, line := range wrapLine(label + ": " + text) {
				b.WriteString(line)
				b.WriteString("\r\n")
			}
		}
	}
	return []byte(b.String())
}

func renderValue(value Value, stripEmpties bool) (string, bool) {
	if value.Absent || value.Text == absentToken || value.Text == "null" {
		if stripEmpties {
			return "", false
		}
		return absentToken, true
	}
	// Raw line breaks would fork a value across tag entries; collapse them
	// to single spaces before wrapping.
	return newlinePattern.ReplaceAllString(value.Text, " "), true
}

func encodeOrder(record *Record) []string {
	names := record.Names()
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}

	ordered := make([]string, 0, len(names))
	emitted := make(map[string]bool, len(names))
	for _, term := range Terms {
		if present[term] {
			ordered = append(ordered, term)
			emitted[term] = true
		}
	}

	rest := make([]string, 0, len(names))
	for _, name := range names {
		if !emitted[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

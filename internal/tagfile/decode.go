package tagfile

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// noSpaceJoinFields lists fields whose folded continuations rejoin without
// an inserted space: their values are single unbroken tokens (paths, long
// hex digests, URLs) that happened to exceed the wrap column.
var noSpaceJoinFields = map[string]bool{
	"filename": true,
	"basename": true,
	"sha512":   true,
	"source":   true,
}

// ParseError reports a structurally invalid tag line. It is fatal for the
// file being parsed but must not abort a scan over many files.
type ParseError struct {
	Path string
	Line int
	Text string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("tag line %d: missing ':' separator in %q", e.Line, e.Text)
	}
	return fmt.Sprintf("%s: tag line %d: missing ':' separator in %q", e.Path, e.Line, e.Text)
}

// Decode parses tag-file text into a record. Folded lines are rejoined
// (no-space join for the fields in noSpaceJoinFields, space join otherwise),
// blank lines are skipped, and repeated field names accumulate into a
// sequence in encounter order. The literal tokens "None" and "null" decode
// to the explicit absent marker.
func Decode(data []byte) (*Record, error) {
	record := NewRecord()

	name := ""
	value := ""
	open := false

	flush := func() {
		if !open {
			return
		}
		record.Add(name, decodeValue(strings.TrimSpace(value)))
		open = false
	}

	for num, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if isSpace(line[0]) && open {
			if noSpaceJoinFields[name] {
				value += strings.TrimSpace(line)
			} else {
				value += " " + strings.TrimSpace(line)
			}
			continue
		}

		flush()

		sep := strings.Index(line, ":")
		if sep < 0 {
			return record, &ParseError{Line: num + 1, Text: strings.TrimSpace(line)}
		}
		name = NormalizeName(line[:sep])
		value = line[sep+1:]
		open = true
	}
	flush()

	return record, nil
}

// DecodeFile reads and decodes a tag file from disk. Parse errors carry the
// offending path.
func DecodeFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	record, err := Decode(data)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr.Path = path
		}
		return record, err
	}
	return record, nil
}

func decodeValue(text string) Value {
	if text == absentToken || text == "null" {
		return Absent()
	}
	return Value{Text: text}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

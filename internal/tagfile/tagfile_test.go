package tagfile

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeOrdersTermsBeforeExtras(t *testing.T) {
	record := NewRecord()
	record.Set("zebra", String("last"))
	record.Set("note", String("a note"))
	record.Set("title", String("A Title"))
	record.Set("alpha", String("first extra"))

	text := string(Encode(record, EncodeOptions{}))
	lines := strings.Split(strings.TrimSuffix(text, "\r\n"), "\r\n")
	got := make([]string, 0, len(lines))
	for _, line := range lines {
		got = append(got, strings.SplitN(line, ":", 2)[0])
	}

	want := []string{"title", "note", "alpha", "zebra"}
	if len(got) != len(want) {
		t.Fatalf("line count = %d, want %d (%q)", len(got), len(want), text)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field order = %v, want %v", got, want)
		}
	}
}

func TestEncodeFoldsLongValues(t *testing.T) {
	record := NewRecord()
	record.Set("description", String(strings.Repeat("word ", 40)+"end"))

	text := string(Encode(record, EncodeOptions{}))
	lines := strings.Split(strings.TrimSuffix(text, "\r\n"), "\r\n")
	if len(lines) < 2 {
		t.Fatalf("expected folded output, got %q", text)
	}
	for i, line := range lines {
		if len(line) > 70 {
			t.Fatalf("line %d exceeds wrap width: %d chars", i, len(line))
		}
		if i > 0 && !strings.HasPrefix(line, "    ") {
			t.Fatalf("continuation line %d missing indent: %q", i, line)
		}
	}
}

func TestEncodeNeverBreaksHyphenatedCompounds(t *testing.T) {
	compound := "some-quite-long-hyphenated-compound-token"
	record := NewRecord()
	record.Set("description", String(strings.Repeat("pad ", 12)+compound+" tail"))

	text := string(Encode(record, EncodeOptions{}))
	for _, line := range strings.Split(text, "\r\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "some-quite") && !strings.Contains(trimmed, compound) {
			t.Fatalf("compound token split across lines: %q", text)
		}
	}
}

func TestEncodeReplacesEmbeddedNewlines(t *testing.T) {
	record := NewRecord()
	record.Set("note", String("line one\nline two\r\nline three"))

	text := string(Encode(record, EncodeOptions{}))
	body := strings.TrimSuffix(text, "\r\n")
	if strings.ContainsAny(strings.ReplaceAll(body, "\r\n", "|"), "\r\n") {
		t.Fatalf("bare CR or LF inside encoded value: %q", text)
	}
	decoded, err := Decode([]byte(text))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, _ := decoded.First("note")
	if got != "line one line two line three" {
		t.Fatalf("note = %q", got)
	}
}

func TestStripEmptiesDropsAbsentFields(t *testing.T) {
	record := NewRecord()
	record.Set("title", String("kept"))
	record.Set("coverage", Absent())
	record.Set("rights", String("None"))

	stripped := string(Encode(record, EncodeOptions{StripEmpties: true}))
	if strings.Contains(stripped, "coverage") || strings.Contains(stripped, "rights") {
		t.Fatalf("absent fields not stripped: %q", stripped)
	}

	kept := string(Encode(record, EncodeOptions{}))
	if !strings.Contains(kept, "coverage: None") || !strings.Contains(kept, "rights: None") {
		t.Fatalf("expected explicit None tokens: %q", kept)
	}
}

func TestDecodeRepeatedFieldsPreserveOrder(t *testing.T) {
	record := NewRecord()
	record.Set("title", String("A"))
	record.Set("note", String("x"), String("y"))

	decoded, err := Decode(Encode(record, EncodeOptions{}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	notes := decoded.Texts("note")
	if len(notes) != 2 || notes[0] != "x" || notes[1] != "y" {
		t.Fatalf("note = %v, want ordered [x y]", notes)
	}
}

func TestDecodeNoSpaceJoinForUnbrokenTokens(t *testing.T) {
	text := "filename: data/some/very/long/path/that/keeps/going/and/going/file.SR\r\n" +
		"    C.9bf0e963-2fc3-44c5-a09a-93629e4ba3e4.txt\r\n" +
		"description: a folded sentence that\r\n" +
		"    continues here\r\n"

	record, err := Decode([]byte(text))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	filename, _ := record.First("filename")
	if strings.Contains(filename, " ") {
		t.Fatalf("filename continuation joined with space: %q", filename)
	}
	if !strings.HasSuffix(filename, ".9bf0e963-2fc3-44c5-a09a-93629e4ba3e4.txt") {
		t.Fatalf("filename = %q", filename)
	}
	description, _ := record.First("description")
	if description != "a folded sentence that continues here" {
		t.Fatalf("description = %q", description)
	}
}

func TestDecodeNormalizesFieldNames(t *testing.T) {
	record, err := Decode([]byte("Archive Url: https://example.net\r\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := record.First("archive_url")
	if !ok || got != "https://example.net" {
		t.Fatalf("archive_url = %q (ok=%v)", got, ok)
	}
}

func TestDecodeStructuralError(t *testing.T) {
	_, err := Decode([]byte("title: ok\r\nthis line has no separator\r\n"))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Line != 2 {
		t.Fatalf("line = %d, want 2", parseErr.Line)
	}
	if !strings.Contains(parseErr.Error(), "this line has no separator") {
		t.Fatalf("error should name the offending line: %v", parseErr)
	}
}

func TestDecodeSkipsBlankLines(t *testing.T) {
	record, err := Decode([]byte("title: A\r\n\r\n   \r\nnote: B\r\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if record.Len() != 2 {
		t.Fatalf("fields = %v", record.Names())
	}
}

func TestDecodeNoneTokens(t *testing.T) {
	record, err := Decode([]byte("coverage: None\r\nrights: null\r\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	values, _ := record.Get("coverage")
	if len(values) != 1 || !values[0].Absent {
		t.Fatalf("coverage = %+v, want absent marker", values)
	}
	values, _ = record.Get("rights")
	if len(values) != 1 || !values[0].Absent {
		t.Fatalf("rights = %+v, want absent marker", values)
	}
}

func TestRoundTrip(t *testing.T) {
	record := NewRecord()
	record.Set("title", String("An Oral History Interview"))
	record.Set("creator", String("First Speaker"), String("Second Speaker"))
	record.Set("subject", String("ritual"), String("seasonal migration"))
	record.Set("description", String(strings.TrimSpace(strings.Repeat("a reasonably long sentence about the recording ", 4))))
	record.Set("coverage", Absent())
	record.Set("basename", String("data/"+strings.Repeat("segment-", 12)+"end"))
	record.Set("custom_field", String("kept verbatim"))

	decoded, err := Decode(Encode(record, EncodeOptions{}))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Equal(record) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, record)
	}
}

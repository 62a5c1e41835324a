package catalog

import "odea/internal/tagfile"

// scalarValue wraps a struct field for encoding. Empty means the field was
// never set or was cleared; it encodes as the explicit absent token unless
// the encoder is stripping empties.
func scalarValue(text string) tagfile.Value {
	if text == "" {
		return tagfile.Absent()
	}
	return tagfile.String(text)
}

// listValues wraps a multi-valued field for encoding. An empty list encodes
// as a single absent token so the field name survives a full-fidelity save.
func listValues(texts []string) []tagfile.Value {
	if len(texts) == 0 {
		return []tagfile.Value{tagfile.Absent()}
	}
	return tagfile.Strings(texts)
}

// scalarText unwraps a decoded field expected to hold one value. A repeated
// field does not fit a scalar slot; the caller routes the whole field to the
// entity's Extra record instead, so no value is silently dropped.
func scalarText(values []tagfile.Value) (text string, ok bool) {
	if len(values) != 1 {
		return "", false
	}
	if values[0].Absent {
		return "", true
	}
	return values[0].Text, true
}

func listTexts(values []tagfile.Value) []string {
	var texts []string
	for _, value := range values {
		if !value.Absent {
			texts = append(texts, value.Text)
		}
	}
	return texts
}

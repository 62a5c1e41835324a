package tagfile

import "strings"

// Terms lists the well-known metadata term names in presentation order.
// Encoded output emits these first; everything else follows alphabetically.
var Terms = []string{
	"dcmi_type",
	"title",
	"identifier",
	"creator",
	"subject",
	"contributor",
	"coverage",
	"date",
	"description",
	"language",
	"publisher",
	"relation",
	"rights",
	"source",
	"note",
}

// Value is a single tag value. An absent value decodes from (and encodes to)
// the literal "None" token, keeping "explicitly cleared" distinguishable from
// "never set" across a save/load cycle.
type Value struct {
	Text   string
	Absent bool
}

// String wraps a plain string value.
func String(text string) Value {
	return Value{Text: text}
}

// Strings wraps a slice of plain string values.
func Strings(texts []string) []Value {
	values := make([]Value, 0, len(texts))
	for _, text := range texts {
		values = append(values, Value{Text: text})
	}
	return values
}

// Absent returns the explicit absent-value marker.
func Absent() Value {
	return Value{Absent: true}
}

// Record is an ordered mapping from normalized field name to one or more
// values. Field names are case-folded with spaces mapped to underscores;
// encounter order is preserved both across fields and within a field.
type Record struct {
	names  []string
	fields map[string][]Value
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{fields: make(map[string][]Value)}
}

// NormalizeName folds a field name to its canonical form: trimmed,
// lowercased, spaces replaced by underscores.
func NormalizeName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return strings.ReplaceAll(name, " ", "_")
}

// Set replaces all values for the named field, registering the field at the
// end of encounter order if it is new. Setting zero values removes the field.
func (r *Record) Set(name string, values ...Value) {
	name = NormalizeName(name)
	if len(values) == 0 {
		r.Delete(name)
		return
	}
	if _, ok := r.fields[name]; !ok {
		r.names = append(r.names, name)
	}
	r.fields[name] = append([]Value(nil), values...)
}

// Add appends one value to the named field, preserving encounter order.
func (r *Record) Add(name string, value Value) {
	name = NormalizeName(name)
	if _, ok := r.fields[name]; !ok {
		r.names = append(r.names, name)
	}
	r.fields[name] = append(r.fields[name], value)
}

// Delete removes the named field entirely.
func (r *Record) Delete(name string) {
	name = NormalizeName(name)
	if _, ok := r.fields[name]; !ok {
		return
	}
	delete(r.fields, name)
	for i, existing := range r.names {
		if existing == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}

// Get returns the values recorded for the named field in encounter order.
func (r *Record) Get(name string) ([]Value, bool) {
	values, ok := r.fields[NormalizeName(name)]
	if !ok {
		return nil, false
	}
	return append([]Value(nil), values...), true
}

// First returns the first non-absent value text for the named field.
func (r *Record) First(name string) (string, bool) {
	values, ok := r.fields[NormalizeName(name)]
	if !ok {
		return "", false
	}
	for _, value := range values {
		if !value.Absent {
			return value.Text, true
		}
	}
	return "", false
}

// Texts returns the non-absent value texts for the named field.
func (r *Record) Texts(name string) []string {
	values, ok := r.fields[NormalizeName(name)]
	if !ok {
		return nil
	}
	texts := make([]string, 0, len(values))
	for _, value := range values {
		if !value.Absent {
			texts = append(texts, value.Text)
		}
	}
	return texts
}

// Names returns the field names in encounter order.
func (r *Record) Names() []string {
	return append([]string(nil), r.names...)
}

// Len reports the number of distinct fields.
func (r *Record) Len() int {
	return len(r.names)
}

// Equal reports whether two records hold the same fields with the same
// values in the same per-field order. Field registration order is not
// significant for equality.
func (r *Record) Equal(other *Record) bool {
	if r == nil || other == nil {
		return r == other
	}
	if len(r.fields) != len(other.fields) {
		return false
	}
	for name, values := range r.fields {
		theirs, ok := other.fields[name]
		if !ok || len(theirs) != len(values) {
			return false
		}
		for i := range values {
			if values[i] != theirs[i] {
				return false
			}
		}
	}
	return true
}

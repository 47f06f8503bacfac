// Package curate turns a directory of JSON files into a validated,
// ordered dataset: discovery, parsing, schema checks and collation.
//
// Records keep the exact bytes they were read from. Lookups go through a
// parsed fastjson document, so the combined output never reorders keys or
// rewrites number literals.
package curate

import (
	"encoding/json"
	"strings"

	"github.com/valyala/fastjson"
)

// Record is one JSON object read from a single input file.
type Record struct {
	ID     string          `json:"id"`
	Source string          `json:"source"`
	Raw    json.RawMessage `json:"-"`

	doc *fastjson.Value
}

// ParseRecord parses raw as a JSON document and wraps it in a Record.
// The caller decides whether a non-object document is acceptable.
//
// raw must also be valid for encoding/json, which re-indents it into the
// combined output. fastjson alone lets NaN, leading zeros, unknown escapes
// and raw control characters in strings through.
func ParseRecord(id, source string, raw []byte) (Record, error) {
	if !json.Valid(raw) {
		var strict json.RawMessage
		return Record{}, json.Unmarshal(raw, &strict)
	}
	doc, err := fastjson.ParseBytes(raw)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Source: source, Raw: raw, doc: doc}, nil
}

// Kind returns the JSON type of the top-level document ("object", "array", ...).
func (r Record) Kind() string {
	return kindOf(r.doc)
}

// kindOf names a JSON value's type, folding true and false into "boolean".
func kindOf(v *fastjson.Value) string {
	if v == nil {
		return "null"
	}
	switch t := v.Type(); t {
	case fastjson.TypeTrue, fastjson.TypeFalse:
		return "boolean"
	default:
		return t.String()
	}
}

// Lookup resolves a dotted path ("meta.owner") against the record.
// JSON null is reported as absent.
func (r Record) Lookup(path string) (*fastjson.Value, bool) {
	if r.doc == nil || path == "" {
		return nil, false
	}
	v := r.doc.Get(strings.Split(path, ".")...)
	if v == nil || v.Type() == fastjson.TypeNull {
		return nil, false
	}
	return v, true
}

// Each calls fn for every top-level key in document order.
func (r Record) Each(fn func(key string, v *fastjson.Value)) {
	if r.doc == nil {
		return
	}
	obj, err := r.doc.Object()
	if err != nil {
		return
	}
	obj.Visit(func(key []byte, v *fastjson.Value) {
		fn(string(key), v)
	})
}

// Dataset is the ordered collection of accepted records for one run.
type Dataset struct {
	Name    string   `json:"name"`
	Records []Record `json:"records"`
}

// Len returns the number of records in the dataset.
func (d Dataset) Len() int { return len(d.Records) }

// Package extract pulls named scalar fields out of JSON payloads without
// binding them to a schema. The Helix and legacy v5 endpoints wrap their
// records in different envelopes, so callers ask for leaf fields by name and
// get every occurrence in document order, whatever the nesting.
package extract

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Document holds every scalar leaf of a decoded payload, grouped by field name.
type Document struct {
	fields  map[string][]string
	records map[string][]*Document
}

func newDocument() *Document {
	return &Document{fields: make(map[string][]string)}
}

// frame is one level of the container stack while walking tokens.
type frame struct {
	object  bool
	key     string // Current key in an object, the enclosing key for an array
	wantKey bool
	record  *Document // Set for objects that are direct elements of an array
}

// Parse walks body token by token and records each scalar value under the
// key it was found at. Decoding stops quietly at the first syntax error, so a
// truncated or damaged payload still yields everything read before the fault.
func Parse(body []byte) *Document {
	doc := newDocument()

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var stack []frame
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}

		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{':
				f := frame{object: true, wantKey: true}
				if n := len(stack); n > 0 && !stack[n-1].object {
					f.record = newDocument()
					doc.addRecord(stack[n-1].key, f.record)
				}
				stack = append(stack, f)
			case '[':
				f := frame{}
				if n := len(stack); n > 0 {
					f.key = stack[n-1].key
				}
				stack = append(stack, f)
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				valueDone(stack)
			}
			continue
		}

		if n := len(stack); n > 0 && stack[n-1].object && stack[n-1].wantKey {
			if key, ok := tok.(string); ok {
				stack[n-1].key = key
				stack[n-1].wantKey = false
			}
			continue
		}

		if n := len(stack); n > 0 && stack[n-1].object {
			if value, ok := scalar(tok); ok {
				key := stack[n-1].key
				doc.fields[key] = append(doc.fields[key], value)
				for _, f := range stack {
					if f.record != nil {
						f.record.fields[key] = append(f.record.fields[key], value)
					}
				}
			}
		}
		valueDone(stack)
	}

	return doc
}

func (d *Document) addRecord(field string, rec *Document) {
	if d.records == nil {
		d.records = make(map[string][]*Document)
	}
	d.records[field] = append(d.records[field], rec)
}

// valueDone flips the enclosing object back to expecting a key.
func valueDone(stack []frame) {
	if n := len(stack); n > 0 && stack[n-1].object {
		stack[n-1].wantKey = true
	}
}

// scalar renders a leaf token as text. Nulls count as absent.
func scalar(tok json.Token) (string, bool) {
	switch v := tok.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// All returns every value recorded for field, in document order.
func (d *Document) All(field string) []string {
	return d.fields[field]
}

// First returns the first value recorded for field.
func (d *Document) First(field string) (string, bool) {
	values := d.fields[field]
	if len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Has reports whether field occurred at least once.
func (d *Document) Has(field string) bool {
	return len(d.fields[field]) > 0
}

// Records returns the objects found directly inside the arrays stored under
// field, each as its own Document, in document order. Fields of one record
// never leak into another, so a record missing a field stays distinguishable.
// A record cut short by a truncated payload holds what was read of it.
func (d *Document) Records(field string) []*Document {
	return d.records[field]
}

// All is a one-shot helper for callers that need a single field.
func All(field string, body []byte) []string {
	return Parse(body).All(field)
}

// Package knowledge renders answers from a tenant's nested knowledge document
// and carries the default seed dataset.
package knowledge

import (
	"strconv"
)

// Document is a read-only view over a nested attribute document as decoded
// from JSON or YAML. Every accessor reports presence explicitly; a missing key
// at any depth, or a value of the wrong shape, yields ok == false.
type Document struct {
	data map[string]any
}

// NewDocument wraps data. A nil map is an empty document.
func NewDocument(data map[string]any) Document {
	return Document{data: data}
}

// Empty reports whether the document has no top-level keys.
func (d Document) Empty() bool {
	return len(d.data) == 0
}

// Lookup walks path through nested maps.
func (d Document) Lookup(path ...string) (any, bool) {
	var cur any = d.data
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Section returns the nested map at path as a Document.
func (d Document) Section(path ...string) (Document, bool) {
	v, ok := d.Lookup(path...)
	if !ok {
		return Document{}, false
	}
	m, ok := asMap(v)
	if !ok {
		return Document{}, false
	}
	return Document{data: m}, true
}

// String returns the scalar at path rendered as text. Strings must be
// non-empty; numbers are formatted without trailing zeros.
func (d Document) String(path ...string) (string, bool) {
	v, ok := d.Lookup(path...)
	if !ok {
		return "", false
	}
	return scalarString(v)
}

// Strings returns the list at path. Every element must be a scalar.
func (d Document) Strings(path ...string) ([]string, bool) {
	v, ok := d.Lookup(path...)
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := scalarString(item)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// Bool returns the boolean at path.
func (d Document) Bool(path ...string) (value, ok bool) {
	v, found := d.Lookup(path...)
	if !found {
		return false, false
	}
	b, isBool := v.(bool)
	return b, isBool
}

// Keys returns the keys of the map at path in no particular order.
func (d Document) Keys(path ...string) ([]string, bool) {
	sec, ok := d.Section(path...)
	if !ok || sec.Empty() {
		return nil, false
	}
	keys := make([]string, 0, len(sec.data))
	for k := range sec.data {
		keys = append(keys, k)
	}
	return keys, true
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, x != ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return "", false
	}
}

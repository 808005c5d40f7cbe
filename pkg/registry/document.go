// Package registry turns the stored registration document (post types,
// taxonomies and meta boxes created through the admin UI) into typed
// definitions, validates it and persists it through a store.
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formkit/pkg/data"
	"github.com/goliatone/go-formkit/pkg/data/phpserial"
)

// Collection names inside a registration document.
const (
	PostTypes  = "post_types"
	Taxonomies = "taxonomies"
	MetaBoxes  = "meta_boxes"
)

// Collections lists the document collections in build order.
var Collections = []string{PostTypes, Taxonomies, MetaBoxes}

// Document wraps a decoded registration document.
type Document struct {
	raw map[string]any
}

// Entry is one item of a collection. Key is the list index or the repeater
// id the item was stored under.
type Entry struct {
	Key    string
	Fields map[string]any
}

// NewDocument wraps raw. A nil map yields an empty document.
func NewDocument(raw map[string]any) Document {
	if raw == nil {
		raw = map[string]any{}
	}
	return Document{raw: raw}
}

// DocumentFrom builds a document from a decoded map, JSON text or a legacy
// serialized blob. Values that do not decode to an object yield an error.
func DocumentFrom(value any) (Document, error) {
	if value == nil {
		return NewDocument(nil), nil
	}
	switch typed := value.(type) {
	case Document:
		return typed, nil
	case []byte:
		return Decode(typed)
	case string:
		return Decode([]byte(typed))
	}
	obj, ok := data.Cast(value, data.TargetObject).(map[string]any)
	if !ok {
		return Document{}, fmt.Errorf("registry: unsupported document value %T", value)
	}
	return NewDocument(obj), nil
}

// Decode parses a stored document. JSON is tried first, then legacy
// serialized blobs, then YAML. Empty input yields an empty document.
func Decode(raw []byte) (Document, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return NewDocument(nil), nil
	}

	switch data.Sniff(string(trimmed)) {
	case data.FormatJSON:
		var doc map[string]any
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Document{}, fmt.Errorf("registry: decode json: %w", err)
		}
		return NewDocument(doc), nil
	case data.FormatLegacy:
		decoded, err := phpserial.Unmarshal(string(trimmed))
		if err != nil {
			return Document{}, fmt.Errorf("registry: decode serialized document: %w", err)
		}
		obj, ok := decoded.(map[string]any)
		if !ok {
			return Document{}, fmt.Errorf("registry: decode serialized document: not an object")
		}
		return NewDocument(obj), nil
	}

	var doc any
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("registry: decode yaml: %w", err)
	}
	obj, ok := normalizeYAML(doc).(map[string]any)
	if !ok {
		return Document{}, fmt.Errorf("registry: document must be an object")
	}
	return NewDocument(obj), nil
}

// Raw returns the underlying map.
func (d Document) Raw() map[string]any {
	if d.raw == nil {
		return map[string]any{}
	}
	return d.raw
}

// Empty reports whether no collection holds entries.
func (d Document) Empty() bool {
	for _, name := range Collections {
		if len(d.Entries(name)) > 0 {
			return false
		}
	}
	return true
}

// Entries returns the object entries of collection. Lists keep their order;
// objects keyed by repeater id are ordered by key. Non-object items are
// skipped.
func (d Document) Entries(collection string) []Entry {
	switch items := data.Walk(collection, d.raw, nil).(type) {
	case []any:
		out := make([]Entry, 0, len(items))
		for idx, item := range items {
			if fields, ok := item.(map[string]any); ok {
				out = append(out, Entry{Key: strconv.Itoa(idx), Fields: fields})
			}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(items))
		for key := range items {
			keys = append(keys, key)
		}
		sortKeys(keys)
		out := make([]Entry, 0, len(keys))
		for _, key := range keys {
			if fields, ok := items[key].(map[string]any); ok {
				out = append(out, Entry{Key: key, Fields: fields})
			}
		}
		return out
	default:
		return nil
	}
}

// Append adds fields to collection and returns the key it was stored under.
func (d *Document) Append(collection string, fields map[string]any) string {
	if d.raw == nil {
		d.raw = map[string]any{}
	}
	switch items := d.raw[collection].(type) {
	case map[string]any:
		next := len(items)
		for {
			key := strconv.Itoa(next)
			if _, exists := items[key]; !exists {
				items[key] = fields
				return key
			}
			next++
		}
	case []any:
		d.raw[collection] = append(items, fields)
		return strconv.Itoa(len(items))
	default:
		d.raw[collection] = []any{fields}
		return "0"
	}
}

// MarshalJSON encodes the raw document.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Raw())
}

// EncodeJSON returns the document as indented JSON.
func (d Document) EncodeJSON() ([]byte, error) {
	out, err := json.MarshalIndent(d.Raw(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("registry: encode json: %w", err)
	}
	return out, nil
}

// EncodeYAML returns the document as YAML.
func (d Document) EncodeYAML() ([]byte, error) {
	out, err := yaml.Marshal(d.Raw())
	if err != nil {
		return nil, fmt.Errorf("registry: encode yaml: %w", err)
	}
	return out, nil
}

// sortKeys orders numeric keys numerically, before any other key.
func sortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}

// normalizeYAML converts map[any]any nodes produced for non-string keys.
func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, item := range typed {
			typed[key] = normalizeYAML(item)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[strings.TrimSpace(fmt.Sprint(key))] = normalizeYAML(item)
		}
		return out
	case []any:
		for idx, item := range typed {
			typed[idx] = normalizeYAML(item)
		}
		return typed
	default:
		return value
	}
}

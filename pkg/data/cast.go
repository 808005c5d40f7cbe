package data

import (
	"reflect"
	"strconv"
)

type targetKind int

const (
	targetNone targetKind = iota
	targetInt
	targetFloat
	targetJSON
	targetSerialize
	targetString
	targetBool
	targetArray
	targetObject
	targetFunc
)

// Target names the representation Cast converts to. The zero Target matches
// nothing and leaves values untouched.
type Target struct {
	kind targetKind
	fn   func(any) any
}

var (
	TargetInt       = Target{kind: targetInt}
	TargetFloat     = Target{kind: targetFloat}
	TargetJSON      = Target{kind: targetJSON}
	TargetSerialize = Target{kind: targetSerialize}
	TargetString    = Target{kind: targetString}
	TargetBool      = Target{kind: targetBool}
	TargetArray     = Target{kind: targetArray}
	TargetObject    = Target{kind: targetObject}
)

// Func returns a Target that hands the value to fn and returns its result.
func Func(fn func(any) any) Target {
	if fn == nil {
		return Target{}
	}
	return Target{kind: targetFunc, fn: fn}
}

var targetAliases = map[string]Target{
	"int":       TargetInt,
	"integer":   TargetInt,
	"float":     TargetFloat,
	"double":    TargetFloat,
	"real":      TargetFloat,
	"json":      TargetJSON,
	"serialize": TargetSerialize,
	"serial":    TargetSerialize,
	"str":       TargetString,
	"string":    TargetString,
	"bool":      TargetBool,
	"boolean":   TargetBool,
	"array":     TargetArray,
	"object":    TargetObject,
	"obj":       TargetObject,
}

// ParseTarget resolves a case-sensitive type name such as "int" or "boolean".
func ParseTarget(name string) (Target, bool) {
	target, ok := targetAliases[name]
	return target, ok
}

// Name returns the canonical name of the target ("func" for function targets,
// "" for the zero Target).
func (t Target) Name() string {
	switch t.kind {
	case targetInt:
		return "int"
	case targetFloat:
		return "float"
	case targetJSON:
		return "json"
	case targetSerialize:
		return "serialize"
	case targetString:
		return "string"
	case targetBool:
		return "bool"
	case targetArray:
		return "array"
	case targetObject:
		return "object"
	case targetFunc:
		return "func"
	default:
		return ""
	}
}

// Option configures a Caster.
type Option func(*Caster)

// WithBlobCodec sets the codec used for legacy serialized blobs.
func WithBlobCodec(codec BlobCodec) Option {
	return func(c *Caster) {
		c.codec = codec
	}
}

// WithoutLegacyBlobs disables legacy blob support: nothing is sniffed as a
// blob and the serialize target produces JSON text instead.
func WithoutLegacyBlobs() Option {
	return func(c *Caster) {
		c.codec = nil
	}
}

// Caster converts values between field representations.
type Caster struct {
	codec   BlobCodec
	sniffer Sniffer
}

// NewCaster builds a Caster. Without options it has no legacy codec; the
// package level Cast uses one backed by phpserial.
func NewCaster(opts ...Option) *Caster {
	c := &Caster{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.sniffer = NewSniffer(c.codec)
	return c
}

// Sniffer returns the format sniffer bound to the caster's codec.
func (c *Caster) Sniffer() Sniffer {
	return c.sniffer
}

// CastNamed resolves name with ParseTarget and casts value. Unknown names
// return value unchanged.
func (c *Caster) CastNamed(value any, name string) any {
	target, ok := ParseTarget(name)
	if !ok {
		return value
	}
	return c.Cast(value, target)
}

// Cast converts value to target.
//
// Numeric targets return nil for structured values. The json and serialize
// targets are idempotent: text already in the requested format comes back
// unchanged. The array and object targets decode JSON text and legacy blobs,
// pass numbers through and leave other plain strings as they are.
func (c *Caster) Cast(value any, target Target) any {
	v := ValueOf(value)

	switch target.kind {
	case targetInt:
		if v.IsStructured() {
			return nil
		}
		return toInt(v)

	case targetFloat:
		if v.IsStructured() {
			return nil
		}
		return toFloat64(v)

	case targetJSON:
		if c.isBlob(v) {
			value = c.decodeBlobOrFalse(v)
		}
		if IsJSON(value) {
			return value
		}
		return encodeJSON(value)

	case targetSerialize:
		if IsJSON(value) {
			decoded, err := decodeJSON(toText(v))
			if err != nil {
				return nil
			}
			value = decoded
		}
		if c.isBlob(ValueOf(value)) {
			return value
		}
		if c.codec == nil {
			return encodeJSON(value)
		}
		out, err := c.codec.Encode(value)
		if err != nil {
			return nil
		}
		return out

	case targetString:
		if v.IsStructured() {
			return encodeJSON(value)
		}
		return toText(v)

	case targetBool:
		return truthy(value)

	case targetArray:
		if v.IsNumeric() {
			return value
		}
		if v.IsString() {
			decoded, ok := c.decodeText(v)
			if !ok {
				return value
			}
			return decoded
		}
		return toArray(value)

	case targetObject:
		if v.IsNumeric() {
			return value
		}
		if v.IsString() {
			decoded, ok := c.decodeText(v)
			if !ok {
				return value
			}
			return toObject(decoded)
		}
		return toObject(value)

	case targetFunc:
		return target.fn(value)

	default:
		return value
	}
}

// decodeText decodes JSON text or a legacy blob. ok is false for plain text.
// Undecodable blobs decode to false.
func (c *Caster) decodeText(v Value) (any, bool) {
	switch c.sniffer.Sniff(v.Raw()) {
	case FormatJSON:
		decoded, err := decodeJSON(toText(v))
		if err != nil {
			return nil, true
		}
		return decoded, true
	case FormatLegacy:
		return c.decodeBlobOrFalse(v), true
	default:
		return nil, false
	}
}

func (c *Caster) isBlob(v Value) bool {
	if c.codec == nil {
		return false
	}
	text, ok := v.Text()
	return ok && c.codec.IsBlob(text)
}

// decodeBlobOrFalse decodes a legacy blob. Text that only looks like a blob
// decodes to false, so casting the result again is stable.
func (c *Caster) decodeBlobOrFalse(v Value) any {
	text, _ := v.Text()
	decoded, err := c.codec.Decode(text)
	if err != nil {
		return false
	}
	return decoded
}

// toArray gives a non-string value its array form: nil is empty, scalars are
// wrapped, maps are keyed by their stringified keys and structs expose their
// exported fields.
func toArray(value any) any {
	switch typed := value.(type) {
	case nil:
		return []any{}
	case []any, map[string]any:
		return typed
	}

	rv := indirect(reflect.ValueOf(value))
	if !rv.IsValid() {
		return []any{}
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		return mapToStringKeys(rv)
	case reflect.Struct:
		return structToMap(value)
	default:
		return []any{value}
	}
}

// toObject gives a value its object form: nil is empty, lists are keyed by
// index, scalars are stored under "scalar" and structs pass through.
func toObject(value any) any {
	switch typed := value.(type) {
	case nil:
		return map[string]any{}
	case map[string]any:
		return typed
	}

	rv := indirect(reflect.ValueOf(value))
	if !rv.IsValid() {
		return map[string]any{}
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(map[string]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[strconv.Itoa(i)] = rv.Index(i).Interface()
		}
		return out
	case reflect.Map:
		return mapToStringKeys(rv)
	case reflect.Struct:
		return value
	default:
		return map[string]any{"scalar": value}
	}
}

func mapToStringKeys(rv reflect.Value) map[string]any {
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[toText(ValueOf(iter.Key().Interface()))] = iter.Value().Interface()
	}
	return out
}

func structToMap(value any) map[string]any {
	text, err := marshalJSON(value)
	if err != nil {
		return map[string]any{}
	}
	decoded, err := decodeJSON(text)
	if err != nil {
		return map[string]any{}
	}
	out, ok := decoded.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return out
}

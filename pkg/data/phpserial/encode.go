package phpserial

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Marshal encodes value as serialized text.
//
// Slices and arrays become integer keyed arrays, maps become arrays with
// their keys sorted (integer-looking keys are written as integers) and structs
// are encoded from their JSON representation so json tags apply.
func Marshal(value any) (string, error) {
	var b strings.Builder
	if err := encode(&b, value); err != nil {
		return "", err
	}
	return b.String(), nil
}

func encode(b *strings.Builder, value any) error {
	if value == nil {
		b.WriteString("N;")
		return nil
	}

	switch typed := value.(type) {
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			writeInt(b, n)
			return nil
		}
		f, err := typed.Float64()
		if err != nil {
			return fmt.Errorf("phpserial: encode number %q: %w", typed.String(), err)
		}
		writeFloat(b, f)
		return nil
	case []byte:
		writeString(b, string(typed))
		return nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			b.WriteString("N;")
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			b.WriteString("b:1;")
		} else {
			b.WriteString("b:0;")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		writeInt(b, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			writeFloat(b, float64(u))
		} else {
			writeInt(b, int64(u))
		}
	case reflect.Float32, reflect.Float64:
		writeFloat(b, rv.Float())
	case reflect.String:
		writeString(b, rv.String())
	case reflect.Slice, reflect.Array:
		fmt.Fprintf(b, "a:%d:{", rv.Len())
		for i := 0; i < rv.Len(); i++ {
			writeInt(b, int64(i))
			if err := encode(b, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case reflect.Map:
		return encodeMap(b, rv)
	case reflect.Struct:
		payload, err := json.Marshal(rv.Interface())
		if err != nil {
			return fmt.Errorf("phpserial: encode %s: %w", rv.Type(), err)
		}
		var generic map[string]any
		dec := json.NewDecoder(strings.NewReader(string(payload)))
		dec.UseNumber()
		if err := dec.Decode(&generic); err != nil {
			return fmt.Errorf("phpserial: encode %s: %w", rv.Type(), err)
		}
		return encodeMap(b, reflect.ValueOf(generic))
	default:
		return fmt.Errorf("phpserial: cannot encode %s", rv.Type())
	}
	return nil
}

func encodeMap(b *strings.Builder, rv reflect.Value) error {
	type entry struct {
		key   string
		value any
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		entries = append(entries, entry{key: fmt.Sprint(iter.Key().Interface()), value: iter.Value().Interface()})
	}
	sort.Slice(entries, func(i, j int) bool { return keyLess(entries[i].key, entries[j].key) })

	fmt.Fprintf(b, "a:%d:{", len(entries))
	for _, e := range entries {
		if n, ok := integerKey(e.key); ok {
			writeInt(b, n)
		} else {
			writeString(b, e.key)
		}
		if err := encode(b, e.value); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

// keyLess orders integer keys numerically ahead of string keys, which sort
// lexically.
func keyLess(a, b string) bool {
	an, aInt := integerKey(a)
	bn, bInt := integerKey(b)
	switch {
	case aInt && bInt:
		return an < bn
	case aInt != bInt:
		return aInt
	default:
		return a < b
	}
}

// integerKey reports whether key is a canonical decimal integer, the form
// array keys are normalised to.
func integerKey(key string) (int64, bool) {
	n, err := strconv.ParseInt(key, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, strconv.FormatInt(n, 10) == key
}

func writeInt(b *strings.Builder, n int64) {
	b.WriteString("i:")
	b.WriteString(strconv.FormatInt(n, 10))
	b.WriteByte(';')
}

func writeFloat(b *strings.Builder, f float64) {
	b.WriteString("d:")
	b.WriteString(FormatFloat(f))
	b.WriteByte(';')
}

// FormatFloat renders f the way serialized floats are written: the shortest
// round-tripping decimal between 1e-4 and 1e15, exponent notation with a
// forced fraction ("1.0E+21") outside it, and NAN, INF or -INF.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NAN"
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	}
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-4 && abs < 1e15) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	out := strconv.FormatFloat(f, 'E', -1, 64)
	mantissa, exponent, _ := strings.Cut(out, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	sign := exponent[:1]
	digits := strings.TrimLeft(exponent[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "E" + sign + digits
}

func writeString(b *strings.Builder, s string) {
	fmt.Fprintf(b, "s:%d:\"%s\";", len(s), s)
}

// Codec adapts the package functions to the data.BlobCodec contract.
type Codec struct{}

// IsBlob reports whether text is serialized.
func (Codec) IsBlob(text string) bool { return IsSerialized(text) }

// Decode unmarshals text.
func (Codec) Decode(text string) (any, error) { return Unmarshal(text) }

// Encode marshals value.
func (Codec) Encode(value any) (string, error) { return Marshal(value) }

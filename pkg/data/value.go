package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/data/phpserial"
)

// Kind classifies the shape of a wrapped value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	// KindArray covers slices, arrays and maps (keyed arrays).
	KindArray
	// KindObject covers structs and pointers to structs.
	KindObject
	// KindOther covers funcs, channels and anything else without a data shape.
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "other"
	}
}

// Value wraps an arbitrary Go value and exposes the shape queries the caster
// dispatches on.
type Value struct {
	raw any
}

// ValueOf wraps raw.
func ValueOf(raw any) Value {
	return Value{raw: raw}
}

// Raw returns the wrapped value.
func (v Value) Raw() any { return v.raw }

// Kind reports the value shape. Non-nil pointers are classified by their
// element; a []byte counts as a string.
func (v Value) Kind() Kind {
	if v.raw == nil {
		return KindNull
	}
	switch v.raw.(type) {
	case bool:
		return KindBool
	case string, []byte, json.Number:
		return KindString
	}

	rv := indirect(reflect.ValueOf(v.raw))
	if !rv.IsValid() {
		return KindNull
	}
	switch rv.Kind() {
	case reflect.Bool:
		return KindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return KindNumber
	case reflect.String:
		return KindString
	case reflect.Slice, reflect.Array, reflect.Map:
		return KindArray
	case reflect.Struct:
		return KindObject
	default:
		return KindOther
	}
}

// IsStructured reports whether the value is an array-like or object-like
// container.
func (v Value) IsStructured() bool {
	k := v.Kind()
	return k == KindArray || k == KindObject
}

// IsString reports whether the value is textual.
func (v Value) IsString() bool {
	return v.Kind() == KindString
}

// Text returns the text of a textual value and false for anything else.
func (v Value) Text() (string, bool) {
	if !v.IsString() {
		return "", false
	}
	switch typed := v.raw.(type) {
	case string:
		return typed, true
	case []byte:
		return string(typed), true
	case json.Number:
		return typed.String(), true
	}
	return indirect(reflect.ValueOf(v.raw)).String(), true
}

// IsNumeric reports whether the value is a number or a numeric string.
// Numeric strings allow surrounding whitespace, a sign, a fraction and an
// exponent; hex and empty strings are not numeric.
func (v Value) IsNumeric() bool {
	_, ok := v.AsNumber()
	return ok
}

// AsNumber returns the numeric value of a number or a numeric string.
func (v Value) AsNumber() (float64, bool) {
	switch v.Kind() {
	case KindNumber:
		return toFloat(indirect(reflect.ValueOf(v.raw))), true
	case KindString:
		text, _ := v.Text()
		if !numericPattern.MatchString(text) {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil && !isRangeErr(err) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

var (
	numericPattern = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)
	leadingNumber  = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
	leadingInteger = regexp.MustCompile(`^[+-]?\d+$`)
)

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func isRangeErr(err error) bool {
	return errors.Is(err, strconv.ErrRange)
}

func toFloat(rv reflect.Value) float64 {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		if rv.Bool() {
			return 1
		}
	}
	return 0
}

// toInt converts a scalar the way a loose integer cast does: strings use their
// leading numeric prefix, floats truncate, NaN, infinities and out of range
// floats become 0.
func toInt(v Value) int64 {
	switch v.Kind() {
	case KindNull:
		return 0
	case KindBool:
		if truthy(v.raw) {
			return 1
		}
		return 0
	case KindNumber:
		rv := indirect(reflect.ValueOf(v.raw))
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int()
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			u := rv.Uint()
			if u > math.MaxInt64 {
				return math.MaxInt64
			}
			return int64(u)
		default:
			return truncate(rv.Float())
		}
	case KindString:
		text, _ := v.Text()
		prefix := strings.TrimSpace(leadingNumber.FindString(text))
		if prefix == "" {
			return 0
		}
		if leadingInteger.MatchString(prefix) {
			n, err := strconv.ParseInt(prefix, 10, 64)
			if err != nil && !isRangeErr(err) {
				return 0
			}
			return n
		}
		f, err := strconv.ParseFloat(prefix, 64)
		if err != nil && !isRangeErr(err) {
			return 0
		}
		return truncate(f)
	default:
		return 1
	}
}

func truncate(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

// toFloat64 converts a scalar the way a loose float cast does.
func toFloat64(v Value) float64 {
	switch v.Kind() {
	case KindNull:
		return 0
	case KindBool:
		if truthy(v.raw) {
			return 1
		}
		return 0
	case KindNumber:
		return toFloat(indirect(reflect.ValueOf(v.raw)))
	case KindString:
		text, _ := v.Text()
		prefix := strings.TrimSpace(leadingNumber.FindString(text))
		if prefix == "" {
			return 0
		}
		f, err := strconv.ParseFloat(prefix, 64)
		if err != nil && !isRangeErr(err) {
			return 0
		}
		return f
	default:
		return 1
	}
}

// toText stringifies a scalar: true is "1", false and nil are empty, floats
// use the shortest representation with an exponent for very large or very
// small magnitudes.
func toText(v Value) string {
	switch v.Kind() {
	case KindNull:
		return ""
	case KindBool:
		if truthy(v.raw) {
			return "1"
		}
		return ""
	case KindString:
		text, _ := v.Text()
		return text
	case KindNumber:
		rv := indirect(reflect.ValueOf(v.raw))
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			return formatFloat(rv.Float())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			return strconv.FormatUint(rv.Uint(), 10)
		default:
			return strconv.FormatInt(rv.Int(), 10)
		}
	default:
		return fmt.Sprint(v.raw)
	}
}

func formatFloat(f float64) string {
	return phpserial.FormatFloat(f)
}

// truthy mirrors loose boolean coercion: nil, false, zero numbers, "" and "0"
// and empty containers are false; everything else is true.
func truthy(raw any) bool {
	if raw == nil {
		return false
	}
	rv := indirect(reflect.ValueOf(raw))
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return toFloat(rv) != 0
	case reflect.String:
		s := rv.String()
		return s != "" && s != "0"
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			s := string(rv.Bytes())
			return s != "" && s != "0"
		}
		return rv.Len() > 0
	case reflect.Array, reflect.Map:
		return rv.Len() > 0
	default:
		return true
	}
}

package data

import (
	"reflect"
	"strconv"
	"strings"
)

// Walk resolves a dotted path ("a.b.c") inside container and returns def when
// any step is missing. The empty path is a single empty step.
//
// Maps are read by key, slices and arrays by numeric index and structs by
// exported field name or json tag name. A nil value counts as missing.
//
// Strings are not dead ends: stepping into a string performs a byte offset
// lookup (negative offsets count from the end) and a missing offset continues
// the walk with def instead of returning early.
func Walk(path string, container any, def any) any {
	return WalkPath(strings.Split(path, "."), container, def)
}

// WalkPath is Walk with pre-split steps.
func WalkPath(steps []string, container any, def any) any {
	current := container
	for _, step := range steps {
		next, ok := lookupStep(current, step)
		if !ok {
			if !ValueOf(current).IsString() {
				return def
			}
			next = def
		}
		current = next
	}
	return current
}

func lookupStep(container any, step string) (any, bool) {
	switch typed := container.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return present(typed[step])
	case map[string]string:
		v, ok := typed[step]
		return v, ok
	}

	if text, ok := ValueOf(container).Text(); ok {
		return stringOffset(text, step)
	}

	rv := indirect(reflect.ValueOf(container))
	if !rv.IsValid() {
		return nil, false
	}

	switch rv.Kind() {
	case reflect.Map:
		return mapStep(rv, step)
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(step)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return present(rv.Index(idx).Interface())
	case reflect.Struct:
		return structStep(rv, step)
	default:
		return nil, false
	}
}

func present(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	return v, true
}

func stringOffset(text, step string) (any, bool) {
	idx, err := strconv.Atoi(step)
	if err != nil {
		return nil, false
	}
	if idx < 0 {
		idx += len(text)
	}
	if idx < 0 || idx >= len(text) {
		return nil, false
	}
	return text[idx : idx+1], true
}

func mapStep(rv reflect.Value, step string) (any, bool) {
	keyType := rv.Type().Key()
	for _, key := range mapKeyCandidates(keyType, step) {
		if found := rv.MapIndex(key); found.IsValid() {
			return present(found.Interface())
		}
	}
	return nil, false
}

func mapKeyCandidates(keyType reflect.Type, step string) []reflect.Value {
	var keys []reflect.Value
	switch keyType.Kind() {
	case reflect.String:
		keys = append(keys, reflect.ValueOf(step).Convert(keyType))
	case reflect.Interface:
		keys = append(keys, reflect.ValueOf(step))
		if n, err := strconv.Atoi(step); err == nil {
			keys = append(keys, reflect.ValueOf(n))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(step, 10, 64); err == nil {
			key := reflect.New(keyType).Elem()
			key.SetInt(n)
			keys = append(keys, key)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(step, 10, 64); err == nil {
			key := reflect.New(keyType).Elem()
			key.SetUint(n)
			keys = append(keys, key)
		}
	}

	out := keys[:0]
	for _, key := range keys {
		if key.Type().AssignableTo(keyType) {
			out = append(out, key)
		}
	}
	return out
}

func structStep(rv reflect.Value, step string) (any, bool) {
	for _, field := range reflect.VisibleFields(rv.Type()) {
		if !field.IsExported() || field.Anonymous {
			continue
		}
		if field.Name != step && jsonName(field) != step {
			continue
		}
		value, err := rv.FieldByIndexErr(field.Index)
		if err != nil {
			return nil, false
		}
		return present(value.Interface())
	}
	return nil, false
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

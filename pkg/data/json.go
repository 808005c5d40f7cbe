package data

import (
	"bytes"
	"encoding/json"
	"strings"
)

const defaultJSONDepth = 512

// JSONOption tunes how IsJSON trial-decodes its input.
type JSONOption func(*jsonConfig)

type jsonConfig struct {
	maxDepth int
}

// WithMaxDepth rejects documents nested deeper than depth. Values below 1 are
// ignored.
func WithMaxDepth(depth int) JSONOption {
	return func(cfg *jsonConfig) {
		if depth > 0 {
			cfg.maxDepth = depth
		}
	}
}

// IsJSON reports whether value is JSON text. Structured values are never JSON
// text, and neither is empty or whitespace-only input. Scalars are
// stringified first, so the number 5 is valid JSON text while false (empty
// text) is not.
func IsJSON(value any, opts ...JSONOption) bool {
	v := ValueOf(value)
	if v.IsStructured() {
		return false
	}
	text := toText(v)
	if strings.TrimSpace(text) == "" {
		return false
	}

	cfg := jsonConfig{maxDepth: defaultJSONDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if !json.Valid([]byte(text)) {
		return false
	}
	return jsonDepth(text) <= cfg.maxDepth
}

// jsonDepth returns how many containers deep already validated JSON text
// nests. Scalars have depth 0 and "[[1]]" has depth 2.
func jsonDepth(text string) int {
	dec := json.NewDecoder(strings.NewReader(text))
	depth, deepest := 0, 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return deepest
		}
		delim, ok := tok.(json.Delim)
		if !ok {
			continue
		}
		switch delim {
		case '{', '[':
			depth++
			deepest = max(deepest, depth)
		default:
			depth--
		}
	}
}

// decodeJSON decodes text into maps, slices and scalars. Numbers that fit an
// int64 are decoded as int64, others as float64.
func decodeJSON(text string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return normalizeNumbers(out), nil
}

func normalizeNumbers(value any) any {
	switch typed := value.(type) {
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return n
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case map[string]any:
		for key, item := range typed {
			typed[key] = normalizeNumbers(item)
		}
		return typed
	case []any:
		for i, item := range typed {
			typed[i] = normalizeNumbers(item)
		}
		return typed
	default:
		return value
	}
}

// encodeJSON renders value as compact JSON without HTML escaping. Unencodable
// values (funcs, channels, NaN) yield nil.
func encodeJSON(value any) any {
	text, err := marshalJSON(value)
	if err != nil {
		return nil
	}
	return text
}

func marshalJSON(value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

package registry

import (
	"slices"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formkit/pkg/conditional"
	"github.com/goliatone/go-formkit/pkg/data"
)

var (
	labelPolicyOnce sync.Once
	labelPolicy     *bluemonday.Policy
)

// sanitizeLabel trims raw, strips markup and escapes what is left for HTML
// output. Blank labels return "".
func sanitizeLabel(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(labelSanitizer().Sanitize(trimmed))
}

func labelSanitizer() *bluemonday.Policy {
	labelPolicyOnce.Do(func() {
		labelPolicy = bluemonday.StrictPolicy()
	})
	return labelPolicy
}

func escAttr(raw string) string {
	return conditional.EscapeAttr(raw)
}

// underscore lower-cases name and joins words with "_". Characters outside
// [a-z0-9_] (plus "." when keepDots is set) are dropped.
func underscore(name string, keepDots bool) string {
	return separate(name, '_', keepDots)
}

// dash is underscore with "-" as the separator.
func dash(name string) string {
	return separate(name, '-', false)
}

func separate(name string, sep byte, keepDots bool) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	b.Grow(len(lowered))
	pending := false
	for i := 0; i < len(lowered); i++ {
		c := lowered[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', keepDots && c == '.':
			if pending && b.Len() > 0 {
				b.WriteByte(sep)
			}
			pending = false
			b.WriteByte(c)
		case c == ' ', c == '\t', c == '\n', c == '-', c == '_':
			pending = true
		}
	}
	return b.String()
}

// sanitizeKey keeps lowercase alphanumerics, dashes and underscores.
func sanitizeKey(key string) string {
	lowered := strings.ToLower(key)
	var b strings.Builder
	for i := 0; i < len(lowered); i++ {
		c := lowered[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// text returns field as trimmed text; absent fields and structured values
// yield "".
func text(fields map[string]any, name string) string {
	value := data.Walk(name, fields, nil)
	if data.ValueOf(value).IsStructured() {
		return ""
	}
	s, _ := data.Cast(value, data.TargetString).(string)
	return strings.TrimSpace(s)
}

// has reports whether field is set (isset semantics).
func has(fields map[string]any, name string) bool {
	return data.Walk(name, fields, nil) != nil
}

// flag reports whether field holds a truthy value.
func flag(fields map[string]any, name string) bool {
	return truthy(data.Walk(name, fields, nil))
}

func truthy(value any) bool {
	ok, _ := data.Cast(value, data.TargetBool).(bool)
	return ok
}

// number returns the field as an int when it is a non-empty numeric value.
func number(fields map[string]any, name string) (int, bool) {
	value := data.Walk(name, fields, nil)
	if !flag(fields, name) || !data.ValueOf(value).IsNumeric() {
		return 0, false
	}
	n, _ := data.Cast(value, data.TargetInt).(int64)
	return int(n), true
}

// list returns the field when it holds a list or an object of items, ordered
// like Document.Entries.
func list(fields map[string]any, name string) ([]any, bool) {
	switch items := data.Walk(name, fields, nil).(type) {
	case []any:
		return items, true
	case []string:
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item
		}
		return out, true
	case map[string]any:
		keys := make([]string, 0, len(items))
		for key := range items {
			keys = append(keys, key)
		}
		sortKeys(keys)
		out := make([]any, 0, len(keys))
		for _, key := range keys {
			out = append(out, items[key])
		}
		return out, true
	default:
		return nil, false
	}
}

func itemText(item any) string {
	if data.ValueOf(item).IsStructured() {
		return ""
	}
	s, _ := data.Cast(item, data.TargetString).(string)
	return s
}

func appendUnique(dst []string, values ...string) []string {
	for _, value := range values {
		if value == "" {
			continue
		}
		if !slices.Contains(dst, value) {
			dst = append(dst, value)
		}
	}
	return dst
}

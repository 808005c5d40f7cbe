// Package render maps validation results onto the fields of the registration
// form so templates can show messages next to the inputs that caused them.
package render

import (
	"strings"

	"github.com/goliatone/go-formkit/pkg/registry"
)

// ErrorMapping splits error messages into field-level and form-level
// messages. Field keys are dotted document paths such as
// "post_types.1700000001.post_type_id".
type ErrorMapping struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Form   []string            `json:"form,omitempty"`
}

// For returns the messages recorded for path.
func (m ErrorMapping) For(path string) []string {
	return m.Fields[strings.TrimSpace(path)]
}

// Empty reports whether the mapping holds no messages.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// MergeFormErrors concatenates and normalises multiple form-level error
// slices, trimming whitespace and removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// FromValidation maps validation errors by field path. formMessages (for
// example the "saved with errors" notice) become form-level messages.
func FromValidation(errs registry.ValidationErrors, formMessages ...string) ErrorMapping {
	mapping := ErrorMapping{Form: normalizeMessages(formMessages)}
	for _, fe := range errs {
		message := strings.TrimSpace(fe.Message)
		if message == "" {
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[fe.Field] = MergeFormErrors(mapping.Fields[fe.Field], message)
	}
	return mapping
}

// FromResult maps the errors of an update. The result message is only kept
// as a form-level message when the update failed validation.
func FromResult(result registry.UpdateResult) ErrorMapping {
	if !result.Failed() {
		return ErrorMapping{}
	}
	return FromValidation(result.Errors, result.Message)
}

// MapErrorPayload normalises an external error payload (JSON pointer,
// bracketed input names or dotted paths) into the dotted paths of fields
// present in doc. Paths may be wrapped in the option name or a request
// envelope ("body", "data", ...). Unknown paths become form-level errors so
// messages are not lost.
func MapErrorPayload(doc registry.Document, option string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{
		Fields: make(map[string][]string),
	}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	fieldPaths := collectFieldPaths(doc)
	wrappers := wrapperSegments(option)

	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		mapped, formLevel := mapErrorPath(rawPath, fieldPaths, wrappers)
		if formLevel {
			mapping.Form = append(mapping.Form, normalized...)
			continue
		}
		mapping.Fields[mapped] = MergeFormErrors(mapping.Fields[mapped], normalized...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string, fieldPaths map[string]struct{}, wrappers map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	if path := longestMatchingPath(segments, fieldPaths); path != "" {
		return path, false
	}
	if path := longestMatchingPath(dropWrapperSegments(segments, wrappers), fieldPaths); path != "" {
		return path, false
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = strings.Trim(replacer.Replace(clean), "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func wrapperSegments(option string) map[string]struct{} {
	wrappers := map[string]struct{}{
		"body":    {},
		"request": {},
		"payload": {},
		"data":    {},
		"fields":  {},
	}
	if option = strings.ToLower(strings.TrimSpace(option)); option != "" {
		wrappers[option] = struct{}{}
	}
	return wrappers
}

func dropWrapperSegments(segments []string, wrappers map[string]struct{}) []string {
	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func longestMatchingPath(segments []string, fieldPaths map[string]struct{}) string {
	for end := len(segments); end > 0; end-- {
		candidate := strings.Join(segments[:end], ".")
		if _, ok := fieldPaths[candidate]; ok {
			return candidate
		}
	}
	return ""
}

// collectFieldPaths lists collection, entry and field paths present in doc.
func collectFieldPaths(doc registry.Document) map[string]struct{} {
	dest := make(map[string]struct{})
	for _, collection := range registry.Collections {
		for _, entry := range doc.Entries(collection) {
			entryPath := collection + "." + entry.Key
			dest[entryPath] = struct{}{}
			for name := range entry.Fields {
				dest[entryPath+"."+name] = struct{}{}
			}
		}
	}
	return dest
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}

package conditional

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// AttributeName is the HTML attribute carrying the encoded rules.
const AttributeName = "data-tr-conditions"

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeAttr escapes text for use inside a double or single quoted HTML
// attribute.
func EscapeAttr(text string) string {
	return attrEscaper.Replace(text)
}

// Encode returns the rules as compact JSON. Characters such as < and & are
// left as-is; they are escaped at the attribute level.
func (s *RuleSet) Encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.wire()); err != nil {
		return "", fmt.Errorf("conditional: encode rules: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// AttributeValue returns the escaped attribute value, or "" when the set is
// empty. Rules whose values cannot be encoded as JSON produce an empty value.
func (s *RuleSet) AttributeValue() string {
	if s.Empty() {
		return ""
	}
	encoded, err := s.Encode()
	if err != nil {
		return ""
	}
	return EscapeAttr(encoded)
}

// Attribute renders data-tr-conditions="..." or "" when the set is empty.
func (s *RuleSet) Attribute() string {
	if s.Empty() {
		return ""
	}
	return AttributeName + `="` + s.AttributeValue() + `"`
}

// AttributeMap returns the attribute as a name/value map, empty when the set
// has no rules.
func (s *RuleSet) AttributeMap() map[string]string {
	if s.Empty() {
		return map[string]string{}
	}
	return map[string]string{AttributeName: s.AttributeValue()}
}

// ParseAttribute decodes an escaped attribute value back into rules. Numbers
// decode as float64.
func ParseAttribute(value string) ([]Rule, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	var rules []Rule
	if err := json.Unmarshal([]byte(html.UnescapeString(trimmed)), &rules); err != nil {
		return nil, fmt.Errorf("conditional: parse attribute: %w", err)
	}
	return rules, nil
}

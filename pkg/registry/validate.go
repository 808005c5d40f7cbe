package registry

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var keyPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// FieldError is a failed rule on a document field. Field is the dotted path,
// e.g. post_types.0.post_type_id.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects field errors in document order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, len(v))
	for i, err := range v {
		messages[i] = err.Message
	}
	return "registry: validation failed: " + strings.Join(messages, "; ")
}

// Failed reports whether any rule failed.
func (v ValidationErrors) Failed() bool { return len(v) > 0 }

// Err returns v as an error, or nil when nothing failed.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Fields groups messages by field path.
func (v ValidationErrors) Fields() map[string][]string {
	if len(v) == 0 {
		return nil
	}
	out := make(map[string][]string, len(v))
	for _, err := range v {
		out[err.Field] = append(out[err.Field], err.Message)
	}
	return out
}

// Messages returns the distinct messages in order.
func (v ValidationErrors) Messages() []string {
	out := make([]string, 0, len(v))
	seen := make(map[string]struct{}, len(v))
	for _, err := range v {
		msg := strings.TrimSpace(err.Message)
		if msg == "" {
			continue
		}
		if _, ok := seen[msg]; ok {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	return out
}

type rule struct {
	name  string
	limit int
}

type fieldRule struct {
	collection string
	field      string
	label      string
	rules      []rule
}

var (
	ruleRequired = rule{name: "required"}
	ruleKey      = rule{name: "key"}
)

func maxLen(n int) rule { return rule{name: "max", limit: n} }

var documentRules = []fieldRule{
	{PostTypes, "singular", "Post type singular name", []rule{ruleRequired}},
	{PostTypes, "post_type_id", "Post type ID", []rule{ruleRequired, maxLen(20), ruleKey}},
	{Taxonomies, "singular", "Taxonomy singular name", []rule{ruleRequired}},
	{Taxonomies, "taxonomy_id", "Taxonomy ID", []rule{ruleRequired, maxLen(32), ruleKey}},
	{MetaBoxes, "meta_box_title", "Meta box title", []rule{ruleRequired}},
	{MetaBoxes, "meta_box_id", "Meta box ID", []rule{ruleRequired, ruleKey}},
}

// Validate checks every entry of doc. Each field reports its first failing
// rule; an empty result means the document is valid.
func Validate(doc Document) ValidationErrors {
	var errs ValidationErrors
	for _, collection := range Collections {
		for _, entry := range doc.Entries(collection) {
			for _, fr := range documentRules {
				if fr.collection != collection {
					continue
				}
				if err, failed := fr.check(entry); failed {
					errs = append(errs, err)
				}
			}
		}
	}
	return errs
}

func (fr fieldRule) check(entry Entry) (FieldError, bool) {
	value := text(entry.Fields, fr.field)
	path := fr.collection + "." + entry.Key + "." + fr.field
	for _, r := range fr.rules {
		var message string
		switch r.name {
		case "required":
			if value == "" {
				message = "is required"
			}
		case "max":
			if utf8.RuneCountInString(value) > r.limit {
				message = fmt.Sprintf("can't be more than %d characters", r.limit)
			}
		case "key":
			if value != "" && !keyPattern.MatchString(value) {
				message = "must be lowercase letters, numbers, dashes or underscores"
			}
		}
		if message != "" {
			return FieldError{Field: path, Rule: r.name, Message: fr.label + " " + message}, true
		}
	}
	return FieldError{}, false
}

// IsKey reports whether s is a valid registration key ([a-z0-9_-]+).
func IsKey(s string) bool {
	return keyPattern.MatchString(s)
}

// DefaultID returns the id derived from a singular label when no explicit id
// is given.
func DefaultID(label string) string {
	return underscore(sanitizeLabel(label), false)
}

// MetaBoxContexts lists the accepted meta box contexts.
func MetaBoxContexts() []string { return slices.Clone(metaBoxContexts) }

// MetaBoxPriorities lists the accepted meta box priorities.
func MetaBoxPriorities() []string { return slices.Clone(metaBoxPriority) }

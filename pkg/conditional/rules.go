// Package conditional records declarative visibility rules for form fields
// ("show this field when field X compares to value Y") and renders them as
// the data-tr-conditions attribute read by the browser-side rule evaluator.
//
// Rules are evaluated left to right by the client, so order matters. A
// RuleSet is append-only and owned by a single field; embed it to give a
// component its own rules.
package conditional

import (
	"encoding/json"
	"strings"
)

// Conjunction joins a rule to the rules before it.
type Conjunction string

const (
	// None marks the first rule of a set, encoded as JSON null. A later rule
	// given an empty conjunction keeps it and encodes as "".
	None Conjunction = ""
	And  Conjunction = "and"
	Or   Conjunction = "or"
)

// MarshalJSON encodes None as null and any other conjunction as a string.
func (c Conjunction) MarshalJSON() ([]byte, error) {
	if c == None {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON accepts null or a string.
func (c *Conjunction) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = None
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = Conjunction(s)
	return nil
}

// Rule is one condition in a RuleSet.
type Rule struct {
	Condition Conjunction `json:"condition"`
	Field     string      `json:"field"`
	Operator  string      `json:"operator"`
	Value     any         `json:"value"`
}

type predicateKind int

const (
	predicateTruthy predicateKind = iota
	predicateEquals
	predicateCompare
)

// Predicate describes what a rule checks on its field. Build one with
// Truthy, Equals or Compare.
type Predicate struct {
	kind     predicateKind
	operator string
	value    any
}

// Truthy matches when the field has a truthy value ("=" true).
func Truthy() Predicate {
	return Predicate{kind: predicateTruthy}
}

// Equals matches when the field equals value ("=" value).
func Equals(value any) Predicate {
	return Predicate{kind: predicateEquals, value: value}
}

// Compare matches when the field compares to value with operator. The
// operator is stored lower-cased (">", "!=", "contains", ...).
func Compare(operator string, value any) Predicate {
	return Predicate{kind: predicateCompare, operator: operator, value: value}
}

// resolve returns the operator and value the predicate stores.
func (p Predicate) resolve() (string, any) {
	switch p.kind {
	case predicateEquals:
		return "=", p.value
	case predicateCompare:
		return strings.ToLower(p.operator), p.value
	default:
		return "=", true
	}
}

// RuleSet is an ordered, append-only list of rules. The zero value is ready
// to use.
type RuleSet struct {
	rules []Rule
}

// New returns an empty RuleSet.
func New() *RuleSet {
	return &RuleSet{}
}

// FromRules returns a set holding a copy of rules. The first rule never keeps
// a conjunction.
func FromRules(rules ...Rule) *RuleSet {
	s := &RuleSet{rules: make([]Rule, len(rules))}
	copy(s.rules, rules)
	if len(s.rules) > 0 {
		s.rules[0].Condition = None
	}
	return s
}

// When appends a rule joined with "and".
func (s *RuleSet) When(field string, p Predicate) *RuleSet {
	return s.WhenJoined(field, p, And)
}

// WhenJoined appends a rule joined with conjunction (lower-cased). The first
// rule of a set never stores a conjunction.
func (s *RuleSet) WhenJoined(field string, p Predicate, conjunction Conjunction) *RuleSet {
	condition := Conjunction(strings.ToLower(string(conjunction)))
	if len(s.rules) == 0 {
		condition = None
	}
	operator, value := p.resolve()
	s.rules = append(s.rules, Rule{
		Condition: condition,
		Field:     field,
		Operator:  operator,
		Value:     value,
	})
	return s
}

// OrWhen appends a rule joined with "or".
func (s *RuleSet) OrWhen(field string, p Predicate) *RuleSet {
	operator, value := p.resolve()
	return s.WhenJoined(field, Compare(operator, value), Or)
}

// Rules returns a copy of the rules in order.
func (s *RuleSet) Rules() []Rule {
	if s == nil || len(s.rules) == 0 {
		return nil
	}
	out := make([]Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Len returns the number of rules.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Empty reports whether no rules were added.
func (s *RuleSet) Empty() bool {
	return s.Len() == 0
}

// MarshalJSON encodes the rules as a JSON array.
func (s *RuleSet) MarshalJSON() ([]byte, error) {
	if s == nil || len(s.rules) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(s.wire())
}

// wireRule is a Rule as it is encoded inside a set: only the first rule has a
// null condition.
type wireRule struct {
	Condition *string `json:"condition"`
	Field     string  `json:"field"`
	Operator  string  `json:"operator"`
	Value     any     `json:"value"`
}

func (s *RuleSet) wire() []wireRule {
	out := make([]wireRule, 0, s.Len())
	if s == nil {
		return out
	}
	for i, r := range s.rules {
		w := wireRule{Field: r.Field, Operator: r.Operator, Value: r.Value}
		if i > 0 {
			condition := string(r.Condition)
			w.Condition = &condition
		}
		out = append(out, w)
	}
	return out
}

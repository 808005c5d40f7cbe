package conditional_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/conditional"
)

func TestRuleSetOrdering(t *testing.T) {
	t.Parallel()

	set := conditional.New().
		When("age", conditional.Compare(">", 18)).
		OrWhen("vip", conditional.Truthy())

	want := []conditional.Rule{
		{Condition: conditional.None, Field: "age", Operator: ">", Value: 18},
		{Condition: conditional.Or, Field: "vip", Operator: "=", Value: true},
	}
	if diff := cmp.Diff(want, set.Rules()); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	if set.Len() != 2 || set.Empty() {
		t.Fatalf("Len = %d, Empty = %v", set.Len(), set.Empty())
	}
}

func TestFirstRuleHasNoConjunction(t *testing.T) {
	t.Parallel()

	set := conditional.New().WhenJoined("x", conditional.Truthy(), conditional.Or)
	set.WhenJoined("y", conditional.Equals("b"), "AND")

	want := []conditional.Rule{
		{Condition: conditional.None, Field: "x", Operator: "=", Value: true},
		{Condition: conditional.And, Field: "y", Operator: "=", Value: "b"},
	}
	if diff := cmp.Diff(want, set.Rules()); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyConjunctionOnLaterRuleEncodesAsString(t *testing.T) {
	t.Parallel()

	set := conditional.New().
		When("x", conditional.Truthy()).
		WhenJoined("y", conditional.Equals("b"), "")

	encoded, err := set.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	want := `[{"condition":null,"field":"x","operator":"=","value":true},{"condition":"","field":"y","operator":"=","value":"b"}]`
	if encoded != want {
		t.Fatalf("Encode = %s, want %s", encoded, want)
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	var set conditional.RuleSet
	set.When("a", conditional.Truthy()).
		When("b", conditional.Equals(nil)).
		When("c", conditional.Compare("CONTAINS", "foo")).
		OrWhen("d", conditional.Equals(3))

	want := []conditional.Rule{
		{Condition: conditional.None, Field: "a", Operator: "=", Value: true},
		{Condition: conditional.And, Field: "b", Operator: "=", Value: nil},
		{Condition: conditional.And, Field: "c", Operator: "contains", Value: "foo"},
		{Condition: conditional.Or, Field: "d", Operator: "=", Value: 3},
	}
	if diff := cmp.Diff(want, set.Rules()); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
}

func TestRulesReturnsCopy(t *testing.T) {
	t.Parallel()

	set := conditional.New().When("a", conditional.Truthy())
	rules := set.Rules()
	rules[0].Field = "mutated"
	if got := set.Rules()[0].Field; got != "a" {
		t.Fatalf("Rules leaked internal slice, field = %q", got)
	}
}

type field struct {
	conditional.RuleSet
	Name string
}

func TestEmbeddedRuleSet(t *testing.T) {
	t.Parallel()

	f := &field{Name: "isbn"}
	f.When("type", conditional.Equals("book"))
	if f.Len() != 1 {
		t.Fatalf("embedded Len = %d, want 1", f.Len())
	}
}

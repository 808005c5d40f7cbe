package data

import "testing"

func TestIsJSON(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{"empty", "", false},
		{"whitespace", "   \n", false},
		{"object", "{}", true},
		{"array text", "[1,2]", true},
		{"string literal", `"x"`, true},
		{"bare word", "hello", false},
		{"truncated", `{"a":`, false},
		{"structured slice", []any{1, 2}, false},
		{"structured map", map[string]any{}, false},
		{"number", 5, true},
		{"true stringifies to 1", true, true},
		{"false stringifies to empty", false, false},
		{"nil", nil, false},
		{"bytes", []byte(`{"a":1}`), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsJSON(tc.value); got != tc.want {
				t.Fatalf("IsJSON(%#v) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestIsJSONMaxDepth(t *testing.T) {
	t.Parallel()

	if !IsJSON("[[1]]", WithMaxDepth(2)) {
		t.Fatalf("depth 2 document should pass with max depth 2")
	}
	if IsJSON("[[1]]", WithMaxDepth(1)) {
		t.Fatalf("depth 2 document should fail with max depth 1")
	}
	if !IsJSON("1", WithMaxDepth(1)) {
		t.Fatalf("scalars should pass any depth")
	}
	if !IsJSON("[[1]]", WithMaxDepth(0)) {
		t.Fatalf("non-positive depth should be ignored")
	}
}

func TestJSONDepth(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		`1`:               0,
		`[]`:              1,
		`{"a":[{"b":1}]}`: 3,
		`[[],[[]]]`:       3,
	}
	for text, want := range cases {
		if got := jsonDepth(text); got != want {
			t.Errorf("jsonDepth(%s) = %d, want %d", text, got, want)
		}
	}
}

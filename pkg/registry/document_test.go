package registry_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formkit/pkg/registry"
)

func TestDecodeFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{"json", `{"post_types":[{"singular":"Book","plural":"Books"}]}`},
		{"yaml", "post_types:\n  - singular: Book\n    plural: Books\n"},
		{"legacy", `a:1:{s:10:"post_types";a:1:{i:0;a:2:{s:8:"singular";s:4:"Book";s:6:"plural";s:5:"Books";}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := registry.Decode([]byte(tc.raw))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			want := []registry.Entry{{Key: "0", Fields: map[string]any{"singular": "Book", "plural": "Books"}}}
			if diff := cmp.Diff(want, doc.Entries(registry.PostTypes)); diff != "" {
				t.Fatalf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeYAMLNumericKeys(t *testing.T) {
	t.Parallel()

	doc, err := registry.Decode([]byte("taxonomies:\n  10:\n    singular: B\n  2:\n    singular: A\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	entries := doc.Entries(registry.Taxonomies)
	got := make([]string, 0, len(entries))
	for _, entry := range entries {
		got = append(got, entry.Key)
	}
	if diff := cmp.Diff([]string{"2", "10"}, got); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	doc, err := registry.Decode([]byte("  "))
	if err != nil {
		t.Fatalf("Decode empty: %v", err)
	}
	if !doc.Empty() {
		t.Fatalf("expected empty document")
	}

	for _, raw := range []string{`"just a string"`, "- a\n- b\n", "{not: [valid", `s:5:"abc";`, `i:5;`} {
		if _, err := registry.Decode([]byte(raw)); err == nil {
			t.Errorf("Decode(%q) expected error", raw)
		}
	}
}

func TestEntriesSkipsNonObjects(t *testing.T) {
	t.Parallel()

	doc := registry.NewDocument(map[string]any{
		"meta_boxes": []any{"junk", map[string]any{"meta_box_title": "A"}, nil},
		"taxonomies": "not a collection",
	})
	if got := len(doc.Entries(registry.MetaBoxes)); got != 1 {
		t.Fatalf("expected 1 meta box entry, got %d", got)
	}
	if got := doc.Entries(registry.MetaBoxes)[0].Key; got != "1" {
		t.Fatalf("entry key = %q, want 1", got)
	}
	if entries := doc.Entries(registry.Taxonomies); entries != nil {
		t.Fatalf("expected no taxonomy entries, got %v", entries)
	}
}

func TestDocumentAppend(t *testing.T) {
	t.Parallel()

	var doc registry.Document
	if key := doc.Append(registry.PostTypes, map[string]any{"singular": "A"}); key != "0" {
		t.Fatalf("first key = %q", key)
	}
	if key := doc.Append(registry.PostTypes, map[string]any{"singular": "B"}); key != "1" {
		t.Fatalf("second key = %q", key)
	}

	keyed := registry.NewDocument(map[string]any{
		"taxonomies": map[string]any{"1": map[string]any{"singular": "A"}},
	})
	if key := keyed.Append(registry.Taxonomies, map[string]any{"singular": "B"}); key != "2" {
		t.Fatalf("keyed append key = %q, want 2", key)
	}
	if got := len(keyed.Entries(registry.Taxonomies)); got != 2 {
		t.Fatalf("expected 2 taxonomies, got %d", got)
	}
}

func TestDocumentFrom(t *testing.T) {
	t.Parallel()

	fromMap, err := registry.DocumentFrom(map[string]any{"post_types": []any{}})
	if err != nil {
		t.Fatalf("DocumentFrom map: %v", err)
	}
	fromText, err := registry.DocumentFrom(`{"post_types":[]}`)
	if err != nil {
		t.Fatalf("DocumentFrom text: %v", err)
	}
	if diff := cmp.Diff(fromMap.Raw(), fromText.Raw()); diff != "" {
		t.Fatalf("documents differ (-map +text):\n%s", diff)
	}
	if _, err := registry.DocumentFrom(42); err == nil {
		t.Fatalf("expected error for scalar document")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)
	yamlOut, err := doc.EncodeYAML()
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	back, err := registry.Decode(yamlOut)
	if err != nil {
		t.Fatalf("Decode yaml: %v", err)
	}
	if diff := cmp.Diff(registry.Build(doc), registry.Build(back)); diff != "" {
		t.Fatalf("registrations changed after yaml round trip (-want +got):\n%s", diff)
	}
}

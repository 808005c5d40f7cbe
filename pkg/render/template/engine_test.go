package template_test

import (
	"embed"
	"io"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-formkit/pkg/conditional"
	"github.com/goliatone/go-formkit/pkg/registry"
	"github.com/goliatone/go-formkit/pkg/render"
	"github.com/goliatone/go-formkit/pkg/render/template"
	"github.com/goliatone/go-formkit/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "  Ada "}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestEngine_AdminGlobals(t *testing.T) {
	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := template.New(template.WithFS(templatesFS), template.WithAdmin("", "tr_registered"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderView("globals", template.View{}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "globals.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_RenderView(t *testing.T) {
	engine := newEngine(t)

	doc := testsupport.LoadDocument(t, filepath.Join("..", "..", "registry", "testdata", "registered.json"))
	view := template.NewView(doc, registry.Build(doc))
	view.Vars = map[string]any{"title": "Registered", "errors": "shadowed"}

	tpl := `{{ title }}:` +
		`{% for pt in registrations.post_types %}{{ pt.id }}/{{ pt.slug }} {% endfor %}` +
		`revisions={{ registrations.post_types.1.revisions }} ` +
		`boxes={{ registrations.meta_boxes|length }} ` +
		`first={{ document|walk:"meta_boxes.0.meta_box_id" }} ` +
		`supports={{ supports.1.value }} ` +
		`{% for msg in errors|field_errors:"meta_boxes.1.meta_box_title" %}{{ msg }}{% endfor %}`

	got, err := engine.RenderView(tpl, view)
	if err != nil {
		t.Fatalf("render view: %v", err)
	}
	want := "Registered:event/whats-on book/books revisions=5 boxes=1 first=book_details supports=title Meta box title is required"
	if got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestEngine_FieldConditions(t *testing.T) {
	engine := newEngine(t)

	rules := conditional.New().
		When("type", conditional.Equals("book")).
		OrWhen("pages", conditional.Compare(">", 100))

	result, _ := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("field.tpl", map[string]any{
			"field": map[string]any{
				"name":       "isbn",
				"path":       "meta.isbn",
				"conditions": rules,
			},
			"post": map[string]any{"meta": map[string]any{"isbn": "978-0"}},
		}, w)
	})

	goldenPath := filepath.Join("testdata", "field.golden")
	if testsupport.WriteMaybeGolden(t, goldenPath, []byte(result)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, goldenPath)
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_ConditionFilterEmpty(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderString(`<input{{ rules|tr_conditions }}>`, map[string]any{"rules": conditional.New()})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "<input>" {
		t.Fatalf("expected no attribute for empty rules, got %q", got)
	}

	got, err = engine.RenderString(`{{ rules|tr_conditions:"value" }}`, map[string]any{
		"rules": []conditional.Rule{{Field: "vip", Operator: "=", Value: true}},
	})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	want := `[{&quot;condition&quot;:null,&quot;field&quot;:&quot;vip&quot;,&quot;operator&quot;:&quot;=&quot;,&quot;value&quot;:true}]`
	if got != want {
		t.Fatalf("attribute value mismatch\nwant: %q\n got: %q", want, got)
	}
}

func TestEngine_WalkAndCastFilters(t *testing.T) {
	engine := newEngine(t)

	cases := []struct {
		name     string
		template string
		data     map[string]any
		want     string
	}{
		{
			name:     "walk nested",
			template: `{{ doc|walk:"post_types.0.singular" }}`,
			data:     map[string]any{"doc": map[string]any{"post_types": []any{map[string]any{"singular": "Book"}}}},
			want:     "Book",
		},
		{
			name:     "walk missing falls back",
			template: `{{ doc|walk:"a.b.c"|default:"none" }}`,
			data:     map[string]any{"doc": map[string]any{"a": "leaf"}},
			want:     "none",
		},
		{
			name:     "cast leading number",
			template: `{{ value|cast:"int" }}`,
			data:     map[string]any{"value": "12abc"},
			want:     "12",
		},
		{
			name:     "cast to json",
			template: `{{ value|cast:"json"|safe }}`,
			data:     map[string]any{"value": map[string]any{"a": []any{"x"}}},
			want:     `{"a":["x"]}`,
		},
		{
			name:     "cast unknown type",
			template: `{{ value|cast:"nope" }}`,
			data:     map[string]any{"value": "same"},
			want:     "same",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := engine.RenderString(tc.template, tc.data)
			if err != nil {
				t.Fatalf("render string: %v", err)
			}
			if got != tc.want {
				t.Fatalf("render mismatch\nwant: %q\n got: %q", tc.want, got)
			}
		})
	}
}

func TestEngine_FieldErrors(t *testing.T) {
	engine := newEngine(t)

	mapping := render.ErrorMapping{
		Fields: map[string][]string{
			"taxonomies.0.taxonomy_id": {"Taxonomy ID is required", "Taxonomy ID is reserved"},
		},
		Form: []string{"Changes saved with errors:"},
	}
	tpl := `{% for msg in errors|field_errors %}[{{ msg }}]{% endfor %}` +
		`{% for msg in errors|field_errors:"taxonomies.0.taxonomy_id" %}<p>{{ msg }}</p>{% endfor %}` +
		`{% for msg in errors|field_errors:"taxonomies.0.singular" %}unexpected{% endfor %}`

	got, err := engine.RenderString(tpl, map[string]any{"errors": mapping})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	want := "[Changes saved with errors:]<p>Taxonomy ID is required</p><p>Taxonomy ID is reserved</p>"
	if got != want {
		t.Fatalf("render mismatch\nwant: %q\n got: %q", want, got)
	}

	got, err = engine.RenderView(`{% for msg in errors|field_errors:"x" %}{{ msg }}{% endfor %}`, template.View{})
	if err != nil {
		t.Fatalf("render string without errors: %v", err)
	}
	if got != "" {
		t.Fatalf("expected no output without errors, got %q", got)
	}
}

func TestEngine_Errors(t *testing.T) {
	engine := newEngine(t)

	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
	if _, err := engine.RenderString(`{{ rules|tr_conditions }}`, map[string]any{"rules": 5}); err == nil {
		t.Fatalf("expected error for unsupported rule set")
	}
	if _, err := engine.RenderString(`{{ errors|field_errors }}`, map[string]any{"errors": "text"}); err == nil {
		t.Fatalf("expected error for unsupported error mapping")
	}
	if _, err := engine.RenderString(`{% if %}`, nil); err == nil {
		t.Fatalf("expected parse error")
	}
}

func newEngine(t *testing.T) *template.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}

	engine, err := template.New(template.WithFS(templatesFS))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

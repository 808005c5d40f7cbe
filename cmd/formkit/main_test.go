package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formkit/internal/prompt"
	"github.com/goliatone/go-formkit/pkg/registry"
	"github.com/goliatone/go-formkit/pkg/render"
)

const fixturePath = "../../pkg/registry/testdata/registered.json"

// scriptedDriver answers by document key and takes defaults for the rest.
type scriptedDriver struct {
	text    map[string]string
	choices map[string]int
}

func (d *scriptedDriver) Text(_ context.Context, field prompt.Field) (string, error) {
	if value := d.text[field.Key]; value != "" {
		return value, nil
	}
	return field.Default, nil
}

func (d *scriptedDriver) Flag(_ context.Context, _ prompt.Field, def bool) (bool, error) {
	return def, nil
}

func (d *scriptedDriver) Choose(_ context.Context, field prompt.Field, _ []string) (int, error) {
	return d.choices[field.Key], nil
}

func (d *scriptedDriver) ChooseMany(_ context.Context, _ prompt.Field, _ []string, defaults []int) ([]int, error) {
	return defaults, nil
}

func (d *scriptedDriver) Info(context.Context, string) error { return nil }

func runCLI(t *testing.T, storePath string, driver prompt.Driver, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	if driver != nil {
		a.newDriver = func() prompt.Driver { return driver }
	}
	cmd := a.rootCmd()
	cmd.SetArgs(append([]string{"--store-path", storePath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestImportShowExport(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "options.json")

	out, err := runCLI(t, storePath, nil, "import", fixturePath)
	require.NoError(t, err)
	assert.Contains(t, out, "Changes saved with errors:")
	assert.Contains(t, out, "meta_boxes.1.meta_box_title: Meta box title is required")

	out, err = runCLI(t, storePath, nil, "show", "--json")
	require.NoError(t, err)
	var regs registry.Registrations
	require.NoError(t, json.Unmarshal([]byte(out), &regs))
	require.Len(t, regs.PostTypes, 2)
	assert.Equal(t, "event", regs.PostTypes[0].ID)
	assert.Equal(t, "book", regs.PostTypes[1].ID)
	_, ok := regs.Taxonomy("book_genre")
	assert.True(t, ok)

	out, err = runCLI(t, storePath, nil, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Post types (2)")
	assert.Contains(t, out, "slug=whats-on")

	out, err = runCLI(t, storePath, nil, "export", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "post_types:")
	assert.Contains(t, out, "singular: Book")

	exported := filepath.Join(t.TempDir(), "export.json")
	_, err = runCLI(t, storePath, nil, "export", "-o", exported)
	require.NoError(t, err)
	_, err = runCLI(t, storePath, nil, "validate", "--file", exported)
	assert.ErrorIs(t, err, errValidationFailed)
}

func TestValidate(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "options.json")

	out, err := runCLI(t, storePath, nil, "validate")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, err = runCLI(t, storePath, nil, "validate", "--file", fixturePath)
	require.ErrorIs(t, err, errValidationFailed)
	assert.Contains(t, out, "meta_boxes.1.meta_box_title: Meta box title is required\n")

	out, err = runCLI(t, storePath, nil, "--json", "validate", "--file", fixturePath)
	require.ErrorIs(t, err, errValidationFailed)
	var mapping render.ErrorMapping
	require.NoError(t, json.Unmarshal([]byte(out), &mapping))
	assert.Equal(t, []string{"Meta box title is required"}, mapping.For("meta_boxes.1.meta_box_title"))
	assert.Empty(t, mapping.Form)
}

func TestAddMetaBox(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "options.db")
	driver := &scriptedDriver{
		text:    map[string]string{"meta_box_title": "Details", "screens": "Book, event"},
		choices: map[string]int{"context": 3, "priority": 1},
	}

	out, err := runCLI(t, storePath, driver, "--store-driver", "sqlite", "add", registry.MetaBoxes)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved settings.")

	out, err = runCLI(t, storePath, nil, "--store-driver", "sqlite", "show", "--json")
	require.NoError(t, err)
	var regs registry.Registrations
	require.NoError(t, json.Unmarshal([]byte(out), &regs))
	assert.Equal(t, []registry.MetaBox{{
		ID:        "details",
		Title:     "Details",
		Gutenberg: true,
		Context:   "side",
		Priority:  "high",
		Screens:   []string{"book", "event"},
	}}, regs.MetaBoxes)
}

func TestAddUnknownCollection(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "options.json")
	_, err := runCLI(t, storePath, &scriptedDriver{}, "add", "widgets")
	assert.ErrorContains(t, err, `unknown collection "widgets"`)
}

func TestCast(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "options.json")

	out, err := runCLI(t, storePath, nil, "cast", `{"a":1}`, "array")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, out)

	out, err = runCLI(t, storePath, nil, "cast", "7", "string")
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)

	out, err = runCLI(t, storePath, nil, "cast", "--raw-json", "[1,2]", "json")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]\n", out)

	_, err = runCLI(t, storePath, nil, "cast", "x", "bogus")
	assert.ErrorContains(t, err, `unknown type "bogus"`)
}

func TestWalk(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "options.json")

	out, err := runCLI(t, storePath, nil, "walk", "a.1", `{"a":[1,"x"]}`)
	require.NoError(t, err)
	assert.Equal(t, "x\n", out)

	out, err = runCLI(t, storePath, nil, "walk", "a.b", `{}`, "--default", "none")
	require.NoError(t, err)
	assert.Equal(t, "none\n", out)

	out, err = runCLI(t, storePath, nil, "walk", "a.b", `{}`)
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)

	_, err = runCLI(t, storePath, nil, "import", fixturePath)
	require.NoError(t, err)
	out, err = runCLI(t, storePath, nil, "walk", "taxonomies.1.taxonomy_id")
	require.NoError(t, err)
	assert.Equal(t, "tag\n", out)
}

func TestConditions(t *testing.T) {
	storePath := filepath.Join(t.TempDir(), "options.json")

	out, err := runCLI(t, storePath, nil, "--json", "conditions", "age > 18", "or vip")
	require.NoError(t, err)
	assert.Equal(t,
		`[{"condition":null,"field":"age","operator":">","value":18},{"condition":"or","field":"vip","operator":"=","value":true}]`+"\n",
		out)

	out, err = runCLI(t, storePath, nil, "conditions", `type "book"`)
	require.NoError(t, err)
	assert.Equal(t,
		`data-tr-conditions="[{&quot;condition&quot;:null,&quot;field&quot;:&quot;type&quot;,&quot;operator&quot;:&quot;=&quot;,&quot;value&quot;:&quot;book&quot;}]"`+"\n",
		out)

	_, err = runCLI(t, storePath, nil, "conditions", "a b c d")
	assert.ErrorContains(t, err, "invalid rule")
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "options.json")
	_, err := runCLI(t, storePath, nil, "import", fixturePath)
	require.NoError(t, err)

	tplPath := filepath.Join(dir, "summary.html")
	tpl := `{% for pt in registrations.post_types %}{{ pt.id }}:{{ pt.slug }} {% endfor %}` +
		`|{{ option }}|{{ supports.0.label }}|` +
		`{% for msg in errors|field_errors:"meta_boxes.1.meta_box_title" %}{{ msg }}{% endfor %}`
	require.NoError(t, os.WriteFile(tplPath, []byte(tpl), 0o644))

	out, err := runCLI(t, storePath, nil, "render", tplPath)
	require.NoError(t, err)
	assert.Equal(t, "event:whats-on book:books |tr_registered|Force None *|Meta box title is required", out)

	_, err = runCLI(t, storePath, nil, "render", filepath.Join(dir, "missing.html"))
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, filepath.Join(t.TempDir(), "options.json"), nil, "version")
	require.NoError(t, err)
	assert.Equal(t, "formkit dev\n", out)
}

package template

import (
	"bytes"
	"encoding/json"

	"github.com/goliatone/go-formkit/pkg/registry"
	"github.com/goliatone/go-formkit/pkg/render"
)

// View is what a registry template renders: the stored document, what it
// registers and the validation errors to show next to each field.
type View struct {
	Document      registry.Document
	Registrations registry.Registrations
	Errors        render.ErrorMapping
	// Vars adds top-level values. They never replace document,
	// registrations, supports or errors.
	Vars map[string]any
}

// NewView builds the view of doc with its validation errors already mapped
// to field paths.
func NewView(doc registry.Document, regs registry.Registrations) View {
	return View{
		Document:      doc,
		Registrations: regs,
		Errors:        render.FromValidation(registry.Validate(doc)),
	}
}

// Context returns the template values:
//
//	document       the stored document as saved
//	registrations  post_types, taxonomies and meta_boxes under their stored field names
//	supports       the post type "supports" choices
//	errors         the error mapping, read with the field_errors filter
func (v View) Context() map[string]any {
	ctx := make(map[string]any, len(v.Vars)+4)
	for key, value := range v.Vars {
		ctx[key] = value
	}
	ctx["document"] = v.Document.Raw()
	ctx["registrations"] = map[string]any{
		registry.PostTypes:  fieldMaps(v.Registrations.PostTypes),
		registry.Taxonomies: fieldMaps(v.Registrations.Taxonomies),
		registry.MetaBoxes:  fieldMaps(v.Registrations.MetaBoxes),
	}
	ctx["supports"] = supportChoices()
	ctx["errors"] = v.Errors
	return ctx
}

func supportChoices() []map[string]any {
	opts := registry.SupportOptions()
	out := make([]map[string]any, 0, len(opts))
	for _, opt := range opts {
		out = append(out, map[string]any{"label": opt.Label, "value": opt.Value})
	}
	return out
}

// fieldMaps keys each definition by its json field names so templates use
// the same names as the stored document. Whole numbers stay integers.
func fieldMaps[T any](items []T) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			continue
		}
		for key, value := range fields {
			if n, ok := value.(json.Number); ok {
				fields[key] = number(n)
			}
		}
		out = append(out, fields)
	}
	return out
}

func number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return int(i)
	}
	f, _ := n.Float64()
	return f
}

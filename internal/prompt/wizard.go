package prompt

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formkit/pkg/registry"
)

// Wizard asks for the fields of a new registration entry. The returned maps
// use the same keys as the stored document.
type Wizard struct {
	driver Driver
}

// NewWizard returns a Wizard using driver.
func NewWizard(driver Driver) *Wizard {
	return &Wizard{driver: driver}
}

// Entry collects an entry for collection (post_types, taxonomies or
// meta_boxes).
func (w *Wizard) Entry(ctx context.Context, collection string) (map[string]any, error) {
	var (
		flow  func(context.Context) (map[string]any, error)
		label string
	)
	switch collection {
	case registry.PostTypes:
		flow, label = w.PostType, "post type"
	case registry.Taxonomies:
		flow, label = w.Taxonomy, "taxonomy"
	case registry.MetaBoxes:
		flow, label = w.MetaBox, "meta box"
	default:
		return nil, fmt.Errorf("prompt: unknown collection %q", collection)
	}
	if err := w.driver.Info(ctx, "New "+label); err != nil {
		return nil, err
	}
	return flow(ctx)
}

// PostType collects a post type entry.
func (w *Wizard) PostType(ctx context.Context) (map[string]any, error) {
	entry := map[string]any{}
	singular, err := w.required(ctx, entry, "singular", "Singular name")
	if err != nil {
		return nil, err
	}
	if _, err := w.required(ctx, entry, "plural", "Plural name"); err != nil {
		return nil, err
	}
	if err := w.key(ctx, entry, Field{Key: "post_type_id", Label: "Post type ID", Default: registry.DefaultID(singular)}, 20); err != nil {
		return nil, err
	}

	supports := registry.SupportOptions()
	labels := make([]string, len(supports))
	for i, opt := range supports {
		labels[i] = opt.Label
	}
	picked, err := w.driver.ChooseMany(ctx, Field{
		Key:   "supports",
		Label: "Supports",
		Help:  "Force None disables every feature.",
	}, labels, []int{1, 2})
	if err != nil {
		return nil, err
	}
	selected := make([]any, 0, len(picked))
	for _, idx := range picked {
		if idx >= 0 && idx < len(supports) {
			selected = append(selected, supports[idx].Value)
		}
	}
	entry["supports"] = selected

	if err := w.text(ctx, entry, Field{Key: "icon", Label: "Dashicon name", Help: "e.g. book-alt"}); err != nil {
		return nil, err
	}
	if err := w.text(ctx, entry, Field{
		Key:      "menu_position",
		Label:    "Menu position",
		Help:     "Leave empty for the default position.",
		Validate: optionalNumber,
	}); err != nil {
		return nil, err
	}
	if err := w.flags(ctx, entry, []flagPrompt{
		{"public", "Public?", true},
		{"has_archive", "Has archive page?", true},
		{"rest_api", "Expose in the REST API?", true},
		{"gutenberg", "Use the block editor?", false},
		{"hierarchical", "Hierarchical?", false},
	}); err != nil {
		return nil, err
	}
	return entry, nil
}

// Taxonomy collects a taxonomy entry.
func (w *Wizard) Taxonomy(ctx context.Context) (map[string]any, error) {
	entry := map[string]any{}
	singular, err := w.required(ctx, entry, "singular", "Singular name")
	if err != nil {
		return nil, err
	}
	if _, err := w.required(ctx, entry, "plural", "Plural name"); err != nil {
		return nil, err
	}
	if err := w.key(ctx, entry, Field{Key: "taxonomy_id", Label: "Taxonomy ID", Default: registry.DefaultID(singular)}, 32); err != nil {
		return nil, err
	}
	if err := w.list(ctx, entry, Field{Key: "post_types", Label: "Post types", Help: "Comma separated post type ids."}); err != nil {
		return nil, err
	}
	if err := w.flags(ctx, entry, []flagPrompt{
		{"public", "Public?", true},
		{"hierarchical", "Hierarchical?", false},
		{"rest_api", "Expose in the REST API?", true},
		{"show_admin_column", "Show a column on the post list?", false},
	}); err != nil {
		return nil, err
	}
	return entry, nil
}

// MetaBox collects a meta box entry.
func (w *Wizard) MetaBox(ctx context.Context) (map[string]any, error) {
	entry := map[string]any{}
	title, err := w.required(ctx, entry, "meta_box_title", "Title")
	if err != nil {
		return nil, err
	}
	if err := w.key(ctx, entry, Field{Key: "meta_box_id", Label: "Meta box ID", Default: registry.DefaultID(title)}, 0); err != nil {
		return nil, err
	}
	if err := w.choose(ctx, entry, Field{Key: "context", Label: "Context"}, registry.MetaBoxContexts()); err != nil {
		return nil, err
	}
	if err := w.choose(ctx, entry, Field{Key: "priority", Label: "Priority"}, registry.MetaBoxPriorities()); err != nil {
		return nil, err
	}
	if err := w.list(ctx, entry, Field{Key: "screens", Label: "Screens", Help: "Comma separated post type ids."}); err != nil {
		return nil, err
	}
	if err := w.flags(ctx, entry, []flagPrompt{
		{"gutenberg", "Show in the block editor?", true},
	}); err != nil {
		return nil, err
	}
	return entry, nil
}

type flagPrompt struct {
	key   string
	label string
	def   bool
}

func (w *Wizard) flags(ctx context.Context, entry map[string]any, prompts []flagPrompt) error {
	for _, p := range prompts {
		ok, err := w.driver.Flag(ctx, Field{Key: p.key, Label: p.label}, p.def)
		if err != nil {
			return err
		}
		entry[p.key] = ok
	}
	return nil
}

func (w *Wizard) text(ctx context.Context, entry map[string]any, field Field) error {
	value, err := w.driver.Text(ctx, field)
	if err != nil {
		return err
	}
	entry[field.Key] = strings.TrimSpace(value)
	return nil
}

func (w *Wizard) list(ctx context.Context, entry map[string]any, field Field) error {
	value, err := w.driver.Text(ctx, field)
	if err != nil {
		return err
	}
	entry[field.Key] = splitList(value)
	return nil
}

func (w *Wizard) choose(ctx context.Context, entry map[string]any, field Field, options []string) error {
	idx, err := w.driver.Choose(ctx, field, options)
	if err != nil {
		return err
	}
	entry[field.Key] = pick(options, idx)
	return nil
}

func (w *Wizard) required(ctx context.Context, entry map[string]any, key, label string) (string, error) {
	value, err := w.driver.Text(ctx, Field{Key: key, Label: label, Validate: requiredText})
	if err != nil {
		return "", err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("prompt: %s is required", strings.ToLower(label))
	}
	entry[key] = value
	return value, nil
}

// key asks for a machine key, falling back to field.Default when left empty.
func (w *Wizard) key(ctx context.Context, entry map[string]any, field Field, limit int) error {
	field.Validate = func(value string) error {
		value = strings.TrimSpace(value)
		if !registry.IsKey(value) {
			return errors.New("use lowercase letters, numbers, dashes or underscores")
		}
		if limit > 0 && len(value) > limit {
			return fmt.Errorf("can't be more than %d characters", limit)
		}
		return nil
	}
	value, err := w.driver.Text(ctx, field)
	if err != nil {
		return err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		value = field.Default
	}
	if err := field.Validate(value); err != nil {
		return fmt.Errorf("prompt: %s: %w", strings.ToLower(field.Label), err)
	}
	entry[field.Key] = value
	return nil
}

func requiredText(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func optionalNumber(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if _, err := strconv.Atoi(trimmed); err != nil {
		return errors.New("enter a whole number")
	}
	return nil
}

func splitList(value string) []any {
	parts := strings.Split(value, ",")
	out := make([]any, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func pick(options []string, idx int) string {
	if idx < 0 || idx >= len(options) {
		return ""
	}
	return options[idx]
}

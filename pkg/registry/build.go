package registry

import (
	"io"
	"slices"

	"github.com/sirupsen/logrus"
)

var (
	columnSortTypes = []string{"int", "str", "double", "date", "datetime", "time"}
	metaBoxContexts = []string{"default", "normal", "advanced", "side"}
	metaBoxPriority = []string{"default", "high", "low"}
)

// BuildOption configures Build.
type BuildOption func(*builder)

// OnPostType registers fn to run for every built post type.
func OnPostType(fn func(PostType)) BuildOption {
	return func(b *builder) {
		if fn != nil {
			b.onPostType = append(b.onPostType, fn)
		}
	}
}

// OnTaxonomy registers fn to run for every built taxonomy.
func OnTaxonomy(fn func(Taxonomy)) BuildOption {
	return func(b *builder) {
		if fn != nil {
			b.onTaxonomy = append(b.onTaxonomy, fn)
		}
	}
}

// OnMetaBox registers fn to run for every built meta box.
func OnMetaBox(fn func(MetaBox)) BuildOption {
	return func(b *builder) {
		if fn != nil {
			b.onMetaBox = append(b.onMetaBox, fn)
		}
	}
}

// WithBuildLogger sets the logger used to report skipped entries.
func WithBuildLogger(logger logrus.FieldLogger) BuildOption {
	return func(b *builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

type builder struct {
	onPostType []func(PostType)
	onTaxonomy []func(Taxonomy)
	onMetaBox  []func(MetaBox)
	logger     logrus.FieldLogger

	// taxonomy id -> post type ids that listed it
	postTypeTaxonomies map[string][]string
}

// Build maps doc onto typed definitions. Entries missing their required
// names are skipped. Post types are built first so taxonomies pick up the
// post types that reference them.
func Build(doc Document, opts ...BuildOption) Registrations {
	b := &builder{
		logger:             discardLogger(),
		postTypeTaxonomies: map[string][]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	regs := Registrations{}
	for _, entry := range doc.Entries(PostTypes) {
		pt, ok := b.postType(entry.Fields)
		if !ok {
			b.logger.WithField("entry", entry.Key).Debug("registry: skipping post type without names")
			continue
		}
		regs.PostTypes = append(regs.PostTypes, pt)
		for _, fn := range b.onPostType {
			fn(pt)
		}
	}
	for _, entry := range doc.Entries(Taxonomies) {
		tax, ok := b.taxonomy(entry.Fields)
		if !ok {
			b.logger.WithField("entry", entry.Key).Debug("registry: skipping taxonomy without names")
			continue
		}
		regs.Taxonomies = append(regs.Taxonomies, tax)
		for _, fn := range b.onTaxonomy {
			fn(tax)
		}
	}
	for _, entry := range doc.Entries(MetaBoxes) {
		box, ok := b.metaBox(entry.Fields)
		if !ok {
			b.logger.WithField("entry", entry.Key).Debug("registry: skipping meta box without title")
			continue
		}
		regs.MetaBoxes = append(regs.MetaBoxes, box)
		for _, fn := range b.onMetaBox {
			fn(box)
		}
	}
	return regs
}

func (b *builder) postType(fields map[string]any) (PostType, bool) {
	if !has(fields, "singular") || !has(fields, "plural") {
		return PostType{}, false
	}
	singular := sanitizeLabel(text(fields, "singular"))
	plural := sanitizeLabel(text(fields, "plural"))
	if singular == "" {
		return PostType{}, false
	}
	if plural == "" {
		plural = singular
	}

	pt := PostType{
		ID:       underscore(singular, false),
		Singular: singular,
		Plural:   plural,
		Slug:     dash(plural),
	}
	if id := text(fields, "post_type_id"); id != "" {
		pt.ID = underscore(id, false)
	}
	if slug := text(fields, "slug"); slug != "" {
		pt.Slug = slug
	}

	if items, ok := list(fields, "taxonomies"); ok {
		for _, item := range items {
			tax := underscore(itemText(item), false)
			if tax == "" {
				continue
			}
			pt.Taxonomies = appendUnique(pt.Taxonomies, tax)
			b.postTypeTaxonomies[tax] = appendUnique(b.postTypeTaxonomies[tax], pt.ID)
		}
	}

	if icon := text(fields, "icon"); icon != "" {
		pt.Icon = dash(icon)
	}
	pt.RootOnly = flag(fields, "root")
	if revisions, ok := number(fields, "revisions"); ok {
		pt.Revisions = revisions
	}

	if items, ok := list(fields, "supports"); ok {
		if containsZero(items) {
			pt.Featureless = true
		} else {
			for _, item := range items {
				if truthy(item) {
					pt.Supports = appendUnique(pt.Supports, itemText(item))
				}
			}
		}
	}
	if items, ok := list(fields, "custom_supports"); ok {
		for _, item := range items {
			pt.CustomSupports = appendUnique(pt.CustomSupports, escAttr(itemText(item)))
		}
	}

	pt.Public = flag(fields, "public")
	pt.Gutenberg = flag(fields, "gutenberg")
	pt.Hierarchical = flag(fields, "hierarchical")
	pt.REST = flag(fields, "rest_api")
	pt.HasArchive = flag(fields, "has_archive")
	pt.ExcludeFromSearch = flag(fields, "exclude_from_search")
	if perPage, ok := number(fields, "post_per_page"); ok {
		pt.PostsPerPage = perPage
	}
	pt.HideAdmin = flag(fields, "hide_admin")
	pt.HideFrontend = flag(fields, "hide_frontend")
	if placeholder := text(fields, "title_placeholder_text"); placeholder != "" {
		pt.TitlePlaceholder = escAttr(placeholder)
	}
	if position, ok := number(fields, "menu_position"); ok {
		pt.MenuPosition = position
	}

	if items, ok := list(fields, "columns"); ok && flag(fields, "columns") {
		for _, item := range items {
			column, ok := buildColumn(item)
			if ok {
				pt.Columns = append(pt.Columns, column)
			}
		}
	}

	pt.DeleteWithUser = flag(fields, "delete_with_user")
	pt.CustomCapabilities = flag(fields, "custom_capabilities")
	return pt, true
}

func buildColumn(item any) (Column, bool) {
	fields, ok := item.(map[string]any)
	if !ok {
		return Column{}, false
	}
	field := underscore(text(fields, "custom_field"), true)
	if field == "" {
		return Column{}, false
	}
	column := Column{
		Field: field,
		Label: escAttr(text(fields, "column_title")),
	}
	if sortBy := text(fields, "sort_by"); slices.Contains(columnSortTypes, sortBy) {
		column.SortBy = sortBy
	}
	switch ColumnFieldType(underscore(text(fields, "field_type"), true)) {
	case ColumnImageAttachment:
		column.FieldType = ColumnImageAttachment
	case ColumnImageURL:
		column.FieldType = ColumnImageURL
	}
	return column, true
}

func (b *builder) taxonomy(fields map[string]any) (Taxonomy, bool) {
	if !has(fields, "singular") || !has(fields, "plural") {
		return Taxonomy{}, false
	}
	singular := sanitizeLabel(text(fields, "singular"))
	plural := sanitizeLabel(text(fields, "plural"))
	if singular == "" {
		return Taxonomy{}, false
	}
	if plural == "" {
		plural = singular
	}

	tax := Taxonomy{
		ID:       underscore(singular, false),
		Singular: singular,
		Plural:   plural,
		Slug:     dash(plural),
	}
	if id := text(fields, "taxonomy_id"); id != "" {
		tax.ID = underscore(id, false)
	}
	if slug := text(fields, "slug"); slug != "" {
		tax.Slug = slug
	}
	if items, ok := list(fields, "post_types"); ok {
		for _, item := range items {
			tax.PostTypes = appendUnique(tax.PostTypes, underscore(itemText(item), false))
		}
	}
	tax.PostTypes = appendUnique(tax.PostTypes, b.postTypeTaxonomies[tax.ID]...)

	tax.Hierarchical = flag(fields, "hierarchical")
	tax.REST = flag(fields, "rest_api")
	tax.Public = flag(fields, "public")
	tax.HideAdmin = flag(fields, "hide_admin")
	tax.HideFrontend = flag(fields, "hide_frontend")
	tax.ShowQuickEdit = flag(fields, "show_quick_edit")
	tax.ShowAdminColumn = flag(fields, "show_admin_column")
	tax.CustomCapabilities = flag(fields, "custom_capabilities")
	return tax, true
}

func (b *builder) metaBox(fields map[string]any) (MetaBox, bool) {
	if !has(fields, "meta_box_title") || !has(fields, "meta_box_id") {
		return MetaBox{}, false
	}
	title := sanitizeLabel(text(fields, "meta_box_title"))
	if title == "" {
		return MetaBox{}, false
	}

	box := MetaBox{
		ID:        underscore(title, false),
		Title:     title,
		Gutenberg: flag(fields, "gutenberg"),
	}
	if id := sanitizeLabel(text(fields, "meta_box_id")); id != "" {
		box.ID = underscore(id, false)
	}
	if flag(fields, "context") {
		if context := text(fields, "context"); slices.Contains(metaBoxContexts, context) {
			box.Context = context
		}
	}
	if flag(fields, "priority") {
		if priority := text(fields, "priority"); slices.Contains(metaBoxPriority, priority) {
			box.Priority = priority
		}
	}
	if items, ok := list(fields, "screens"); ok {
		for _, item := range items {
			box.Screens = appendUnique(box.Screens, sanitizeKey(itemText(item)))
		}
	}
	return box, true
}

// containsZero reports whether items hold the "force none" support value.
func containsZero(items []any) bool {
	for _, item := range items {
		switch typed := item.(type) {
		case string:
			if typed == "0" {
				return true
			}
		case bool:
			if !typed {
				return true
			}
		case float64:
			if typed == 0 {
				return true
			}
		case int:
			if typed == 0 {
				return true
			}
		case int64:
			if typed == 0 {
				return true
			}
		}
	}
	return false
}

func discardLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

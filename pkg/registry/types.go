package registry

// PostType is a custom post type definition.
type PostType struct {
	ID                 string   `json:"id"`
	Singular           string   `json:"singular"`
	Plural             string   `json:"plural"`
	Slug               string   `json:"slug"`
	Taxonomies         []string `json:"taxonomies,omitempty"`
	Icon               string   `json:"icon,omitempty"`
	RootOnly           bool     `json:"root_only,omitempty"`
	Revisions          int      `json:"revisions,omitempty"`
	Featureless        bool     `json:"featureless,omitempty"`
	Supports           []string `json:"supports,omitempty"`
	CustomSupports     []string `json:"custom_supports,omitempty"`
	Public             bool     `json:"public"`
	Gutenberg          bool     `json:"gutenberg"`
	Hierarchical       bool     `json:"hierarchical,omitempty"`
	REST               bool     `json:"rest,omitempty"`
	HasArchive         bool     `json:"has_archive"`
	ExcludeFromSearch  bool     `json:"exclude_from_search,omitempty"`
	PostsPerPage       int      `json:"posts_per_page,omitempty"`
	HideAdmin          bool     `json:"hide_admin,omitempty"`
	HideFrontend       bool     `json:"hide_frontend,omitempty"`
	TitlePlaceholder   string   `json:"title_placeholder,omitempty"`
	MenuPosition       int      `json:"menu_position,omitempty"`
	Columns            []Column `json:"columns,omitempty"`
	DeleteWithUser     bool     `json:"delete_with_user,omitempty"`
	CustomCapabilities bool     `json:"custom_capabilities,omitempty"`
}

// ColumnFieldType controls how an admin column renders its value.
type ColumnFieldType string

const (
	ColumnText ColumnFieldType = ""
	// ColumnImageAttachment renders an attachment id as an image.
	ColumnImageAttachment ColumnFieldType = "img_wp"
	// ColumnImageURL renders a URL as an <img> tag.
	ColumnImageURL ColumnFieldType = "img_url"
)

// Column is an admin list column backed by a custom field.
type Column struct {
	Field     string          `json:"field"`
	SortBy    string          `json:"sort_by,omitempty"`
	Label     string          `json:"label,omitempty"`
	FieldType ColumnFieldType `json:"field_type,omitempty"`
}

// Sortable reports whether the column can be sorted.
func (c Column) Sortable() bool { return c.SortBy != "" }

// Taxonomy is a custom taxonomy definition.
type Taxonomy struct {
	ID                 string   `json:"id"`
	Singular           string   `json:"singular"`
	Plural             string   `json:"plural"`
	Slug               string   `json:"slug"`
	PostTypes          []string `json:"post_types,omitempty"`
	Hierarchical       bool     `json:"hierarchical,omitempty"`
	REST               bool     `json:"rest,omitempty"`
	Public             bool     `json:"public"`
	HideAdmin          bool     `json:"hide_admin,omitempty"`
	HideFrontend       bool     `json:"hide_frontend,omitempty"`
	ShowQuickEdit      bool     `json:"show_quick_edit,omitempty"`
	ShowAdminColumn    bool     `json:"show_admin_column,omitempty"`
	CustomCapabilities bool     `json:"custom_capabilities,omitempty"`
}

// MetaBox is an editor meta box definition.
type MetaBox struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Gutenberg bool     `json:"gutenberg"`
	Context   string   `json:"context,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	Screens   []string `json:"screens,omitempty"`
}

// Registrations holds everything built from a document.
type Registrations struct {
	PostTypes  []PostType `json:"post_types"`
	Taxonomies []Taxonomy `json:"taxonomies"`
	MetaBoxes  []MetaBox  `json:"meta_boxes"`
}

// Empty reports whether nothing was registered.
func (r Registrations) Empty() bool {
	return len(r.PostTypes) == 0 && len(r.Taxonomies) == 0 && len(r.MetaBoxes) == 0
}

// PostType returns the post type with id.
func (r Registrations) PostType(id string) (PostType, bool) {
	for _, pt := range r.PostTypes {
		if pt.ID == id {
			return pt, true
		}
	}
	return PostType{}, false
}

// Taxonomy returns the taxonomy with id.
func (r Registrations) Taxonomy(id string) (Taxonomy, bool) {
	for _, tax := range r.Taxonomies {
		if tax.ID == id {
			return tax, true
		}
	}
	return Taxonomy{}, false
}

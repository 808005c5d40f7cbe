package registry

// SupportOption is one choice of the post type "supports" field.
type SupportOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// SupportNone is the supports value that disables every feature.
const SupportNone = "0"

var supportOptions = []SupportOption{
	{"Force None *", SupportNone},
	{"Title", "title"},
	{"Editor", "editor"},
	{"Author", "author"},
	{"Thumbnail", "thumbnail"},
	{"Excerpt", "excerpt"},
	{"Trackbacks", "trackbacks"},
	{"Custom Fields", "custom-fields"},
	{"Comments", "comments"},
	{"Revisions", "revisions"},
	{"Page Attributes", "page-attributes"},
	{"Post Formats", "post-formats"},
}

// SupportOptions returns the supports choices in display order with labels
// escaped for attributes.
func SupportOptions() []SupportOption {
	out := make([]SupportOption, len(supportOptions))
	for i, opt := range supportOptions {
		out[i] = SupportOption{Label: escAttr(opt.Label), Value: opt.Value}
	}
	return out
}

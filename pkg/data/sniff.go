package data

// Format is the textual shape of a stored value.
type Format int

const (
	// FormatPlain is scalar text (or not text at all).
	FormatPlain Format = iota
	// FormatJSON is JSON text.
	FormatJSON
	// FormatLegacy is a legacy serialized blob.
	FormatLegacy
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatLegacy:
		return "legacy"
	default:
		return "plain"
	}
}

// Sniffer classifies a value into one of the three textual formats.
type Sniffer interface {
	Sniff(value any) Format
}

// BlobCodec reads and writes the legacy serialized format.
type BlobCodec interface {
	IsBlob(text string) bool
	Decode(text string) (any, error)
	Encode(value any) (string, error)
}

type formatSniffer struct {
	codec BlobCodec
}

// NewSniffer returns a Sniffer that checks for JSON first and then asks codec
// about legacy blobs. A nil codec never reports FormatLegacy.
func NewSniffer(codec BlobCodec) Sniffer {
	return formatSniffer{codec: codec}
}

func (s formatSniffer) Sniff(value any) Format {
	text, ok := ValueOf(value).Text()
	if !ok {
		return FormatPlain
	}
	if IsJSON(text) {
		return FormatJSON
	}
	if s.codec != nil && s.codec.IsBlob(text) {
		return FormatLegacy
	}
	return FormatPlain
}

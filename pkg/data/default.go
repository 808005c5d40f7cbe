package data

import "github.com/goliatone/go-formkit/pkg/data/phpserial"

var defaultCaster = NewCaster(WithBlobCodec(phpserial.Codec{}))

// Cast converts value to target using a caster that understands legacy
// serialized blobs. See Caster.Cast.
func Cast(value any, target Target) any {
	return defaultCaster.Cast(value, target)
}

// CastNamed converts value to the target called name ("int", "json", ...),
// returning value unchanged for unknown names.
func CastNamed(value any, name string) any {
	return defaultCaster.CastNamed(value, name)
}

// Sniff classifies value as plain text, JSON text or a legacy blob.
func Sniff(value any) Format {
	return defaultCaster.Sniffer().Sniff(value)
}

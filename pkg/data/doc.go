// Package data provides the permissive value helpers used by form fields and
// settings readers: dotted-path traversal over nested maps, slices and structs
// (Walk), conversion of arbitrary values into a declared field type (Cast) and
// JSON sniffing (IsJSON).
//
// None of the helpers return errors for missing or wrongly shaped input. A
// missing path degrades to the caller supplied default, a structured value
// cast to a number yields nil, and malformed JSON is simply reported as not
// JSON. Callers that need a numeric result must check for nil.
//
// Stored values may arrive in three textual shapes: plain scalar text, JSON
// text, or a legacy serialized blob written by older PHP-based installs. The
// Sniffer and BlobCodec seams keep that three-way split pluggable; the default
// caster understands the legacy format through package phpserial.
package data

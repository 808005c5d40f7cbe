// Package template renders registry views with pongo2. Templates see the
// stored document, the registrations built from it and the validation
// errors keyed by field path, plus filters for form field helpers:
// tr_conditions turns a rule set into its data-tr-conditions attribute,
// field_errors lists the messages for one field, walk reads dotted paths out
// of nested data and cast converts values between representations.
package template

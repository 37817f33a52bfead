// Package openapi models the small subset of the OpenAPI 3.1 / JSON Schema
// 2020-12 document shape this service needs to find `x-pii: true` markers:
// Document, Components, and Schema (Ref/Type/Properties/Items/Required).
// Unused annotation fields (descriptions, examples, numeric and string
// constraints) are left out, since nothing in this service ever reads
// them.
package openapi

// Document is the root of an OpenAPI document, trimmed to the parts the
// schema resolver walks: component schemas.
type Document struct {
	OpenAPI    string      `json:"openapi" yaml:"openapi"`
	Components *Components `json:"components,omitempty" yaml:"components,omitempty"`
}

// Components holds the named, reusable schemas a document's paths refer to.
type Components struct {
	Schemas map[string]*Schema `json:"schemas,omitempty" yaml:"schemas,omitempty"`
}

// SchemaType holds either a single JSON Schema type name or a list of them
// (2020-12 allows `type` to be a string or an array of strings, e.g. for
// nullable fields expressed as ["string","null"]).
type SchemaType struct {
	Values []string
}

// Is reports whether name is one of the type's values.
func (t SchemaType) Is(name string) bool {
	for _, v := range t.Values {
		if v == name {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts both a bare string and an array of strings.
func (t *SchemaType) UnmarshalJSON(data []byte) error {
	return unmarshalStringOrSlice(data, &t.Values)
}

// MarshalJSON renders a single value as a bare string, matching how most
// OpenAPI documents express `type`.
func (t SchemaType) MarshalJSON() ([]byte, error) {
	return marshalStringOrSlice(t.Values)
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML-sourced documents.
func (t *SchemaType) UnmarshalYAML(data []byte) error {
	return unmarshalYAMLStringOrSlice(data, &t.Values)
}

// Schema is a JSON Schema / OpenAPI schema object, trimmed to the fields
// the PII resolver needs: reference, type, object/array structure, the
// required list, and the `x-pii` vendor extension.
type Schema struct {
	Ref string `json:"$ref,omitempty" yaml:"$ref,omitempty"`

	Type SchemaType `json:"type,omitempty" yaml:"type,omitempty"`

	Properties map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required   []string           `json:"required,omitempty" yaml:"required,omitempty"`

	Items *Schema `json:"items,omitempty" yaml:"items,omitempty"`

	AllOf []*Schema `json:"allOf,omitempty" yaml:"allOf,omitempty"`

	// XPii is the `x-pii` vendor extension: the one recognized marker the
	// resolver looks for. A generic x-* extension map was considered and
	// rejected - this service recognizes exactly one extension, and a map
	// would just be unwrapped back into this single field at every call site.
	XPii bool `json:"x-pii,omitempty" yaml:"x-pii,omitempty"`
}

// IsObject reports whether the schema's type includes "object", or whether
// it has properties/required without an explicit type (a common omission
// in hand-written OpenAPI documents).
func (s *Schema) IsObject() bool {
	if s.Type.Is("object") {
		return true
	}
	return len(s.Type.Values) == 0 && (len(s.Properties) > 0 || len(s.Required) > 0)
}

// IsArray reports whether the schema's type includes "array", or whether it
// has an Items schema without an explicit type.
func (s *Schema) IsArray() bool {
	if s.Type.Is("array") {
		return true
	}
	return len(s.Type.Values) == 0 && s.Items != nil
}

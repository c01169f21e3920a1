package jsonschema

// Schema is a minimal JSON Schema representation used for export.
// Keys prefixed with x- carry goshadow serialization hints that generic
// validators ignore.
type Schema struct {
	// Core
	Type        string   `json:"type,omitempty"`
	Format      string   `json:"format,omitempty"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`

	// Numbers
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`

	// Strings
	MaxLength *int `json:"maxLength,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties any                `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Extensions
	SkipSerialization string   `json:"x-skip-serialization,omitempty"`
	SpanAttributes    []string `json:"x-span-attributes,omitempty"`
}

// Clone returns a deep copy so callers can decorate a shared schema.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Enum = append([]string(nil), s.Enum...)
	out.Required = append([]string(nil), s.Required...)
	out.SpanAttributes = append([]string(nil), s.SpanAttributes...)
	if s.Properties != nil {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for k, p := range s.Properties {
			out.Properties[k] = p.Clone()
		}
	}
	if ap, ok := s.AdditionalProperties.(*Schema); ok {
		out.AdditionalProperties = ap.Clone()
	}
	out.Items = s.Items.Clone()
	return &out
}

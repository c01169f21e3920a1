package dsl

import (
	"bytes"
	"fmt"
	"io"

	g "github.com/reoring/goshadow"
	yv3 "gopkg.in/yaml.v3"
)

// schemaDoc is the declarative form of a schema:
//
//	type: object
//	unknown: strip
//	fields:
//	  name: {type: string, required: true, max_chars: 64}
//	  level: {type: enum, enum: [debug, info, error]}
//	  tags: {type: array, items: {type: string}, skip: empty}
//	  labels: {type: map, values: {type: string}}
//	  duration: {type: f64, span: exclusive_time}
//
// Field order in the document is the declaration order. Write skip: "null"
// quoted, since a bare null is YAML's null.
type schemaDoc struct {
	Type string `yaml:"type"`

	// field options
	Required bool   `yaml:"required"`
	NonEmpty bool   `yaml:"nonempty"`
	Skip     string `yaml:"skip"`
	Span     string `yaml:"span"`

	// string
	MaxChars int `yaml:"max_chars"`
	Truncate int `yaml:"truncate"`
	// enum
	Enum []string `yaml:"enum"`
	// array
	Items    *schemaDoc `yaml:"items"`
	MaxItems int        `yaml:"max_items"`
	// map
	Values *schemaDoc `yaml:"values"`
	// object
	Unknown string   `yaml:"unknown"`
	Fields  yv3.Node `yaml:"fields"`
}

// LoadYAML builds a schema from its YAML description.
func LoadYAML(data []byte) (Schema, error) {
	return ReadYAML(bytes.NewReader(data))
}

// ReadYAML is LoadYAML over a reader.
func ReadYAML(r io.Reader) (Schema, error) {
	dec := yv3.NewDecoder(r)
	dec.KnownFields(true)
	var doc schemaDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("dsl: decode schema: %w", err)
	}
	return doc.build("")
}

func (d *schemaDoc) build(at string) (Schema, error) {
	switch d.Type {
	case "string":
		s := String()
		if d.MaxChars > 0 {
			s.MaxChars(d.MaxChars)
		}
		if d.Truncate > 0 {
			s.TruncateAt(d.Truncate)
		}
		return s, nil
	case "bool", "boolean":
		return Bool(), nil
	case "i64", "integer":
		return I64(), nil
	case "u64":
		return U64(), nil
	case "u32":
		return U32(), nil
	case "f64", "number":
		return F64(), nil
	case "timestamp":
		return Timestamp(), nil
	case "any", "":
		return Any(), nil
	case "enum":
		if len(d.Enum) == 0 {
			return nil, fmt.Errorf("dsl: %s: enum needs values", where(at))
		}
		return Enum(d.Enum...), nil
	case "array":
		if d.Items == nil {
			return nil, fmt.Errorf("dsl: %s: array needs items", where(at))
		}
		elem, err := d.Items.build(at + "[]")
		if err != nil {
			return nil, err
		}
		s := Array(elem)
		if d.MaxItems > 0 {
			s.MaxItems(d.MaxItems)
		}
		return s, nil
	case "map":
		if d.Values == nil {
			return nil, fmt.Errorf("dsl: %s: map needs values", where(at))
		}
		elem, err := d.Values.build(at + "{}")
		if err != nil {
			return nil, err
		}
		return Map(elem), nil
	case "object":
		return d.buildObject(at)
	}
	return nil, fmt.Errorf("dsl: %s: unknown type %q", where(at), d.Type)
}

func (d *schemaDoc) buildObject(at string) (Schema, error) {
	policy, err := ParseUnknownPolicy(d.Unknown)
	if err != nil {
		return nil, fmt.Errorf("%w at %s", err, where(at))
	}
	b := Object().Unknown(policy)
	if d.Fields.Kind != 0 && d.Fields.Kind != yv3.MappingNode {
		return nil, fmt.Errorf("dsl: %s: fields must be a mapping", where(at))
	}
	for i := 0; i+1 < len(d.Fields.Content); i += 2 {
		name := d.Fields.Content[i].Value
		path := name
		if at != "" {
			path = at + "." + name
		}
		var fd schemaDoc
		if err := d.Fields.Content[i+1].Decode(&fd); err != nil {
			return nil, fmt.Errorf("dsl: %s: %w", path, err)
		}
		fs, err := fd.build(path)
		if err != nil {
			return nil, err
		}
		skip, err := g.ParseSkip(fd.Skip)
		if err != nil {
			return nil, fmt.Errorf("dsl: %s: %w", path, err)
		}
		step := b.Field(name, fs).Skip(skip)
		if fd.Required {
			step.Required()
		}
		if fd.NonEmpty {
			step.NonEmpty()
		}
		for _, a := range g.ParseSpanAttributes(fd.Span) {
			step.SpanAttribute(a)
		}
	}
	s, err := b.Build()
	if err != nil {
		return nil, err
	}
	return s, nil
}

func where(at string) string {
	if at == "" {
		return "root"
	}
	return at
}

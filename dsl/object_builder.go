package dsl

import (
	"errors"
	"fmt"

	g "github.com/reoring/goshadow"
)

// UnknownPolicy decides what happens to keys an object schema does not declare.
type UnknownPolicy uint8

const (
	// UnknownStrict keeps the key as an absent entry carrying an
	// invalid_value error and the rejected value.
	UnknownStrict UnknownPolicy = iota
	// UnknownStrip drops the key.
	UnknownStrip
	// UnknownPassthrough keeps the key unchanged.
	UnknownPassthrough
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownStrict:
		return "strict"
	case UnknownStrip:
		return "strip"
	case UnknownPassthrough:
		return "passthrough"
	}
	return fmt.Sprintf("UnknownPolicy(%d)", uint8(p))
}

// ParseUnknownPolicy accepts the names produced by String. Empty means strict.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch s {
	case "", "strict":
		return UnknownStrict, nil
	case "strip":
		return UnknownStrip, nil
	case "passthrough":
		return UnknownPassthrough, nil
	}
	return UnknownStrict, fmt.Errorf("dsl: unknown policy %q", s)
}

var errNoSchema = errors.New("dsl: field has no schema")

type field struct {
	name     string
	schema   Schema
	required bool
	nonEmpty bool
	skip     g.SkipSerialization
	spans    g.SpanAttributes
}

type objectBuilder struct {
	fields        []*field
	index         map[string]int
	unknownPolicy UnknownPolicy
}

type fieldStep struct {
	b *objectBuilder
	f *field
}

// Object creates a new object builder with safe defaults (UnknownStrict).
func Object() *objectBuilder {
	return &objectBuilder{index: map[string]int{}, unknownPolicy: UnknownStrict}
}

// Field registers a field. Registering a name twice replaces the earlier
// declaration but keeps its position.
func (b *objectBuilder) Field(name string, s Schema) *fieldStep {
	f := &field{name: name, schema: s}
	if i, ok := b.index[name]; ok {
		b.fields[i] = f
	} else {
		b.index[name] = len(b.fields)
		b.fields = append(b.fields, f)
	}
	return &fieldStep{b: b, f: f}
}

// Required records missing_field when the field is absent or null and its
// Meta does not already explain why.
func (f *fieldStep) Required() *fieldStep {
	f.f.required = true
	return f
}

// Optional undoes Required.
func (f *fieldStep) Optional() *fieldStep {
	f.f.required = false
	return f
}

// NonEmpty rejects empty values with invalid_value.
func (f *fieldStep) NonEmpty() *fieldStep {
	f.f.nonEmpty = true
	return f
}

// Skip sets the serialization policy of the field.
func (f *fieldStep) Skip(p g.SkipSerialization) *fieldStep {
	f.f.skip = p
	return f
}

// SpanAttribute tags the field for span attribute extraction.
func (f *fieldStep) SpanAttribute(a g.SpanAttribute) *fieldStep {
	f.f.spans = f.f.spans.With(a)
	return f
}

func (f *fieldStep) Field(name string, s Schema) *fieldStep { return f.b.Field(name, s) }
func (f *fieldStep) UnknownStrict() *objectBuilder          { return f.b.UnknownStrict() }
func (f *fieldStep) UnknownStrip() *objectBuilder           { return f.b.UnknownStrip() }
func (f *fieldStep) UnknownPassthrough() *objectBuilder     { return f.b.UnknownPassthrough() }
func (f *fieldStep) Unknown(p UnknownPolicy) *objectBuilder { return f.b.Unknown(p) }
func (f *fieldStep) Build() (*ObjectSchema, error)          { return f.b.Build() }
func (f *fieldStep) MustBuild() *ObjectSchema               { return f.b.MustBuild() }

// UnknownStrict sets unknown policy to Strict.
func (b *objectBuilder) UnknownStrict() *objectBuilder { return b.Unknown(UnknownStrict) }

// UnknownStrip sets unknown policy to Strip.
func (b *objectBuilder) UnknownStrip() *objectBuilder { return b.Unknown(UnknownStrip) }

// UnknownPassthrough sets unknown policy to Passthrough.
func (b *objectBuilder) UnknownPassthrough() *objectBuilder { return b.Unknown(UnknownPassthrough) }

// Unknown sets the unknown key policy.
func (b *objectBuilder) Unknown(p UnknownPolicy) *objectBuilder {
	b.unknownPolicy = p
	return b
}

// Build validates the builder and returns the schema. Fields keep their
// declaration order.
func (b *objectBuilder) Build() (*ObjectSchema, error) {
	fields := make([]field, 0, len(b.fields))
	index := make(map[string]int, len(b.fields))
	for _, f := range b.fields {
		if f.schema == nil {
			return nil, fmt.Errorf("%w: %q", errNoSchema, f.name)
		}
		index[f.name] = len(fields)
		fields = append(fields, *f)
	}
	return &ObjectSchema{fields: fields, index: index, unknownPolicy: b.unknownPolicy}, nil
}

// MustBuild is Build that panics on error.
func (b *objectBuilder) MustBuild() *ObjectSchema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

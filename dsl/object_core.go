package dsl

import (
	g "github.com/reoring/goshadow"
	js "github.com/reoring/goshadow/jsonschema"
)

// ObjectSchema checks objects field by field. It is immutable once built and
// safe for concurrent use.
type ObjectSchema struct {
	fields        []field
	index         map[string]int
	unknownPolicy UnknownPolicy
}

func (s *ObjectSchema) lookup(k string) (*field, bool) {
	i, ok := s.index[k]
	if !ok {
		return nil, false
	}
	return &s.fields[i], true
}

// Fields returns the declared field names in order.
func (s *ObjectSchema) Fields() []string {
	out := make([]string, len(s.fields))
	for i := range s.fields {
		out[i] = s.fields[i].name
	}
	return out
}

// FieldSchema returns the schema declared for name.
func (s *ObjectSchema) FieldSchema(name string) (Schema, bool) {
	f, ok := s.lookup(name)
	if !ok {
		return nil, false
	}
	return f.schema, true
}

// UnknownPolicy returns the policy applied to undeclared keys.
func (s *ObjectSchema) UnknownPolicy() UnknownPolicy { return s.unknownPolicy }

// FromValue converts every declared field in input order. Declared fields
// missing from the input are appended only when they end up carrying Meta,
// such as a missing_field error.
func (s *ObjectSchema) FromValue(a g.Annotated[g.Value]) g.Annotated[g.Value] {
	return g.DecodeScalar(a, g.KindObject.String(), func(v g.Value) (g.Value, bool) {
		obj, ok := v.AsObject()
		if !ok {
			return v, false
		}
		out := g.NewObject[g.Value]()
		for k, item := range obj.All() {
			f, known := s.lookup(k)
			switch {
			case known:
				out.Insert(k, readField(f, *item))
			case !item.Present():
				// carrier of an earlier pass
				out.Insert(k, *item)
			case s.unknownPolicy == UnknownStrip:
			case s.unknownPolicy == UnknownStrict:
				rej := item.WithMeta(item.Meta().Clone())
				out.Insert(k, g.Reject(rej, g.InvalidValue("unknown field"), item.Get()))
			default:
				out.Insert(k, *item)
			}
		}
		for i := range s.fields {
			f := &s.fields[i]
			if obj.Has(f.name) {
				continue
			}
			if r := readField(f, g.Absent[g.Value]()); !r.IsEmpty() {
				out.Insert(f.name, r)
			}
		}
		return g.ObjectValue(out), true
	})
}

func readField(f *field, item g.Annotated[g.Value]) g.Annotated[g.Value] {
	out := f.schema.FromValue(item)
	if v, ok := out.Value(); ok && f.nonEmpty && f.schema.IsEmpty(v) {
		out = g.Reject(out, g.InvalidValue("expected a non-empty value"), v)
	}
	if !out.Present() && f.required && out.Meta().IsEmpty() {
		out.Meta().AddError(g.MissingField())
	}
	return out
}

// IntoValue applies each field's skip policy. Omitted fields that carry Meta
// stay as absent entries; absent fields whose policy keeps them are written
// as null. Undeclared keys pass through.
func (s *ObjectSchema) IntoValue(v g.Value) g.Value {
	obj, ok := v.AsObject()
	if !ok {
		return v
	}
	out := g.NewObject[g.Value]()
	for k, item := range obj.All() {
		f, known := s.lookup(k)
		if !known {
			out.Insert(k, *item)
			continue
		}
		writeField(out, f, *item)
	}
	for i := range s.fields {
		f := &s.fields[i]
		if !obj.Has(f.name) {
			writeField(out, f, g.Absent[g.Value]())
		}
	}
	return g.ObjectValue(out)
}

func writeField(out *g.Object[g.Value], f *field, item g.Annotated[g.Value]) {
	enc := g.MapValue(item, f.schema.IntoValue)
	v, present := enc.Value()
	null := !present || v.IsNull()
	empty := null || f.schema.IsEmpty(v)
	if f.skip.Omits(present, null, empty) {
		if !enc.Meta().IsEmpty() {
			out.Insert(f.name, g.Absent[g.Value]().WithMeta(*enc.Meta()))
		}
		return
	}
	if !present {
		enc.Set(g.Null())
	}
	out.Insert(f.name, enc)
}

// IsEmpty reports whether no entry of v is present.
func (*ObjectSchema) IsEmpty(v g.Value) bool {
	obj, ok := v.AsObject()
	if !ok {
		return g.IsEmptyValue(v)
	}
	for _, item := range obj.All() {
		if item.Present() {
			return false
		}
	}
	return true
}

// JSONSchema renders declared fields as properties. Skip policies and span
// attributes are exported as x- extensions.
func (s *ObjectSchema) JSONSchema() (*js.Schema, error) {
	out := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(s.fields))}
	for i := range s.fields {
		f := &s.fields[i]
		ps, err := f.schema.JSONSchema()
		if err != nil {
			return nil, err
		}
		if f.skip != g.SkipNever {
			ps.SkipSerialization = f.skip.String()
		}
		for _, a := range f.spans {
			ps.SpanAttributes = append(ps.SpanAttributes, a.String())
		}
		out.Properties[f.name] = ps
		if f.required {
			out.Required = append(out.Required, f.name)
		}
	}
	switch s.unknownPolicy {
	case UnknownStrict:
		out.AdditionalProperties = false
	case UnknownPassthrough:
		out.AdditionalProperties = true
	}
	return out, nil
}

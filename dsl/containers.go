package dsl

import (
	g "github.com/reoring/goshadow"
	js "github.com/reoring/goshadow/jsonschema"
)

// ArraySchema checks every item against an element schema. A bad item keeps
// its error on its own node and the list stays present.
type ArraySchema struct {
	elem     Schema
	maxItems int
}

// Array returns a schema for lists of elem.
func Array(elem Schema) *ArraySchema { return &ArraySchema{elem: elem} }

// MaxItems rejects lists longer than n with value_too_long.
func (s *ArraySchema) MaxItems(n int) *ArraySchema {
	s.maxItems = n
	return s
}

func (s *ArraySchema) FromValue(a g.Annotated[g.Value]) g.Annotated[g.Value] {
	out := g.DecodeScalar(a, g.KindArray.String(), func(v g.Value) (g.Value, bool) {
		items, ok := v.AsArray()
		if !ok {
			return v, false
		}
		conv := make(g.Array[g.Value], len(items))
		for i, it := range items {
			conv[i] = s.elem.FromValue(it)
		}
		return g.ArrayValue(conv), true
	})
	if v, ok := out.Value(); ok && s.maxItems > 0 {
		if items, _ := v.AsArray(); len(items) > s.maxItems {
			return g.Reject(out, g.ValueTooLong(s.maxItems), v)
		}
	}
	return out
}

func (s *ArraySchema) IntoValue(v g.Value) g.Value {
	items, ok := v.AsArray()
	if !ok {
		return v
	}
	out := make(g.Array[g.Value], len(items))
	for i, it := range items {
		out[i] = g.MapValue(it, s.elem.IntoValue)
	}
	return g.ArrayValue(out)
}

func (*ArraySchema) IsEmpty(v g.Value) bool { return g.IsEmptyValue(v) }

func (s *ArraySchema) JSONSchema() (*js.Schema, error) {
	items, err := s.elem.JSONSchema()
	if err != nil {
		return nil, err
	}
	out := &js.Schema{Type: "array", Items: items}
	if s.maxItems > 0 {
		n := s.maxItems
		out.MaxItems = &n
	}
	return out, nil
}

// MapSchema checks every entry of an object against one value schema.
type MapSchema struct {
	elem Schema
}

// Map returns a schema for string-keyed maps of elem.
func Map(elem Schema) *MapSchema { return &MapSchema{elem: elem} }

func (s *MapSchema) FromValue(a g.Annotated[g.Value]) g.Annotated[g.Value] {
	return g.DecodeScalar(a, g.KindObject.String(), func(v g.Value) (g.Value, bool) {
		obj, ok := v.AsObject()
		if !ok {
			return v, false
		}
		out := g.NewObject[g.Value]()
		for k, it := range obj.All() {
			out.Insert(k, s.elem.FromValue(*it))
		}
		return g.ObjectValue(out), true
	})
}

func (s *MapSchema) IntoValue(v g.Value) g.Value {
	obj, ok := v.AsObject()
	if !ok {
		return v
	}
	out := g.NewObject[g.Value]()
	for k, it := range obj.All() {
		out.Insert(k, g.MapValue(*it, s.elem.IntoValue))
	}
	return g.ObjectValue(out)
}

func (*MapSchema) IsEmpty(v g.Value) bool { return g.IsEmptyValue(v) }

func (s *MapSchema) JSONSchema() (*js.Schema, error) {
	vs, err := s.elem.JSONSchema()
	if err != nil {
		return nil, err
	}
	return &js.Schema{Type: "object", AdditionalProperties: vs}, nil
}

package codec

import (
	"slices"

	g "github.com/reoring/goshadow"
)

type arrayCodec[T any] struct{ elem g.Codec[T] }

// Array converts a list element by element. A bad element keeps its error on
// its own node; the list itself stays present.
func Array[T any](elem g.Codec[T]) g.Codec[g.Array[T]] { return arrayCodec[T]{elem: elem} }

func (c arrayCodec[T]) FromValue(a g.Annotated[g.Value]) g.Annotated[g.Array[T]] {
	return g.DecodeScalar(a, g.KindArray.String(), func(v g.Value) (g.Array[T], bool) {
		items, ok := v.AsArray()
		if !ok {
			return nil, false
		}
		out := make(g.Array[T], len(items))
		for i, it := range items {
			out[i] = c.elem.FromValue(it)
		}
		return out, true
	})
}

func (c arrayCodec[T]) IntoValue(items g.Array[T]) g.Value {
	out := make(g.Array[g.Value], len(items))
	for i, it := range items {
		out[i] = g.IntoAnnotated(it, c.elem)
	}
	return g.ArrayValue(out)
}

func (arrayCodec[T]) IsEmpty(items g.Array[T]) bool { return len(items) == 0 }

type objectCodec[T any] struct{ elem g.Codec[T] }

// Object converts a string-keyed map, keeping key order.
func Object[T any](elem g.Codec[T]) g.Codec[*g.Object[T]] { return objectCodec[T]{elem: elem} }

func (c objectCodec[T]) FromValue(a g.Annotated[g.Value]) g.Annotated[*g.Object[T]] {
	return g.DecodeScalar(a, g.KindObject.String(), func(v g.Value) (*g.Object[T], bool) {
		obj, ok := v.AsObject()
		if !ok {
			return nil, false
		}
		out := g.NewObject[T]()
		for k, it := range obj.All() {
			out.Insert(k, c.elem.FromValue(*it))
		}
		return out, true
	})
}

func (c objectCodec[T]) IntoValue(o *g.Object[T]) g.Value {
	out := g.NewObject[g.Value]()
	for k, it := range o.All() {
		out.Insert(k, g.IntoAnnotated(*it, c.elem))
	}
	return g.ObjectValue(out)
}

func (objectCodec[T]) IsEmpty(o *g.Object[T]) bool { return o.Len() == 0 }

// Struct returns the codec of a goshadow.Structure type.
func Struct[T any, PT interface {
	*T
	g.Structure
}]() g.Codec[T] {
	return g.StructCodec[T, PT]()
}

type enumCodec struct {
	allowed []string
}

// Enum accepts one of the allowed strings. Other strings are rejected with
// unknown_variant; non-strings with invalid_type.
func Enum(allowed ...string) g.Codec[string] { return enumCodec{allowed: allowed} }

func (c enumCodec) FromValue(a g.Annotated[g.Value]) g.Annotated[string] {
	out := String().FromValue(a)
	if s, ok := out.Value(); ok && !slices.Contains(c.allowed, s) {
		return g.Reject(out, g.UnknownVariant(s, c.allowed), g.String(s))
	}
	return out
}

func (enumCodec) IntoValue(s string) g.Value { return g.String(s) }
func (enumCodec) IsEmpty(s string) bool      { return s == "" }

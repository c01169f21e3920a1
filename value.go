package goshadow

import (
	"math"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindI64
	KindU64
	KindF64
	KindString
	KindArray
	KindObject
)

// String returns the short type name used in error data.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindI64:
		return "integer"
	case KindU64:
		return "unsigned integer"
	case KindF64:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the dynamic representation all input is parsed into before it is
// interpreted by a Codec. The zero Value is null.
//
// Children of arrays and objects are Annotated so that every nested node can
// carry its own Meta.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	arr  Array[Value]
	obj  *Object[Value]
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// I64 wraps a signed integer.
func I64(n int64) Value { return Value{kind: KindI64, i: n} }

// U64 wraps an unsigned integer.
func U64(n uint64) Value { return Value{kind: KindU64, u: n} }

// F64 wraps a floating point number.
func F64(f float64) Value { return Value{kind: KindF64, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// ArrayValue wraps a sequence of annotated values. A nil slice yields an
// empty array, not null.
func ArrayValue(items Array[Value]) Value {
	if items == nil {
		items = Array[Value]{}
	}
	return Value{kind: KindArray, arr: items}
}

// ArrayOf builds an array Value from plain values.
func ArrayOf(items ...Value) Value {
	arr := make(Array[Value], 0, len(items))
	for _, it := range items {
		arr = append(arr, New(it))
	}
	return ArrayValue(arr)
}

// ObjectValue wraps an ordered mapping. A nil object yields an empty object.
func ObjectValue(o *Object[Value]) Value {
	if o == nil {
		o = NewObject[Value]()
	}
	return Value{kind: KindObject, obj: o}
}

// ObjectOf builds an object Value from alternating key/value pairs. It panics
// on an odd argument count or non-string keys; it is meant for literals.
func ObjectOf(kv ...any) Value {
	if len(kv)%2 != 0 {
		panic("goshadow.ObjectOf: odd number of arguments")
	}
	o := NewObject[Value]()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic("goshadow.ObjectOf: keys must be strings")
		}
		switch v := kv[i+1].(type) {
		case Value:
			o.Insert(k, New(v))
		case Annotated[Value]:
			o.Insert(k, v)
		default:
			panic("goshadow.ObjectOf: values must be Value or Annotated[Value]")
		}
	}
	return ObjectValue(o)
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns v as bool; ok is false for every other variant.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsI64 returns v as int64. Unsigned values that fit and integral floats are
// accepted.
func (v Value) AsI64() (int64, bool) {
	switch v.kind {
	case KindI64:
		return v.i, true
	case KindU64:
		if v.u <= math.MaxInt64 {
			return int64(v.u), true
		}
	case KindF64:
		if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
			return int64(v.f), true
		}
	}
	return 0, false
}

// AsU64 returns v as uint64. Non-negative signed values and integral floats
// are accepted.
func (v Value) AsU64() (uint64, bool) {
	switch v.kind {
	case KindU64:
		return v.u, true
	case KindI64:
		if v.i >= 0 {
			return uint64(v.i), true
		}
	case KindF64:
		if v.f == math.Trunc(v.f) && v.f >= 0 && v.f < math.MaxUint64 {
			return uint64(v.f), true
		}
	}
	return 0, false
}

// AsF64 returns v as float64 for any numeric variant.
func (v Value) AsF64() (float64, bool) {
	switch v.kind {
	case KindF64:
		return v.f, true
	case KindI64:
		return float64(v.i), true
	case KindU64:
		return float64(v.u), true
	}
	return 0, false
}

// AsString returns the string of a string value.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsArray returns the items of an array value. The slice is shared with v.
func (v Value) AsArray() (Array[Value], bool) { return v.arr, v.kind == KindArray }

// AsObject returns the object of an object value. The object is shared
// with v; use Clone before mutating a value that others hold.
func (v Value) AsObject() (*Object[Value], bool) { return v.obj, v.kind == KindObject }

// IsNumber reports whether v is one of the numeric variants.
func (v Value) IsNumber() bool {
	return v.kind == KindI64 || v.kind == KindU64 || v.kind == KindF64
}

// Describe renders a short human description of the value's type, used in
// error messages ("expected a string, got an object").
func (v Value) Describe() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return "a boolean"
	case KindI64:
		return "an integer"
	case KindU64:
		return "an unsigned integer"
	case KindF64:
		return "a floating point number"
	case KindString:
		return "a string"
	case KindArray:
		return "a list"
	case KindObject:
		return "an object"
	default:
		return "an unknown value"
	}
}

// IsEmptyValue reports the per-type emptiness of v: null, "", [] and {}.
func IsEmptyValue(v Value) bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == ""
	case KindArray:
		return len(v.arr) == 0
	case KindObject:
		return v.obj.Len() == 0
	default:
		return false
	}
}

// Equal compares two values structurally. Numbers compare across variants when
// they denote the same integer; child presence matters but child Meta does not.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		if v.IsNumber() && o.IsNumber() && v.kind != KindF64 && o.kind != KindF64 {
			a, ok1 := v.AsI64()
			b, ok2 := o.AsI64()
			if ok1 && ok2 {
				return a == b
			}
		}
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindI64:
		return v.i == o.i
	case KindU64:
		return v.u == o.u
	case KindF64:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !equalAnnotatedValue(v.arr[i], o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != o.obj.Len() {
			return false
		}
		for k, a := range v.obj.All() {
			b, ok := o.obj.Get(k)
			if !ok || !equalAnnotatedValue(*a, b) {
				return false
			}
		}
		return true
	}
	return false
}

func equalAnnotatedValue(a, b Annotated[Value]) bool {
	av, aok := a.Value()
	bv, bok := b.Value()
	if aok != bok {
		return false
	}
	return !aok || av.Equal(bv)
}

// Clone returns a deep copy of v including the Meta of nested nodes.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		arr := make(Array[Value], len(v.arr))
		for i, it := range v.arr {
			arr[i] = cloneAnnotatedValue(it)
		}
		return Value{kind: KindArray, arr: arr}
	case KindObject:
		return Value{kind: KindObject, obj: v.obj.cloneWith(cloneAnnotatedValue)}
	default:
		return v
	}
}

func cloneAnnotatedValue(a Annotated[Value]) Annotated[Value] {
	out := Annotated[Value]{present: a.present, meta: a.meta.Clone()}
	if a.present {
		out.value = a.value.Clone()
	}
	return out
}

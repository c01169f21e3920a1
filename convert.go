package goshadow

// Codec maps between the dynamic Value representation and a typed T.
//
// FromValue never fails: problems are recorded on the returned Annotated's
// Meta and the value is left absent. Input Meta is carried over. A null or
// absent input yields an absent result without an error; requiredness is a
// property of the enclosing field, not of the type.
type Codec[T any] interface {
	FromValue(a Annotated[Value]) Annotated[T]
	IntoValue(v T) Value
	IsEmpty(v T) bool
}

// Emptier is implemented by types that know their own "nothing" state.
type Emptier interface {
	IsEmpty() bool
}

// Convert runs c.FromValue. It exists for symmetry with IntoAnnotated.
func Convert[T any](a Annotated[Value], c Codec[T]) Annotated[T] {
	return c.FromValue(a)
}

// IntoAnnotated converts the held value back to a Value and keeps the Meta.
func IntoAnnotated[T any](a Annotated[T], c Codec[T]) Annotated[Value] {
	return MapValue(a, c.IntoValue)
}

// DecodeScalar is the common FromValue body for leaf types: null and absent
// pass through, fn extracts T, and a mismatch records invalid_type together
// with the rejected value.
func DecodeScalar[T any](a Annotated[Value], expected string, fn func(Value) (T, bool)) Annotated[T] {
	out := Annotated[T]{meta: a.meta}
	v, ok := a.Value()
	if !ok || v.IsNull() {
		return out
	}
	t, ok := fn(v)
	if !ok {
		out.meta.AddError(InvalidType(expected, v))
		out.meta.SetOriginalValue(v)
		return out
	}
	out.Set(t)
	return out
}

// Reject clears the value of a and records err, keeping the rejected value as
// provenance. Codecs use it for semantic checks after a successful decode.
func Reject[T any](a Annotated[T], err Error, original Value) Annotated[T] {
	a.Clear()
	a.meta.AddError(err)
	a.meta.SetOriginalValue(original)
	return a
}

type valueCodec struct{}

func (valueCodec) FromValue(a Annotated[Value]) Annotated[Value] {
	if v, ok := a.Value(); ok && v.IsNull() {
		a.Clear()
	}
	return a
}

func (valueCodec) IntoValue(v Value) Value { return v }

func (valueCodec) IsEmpty(v Value) bool { return IsEmptyValue(v) }

// ValueCodec is the identity codec. Nested Meta travels inside the Value.
func ValueCodec() Codec[Value] { return valueCodec{} }

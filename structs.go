package goshadow

// Structure is implemented by domain structs (on the pointer receiver) to
// opt into the conversion machinery. Each method reads or writes one field
// at a time through ReadField and WriteField.
type Structure interface {
	FromValue(r *StructReader)
	IntoValue(w *StructWriter)
}

// StructReader hands the entries of an input object to ReadField.
type StructReader struct {
	obj  *Object[Value]
	seen map[string]struct{}
}

// Other returns the entries no ReadField call consumed, in input order.
func (r *StructReader) Other() *Object[Value] {
	out := NewObject[Value]()
	for k, item := range r.obj.All() {
		if _, ok := r.seen[k]; ok {
			continue
		}
		out.Insert(k, *item)
	}
	return out
}

// FieldOpt tunes ReadField.
type FieldOpt struct {
	required bool
	nonEmpty bool
}

// Required records missing_field when the field is absent or null and
// nothing else explains why.
func Required() FieldOpt { return FieldOpt{required: true} }

// NonEmpty rejects empty values with invalid_value. Combine with Required to
// forbid absence too.
func NonEmpty() FieldOpt { return FieldOpt{nonEmpty: true} }

// ReadField converts the entry under key into dst. Failures stay on dst's
// Meta; sibling fields are unaffected.
func ReadField[T any](r *StructReader, key string, dst *Annotated[T], c Codec[T], opts ...FieldOpt) {
	var o FieldOpt
	for _, op := range opts {
		o.required = o.required || op.required
		o.nonEmpty = o.nonEmpty || op.nonEmpty
	}
	if r.seen == nil {
		r.seen = make(map[string]struct{})
	}
	r.seen[key] = struct{}{}

	item, _ := r.obj.Get(key)
	out := c.FromValue(item)
	if v, ok := out.Value(); ok && o.nonEmpty && c.IsEmpty(v) {
		out = Reject(out, InvalidValue("expected a non-empty value"), c.IntoValue(v))
	}
	// a field whose Meta already explains the absence (an error, or a remark
	// left by a processor) is not reported again
	if !out.Present() && o.required && out.meta.IsEmpty() {
		out.meta.AddError(MissingField())
	}
	*dst = out
}

// StructWriter collects the output entries of a Structure.
type StructWriter struct {
	obj *Object[Value]
}

// WriteField emits a under key according to skip. An omitted field that
// still carries Meta is kept as an absent entry so the Meta reaches the meta
// channel; absence under a policy that does not skip it is written as null.
func WriteField[T any](w *StructWriter, key string, a Annotated[T], c Codec[T], skip SkipSerialization) {
	v, present := a.Value()
	var out Value
	null, empty := true, true
	if present {
		out = c.IntoValue(v)
		null = out.IsNull()
		empty = c.IsEmpty(v)
	}
	if skip.Omits(present, null, empty) {
		if !a.meta.IsEmpty() {
			w.obj.Insert(key, Annotated[Value]{meta: a.meta})
		}
		return
	}
	w.obj.Insert(key, Annotated[Value]{value: out, present: true, meta: a.meta})
}

// WriteOther appends entries captured by StructReader.Other. Keys already
// written by WriteField take precedence.
func (w *StructWriter) WriteOther(other *Object[Value]) {
	for k, item := range other.All() {
		if w.obj.Has(k) {
			continue
		}
		w.obj.Insert(k, *item)
	}
}

// StructFromValue converts an object Value into a T whose pointer implements
// Structure. Non-object input records invalid_type and keeps the raw value.
func StructFromValue[T any, PT interface {
	*T
	Structure
}](a Annotated[Value]) Annotated[T] {
	return DecodeScalar(a, KindObject.String(), func(v Value) (T, bool) {
		var t T
		obj, ok := v.AsObject()
		if !ok {
			return t, false
		}
		PT(&t).FromValue(&StructReader{obj: obj})
		return t, true
	})
}

// StructIntoValue converts t back into an object Value.
func StructIntoValue[T any, PT interface {
	*T
	Structure
}](t T) Value {
	w := &StructWriter{obj: NewObject[Value]()}
	PT(&t).IntoValue(w)
	return ObjectValue(w.obj)
}

type structCodec[T any, PT interface {
	*T
	Structure
}] struct{}

func (structCodec[T, PT]) FromValue(a Annotated[Value]) Annotated[T] {
	return StructFromValue[T, PT](a)
}

func (structCodec[T, PT]) IntoValue(t T) Value { return StructIntoValue[T, PT](t) }

// IsEmpty defers to Emptier when implemented; otherwise a struct is empty
// when it writes no present field.
func (structCodec[T, PT]) IsEmpty(t T) bool {
	if e, ok := any(PT(&t)).(Emptier); ok {
		return e.IsEmpty()
	}
	obj, _ := StructIntoValue[T, PT](t).AsObject()
	for _, item := range obj.All() {
		if item.Present() {
			return false
		}
	}
	return true
}

// StructCodec returns the Codec for a Structure type, for nesting structs in
// fields, arrays and maps.
func StructCodec[T any, PT interface {
	*T
	Structure
}]() Codec[T] {
	return structCodec[T, PT]{}
}

package goshadow

// Annotated pairs an optional value with its Meta. It is the unit of data
// flow between pipeline stages: a stage owns the Annotated it holds and hands
// it on by value.
//
// An absent value with a non-empty Meta means the field was present in the
// input but rejected or stripped, and the Meta says why.
type Annotated[T any] struct {
	value   T
	present bool
	meta    Meta
}

// New returns an Annotated holding v with empty Meta.
func New[T any](v T) Annotated[T] { return Annotated[T]{value: v, present: true} }

// Absent returns an Annotated without value and with empty Meta.
func Absent[T any]() Annotated[T] { return Annotated[T]{} }

// FromError returns an absent Annotated whose Meta records err and, when
// given, the offending raw value.
func FromError[T any](err Error, original *Value) Annotated[T] {
	var a Annotated[T]
	a.meta.AddError(err)
	if original != nil {
		a.meta.SetOriginalValue(*original)
	}
	return a
}

// Value returns the held value and whether it is present.
func (a Annotated[T]) Value() (T, bool) { return a.value, a.present }

// Get returns the held value or the zero T when absent.
func (a Annotated[T]) Get() T { return a.value }

// Present reports whether a value is held.
func (a Annotated[T]) Present() bool { return a.present }

// Set stores v, keeping the Meta.
func (a *Annotated[T]) Set(v T) {
	a.value = v
	a.present = true
}

// Clear drops the value, keeping the Meta.
func (a *Annotated[T]) Clear() {
	var zero T
	a.value = zero
	a.present = false
}

// Take removes and returns the value.
func (a *Annotated[T]) Take() (T, bool) {
	v, ok := a.value, a.present
	a.Clear()
	return v, ok
}

// Meta returns a pointer to the side-channel record so callers can add
// errors and remarks in place.
func (a *Annotated[T]) Meta() *Meta { return &a.meta }

// WithMeta returns a copy of a carrying m instead of its current Meta.
func (a Annotated[T]) WithMeta(m Meta) Annotated[T] {
	a.meta = m
	return a
}

// IsEmpty reports whether there is neither a value nor any Meta.
func (a Annotated[T]) IsEmpty() bool { return !a.present && a.meta.IsEmpty() }

// MapValue converts the held value with fn and keeps the Meta.
func MapValue[T, U any](a Annotated[T], fn func(T) U) Annotated[U] {
	out := Annotated[U]{meta: a.meta}
	if a.present {
		out.Set(fn(a.value))
	}
	return out
}

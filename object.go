package goshadow

import "iter"

// Array is a sequence of annotated items.
type Array[T any] []Annotated[T]

// Object is a string-keyed mapping of annotated values that preserves
// insertion order. Visit order, serialization order and remark order all
// follow it. The zero value is not usable; call NewObject. Read methods are
// nil-safe.
type Object[T any] struct {
	entries []objectEntry[T]
	index   map[string]int
}

type objectEntry[T any] struct {
	key   string
	value Annotated[T]
}

// NewObject returns an empty ordered object.
func NewObject[T any]() *Object[T] {
	return &Object[T]{index: make(map[string]int)}
}

// Len returns the number of entries.
func (o *Object[T]) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Get returns a copy of the entry stored under key.
func (o *Object[T]) Get(key string) (Annotated[T], bool) {
	if o == nil {
		return Annotated[T]{}, false
	}
	i, ok := o.index[key]
	if !ok {
		return Annotated[T]{}, false
	}
	return o.entries[i].value, true
}

// Ref returns a pointer to the entry stored under key so it can be rewritten
// in place. The pointer is invalidated by Delete.
func (o *Object[T]) Ref(key string) *Annotated[T] {
	if o == nil {
		return nil
	}
	i, ok := o.index[key]
	if !ok {
		return nil
	}
	return &o.entries[i].value
}

// Has reports whether key exists (present or absent value).
func (o *Object[T]) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.index[key]
	return ok
}

// Insert stores v under key. An existing key keeps its position.
func (o *Object[T]) Insert(key string, v Annotated[T]) {
	if i, ok := o.index[key]; ok {
		o.entries[i].value = v
		return
	}
	o.index[key] = len(o.entries)
	o.entries = append(o.entries, objectEntry[T]{key: key, value: v})
}

// Delete removes key and returns the removed entry.
func (o *Object[T]) Delete(key string) (Annotated[T], bool) {
	if o == nil {
		return Annotated[T]{}, false
	}
	i, ok := o.index[key]
	if !ok {
		return Annotated[T]{}, false
	}
	removed := o.entries[i].value
	o.entries = append(o.entries[:i], o.entries[i+1:]...)
	delete(o.index, key)
	for j := i; j < len(o.entries); j++ {
		o.index[o.entries[j].key] = j
	}
	return removed, true
}

// Keys returns the keys in insertion order.
func (o *Object[T]) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.key
	}
	return keys
}

// All iterates entries in insertion order. The yielded pointer aliases the
// stored entry.
func (o *Object[T]) All() iter.Seq2[string, *Annotated[T]] {
	return func(yield func(string, *Annotated[T]) bool) {
		if o == nil {
			return
		}
		for i := range o.entries {
			if !yield(o.entries[i].key, &o.entries[i].value) {
				return
			}
		}
	}
}

// Clone copies the entry list and each entry's Meta; nested values are shared.
func (o *Object[T]) Clone() *Object[T] {
	return o.cloneWith(func(a Annotated[T]) Annotated[T] {
		a.meta = a.meta.Clone()
		return a
	})
}

func (o *Object[T]) cloneWith(fn func(Annotated[T]) Annotated[T]) *Object[T] {
	out := NewObject[T]()
	if o == nil {
		return out
	}
	out.entries = make([]objectEntry[T], len(o.entries))
	for i, e := range o.entries {
		out.entries[i] = objectEntry[T]{key: e.key, value: fn(e.value)}
		out.index[e.key] = i
	}
	return out
}

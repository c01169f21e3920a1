package goshadow

import "strconv"

// MetaTree is a sparse tree of Meta mirroring only the parts of a value that
// carry side-channel information. Children are keyed by object key or decimal
// array index and kept in the order they were added; a child exists only when
// it is non-empty.
type MetaTree struct {
	Meta     Meta
	keys     []string
	children map[string]*MetaTree
}

// IsEmpty reports whether neither this node nor any descendant holds Meta.
func (t *MetaTree) IsEmpty() bool {
	if t == nil {
		return true
	}
	if !t.Meta.IsEmpty() {
		return false
	}
	for _, c := range t.children {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Len counts materialized nodes with non-empty Meta.
func (t *MetaTree) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	if !t.Meta.IsEmpty() {
		n++
	}
	for _, k := range t.keys {
		n += t.children[k].Len()
	}
	return n
}

// Keys returns child keys in insertion order.
func (t *MetaTree) Keys() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.keys...)
}

// Child returns the subtree stored under key, or nil.
func (t *MetaTree) Child(key string) *MetaTree {
	if t == nil {
		return nil
	}
	return t.children[key]
}

func (t *MetaTree) childOrCreate(key string) *MetaTree {
	if c, ok := t.children[key]; ok {
		return c
	}
	if t.children == nil {
		t.children = make(map[string]*MetaTree)
	}
	c := &MetaTree{}
	t.children[key] = c
	t.keys = append(t.keys, key)
	return c
}

// setChild stores c under key only if it carries anything.
func (t *MetaTree) setChild(key string, c *MetaTree) {
	if c.IsEmpty() {
		return
	}
	if t.children == nil {
		t.children = make(map[string]*MetaTree)
	}
	if _, ok := t.children[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.children[key] = c
}

// Lookup walks p and returns the subtree at its end. Cost is proportional to
// len(p).
func (t *MetaTree) Lookup(p Path) (*MetaTree, bool) {
	cur := t
	for _, seg := range p {
		cur = cur.Child(seg.String())
		if cur == nil {
			return nil, false
		}
	}
	return cur, cur != nil
}

// MetaAt returns the Meta recorded at p, if any.
func (t *MetaTree) MetaAt(p Path) (Meta, bool) {
	sub, ok := t.Lookup(p)
	if !ok || sub.Meta.IsEmpty() {
		return Meta{}, false
	}
	return sub.Meta, true
}

// Insert merges m into the node at p, creating intermediate nodes. Empty Meta
// is ignored so the tree stays sparse.
func (t *MetaTree) Insert(p Path, m Meta) {
	if m.IsEmpty() {
		return
	}
	cur := t
	for _, seg := range p {
		cur = cur.childOrCreate(seg.String())
	}
	cur.Meta.Merge(m)
}

// Merge folds other into t path by path: errors and remarks concatenate in
// order, original length and value from other win.
func (t *MetaTree) Merge(other *MetaTree) {
	if other == nil {
		return
	}
	t.Meta.Merge(other.Meta)
	for _, k := range other.keys {
		oc := other.children[k]
		if oc.IsEmpty() {
			continue
		}
		t.childOrCreate(k).Merge(oc)
	}
}

// Walk calls fn for every node with non-empty Meta, parents before children.
func (t *MetaTree) Walk(fn func(p Path, m *Meta)) {
	t.walk(nil, fn)
}

func (t *MetaTree) walk(p Path, fn func(Path, *Meta)) {
	if t == nil {
		return
	}
	if !t.Meta.IsEmpty() {
		fn(p, &t.Meta)
	}
	for _, k := range t.keys {
		t.children[k].walk(p.Field(k), fn)
	}
}

// Issues flattens every recorded error into a pointer-addressed list.
func (t *MetaTree) Issues() Issues {
	var out Issues
	t.Walk(func(p Path, m *Meta) {
		for _, e := range m.Errors() {
			out = append(out, issueAt(p, e))
		}
	})
	return out
}

// ExtractMeta builds the MetaTree of an annotated value. Nodes with empty
// Meta and no annotated descendants produce no entry.
func ExtractMeta(a Annotated[Value]) *MetaTree {
	t := &MetaTree{Meta: a.meta.Clone()}
	v, ok := a.Value()
	if !ok {
		return t
	}
	switch v.kind {
	case KindArray:
		for i, item := range v.arr {
			t.setChild(strconv.Itoa(i), ExtractMeta(item))
		}
	case KindObject:
		for k, item := range v.obj.All() {
			t.setChild(k, ExtractMeta(*item))
		}
	}
	return t
}

// AttachMeta merges t into the annotated tree rooted at a. Object keys that
// exist in t but not in the value are created as absent entries so their Meta
// survives; array indices past the end are padded with absent items.
func AttachMeta(a *Annotated[Value], t *MetaTree) {
	if t == nil {
		return
	}
	a.meta.Merge(t.Meta)
	if len(t.keys) == 0 {
		return
	}
	v, ok := a.Value()
	if !ok {
		return
	}
	switch v.kind {
	case KindObject:
		for _, k := range t.keys {
			child := v.obj.Ref(k)
			if child == nil {
				v.obj.Insert(k, Absent[Value]())
				child = v.obj.Ref(k)
			}
			AttachMeta(child, t.children[k])
		}
	case KindArray:
		for _, k := range t.keys {
			i, err := strconv.Atoi(k)
			if err != nil || i < 0 {
				continue
			}
			for len(v.arr) <= i {
				v.arr = append(v.arr, Absent[Value]())
			}
			AttachMeta(&v.arr[i], t.children[k])
		}
		// padding may have reallocated the backing array
		a.Set(v)
	}
}

package goshadow

import (
	"errors"
	"fmt"
)

// MetaKey is the reserved key that carries the meta document next to a
// payload.
const MetaKey = "_meta"

// metaSelfKey holds a node's own Meta inside the wire form of a MetaTree;
// every other key is a child.
const metaSelfKey = ""

var errMalformedMeta = errors.New("goshadow: malformed meta")

// ToValue encodes m as {"err": [...], "rem": [...], "len": n, "val": v},
// emitting only the parts that are set.
func (m *Meta) ToValue() Value {
	o := NewObject[Value]()
	if len(m.errors) > 0 {
		arr := make(Array[Value], 0, len(m.errors))
		for _, e := range m.errors {
			arr = append(arr, New(errorToValue(e)))
		}
		o.Insert("err", New(ArrayValue(arr)))
	}
	if len(m.remarks) > 0 {
		arr := make(Array[Value], 0, len(m.remarks))
		for _, r := range m.remarks {
			arr = append(arr, New(remarkToValue(r)))
		}
		o.Insert("rem", New(ArrayValue(arr)))
	}
	if m.hasOriginalLength {
		o.Insert("len", New(U64(uint64(m.originalLength))))
	}
	if m.originalValue != nil {
		o.Insert("val", New(*m.originalValue))
	}
	return ObjectValue(o)
}

func errorToValue(e Error) Value {
	if e.data.Len() == 0 {
		return String(string(e.kind))
	}
	return ArrayOf(String(string(e.kind)), ObjectValue(e.data.Clone()))
}

func remarkToValue(r Remark) Value {
	if r.Range == nil {
		return ArrayOf(String(r.RuleID), String(r.Type.Code()))
	}
	return ArrayOf(String(r.RuleID), String(r.Type.Code()), U64(uint64(r.Range.Start)), U64(uint64(r.Range.End)))
}

// MetaFromValue decodes the wire form produced by Meta.ToValue.
func MetaFromValue(v Value) (Meta, error) {
	var m Meta
	obj, ok := v.AsObject()
	if !ok {
		return m, fmt.Errorf("%w: expected an object, got %s", errMalformedMeta, v.Describe())
	}
	for k, item := range obj.All() {
		iv, ok := item.Value()
		if !ok {
			continue
		}
		switch k {
		case "err":
			arr, ok := iv.AsArray()
			if !ok {
				return m, fmt.Errorf("%w: err must be a list", errMalformedMeta)
			}
			for _, ev := range arr {
				e, err := errorFromValue(ev.Get())
				if err != nil {
					return m, err
				}
				m.AddError(e)
			}
		case "rem":
			arr, ok := iv.AsArray()
			if !ok {
				return m, fmt.Errorf("%w: rem must be a list", errMalformedMeta)
			}
			for _, rv := range arr {
				r, err := remarkFromValue(rv.Get())
				if err != nil {
					return m, err
				}
				m.AddRemark(r)
			}
		case "len":
			n, ok := iv.AsU64()
			if !ok {
				return m, fmt.Errorf("%w: len must be an unsigned integer", errMalformedMeta)
			}
			m.originalLength = int(n)
			m.hasOriginalLength = true
		case "val":
			c := iv.Clone()
			m.originalValue = &c
		}
	}
	return m, nil
}

func errorFromValue(v Value) (Error, error) {
	if s, ok := v.AsString(); ok {
		return NewError(ParseErrorKind(s)), nil
	}
	arr, ok := v.AsArray()
	if !ok || len(arr) == 0 {
		return Error{}, fmt.Errorf("%w: error entry must be a string or [kind, data]", errMalformedMeta)
	}
	kind, ok := arr[0].Get().AsString()
	if !ok {
		return Error{}, fmt.Errorf("%w: error kind must be a string", errMalformedMeta)
	}
	e := NewError(ParseErrorKind(kind))
	if len(arr) > 1 {
		data, ok := arr[1].Get().AsObject()
		if !ok {
			return Error{}, fmt.Errorf("%w: error data must be an object", errMalformedMeta)
		}
		e.data = data.Clone()
	}
	return e, nil
}

func remarkFromValue(v Value) (Remark, error) {
	arr, ok := v.AsArray()
	if !ok || (len(arr) != 2 && len(arr) != 4) {
		return Remark{}, fmt.Errorf("%w: remark must be [rule, type] or [rule, type, start, end]", errMalformedMeta)
	}
	rule, ok1 := arr[0].Get().AsString()
	code, ok2 := arr[1].Get().AsString()
	if !ok1 || !ok2 {
		return Remark{}, fmt.Errorf("%w: remark rule and type must be strings", errMalformedMeta)
	}
	ty, err := ParseRemarkType(code)
	if err != nil {
		return Remark{}, fmt.Errorf("%w: %v", errMalformedMeta, err)
	}
	r := NewRemark(ty, rule)
	if len(arr) == 4 {
		start, ok1 := arr[2].Get().AsU64()
		end, ok2 := arr[3].Get().AsU64()
		if !ok1 || !ok2 || end < start {
			return Remark{}, fmt.Errorf("%w: invalid remark range", errMalformedMeta)
		}
		r.Range = &Range{Start: int(start), End: int(end)}
	}
	return r, nil
}

// ToValue encodes t restricted to its non-empty entries: the node's own Meta
// under "" and children under their keys.
func (t *MetaTree) ToValue() Value {
	o := NewObject[Value]()
	if t == nil {
		return ObjectValue(o)
	}
	if !t.Meta.IsEmpty() {
		o.Insert(metaSelfKey, New(t.Meta.ToValue()))
	}
	for _, k := range t.keys {
		c := t.children[k]
		if c.IsEmpty() {
			continue
		}
		o.Insert(k, New(c.ToValue()))
	}
	return ObjectValue(o)
}

// MetaTreeFromValue decodes the wire form produced by MetaTree.ToValue.
func MetaTreeFromValue(v Value) (*MetaTree, error) {
	obj, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("%w: meta tree must be an object, got %s", errMalformedMeta, v.Describe())
	}
	t := &MetaTree{}
	for k, item := range obj.All() {
		iv, ok := item.Value()
		if !ok {
			continue
		}
		if k == metaSelfKey {
			m, err := MetaFromValue(iv)
			if err != nil {
				return nil, err
			}
			t.Meta = m
			continue
		}
		c, err := MetaTreeFromValue(iv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		t.setChild(k, c)
	}
	return t, nil
}

package goshadow

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
)

// wrapKey holds a non-object payload in the combined document.
const wrapKey = "value"

// SerializableAnnotated reunites a value with its Meta on the wire. The
// clean payload and the meta document are available separately or merged
// into one document under MetaKey.
type SerializableAnnotated struct {
	root   Annotated[Value]
	prefix string
	indent string
}

// Serializable wraps an annotated Value.
func Serializable(a Annotated[Value]) SerializableAnnotated {
	return SerializableAnnotated{root: a}
}

// NewSerializable converts a typed Annotated through c first.
func NewSerializable[T any](a Annotated[T], c Codec[T]) SerializableAnnotated {
	return Serializable(IntoAnnotated(a, c))
}

// Indent returns a copy that pretty-prints its JSON output.
func (s SerializableAnnotated) Indent(prefix, indent string) SerializableAnnotated {
	s.prefix, s.indent = prefix, indent
	return s
}

// Payload returns the clean value; an absent root is null.
func (s SerializableAnnotated) Payload() Value { return s.root.Get() }

// MetaTree returns the sparse Meta of the whole document.
func (s SerializableAnnotated) MetaTree() *MetaTree { return ExtractMeta(s.root) }

// MetaDocument returns the wire form of MetaTree.
func (s SerializableAnnotated) MetaDocument() Value { return s.MetaTree().ToValue() }

// Document returns the combined form: an object payload gains a MetaKey
// entry, other payloads are wrapped as {"value": payload, "_meta": {...}}.
// An object payload that already has a MetaKey entry of its own is wrapped
// the same way, even without Meta, so the entry is not overwritten. Otherwise
// a payload without any Meta is returned unchanged.
func (s SerializableAnnotated) Document() Value {
	tree := s.MetaTree()
	payload := s.Payload()
	obj, isObject := payload.AsObject()
	collides := isObject && obj.Has(MetaKey)
	if tree.IsEmpty() && !collides {
		return payload
	}
	if isObject && !collides {
		out := obj.Clone()
		out.Insert(MetaKey, New(tree.ToValue()))
		return ObjectValue(out)
	}
	wrapped := &MetaTree{}
	wrapped.setChild(wrapKey, tree)
	return ObjectOf(wrapKey, payload, MetaKey, wrapped.ToValue())
}

// MarshalJSON encodes Document.
func (s SerializableAnnotated) MarshalJSON() ([]byte, error) {
	return s.encode(s.Document())
}

// Split encodes the payload and the meta document separately.
func (s SerializableAnnotated) Split() (payload, meta []byte, err error) {
	if payload, err = s.encode(s.Payload()); err != nil {
		return nil, nil, err
	}
	if meta, err = s.encode(s.MetaDocument()); err != nil {
		return nil, nil, err
	}
	return payload, meta, nil
}

func (s SerializableAnnotated) encode(v Value) ([]byte, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if s.indent == "" && s.prefix == "" {
		return raw, nil
	}
	buf := &bytes.Buffer{}
	if err := json.Indent(buf, raw, s.prefix, s.indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseWithMeta reads a combined document produced by MarshalJSON and
// re-attaches its Meta. A document whose only payload key is "value" is
// unwrapped when the wrapped value is not an object or carries its own
// MetaKey entry. MetaKey is reserved at the root: a root entry that is not a
// meta document fails with a ParseError.
func ParseWithMeta(data []byte, opts ...ParseOpt) (Annotated[Value], error) {
	a, err := ParseJSON(data, opts...)
	if err != nil {
		return a, err
	}
	return DetachMeta(a)
}

// DetachMeta moves a root-level MetaKey entry of a back into the Meta of the
// nodes it describes.
func DetachMeta(a Annotated[Value]) (Annotated[Value], error) {
	obj, ok := a.Get().AsObject()
	if !ok || !obj.Has(MetaKey) {
		return a, nil
	}
	raw, _ := obj.Delete(MetaKey)
	tree, err := MetaTreeFromValue(raw.Get())
	if err != nil {
		return a, &ParseError{Code: CodeSyntax, Path: "/" + MetaKey, Offset: -1, Err: err}
	}
	if obj.Len() == 1 && obj.Has(wrapKey) && tree.Meta.IsEmpty() && wrapsOnly(tree) {
		inner, _ := obj.Get(wrapKey)
		if v, ok := inner.Value(); ok && (v.Kind() != KindObject || hasMetaKey(v)) {
			a = inner
			if v.IsNull() {
				// absent and null roots share one wire form
				a.Clear()
			}
			AttachMeta(&a, tree.Child(wrapKey))
			return a, nil
		}
	}
	AttachMeta(&a, tree)
	return a, nil
}

// wrapsOnly reports whether t describes nothing but the wrapped payload.
func wrapsOnly(t *MetaTree) bool {
	keys := t.Keys()
	return len(keys) == 0 || (len(keys) == 1 && keys[0] == wrapKey)
}

func hasMetaKey(v Value) bool {
	obj, ok := v.AsObject()
	return ok && obj.Has(MetaKey)
}

// String renders the combined document; intended for debugging.
func (s SerializableAnnotated) String() string {
	b, err := s.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}

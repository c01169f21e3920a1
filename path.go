package goshadow

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// KeySegment addresses an object entry.
func KeySegment(k string) Segment { return Segment{key: k} }

// IndexSegment addresses an array item.
func IndexSegment(i int) Segment { return Segment{index: i, isIndex: true} }

// Key returns the object key, if s addresses one.
func (s Segment) Key() (string, bool) { return s.key, !s.isIndex }

// Index returns the array index, if s addresses one.
func (s Segment) Index() (int, bool) { return s.index, s.isIndex }

// String renders the segment the way MetaTree keys it: the key itself or the
// decimal index.
func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path addresses a node from the document root.
type Path []Segment

// Field returns a new path extended by an object key.
func (p Path) Field(k string) Path {
	return append(append(Path(nil), p...), KeySegment(k))
}

// Index returns a new path extended by an array index.
func (p Path) Index(i int) Path {
	return append(append(Path(nil), p...), IndexSegment(i))
}

// Pointer renders p as an RFC 6901 JSON Pointer. The root renders as "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.String(), "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// String renders p in dotted form, e.g. "user.emails.0".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// ParsePointer parses an RFC 6901 pointer. All segments are returned as keys;
// lookups resolve numeric keys against arrays.
func ParsePointer(ptr string) Path {
	if ptr == "" || ptr == "/" {
		return nil
	}
	var out Path
	for _, raw := range strings.Split(strings.TrimPrefix(ptr, "/"), "/") {
		out = append(out, KeySegment(strings.ReplaceAll(strings.ReplaceAll(raw, "~1", "/"), "~0", "~")))
	}
	return out
}

// Lookup resolves p inside the annotated tree rooted at a.
func Lookup(a *Annotated[Value], p Path) (*Annotated[Value], bool) {
	cur := a
	for _, seg := range p {
		v, ok := cur.Value()
		if !ok {
			return nil, false
		}
		switch v.kind {
		case KindObject:
			next := v.obj.Ref(seg.String())
			if next == nil {
				return nil, false
			}
			cur = next
		case KindArray:
			i, ok := seg.Index()
			if !ok {
				n, err := strconv.Atoi(seg.key)
				if err != nil {
					return nil, false
				}
				i = n
			}
			if i < 0 || i >= len(v.arr) {
				return nil, false
			}
			cur = &v.arr[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

package dsl

import g "github.com/reoring/goshadow"

// SpanAttributes collects the values of fields tagged with a span attribute,
// descending into nested object schemas. The first present value found for
// an attribute in declaration order wins.
func SpanAttributes(s Schema, a g.Annotated[g.Value]) map[g.SpanAttribute]g.Value {
	out := map[g.SpanAttribute]g.Value{}
	collectSpans(s, a, out)
	return out
}

func collectSpans(s Schema, a g.Annotated[g.Value], out map[g.SpanAttribute]g.Value) {
	os, ok := s.(*ObjectSchema)
	if !ok {
		return
	}
	v, ok := a.Value()
	if !ok {
		return
	}
	obj, ok := v.AsObject()
	if !ok {
		return
	}
	for i := range os.fields {
		f := &os.fields[i]
		item, ok := obj.Get(f.name)
		if !ok {
			continue
		}
		if fv, ok := item.Value(); ok {
			for _, attr := range f.spans {
				if _, seen := out[attr]; !seen {
					out[attr] = fv
				}
			}
		}
		collectSpans(f.schema, item, out)
	}
}

// TaggedFields lists the dotted paths of fields tagged with attr.
func TaggedFields(s Schema, attr g.SpanAttribute) []string {
	var out []string
	var walk func(s Schema, prefix string)
	walk = func(s Schema, prefix string) {
		os, ok := s.(*ObjectSchema)
		if !ok {
			return
		}
		for i := range os.fields {
			f := &os.fields[i]
			p := f.name
			if prefix != "" {
				p = prefix + "." + f.name
			}
			if f.spans.Has(attr) {
				out = append(out, p)
			}
			walk(f.schema, p)
		}
	}
	walk(s, "")
	return out
}

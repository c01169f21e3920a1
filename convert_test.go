package goshadow_test

import (
	"testing"

	g "github.com/reoring/goshadow"
	"github.com/reoring/goshadow/codec"
)

func TestStructFromValue_InvalidTypeKeepsSiblings(t *testing.T) {
	a := mustParse(t, `{"name":"Alice","age":"thirty"}`)
	u := g.StructFromValue[user](a)

	val, ok := u.Value()
	if !ok {
		t.Fatalf("struct should be present")
	}
	if name, ok := val.Name.Value(); !ok || name != "Alice" {
		t.Fatalf("name = %q, %v", name, ok)
	}
	if val.Age.Present() {
		t.Fatalf("age must be absent")
	}
	kinds := errorKinds(val.Age.Meta())
	if len(kinds) != 1 || kinds[0] != g.ErrInvalidType {
		t.Fatalf("age errors = %v", kinds)
	}
	if ov, ok := val.Age.Meta().OriginalValue(); !ok || !ov.Equal(g.String("thirty")) {
		t.Fatalf("original value not kept")
	}
	if !val.Name.Meta().IsEmpty() || !u.Meta().IsEmpty() {
		t.Fatalf("errors must stay on the offending field")
	}

	s := g.NewSerializable(u, codec.Struct[user]())
	if got := mustJSON(t, s.Payload()); got != `{"name":"Alice"}` {
		t.Fatalf("clean channel = %s", got)
	}
	want := `{"age":{"":{"err":[["invalid_type",{"expected":"unsigned integer","got":"string"}]],"val":"thirty"}}}`
	if got := mustJSON(t, s.MetaDocument()); got != want {
		t.Fatalf("meta channel\n got %s\nwant %s", got, want)
	}
}

func TestStructFromValue_ErrorLocalityInLists(t *testing.T) {
	a := mustParse(t, `{"name":5,"age":30,"tags":["a",1,"c"]}`)
	u := g.StructFromValue[user](a)
	val := u.Get()

	if age, _ := val.Age.Value(); age != 30 {
		t.Fatalf("age = %d", age)
	}
	tags, ok := val.Tags.Value()
	if !ok || len(tags) != 3 {
		t.Fatalf("tags should stay present with every element")
	}
	if tags[1].Present() || !tags[1].Meta().HasErrors() {
		t.Fatalf("bad element should be absent with an error")
	}
	if s, _ := tags[2].Value(); s != "c" {
		t.Fatalf("later elements must still convert")
	}

	tree := g.ExtractMeta(g.IntoAnnotated(u, codec.Struct[user]()))
	if tree.Len() != 2 {
		t.Fatalf("expected meta on name and tags/1, got %d nodes", tree.Len())
	}
	if _, ok := tree.MetaAt(g.ParsePointer("/tags/1")); !ok {
		t.Fatalf("missing meta at /tags/1")
	}
}

func TestStructFromValue_RequiredAndNull(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		nameKinds []g.ErrorKind
	}{
		{"missing", `{}`, []g.ErrorKind{g.ErrMissingField}},
		{"null", `{"name":null}`, []g.ErrorKind{g.ErrMissingField}},
		{"present", `{"name":"x","age":null}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := g.StructFromValue[user](mustParse(t, tt.in)).Get()
			got := errorKinds(u.Name.Meta())
			if len(got) != len(tt.nameKinds) {
				t.Fatalf("name errors = %v, want %v", got, tt.nameKinds)
			}
			if u.Age.Present() || u.Age.Meta().HasErrors() {
				t.Fatalf("null/absent optional field must be absent without errors")
			}
		})
	}
}

func TestStructFromValue_NotAnObject(t *testing.T) {
	u := g.StructFromValue[user](mustParse(t, `[1]`))
	if u.Present() || errorKinds(u.Meta())[0] != g.ErrInvalidType {
		t.Fatalf("expected invalid_type on the root")
	}
	if _, ok := u.Meta().OriginalValue(); !ok {
		t.Fatalf("raw value should be kept")
	}
}

func TestStruct_RoundTrip(t *testing.T) {
	in := `{"name":"Bob","age":7,"tags":["x"],"extra":{"k":true}}`
	a := mustParse(t, in)
	u := g.StructFromValue[user](a)
	out := g.IntoAnnotated(u, codec.Struct[user]())
	if got := mustJSON(t, out.Get()); got != in {
		t.Fatalf("round trip\n got %s\nwant %s", got, in)
	}
	if !g.ExtractMeta(out).IsEmpty() {
		t.Fatalf("error-free document must have no meta")
	}
}

type listHolder struct {
	skip  g.SkipSerialization
	Items g.Annotated[g.Array[string]]
	Code  g.Annotated[string]
}

func (h *listHolder) FromValue(r *g.StructReader) {
	g.ReadField(r, "items", &h.Items, codec.Array(codec.String()))
	g.ReadField(r, "code", &h.Code, codec.String(), g.NonEmpty())
}

func (h *listHolder) IntoValue(w *g.StructWriter) {
	g.WriteField(w, "items", h.Items, codec.Array(codec.String()), h.skip)
}

func TestWriteField_SkipPolicies(t *testing.T) {
	empty := g.New(g.Array[string]{})
	absent := g.Absent[g.Array[string]]()
	tests := []struct {
		name  string
		skip  g.SkipSerialization
		items g.Annotated[g.Array[string]]
		want  string
	}{
		{"never emits empty", g.SkipNever, empty, `{"items":[]}`},
		{"never emits null for absent", g.SkipNever, absent, `{"items":null}`},
		{"null keeps empty", g.SkipNull, empty, `{"items":[]}`},
		{"null omits absent", g.SkipNull, absent, `{}`},
		{"empty omits empty", g.SkipEmpty, empty, `{}`},
		{"null or empty omits both", g.SkipNullOrEmpty, absent, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := g.StructIntoValue(listHolder{skip: tt.skip, Items: tt.items})
			if got := mustJSON(t, v); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWriteField_OmittedFieldKeepsMeta(t *testing.T) {
	items := g.Absent[g.Array[string]]()
	items.Meta().AddRemark(g.NewRemark(g.RemarkRemoved, "strip"))
	v := g.StructIntoValue(listHolder{skip: g.SkipNull, Items: items})
	a := g.New(v)
	if got := mustJSON(t, v); got != `{}` {
		t.Fatalf("clean output should omit the field: %s", got)
	}
	if _, ok := g.ExtractMeta(a).MetaAt(g.ParsePointer("/items")); !ok {
		t.Fatalf("meta of omitted field lost")
	}
}

func TestReadField_NonEmpty(t *testing.T) {
	h := g.StructFromValue[listHolder](mustParse(t, `{"code":""}`)).Get()
	if h.Code.Present() || errorKinds(h.Code.Meta())[0] != g.ErrInvalidValue {
		t.Fatalf("empty value should be rejected")
	}
}

func TestSkipSerialization_Text(t *testing.T) {
	var s g.SkipSerialization
	if err := s.UnmarshalText([]byte("null_or_empty")); err != nil || s != g.SkipNullOrEmpty {
		t.Fatalf("unexpected %v %v", s, err)
	}
	if _, err := g.ParseSkip("sometimes"); err == nil {
		t.Fatalf("unknown policy should fail")
	}
}

func TestSpanAttributes(t *testing.T) {
	set := g.ParseSpanAttributes("exclusive_time, custom,exclusive_time,")
	if len(set) != 2 || !set.Has(g.SpanExclusiveTime) {
		t.Fatalf("unexpected set %v", set)
	}
	if set[1].IsKnown() || set[1].String() != "custom" {
		t.Fatalf("unknown names should be kept verbatim")
	}
}

package goshadow_test

import (
	"testing"

	g "github.com/reoring/goshadow"
	"github.com/reoring/goshadow/codec"
)

type user struct {
	Name  g.Annotated[string]
	Age   g.Annotated[uint32]
	Tags  g.Annotated[g.Array[string]]
	Other *g.Object[g.Value]
}

func (u *user) FromValue(r *g.StructReader) {
	g.ReadField(r, "name", &u.Name, codec.String(), g.Required())
	g.ReadField(r, "age", &u.Age, codec.U32())
	g.ReadField(r, "tags", &u.Tags, codec.Array(codec.String()))
	u.Other = r.Other()
}

func (u *user) IntoValue(w *g.StructWriter) {
	g.WriteField(w, "name", u.Name, codec.String(), g.SkipNever)
	g.WriteField(w, "age", u.Age, codec.U32(), g.SkipNull)
	g.WriteField(w, "tags", u.Tags, codec.Array(codec.String()), g.SkipEmpty)
	w.WriteOther(u.Other)
}

func mustParse(t *testing.T, s string) g.Annotated[g.Value] {
	t.Helper()
	a, err := g.ParseJSON([]byte(s))
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return a
}

func mustJSON(t *testing.T, v g.Value) string {
	t.Helper()
	b, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func errorKinds(m *g.Meta) []g.ErrorKind {
	var out []g.ErrorKind
	for _, e := range m.Errors() {
		out = append(out, e.Kind())
	}
	return out
}

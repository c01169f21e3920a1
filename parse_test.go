package goshadow_test

import (
	"bytes"
	"errors"
	"math"
	"testing"

	g "github.com/reoring/goshadow"
)

func TestParseJSON_NumberKinds(t *testing.T) {
	a := mustParse(t, `{"b":1,"a":-2,"c":18446744073709551615,"d":1.0,"e":1e3}`)
	obj, ok := a.Get().AsObject()
	if !ok {
		t.Fatalf("expected object")
	}
	want := map[string]g.Kind{"a": g.KindI64, "b": g.KindI64, "c": g.KindU64, "d": g.KindF64, "e": g.KindF64}
	for k, kind := range want {
		v, _ := obj.Get(k)
		if v.Get().Kind() != kind {
			t.Fatalf("%s: kind %v, want %v", k, v.Get().Kind(), kind)
		}
	}
	if keys := obj.Keys(); keys[0] != "b" || keys[1] != "a" {
		t.Fatalf("key order lost: %v", keys)
	}
}

func TestParseJSON_NullIsPresent(t *testing.T) {
	a := mustParse(t, `null`)
	if !a.Present() || !a.Get().IsNull() {
		t.Fatalf("null document should be a present null")
	}
}

func TestParseJSON_DuplicateKey(t *testing.T) {
	data := []byte(`{"a":1,"a":2}`)

	t.Run("error", func(t *testing.T) {
		_, err := g.ParseJSON(data, g.ParseOpt{Strictness: g.Strictness{OnDuplicateKey: g.SeverityError}})
		var pe *g.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected *ParseError, got %v", err)
		}
		if pe.Code != g.CodeDuplicateKey || pe.Path != "/a" {
			t.Fatalf("unexpected parse error %+v", pe)
		}
	})

	t.Run("warn", func(t *testing.T) {
		a, err := g.ParseJSON(data, g.ParseOpt{Strictness: g.Strictness{OnDuplicateKey: g.SeverityWarn}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		errs := a.Meta().Errors()
		if len(errs) != 1 || errs[0].Kind() != g.ErrInvalidValue {
			t.Fatalf("expected one invalid_value on the object, got %v", errs)
		}
		if k, _ := errs[0].Get("key"); !k.Equal(g.String("a")) {
			t.Fatalf("expected key=a in error data")
		}
		obj, _ := a.Get().AsObject()
		if v, _ := obj.Get("a"); !v.Get().Equal(g.I64(2)) {
			t.Fatalf("last value should win")
		}
	})

	t.Run("ignore", func(t *testing.T) {
		a, err := g.ParseJSON(data)
		if err != nil || !a.Meta().IsEmpty() {
			t.Fatalf("duplicates should be silent by default: %v %v", err, a.Meta().Errors())
		}
	})
}

func TestParseJSON_Limits(t *testing.T) {
	_, err := g.ParseJSON([]byte(`[[[1]]]`), g.ParseOpt{MaxDepth: 2})
	var pe *g.ParseError
	if !errors.As(err, &pe) || pe.Code != g.CodeMaxDepth {
		t.Fatalf("expected max_depth, got %v", err)
	}

	_, err = g.ParseJSON([]byte(`{"a":1}`), g.ParseOpt{MaxBytes: 3})
	if !errors.As(err, &pe) || pe.Code != g.CodeTruncated {
		t.Fatalf("expected truncated, got %v", err)
	}

	_, err = g.ParseJSONReader(bytes.NewReader([]byte(`{"a":"0123456789"}`)), g.ParseOpt{MaxBytes: 5})
	if !errors.As(err, &pe) || pe.Code != g.CodeTruncated {
		t.Fatalf("expected truncated from reader, got %v", err)
	}
}

func TestParseJSON_SyntaxErrors(t *testing.T) {
	for _, in := range []string{`{"a":}`, `[1,2`, `{} {}`} {
		_, err := g.ParseJSON([]byte(in))
		var pe *g.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("%s: expected *ParseError, got %v", in, err)
		}
	}
}

func TestParseYAML_TypesAliasesAndTags(t *testing.T) {
	src := `
name: x
count: 0x10
ratio: 1.0
when: 2024-01-01T00:00:00Z
base: &b {k: 1}
ref: *b
odd: !custom raw
none: ~
`
	a, err := g.ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	obj, _ := a.Get().AsObject()
	get := func(k string) g.Annotated[g.Value] {
		v, ok := obj.Get(k)
		if !ok {
			t.Fatalf("missing key %s", k)
		}
		return v
	}
	if v := get("count").Get(); !v.Equal(g.I64(16)) {
		t.Fatalf("count = %v", v.Describe())
	}
	if v := get("ratio").Get(); v.Kind() != g.KindF64 {
		t.Fatalf("ratio should stay a float, got %s", v.Describe())
	}
	if v := get("when").Get(); v.Kind() != g.KindString {
		t.Fatalf("timestamps stay strings, got %s", v.Describe())
	}
	if v := get("ref").Get(); !v.Equal(g.ObjectOf("k", g.I64(1))) {
		t.Fatalf("alias not expanded")
	}
	odd := get("odd")
	if odd.Present() || len(odd.Meta().Errors()) != 1 {
		t.Fatalf("custom tag should become an error leaf")
	}
	if ov, ok := odd.Meta().OriginalValue(); !ok || !ov.Equal(g.String("raw")) {
		t.Fatalf("raw text should be kept as original value")
	}
	if none := get("none"); !none.Present() || !none.Get().IsNull() {
		t.Fatalf("~ should be a present null")
	}
	if keys := obj.Keys(); keys[0] != "name" || keys[len(keys)-1] != "none" {
		t.Fatalf("mapping order lost: %v", keys)
	}
}

func TestParseYAML_NonFinite(t *testing.T) {
	a, err := g.ParseYAML([]byte("x: .nan\n"))
	if err != nil {
		t.Fatal(err)
	}
	obj, _ := a.Get().AsObject()
	x, _ := obj.Get("x")
	if x.Present() || x.Meta().Errors()[0].Kind() != g.ErrInvalidValue {
		t.Fatalf("NaN must be rejected by default")
	}

	a, err = g.ParseYAML([]byte("x: .nan\n"), g.ParseOpt{Strictness: g.Strictness{AllowNaN: true}})
	if err != nil {
		t.Fatal(err)
	}
	obj, _ = a.Get().AsObject()
	x, _ = obj.Get("x")
	if f, ok := x.Get().AsF64(); !ok || !math.IsNaN(f) {
		t.Fatalf("NaN should be kept with AllowNaN")
	}
}

func TestParse_DetectsFormat(t *testing.T) {
	a, err := g.Parse([]byte("  {\"a\": 1}"))
	if err != nil || !a.Get().Equal(g.ObjectOf("a", g.I64(1))) {
		t.Fatalf("json detection failed: %v", err)
	}
	a, err = g.Parse([]byte("a: 1\n"))
	if err != nil || !a.Get().Equal(g.ObjectOf("a", g.I64(1))) {
		t.Fatalf("yaml detection failed: %v", err)
	}
}

func TestValue_UnmarshalJSON(t *testing.T) {
	var v g.Value
	if err := v.UnmarshalJSON([]byte(`[1,"a"]`)); err != nil {
		t.Fatal(err)
	}
	if !v.Equal(g.ArrayOf(g.I64(1), g.String("a"))) {
		t.Fatalf("unexpected value %s", mustJSON(t, v))
	}
}

package codec_test

import (
	"math"
	"testing"
	"time"

	g "github.com/reoring/goshadow"
	"github.com/reoring/goshadow/codec"
)

func firstError[T any](a g.Annotated[T]) (g.ErrorKind, bool) {
	errs := a.Meta().Errors()
	if len(errs) == 0 {
		return "", false
	}
	return errs[0].Kind(), true
}

func TestPrimitives_AcceptAndReject(t *testing.T) {
	if v, ok := codec.I64().FromValue(g.New(g.F64(3))).Value(); !ok || v != 3 {
		t.Fatalf("integral float should decode as i64, got %v %v", v, ok)
	}
	if v, ok := codec.U64().FromValue(g.New(g.I64(7))).Value(); !ok || v != 7 {
		t.Fatalf("non-negative i64 should decode as u64, got %v %v", v, ok)
	}
	neg := codec.U64().FromValue(g.New(g.I64(-1)))
	if k, _ := firstError(neg); neg.Present() || k != g.ErrInvalidType {
		t.Fatalf("negative u64 must be invalid_type, got %v", neg.Meta().Errors())
	}
	if ov, ok := neg.Meta().OriginalValue(); !ok || !ov.Equal(g.I64(-1)) {
		t.Fatalf("rejected value must be kept")
	}
	str := codec.String().FromValue(g.New(g.Bool(true)))
	if k, _ := firstError(str); k != g.ErrInvalidType {
		t.Fatalf("bool is not a string: %v", str.Meta().Errors())
	}
	if b, ok := codec.Bool().FromValue(g.New(g.Bool(true))).Value(); !ok || !b {
		t.Fatalf("bool decode failed")
	}
	if f, ok := codec.F64().FromValue(g.New(g.U64(2))).Value(); !ok || f != 2 {
		t.Fatalf("u64 should widen to f64, got %v", f)
	}
}

func TestF64_IntegerInputWidens(t *testing.T) {
	c := codec.F64()
	out := g.IntoAnnotated(c.FromValue(g.New(g.I64(3))), c)
	if out.Get().Kind() != g.KindF64 || out.Get().Equal(g.I64(3)) {
		t.Fatalf("integer input should come back as a float, got %s %v", out.Get().Kind(), out.Get())
	}
	if f, _ := out.Get().AsF64(); f != 3 {
		t.Fatalf("value changed: %v", f)
	}
	if b, _ := out.Get().MarshalJSON(); string(b) != "3.0" {
		t.Fatalf("encoded %s", b)
	}
}

func TestPrimitives_NullAndAbsentStayAbsent(t *testing.T) {
	for _, in := range []g.Annotated[g.Value]{g.New(g.Null()), g.Absent[g.Value]()} {
		out := codec.I64().FromValue(in)
		if out.Present() || !out.Meta().IsEmpty() {
			t.Fatalf("null/absent must decode to a clean absent, got %+v", out.Meta().Errors())
		}
	}
}

func TestU32_Range(t *testing.T) {
	ok := codec.U32().FromValue(g.New(g.U64(math.MaxUint32)))
	if v, present := ok.Value(); !present || v != math.MaxUint32 {
		t.Fatalf("MaxUint32 must be accepted, got %v", v)
	}
	big := codec.U32().FromValue(g.New(g.U64(math.MaxUint32 + 1)))
	if k, _ := firstError(big); big.Present() || k != g.ErrInvalidValue {
		t.Fatalf("out of range must be invalid_value, got %v", big.Meta().Errors())
	}
	if got := codec.U32().IntoValue(5); !got.Equal(g.U64(5)) {
		t.Fatalf("u32 writes as u64, got %v", got)
	}
}

func TestTimestamp(t *testing.T) {
	ts := codec.Timestamp()
	a := ts.FromValue(g.New(g.String("2024-02-03T04:05:06.700+09:00")))
	v, ok := a.Value()
	if !ok {
		t.Fatalf("rfc3339 decode failed: %v", a.Meta().Errors())
	}
	if got, _ := ts.IntoValue(v).AsString(); got != "2024-02-02T19:05:06.7Z" {
		t.Fatalf("canonical form: %s", got)
	}

	epoch := ts.FromValue(g.New(g.F64(1.5)))
	if v, _ := epoch.Value(); !v.Equal(time.Unix(1, 5e8)) {
		t.Fatalf("epoch seconds: %v", v)
	}

	bad := ts.FromValue(g.New(g.String("yesterday")))
	if k, _ := firstError(bad); bad.Present() || k != g.ErrInvalidValue {
		t.Fatalf("bad time must be invalid_value, got %v", bad.Meta().Errors())
	}
	wrong := ts.FromValue(g.New(g.Bool(false)))
	if k, _ := firstError(wrong); k != g.ErrInvalidType {
		t.Fatalf("bool must be invalid_type, got %v", wrong.Meta().Errors())
	}
	if !ts.IsEmpty(time.Time{}) {
		t.Fatalf("zero time is empty")
	}
}

func TestArray_ErrorsStayOnItems(t *testing.T) {
	c := codec.Array(codec.I64())
	a := c.FromValue(g.New(g.ArrayOf(g.I64(1), g.String("x"), g.I64(3))))
	items, ok := a.Value()
	if !ok || len(items) != 3 {
		t.Fatalf("list must stay present with all items")
	}
	if !a.Meta().IsEmpty() {
		t.Fatalf("list itself must carry no error")
	}
	if k, _ := firstError(items[1]); items[1].Present() || k != g.ErrInvalidType {
		t.Fatalf("bad item: %v", items[1].Meta().Errors())
	}
	out, err := g.IntoAnnotated(a, c).Get().MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `[1,null,3]` {
		t.Fatalf("got %s", out)
	}
}

func TestObject_KeepsOrder(t *testing.T) {
	c := codec.Object(codec.String())
	in, err := g.ParseJSON([]byte(`{"z":"1","a":"2","m":3}`))
	if err != nil {
		t.Fatal(err)
	}
	a := c.FromValue(in)
	obj, _ := a.Value()
	if got := obj.Keys(); len(got) != 3 || got[0] != "z" || got[1] != "a" || got[2] != "m" {
		t.Fatalf("order: %v", got)
	}
	m, _ := obj.Get("m")
	if k, _ := firstError(m); k != g.ErrInvalidType {
		t.Fatalf("m: %v", m.Meta().Errors())
	}
	if c.IsEmpty(obj) {
		t.Fatalf("non-empty object")
	}
}

func TestEnum(t *testing.T) {
	c := codec.Enum("red", "green")
	if v, ok := c.FromValue(g.New(g.String("red"))).Value(); !ok || v != "red" {
		t.Fatalf("allowed value rejected")
	}
	blue := c.FromValue(g.New(g.String("blue")))
	if k, _ := firstError(blue); blue.Present() || k != g.ErrUnknownVariant {
		t.Fatalf("blue: %v", blue.Meta().Errors())
	}
}

package goshadow_test

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	g "github.com/reoring/goshadow"
	"github.com/reoring/goshadow/codec"
)

func TestProcess_MaskRange(t *testing.T) {
	a := g.New(g.String("0123456789abcdef"))
	err := g.Process(&a, g.VisitorFunc(func(n *g.Annotated[g.Value], _ *g.State) g.ProcessingResult {
		s, _ := n.Get().AsString()
		return g.MaskRange("mask-secret", s, 3, 10, '*')
	}))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if s, _ := a.Get().AsString(); s != "012*******abcdef" {
		t.Fatalf("masked = %q", s)
	}
	rem := a.Meta().Remarks()
	if len(rem) != 1 || rem[0].Type != g.RemarkMasked || rem[0].RuleID != "mask-secret" {
		t.Fatalf("unexpected remarks %+v", rem)
	}
	if rem[0].Range == nil || *rem[0].Range != (g.Range{Start: 3, End: 10}) {
		t.Fatalf("range = %+v", rem[0].Range)
	}
	if n, ok := a.Meta().OriginalLength(); !ok || n != 16 {
		t.Fatalf("original length = %d, %v", n, ok)
	}
}

func deleteAt(ptr string, act func(string) *g.ProcessingAction) g.Visitor {
	return g.VisitorFunc(func(_ *g.Annotated[g.Value], st *g.State) g.ProcessingResult {
		if st.Path().Pointer() == ptr {
			return act("rule")
		}
		return nil
	})
}

func TestProcess_SoftVersusHardDelete(t *testing.T) {
	prepare := func() g.Annotated[g.Value] {
		a := mustParse(t, `{"secret":"hunter2","keep":1}`)
		n, _ := g.Lookup(&a, g.ParsePointer("/secret"))
		n.Meta().AddError(g.InvalidValue("weak"))
		n.Meta().AddRemark(g.NewRemark(g.RemarkAnnotated, "earlier"))
		return a
	}

	soft := prepare()
	if err := g.Process(&soft, deleteAt("/secret", g.DeleteValueSoft)); err != nil {
		t.Fatal(err)
	}
	n, _ := g.Lookup(&soft, g.ParsePointer("/secret"))
	if n.Present() {
		t.Fatalf("soft delete must clear the value")
	}
	if ov, ok := n.Meta().OriginalValue(); !ok || !ov.Equal(g.String("hunter2")) {
		t.Fatalf("soft delete must keep the removed value as provenance")
	}
	if len(n.Meta().Errors()) != 1 || len(n.Meta().Remarks()) != 2 {
		t.Fatalf("soft delete must keep prior meta")
	}

	hard := prepare()
	n, _ = g.Lookup(&hard, g.ParsePointer("/secret"))
	n.Meta().SetOriginalValue(g.String("hunter2"))
	if err := g.Process(&hard, deleteAt("/secret", g.DeleteValueHard)); err != nil {
		t.Fatal(err)
	}
	n, _ = g.Lookup(&hard, g.ParsePointer("/secret"))
	if n.Present() {
		t.Fatalf("hard delete must clear the value")
	}
	if _, ok := n.Meta().OriginalValue(); ok {
		t.Fatalf("hard delete must clear provenance")
	}
	if last := n.Meta().Remarks()[len(n.Meta().Remarks())-1]; last.Type != g.RemarkRemoved {
		t.Fatalf("expected a removed remark, got %v", last.Type)
	}
	if got := mustJSON(t, hard.Get()); got != `{"keep":1}` {
		t.Fatalf("payload %s", got)
	}
}

func TestProcess_VisitOrderAndNoDescentAfterDelete(t *testing.T) {
	a := mustParse(t, `{"b":{"x":1},"a":[1,{"y":2}],"gone":{"z":3}}`)
	var seen []string
	err := g.Process(&a, g.VisitorFunc(func(_ *g.Annotated[g.Value], st *g.State) g.ProcessingResult {
		p := st.Path().Pointer()
		seen = append(seen, p)
		if p == "/gone" {
			return g.DeleteValueHard("drop")
		}
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	want := "/ /b /b/x /a /a/0 /a/1 /a/1/y /gone"
	if got := strings.Join(seen, " "); got != want {
		t.Fatalf("visit order\n got %s\nwant %s", got, want)
	}
}

func TestProcess_SkipsAbsentNodes(t *testing.T) {
	obj := g.NewObject[g.Value]()
	obj.Insert("a", g.FromError[g.Value](g.MissingField(), nil))
	obj.Insert("b", g.New(g.String("y")))
	obj.Insert("c", g.New(g.ArrayValue(g.Array[g.Value]{g.Absent[g.Value](), g.New(g.I64(1))})))
	a := g.New(g.ObjectValue(obj))

	var seen []string
	err := g.Process(&a, g.VisitorFunc(func(n *g.Annotated[g.Value], st *g.State) g.ProcessingResult {
		seen = append(seen, st.Path().Pointer())
		if !n.Present() {
			return g.InsertValue("fill", g.String("x"))
		}
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(seen, " "); got != "/ /b /c /c/1" {
		t.Fatalf("visited %s", got)
	}
	n, _ := g.Lookup(&a, g.ParsePointer("/a"))
	if n.Present() || len(n.Meta().Remarks()) != 0 || errorKinds(n.Meta())[0] != g.ErrMissingField {
		t.Fatalf("absent node touched: %+v", n.Meta())
	}
	item, _ := g.Lookup(&a, g.ParsePointer("/c/0"))
	if item.Present() {
		t.Fatalf("absent array item filled")
	}
}

func TestProcess_StateAccessors(t *testing.T) {
	a := mustParse(t, `{"list":["v"]}`)
	_ = g.Process(&a, g.VisitorFunc(func(_ *g.Annotated[g.Value], st *g.State) g.ProcessingResult {
		if st.Depth() != 2 {
			return nil
		}
		if i, ok := st.Index(); !ok || i != 0 {
			t.Fatalf("index = %d, %v", i, ok)
		}
		if k, ok := st.Parent().Key(); !ok || k != "list" {
			t.Fatalf("parent key = %q, %v", k, ok)
		}
		return nil
	}))
}

func TestProcess_AbortsOnForeignError(t *testing.T) {
	boom := errors.New("boom")
	a := mustParse(t, `{"a":1}`)
	err := g.Process(&a, g.VisitorFunc(func(_ *g.Annotated[g.Value], st *g.State) g.ProcessingResult {
		if st.Depth() == 1 {
			return boom
		}
		return nil
	}))
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "/a") {
		t.Fatalf("expected wrapped boom at /a, got %v", err)
	}
}

func TestProcess_ChainSeesPreviousRewrite(t *testing.T) {
	upper := g.VisitorFunc(func(n *g.Annotated[g.Value], _ *g.State) g.ProcessingResult {
		if s, ok := n.Get().AsString(); ok {
			return g.RewriteString("upper", g.RemarkReplaced, strings.ToUpper(s))
		}
		return nil
	})
	var saw string
	spy := g.VisitorFunc(func(n *g.Annotated[g.Value], _ *g.State) g.ProcessingResult {
		saw, _ = n.Get().AsString()
		return nil
	})
	a := g.New(g.String("abc"))
	if err := g.Process(&a, g.Chain{upper, spy}); err != nil {
		t.Fatal(err)
	}
	if saw != "ABC" {
		t.Fatalf("second visitor saw %q", saw)
	}
}

func TestProcess_OverlappingPassesKeepInvocationOrder(t *testing.T) {
	a := g.New(g.String("abcdefgh"))
	pass := func(rule string, start, end int) g.Visitor {
		return g.VisitorFunc(func(n *g.Annotated[g.Value], _ *g.State) g.ProcessingResult {
			s, _ := n.Get().AsString()
			return g.MaskRange(rule, s, start, end, '#')
		})
	}
	_ = g.Process(&a, pass("first", 1, 5))
	_ = g.Process(&a, pass("second", 3, 7))

	rem := a.Meta().Remarks()
	if len(rem) != 2 || rem[0].RuleID != "first" || rem[1].RuleID != "second" {
		t.Fatalf("remarks out of order: %+v", rem)
	}
	if n, _ := a.Meta().OriginalLength(); n != 8 {
		t.Fatalf("original length = %d", n)
	}
}

func TestProcess_TruncateAndInsert(t *testing.T) {
	a := mustParse(t, `{"msg":"hello world","n":1}`)
	err := g.Process(&a, g.VisitorFunc(func(n *g.Annotated[g.Value], st *g.State) g.ProcessingResult {
		switch st.Path().Pointer() {
		case "/msg":
			s, _ := n.Get().AsString()
			return g.TruncateString("limit", s, 5).WithError(g.ValueTooLong(5))
		case "/n":
			return g.InsertValue("zero", g.I64(0))
		}
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got := mustJSON(t, a.Get()); got != `{"msg":"hello","n":0}` {
		t.Fatalf("payload %s", got)
	}
	msg, _ := g.Lookup(&a, g.ParsePointer("/msg"))
	if errorKinds(msg.Meta())[0] != g.ErrValueTooLong || msg.Meta().Remarks()[0].Type != g.RemarkTruncated {
		t.Fatalf("unexpected meta on msg")
	}
	n, _ := g.Lookup(&a, g.ParsePointer("/n"))
	if n.Meta().Remarks()[0].Type != g.RemarkSubstituted {
		t.Fatalf("insert should record a substitution")
	}
}

func TestProcess_Deterministic(t *testing.T) {
	in := `{"a":"secret","b":["x","secret"],"c":{"d":"secret"}}`
	v := g.VisitorFunc(func(n *g.Annotated[g.Value], _ *g.State) g.ProcessingResult {
		if s, ok := n.Get().AsString(); ok && s == "secret" {
			return g.MaskRange("m", s, 0, 6, 'x')
		}
		return nil
	})
	run := func() string {
		a := mustParse(t, in)
		if err := g.Process(&a, v); err != nil {
			t.Fatal(err)
		}
		b, err := g.Serializable(a).MarshalJSON()
		if err != nil {
			t.Fatal(err)
		}
		return string(b)
	}
	if first, second := run(), run(); first != second {
		t.Fatalf("non-deterministic output:\n%s\n%s", first, second)
	}
}

func TestProcess_LogsAppliedActions(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := mustParse(t, `{"a":"x"}`)
	err := g.Process(&a, deleteAt("/a", g.DeleteValueSoft), g.ProcessOpt{Logger: zap.New(core)})
	if err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("apply processing action").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["path"]; got != "/a" {
		t.Fatalf("logged path %v", got)
	}
}

func TestProcessTyped_KeepsMetaAcrossRoundTrip(t *testing.T) {
	u := g.StructFromValue[user](mustParse(t, `{"name":"Alice Smith","age":3}`))
	out, err := g.ProcessTyped(u, codec.Struct[user](), deleteAt("/name", g.DeleteValueHard))
	if err != nil {
		t.Fatal(err)
	}
	val := out.Get()
	if val.Name.Present() {
		t.Fatalf("name should be deleted")
	}
	if rem := val.Name.Meta().Remarks(); len(rem) != 1 || rem[0].Type != g.RemarkRemoved {
		t.Fatalf("remark lost in typed round trip: %+v", rem)
	}
	if age, _ := val.Age.Value(); age != 3 {
		t.Fatalf("age = %d", age)
	}
}

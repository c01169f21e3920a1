package dsl

import (
	"math"
	"unicode/utf8"

	g "github.com/reoring/goshadow"
	"github.com/reoring/goshadow/codec"
	js "github.com/reoring/goshadow/jsonschema"
)

// Schema is a dynamic codec over Value trees that can describe itself.
type Schema interface {
	g.Codec[g.Value]
	JSONSchema() (*js.Schema, error)
}

type typedSchema[T any] struct {
	c    g.Codec[T]
	desc *js.Schema
}

// Of adapts a typed codec. Accepted values are normalized through the codec,
// so for example U32 renders every accepted integer as unsigned.
func Of[T any](c g.Codec[T], desc *js.Schema) Schema {
	if desc == nil {
		desc = &js.Schema{}
	}
	return typedSchema[T]{c: c, desc: desc}
}

func (s typedSchema[T]) FromValue(a g.Annotated[g.Value]) g.Annotated[g.Value] {
	return g.IntoAnnotated(s.c.FromValue(a), s.c)
}

func (typedSchema[T]) IntoValue(v g.Value) g.Value { return v }

func (typedSchema[T]) IsEmpty(v g.Value) bool { return g.IsEmptyValue(v) }

func (s typedSchema[T]) JSONSchema() (*js.Schema, error) { return s.desc.Clone(), nil }

func bound(f float64) *float64 { return &f }

// Bool accepts booleans.
func Bool() Schema { return Of(codec.Bool(), &js.Schema{Type: "boolean"}) }

// I64 accepts integers representable as int64.
func I64() Schema {
	return Of(codec.I64(), &js.Schema{Type: "integer", Minimum: bound(math.MinInt64), Maximum: bound(math.MaxInt64)})
}

// U64 accepts non-negative integers.
func U64() Schema { return Of(codec.U64(), &js.Schema{Type: "integer", Minimum: bound(0)}) }

// U32 accepts integers in [0, 2^32).
func U32() Schema {
	return Of(codec.U32(), &js.Schema{Type: "integer", Minimum: bound(0), Maximum: bound(math.MaxUint32)})
}

// F64 accepts any number.
func F64() Schema { return Of(codec.F64(), &js.Schema{Type: "number"}) }

// Timestamp accepts RFC 3339 strings or unix seconds and emits RFC 3339 in UTC.
func Timestamp() Schema {
	return Of(codec.Timestamp(), &js.Schema{Type: "string", Format: "date-time"})
}

// Enum accepts one of values.
func Enum(values ...string) Schema {
	return Of(codec.Enum(values...), &js.Schema{Type: "string", Enum: values})
}

// Any accepts every value unchanged. Null becomes absent.
func Any() Schema { return Of(codec.Value(), nil) }

// StringSchema accepts strings, optionally bounded in length.
type StringSchema struct {
	maxChars   int
	truncateAt int
}

// String returns an unbounded string schema.
func String() *StringSchema { return &StringSchema{} }

// MaxChars rejects strings longer than n runes with value_too_long.
func (s *StringSchema) MaxChars(n int) *StringSchema {
	s.maxChars = n
	return s
}

// TruncateAt shortens strings longer than n runes, keeping the original
// length and a truncated remark.
func (s *StringSchema) TruncateAt(n int) *StringSchema {
	s.truncateAt = n
	return s
}

// LimitRule is the rule id recorded on remarks that schema limits produce.
const LimitRule = "!limit"

func (s *StringSchema) FromValue(a g.Annotated[g.Value]) g.Annotated[g.Value] {
	out := codec.String().FromValue(a)
	str, ok := out.Value()
	if !ok {
		return g.IntoAnnotated(out, codec.String())
	}
	n := utf8.RuneCountInString(str)
	if s.maxChars > 0 && n > s.maxChars {
		return g.IntoAnnotated(g.Reject(out, g.ValueTooLong(s.maxChars), g.String(str)), codec.String())
	}
	res := g.IntoAnnotated(out, codec.String())
	if s.truncateAt > 0 && n > s.truncateAt {
		// a bare action never aborts the walk
		_ = g.Process(&res, g.VisitorFunc(func(*g.Annotated[g.Value], *g.State) g.ProcessingResult {
			return g.TruncateString(LimitRule, str, s.truncateAt)
		}))
	}
	return res
}

func (*StringSchema) IntoValue(v g.Value) g.Value { return v }

func (*StringSchema) IsEmpty(v g.Value) bool { return g.IsEmptyValue(v) }

func (s *StringSchema) JSONSchema() (*js.Schema, error) {
	out := &js.Schema{Type: "string"}
	if s.maxChars > 0 {
		n := s.maxChars
		out.MaxLength = &n
	}
	return out, nil
}

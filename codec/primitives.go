// Package codec provides goshadow.Codec implementations for primitive Go
// types, containers and time values.
package codec

import (
	"math"

	g "github.com/reoring/goshadow"
)

type stringCodec struct{}

// String accepts string values only; numbers are not coerced.
func String() g.Codec[string] { return stringCodec{} }

func (stringCodec) FromValue(a g.Annotated[g.Value]) g.Annotated[string] {
	return g.DecodeScalar(a, g.KindString.String(), g.Value.AsString)
}
func (stringCodec) IntoValue(s string) g.Value { return g.String(s) }
func (stringCodec) IsEmpty(s string) bool      { return s == "" }

type boolCodec struct{}

// Bool accepts JSON booleans.
func Bool() g.Codec[bool] { return boolCodec{} }

func (boolCodec) FromValue(a g.Annotated[g.Value]) g.Annotated[bool] {
	return g.DecodeScalar(a, g.KindBool.String(), g.Value.AsBool)
}
func (boolCodec) IntoValue(b bool) g.Value { return g.Bool(b) }
func (boolCodec) IsEmpty(bool) bool        { return false }

type i64Codec struct{}

// I64 accepts any integral number that fits in int64, including integral
// floats such as 3.0.
func I64() g.Codec[int64] { return i64Codec{} }

func (i64Codec) FromValue(a g.Annotated[g.Value]) g.Annotated[int64] {
	return g.DecodeScalar(a, g.KindI64.String(), g.Value.AsI64)
}
func (i64Codec) IntoValue(n int64) g.Value { return g.I64(n) }
func (i64Codec) IsEmpty(int64) bool        { return false }

type u64Codec struct{}

// U64 accepts any non-negative integral number that fits in uint64.
func U64() g.Codec[uint64] { return u64Codec{} }

func (u64Codec) FromValue(a g.Annotated[g.Value]) g.Annotated[uint64] {
	return g.DecodeScalar(a, g.KindU64.String(), g.Value.AsU64)
}
func (u64Codec) IntoValue(n uint64) g.Value { return g.U64(n) }
func (u64Codec) IsEmpty(uint64) bool        { return false }

type u32Codec struct{}

// U32 is U64 with an additional range check; values above MaxUint32 are
// rejected with invalid_value.
func U32() g.Codec[uint32] { return u32Codec{} }

func (u32Codec) FromValue(a g.Annotated[g.Value]) g.Annotated[uint32] {
	wide := g.DecodeScalar(a, g.KindU64.String(), g.Value.AsU64)
	out := g.MapValue(wide, func(n uint64) uint32 { return uint32(n) })
	if n, ok := wide.Value(); ok && n > math.MaxUint32 {
		return g.Reject(out, g.InvalidValue("value out of range").With("max", g.U64(math.MaxUint32)), g.U64(n))
	}
	return out
}
func (u32Codec) IntoValue(n uint32) g.Value { return g.U64(uint64(n)) }
func (u32Codec) IsEmpty(uint32) bool        { return false }

type f64Codec struct{}

// F64 accepts every numeric variant. IntoValue always writes a float, so an
// integer input such as 3 comes back as the F64 3.0, which is not Equal to
// the I64 it was read from.
func F64() g.Codec[float64] { return f64Codec{} }

func (f64Codec) FromValue(a g.Annotated[g.Value]) g.Annotated[float64] {
	return g.DecodeScalar(a, g.KindF64.String(), g.Value.AsF64)
}
func (f64Codec) IntoValue(f float64) g.Value { return g.F64(f) }
func (f64Codec) IsEmpty(float64) bool        { return false }

// Value is the identity codec for untyped subtrees.
func Value() g.Codec[g.Value] { return g.ValueCodec() }

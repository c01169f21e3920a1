// Package pbvalue converts between goshadow values and the protobuf
// well-known google.protobuf.Value family, so annotated documents can travel
// inside protobuf messages.
package pbvalue

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"

	g "github.com/reoring/goshadow"
	"google.golang.org/protobuf/types/known/structpb"
)

// maxExactInt is the largest integer a double represents exactly.
const maxExactInt = 1 << 53

var (
	// ErrPrecision is returned for integers a double cannot hold exactly.
	ErrPrecision = errors.New("pbvalue: integer not exactly representable")
	// ErrNonFinite is returned for NaN and infinities.
	ErrNonFinite = errors.New("pbvalue: non-finite number")
)

// FromProto converts a protobuf value. Numbers become F64, or I64 when the
// double is integral and exactly representable. A nil value is absent.
func FromProto(v *structpb.Value) g.Annotated[g.Value] {
	if v == nil {
		return g.Absent[g.Value]()
	}
	return g.New(fromProto(v))
}

func fromProto(v *structpb.Value) g.Value {
	switch k := v.GetKind().(type) {
	case *structpb.Value_BoolValue:
		return g.Bool(k.BoolValue)
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
			return g.I64(int64(f))
		}
		return g.F64(f)
	case *structpb.Value_StringValue:
		return g.String(k.StringValue)
	case *structpb.Value_ListValue:
		items := make(g.Array[g.Value], 0, len(k.ListValue.GetValues()))
		for _, it := range k.ListValue.GetValues() {
			items = append(items, g.New(fromProto(it)))
		}
		return g.ArrayValue(items)
	case *structpb.Value_StructValue:
		return g.ObjectValue(fromStruct(k.StructValue))
	}
	return g.Null()
}

// FromStruct converts a protobuf Struct. Protobuf maps are unordered, so
// keys are inserted in sorted order.
func FromStruct(s *structpb.Struct) g.Annotated[g.Value] {
	if s == nil {
		return g.Absent[g.Value]()
	}
	return g.New(g.ObjectValue(fromStruct(s)))
}

func fromStruct(s *structpb.Struct) *g.Object[g.Value] {
	out := g.NewObject[g.Value]()
	for _, k := range slices.Sorted(maps.Keys(s.GetFields())) {
		out.Insert(k, g.New(fromProto(s.GetFields()[k])))
	}
	return out
}

// ToProto converts the clean payload of a: absent entries are dropped from
// objects and written as null in lists, and Meta is not carried.
func ToProto(a g.Annotated[g.Value]) (*structpb.Value, error) {
	return toProto(a.Get(), nil)
}

// ToDocument converts the combined payload and meta document, the form
// SerializableAnnotated.MarshalJSON writes.
func ToDocument(s g.SerializableAnnotated) (*structpb.Value, error) {
	return toProto(s.Document(), nil)
}

// FromDocument converts a combined document and moves its meta back onto the
// nodes it describes.
func FromDocument(v *structpb.Value) (g.Annotated[g.Value], error) {
	return g.DetachMeta(FromProto(v))
}

func toProto(v g.Value, p g.Path) (*structpb.Value, error) {
	switch v.Kind() {
	case g.KindNull:
		return structpb.NewNullValue(), nil
	case g.KindBool:
		b, _ := v.AsBool()
		return structpb.NewBoolValue(b), nil
	case g.KindI64:
		n, _ := v.AsI64()
		if n > maxExactInt || n < -maxExactInt {
			return nil, fmt.Errorf("%w at %s: %d", ErrPrecision, p.Pointer(), n)
		}
		return structpb.NewNumberValue(float64(n)), nil
	case g.KindU64:
		n, _ := v.AsU64()
		if n > maxExactInt {
			return nil, fmt.Errorf("%w at %s: %d", ErrPrecision, p.Pointer(), n)
		}
		return structpb.NewNumberValue(float64(n)), nil
	case g.KindF64:
		f, _ := v.AsF64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w at %s", ErrNonFinite, p.Pointer())
		}
		return structpb.NewNumberValue(f), nil
	case g.KindString:
		s, _ := v.AsString()
		return structpb.NewStringValue(s), nil
	case g.KindArray:
		items, _ := v.AsArray()
		out := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(items))}
		for i, it := range items {
			pv, err := toProto(it.Get(), p.Index(i))
			if err != nil {
				return nil, err
			}
			out.Values = append(out.Values, pv)
		}
		return structpb.NewListValue(out), nil
	case g.KindObject:
		obj, _ := v.AsObject()
		out := &structpb.Struct{Fields: make(map[string]*structpb.Value, obj.Len())}
		for k, it := range obj.All() {
			iv, ok := it.Value()
			if !ok {
				continue
			}
			pv, err := toProto(iv, p.Field(k))
			if err != nil {
				return nil, err
			}
			out.Fields[k] = pv
		}
		return structpb.NewStructValue(out), nil
	}
	return nil, fmt.Errorf("pbvalue: unsupported kind %s", v.Kind())
}

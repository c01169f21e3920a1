package goshadow

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// MarshalJSON encodes v with object keys in insertion order. Absent object
// entries are omitted and absent array items are written as null. Floats
// always carry a fraction or exponent so integral and fractional numbers stay
// distinguishable; non-finite floats are written as null.
func (v Value) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := encodeValue(buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON parses data with default options.
func (v *Value) UnmarshalJSON(data []byte) error {
	a, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = a.Get()
	return nil
}

func encodeValue(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindI64:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindU64:
		buf.WriteString(strconv.FormatUint(v.u, 10))
	case KindF64:
		buf.WriteString(formatFloat(v.f))
	case KindString:
		return encodeString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			iv, ok := item.Value()
			if !ok {
				buf.WriteString("null")
				continue
			}
			if err := encodeValue(buf, iv); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		first := true
		for k, item := range v.obj.All() {
			iv, ok := item.Value()
			if !ok {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := encodeString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, iv); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	b, err := json.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

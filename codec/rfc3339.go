package codec

import (
	"math"
	"time"

	g "github.com/reoring/goshadow"
)

type timestampCodec struct{}

// Timestamp converts between time.Time and either an RFC 3339 string or
// seconds since the Unix epoch. Output is always a canonical UTC RFC 3339
// string.
func Timestamp() g.Codec[time.Time] { return timestampCodec{} }

func (timestampCodec) FromValue(a g.Annotated[g.Value]) g.Annotated[time.Time] {
	if raw, ok := a.Value(); ok && raw.Kind() == g.KindString {
		s, _ := raw.AsString()
		t, err := parseRFC3339(s)
		out := g.New(t).WithMeta(*a.Meta())
		if err != nil {
			return g.Reject(out, g.InvalidValue("invalid RFC3339 time"), raw)
		}
		return out
	}
	return g.DecodeScalar(a, "timestamp", func(v g.Value) (time.Time, bool) {
		f, ok := v.AsF64()
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return time.Time{}, false
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	})
}

func (timestampCodec) IntoValue(t time.Time) g.Value { return g.String(formatRFC3339Canonical(t)) }
func (timestampCodec) IsEmpty(t time.Time) bool      { return t.IsZero() }

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}

package goshadow

import "fmt"

// SkipSerialization is the per-field policy for omitting values on output.
// The zero value is SkipNever.
type SkipSerialization uint8

const (
	SkipNever SkipSerialization = iota
	// SkipNull omits absent and null values.
	SkipNull
	// SkipEmpty omits values whose type reports them empty ("", [], {}, null).
	SkipEmpty
	SkipNullOrEmpty
)

var _skipNames = [...]string{
	SkipNever:       "never",
	SkipNull:        "null",
	SkipEmpty:       "empty",
	SkipNullOrEmpty: "null_or_empty",
}

func (s SkipSerialization) String() string {
	if int(s) < len(_skipNames) {
		return _skipNames[s]
	}
	return fmt.Sprintf("SkipSerialization(%d)", uint8(s))
}

// ParseSkip accepts the names produced by String. The empty string means never.
func ParseSkip(s string) (SkipSerialization, error) {
	if s == "" {
		return SkipNever, nil
	}
	for i, n := range _skipNames {
		if n == s {
			return SkipSerialization(i), nil
		}
	}
	return SkipNever, fmt.Errorf("goshadow: unknown skip policy %q", s)
}

func (s SkipSerialization) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *SkipSerialization) UnmarshalText(b []byte) error {
	v, err := ParseSkip(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SkipsNull reports whether absent or null values are omitted.
func (s SkipSerialization) SkipsNull() bool { return s == SkipNull || s == SkipNullOrEmpty }

// SkipsEmpty reports whether empty values are omitted.
func (s SkipSerialization) SkipsEmpty() bool { return s == SkipEmpty || s == SkipNullOrEmpty }

// Omits decides whether a field is left out of the clean output. Absence and
// null count as empty too, so SkipEmpty also drops them.
func (s SkipSerialization) Omits(present, null, empty bool) bool {
	switch s {
	case SkipNull:
		return !present || null
	case SkipEmpty, SkipNullOrEmpty:
		return !present || null || empty
	}
	return false
}

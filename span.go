package goshadow

import (
	"slices"
	"strings"
)

// SpanAttribute names a field that a secondary span-metrics pass extracts.
// It is dispatch metadata only and never part of the value tree.
type SpanAttribute struct {
	name string
}

// SpanExclusiveTime marks the exclusive duration of a span.
var SpanExclusiveTime = SpanAttribute{name: "exclusive_time"}

var _knownSpanAttributes = []SpanAttribute{SpanExclusiveTime}

// ParseSpanAttribute maps a name to a known attribute. Unknown names are kept
// as-is and reported through IsKnown.
func ParseSpanAttribute(s string) SpanAttribute {
	s = strings.TrimSpace(s)
	for _, a := range _knownSpanAttributes {
		if a.name == s {
			return a
		}
	}
	return SpanAttribute{name: s}
}

func (a SpanAttribute) String() string { return a.name }

// IsKnown reports whether a is one of the predefined attributes.
func (a SpanAttribute) IsKnown() bool { return slices.Contains(_knownSpanAttributes, a) }

func (a SpanAttribute) MarshalText() ([]byte, error) { return []byte(a.name), nil }

func (a *SpanAttribute) UnmarshalText(b []byte) error {
	*a = ParseSpanAttribute(string(b))
	return nil
}

// SpanAttributes is a set of attributes in first-seen order.
type SpanAttributes []SpanAttribute

// ParseSpanAttributes splits a comma separated list, dropping blanks and
// duplicates.
func ParseSpanAttributes(s string) SpanAttributes {
	var out SpanAttributes
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		out = out.With(ParseSpanAttribute(part))
	}
	return out
}

// Has reports membership.
func (s SpanAttributes) Has(a SpanAttribute) bool { return slices.Contains(s, a) }

// With returns s plus a, unchanged when a is already a member.
func (s SpanAttributes) With(a SpanAttribute) SpanAttributes {
	if s.Has(a) {
		return s
	}
	return append(slices.Clip(s), a)
}

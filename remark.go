package goshadow

import "fmt"

// Range is a span of rune offsets into a string value: Start is inclusive,
// End is exclusive.
type Range struct {
	Start int
	End   int
}

// Len returns the number of runes covered.
func (r Range) Len() int { return r.End - r.Start }

// RemarkType classifies the change a rule made to a value.
type RemarkType uint8

const (
	RemarkAnnotated RemarkType = iota
	RemarkRemoved
	RemarkSubstituted
	RemarkReplaced
	RemarkMasked
	RemarkPseudonymized
	RemarkEncrypted
	RemarkTruncated
	RemarkHashed
)

var _remarkCodes = [...]string{
	RemarkAnnotated:     "a",
	RemarkRemoved:       "x",
	RemarkSubstituted:   "s",
	RemarkReplaced:      "r",
	RemarkMasked:        "m",
	RemarkPseudonymized: "p",
	RemarkEncrypted:     "e",
	RemarkTruncated:     "t",
	RemarkHashed:        "h",
}

var _remarkNames = [...]string{
	RemarkAnnotated:     "annotated",
	RemarkRemoved:       "removed",
	RemarkSubstituted:   "substituted",
	RemarkReplaced:      "replaced",
	RemarkMasked:        "masked",
	RemarkPseudonymized: "pseudonymized",
	RemarkEncrypted:     "encrypted",
	RemarkTruncated:     "truncated",
	RemarkHashed:        "hashed",
}

// Code returns the one-letter wire code.
func (t RemarkType) Code() string {
	if int(t) < len(_remarkCodes) {
		return _remarkCodes[t]
	}
	return "?"
}

func (t RemarkType) String() string {
	if int(t) < len(_remarkNames) {
		return _remarkNames[t]
	}
	return fmt.Sprintf("RemarkType(%d)", uint8(t))
}

// ParseRemarkType accepts both the wire code and the long name.
func ParseRemarkType(s string) (RemarkType, error) {
	for i := range _remarkCodes {
		if _remarkCodes[i] == s || _remarkNames[i] == s {
			return RemarkType(i), nil
		}
	}
	return 0, fmt.Errorf("goshadow: unknown remark type %q", s)
}

// Remark records one modification: which rule made it, what kind it was and,
// when only a substring was affected, where.
type Remark struct {
	RuleID string
	Type   RemarkType
	Range  *Range
}

// NewRemark returns a remark covering the whole value.
func NewRemark(ty RemarkType, ruleID string) Remark {
	return Remark{RuleID: ruleID, Type: ty}
}

// NewRangeRemark returns a remark covering [start, end).
func NewRangeRemark(ty RemarkType, ruleID string, start, end int) Remark {
	return Remark{RuleID: ruleID, Type: ty, Range: &Range{Start: start, End: end}}
}

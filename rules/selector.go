package rules

import (
	"fmt"
	"strings"

	g "github.com/reoring/goshadow"
)

// Selector matches node paths written in dotted form. "*" matches exactly
// one segment and "**" any number of segments, including none. Array items
// are addressed by their decimal index. The empty selector matches the root.
type Selector struct {
	raw  string
	segs []string
}

// ParseSelector parses a dotted selector such as "user.emails.*".
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, nil
	}
	segs := strings.Split(s, ".")
	for _, seg := range segs {
		if seg == "" {
			return Selector{}, fmt.Errorf("rules: empty segment in selector %q", s)
		}
	}
	return Selector{raw: s, segs: segs}, nil
}

// MustSelector is ParseSelector that panics on error.
func MustSelector(s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

func (s Selector) String() string { return s.raw }

// Match reports whether p is selected.
func (s Selector) Match(p g.Path) bool { return matchSegs(s.segs, p) }

func matchSegs(segs []string, p g.Path) bool {
	for len(segs) > 0 {
		switch segs[0] {
		case "**":
			rest := segs[1:]
			for i := 0; i <= len(p); i++ {
				if matchSegs(rest, p[i:]) {
					return true
				}
			}
			return false
		case "*":
			if len(p) == 0 {
				return false
			}
		default:
			if len(p) == 0 || p[0].String() != segs[0] {
				return false
			}
		}
		segs, p = segs[1:], p[1:]
	}
	return len(p) == 0
}

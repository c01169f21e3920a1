package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Pattern finds the parts of a string a rule acts on.
type Pattern struct {
	name   string
	re     *regexp.Regexp
	accept func(string) bool
}

var builtinPatterns = map[string]*Pattern{
	"@email": {
		name: "@email",
		re:   regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
	},
	"@ip": {
		name: "@ip",
		re: regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|1?\d?\d)\.){3}(?:25[0-5]|2[0-4]\d|1?\d?\d)\b` +
			`|\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b`),
	},
	"@creditcard": {
		name:   "@creditcard",
		re:     regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`),
		accept: luhn,
	},
}

// BuiltinPatterns lists the names accepted by CompilePattern besides
// regular expressions.
func BuiltinPatterns() []string {
	out := make([]string, 0, len(builtinPatterns))
	for k := range builtinPatterns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// CompilePattern resolves a builtin name such as "@email" or compiles a
// regular expression. The empty string yields nil, meaning the whole value.
func CompilePattern(s string) (*Pattern, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "@") {
		p, ok := builtinPatterns[s]
		if !ok {
			return nil, fmt.Errorf("rules: unknown builtin pattern %q", s)
		}
		return p, nil
	}
	re, err := regexp.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("rules: pattern %q: %w", s, err)
	}
	return &Pattern{name: s, re: re}, nil
}

func (p *Pattern) String() string { return p.name }

// find returns the byte spans of accepted matches.
func (p *Pattern) find(s string) [][2]int {
	var out [][2]int
	for _, m := range p.re.FindAllStringIndex(s, -1) {
		if m[0] == m[1] {
			continue
		}
		if p.accept != nil && !p.accept(s[m[0]:m[1]]) {
			continue
		}
		out = append(out, [2]int{m[0], m[1]})
	}
	return out
}

func luhn(s string) bool {
	sum, n := 0, 0
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c < '0' || c > '9' {
			continue
		}
		d := int(c - '0')
		if n%2 == 1 {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		n++
	}
	return n >= 13 && sum%10 == 0
}

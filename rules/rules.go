package rules

import (
	"fmt"
	"strings"

	g "github.com/reoring/goshadow"
)

// Op defines simple comparison operators for If(...).
type Op int

const (
	Eq Op = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

var _opNames = [...]string{Eq: "eq", Ne: "ne", Lt: "lt", Le: "le", Gt: "gt", Ge: "ge"}

func (o Op) String() string {
	if o >= 0 && int(o) < len(_opNames) {
		return _opNames[o]
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// ParseOp accepts the names produced by String.
func ParseOp(s string) (Op, error) {
	for i, n := range _opNames {
		if n == s {
			return Op(i), nil
		}
	}
	return Eq, fmt.Errorf("rules: unknown operator %q", s)
}

// Condition gates rules on the content of the document.
type Condition struct {
	path g.Path
	op   Op
	want g.Value
	all  []Condition // composite AND
	any  []Condition // composite OR
}

// If builds a condition comparing the value at a JSON Pointer against want.
// A missing or absent value never satisfies it.
func If(pointer string, op Op, want g.Value) Condition {
	return Condition{path: g.ParsePointer(normalizePath(pointer)), op: op, want: want}
}

// IfAll builds a condition that requires all conditions to hold.
func IfAll(conds ...Condition) Condition { return Condition{all: conds} }

// IfAny builds a condition that requires any condition to hold.
func IfAny(conds ...Condition) Condition { return Condition{any: conds} }

// And combines the receiver with additional conditions using logical AND.
func (c Condition) And(others ...Condition) Condition {
	return IfAll(append([]Condition{c}, others...)...)
}

// Or combines the receiver with additional conditions using logical OR.
func (c Condition) Or(others ...Condition) Condition {
	return IfAny(append([]Condition{c}, others...)...)
}

// Eval evaluates c against the document rooted at root.
func (c Condition) Eval(root *g.Annotated[g.Value]) bool {
	if len(c.all) > 0 {
		for _, it := range c.all {
			if !it.Eval(root) {
				return false
			}
		}
		return true
	}
	if len(c.any) > 0 {
		for _, it := range c.any {
			if it.Eval(root) {
				return true
			}
		}
		return false
	}
	node, ok := g.Lookup(root, c.path)
	if !ok {
		return false
	}
	cur, ok := node.Value()
	if !ok {
		return false
	}
	return compare(cur, c.op, c.want)
}

func compare(cur g.Value, op Op, want g.Value) bool {
	switch op {
	case Eq:
		return cur.Equal(want)
	case Ne:
		return !cur.Equal(want)
	}
	var cmp int
	if a, ok := cur.AsF64(); ok {
		b, ok := want.AsF64()
		if !ok {
			return false
		}
		switch {
		case a < b:
			cmp = -1
		case a > b:
			cmp = 1
		}
	} else if a, ok := cur.AsString(); ok {
		b, ok := want.AsString()
		if !ok {
			return false
		}
		cmp = strings.Compare(a, b)
	} else {
		return false
	}
	switch op {
	case Lt:
		return cmp < 0
	case Le:
		return cmp <= 0
	case Gt:
		return cmp > 0
	case Ge:
		return cmp >= 0
	}
	return false
}

func normalizePath(p string) string {
	if p == "" || p == "/" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}

// Set is an ordered collection of rules. At every node the rules run in
// order, each seeing the value as rewritten by the ones before it.
type Set struct {
	rules []*Rule
}

// NewSet validates rules and keeps their order. Rule ids must be unique.
func NewSet(rules ...*Rule) (*Set, error) {
	seen := map[string]struct{}{}
	for _, r := range rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("rules: duplicate rule id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
	}
	return &Set{rules: rules}, nil
}

// Rules returns the rules in order.
func (s *Set) Rules() []*Rule { return append([]*Rule(nil), s.rules...) }

// Len returns the number of rules.
func (s *Set) Len() int { return len(s.rules) }

// Visitor returns the rules whose condition holds for root, as one chain.
func (s *Set) Visitor(root *g.Annotated[g.Value]) g.Visitor {
	chain := make(g.Chain, 0, len(s.rules))
	for _, r := range s.rules {
		if r.When != nil && !r.When.Eval(root) {
			continue
		}
		chain = append(chain, r)
	}
	return chain
}

// Apply runs the set over a in place.
func (s *Set) Apply(a *g.Annotated[g.Value], opts ...g.ProcessOpt) error {
	return g.Process(a, s.Visitor(a), opts...)
}

package goshadow

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ActionKind classifies a ProcessingAction.
type ActionKind uint8

const (
	ActionKeep ActionKind = iota
	ActionDeleteHard
	ActionDeleteSoft
	ActionInsertValue
	ActionRewriteString
)

func (k ActionKind) String() string {
	switch k {
	case ActionKeep:
		return "keep"
	case ActionDeleteHard:
		return "delete_hard"
	case ActionDeleteSoft:
		return "delete_soft"
	case ActionInsertValue:
		return "insert_value"
	case ActionRewriteString:
		return "rewrite_string"
	}
	return fmt.Sprintf("ActionKind(%d)", uint8(k))
}

// ProcessingAction tells the walker how to rewrite the current node. It is
// returned from a Visitor as an error so that the plain nil result means
// "keep unchanged".
type ProcessingAction struct {
	kind   ActionKind
	rule   string
	value  Value
	remark RemarkType
	ranges []Range
	err    *Error
}

// ProcessingResult is what a Visitor returns: nil keeps the node, a
// *ProcessingAction rewrites it, and any other error aborts Process.
type ProcessingResult = error

func (a *ProcessingAction) Error() string {
	if a.rule == "" {
		return "goshadow: processing action " + a.kind.String()
	}
	return fmt.Sprintf("goshadow: processing action %s (rule %s)", a.kind, a.rule)
}

// Kind returns the action kind.
func (a *ProcessingAction) Kind() ActionKind { return a.kind }

// Rule returns the id of the rule that requested the action.
func (a *ProcessingAction) Rule() string { return a.rule }

// WithError returns a copy of a that also records e on the node.
func (a *ProcessingAction) WithError(e Error) *ProcessingAction {
	c := *a
	c.err = &e
	return &c
}

// Keep leaves the value untouched. Combined with WithError it annotates a
// node without changing it.
func Keep() *ProcessingAction { return &ProcessingAction{kind: ActionKeep} }

// DeleteValueHard removes the value and any provenance recorded for it.
func DeleteValueHard(rule string) *ProcessingAction {
	return &ProcessingAction{kind: ActionDeleteHard, rule: rule, remark: RemarkRemoved}
}

// DeleteValueSoft removes the value but keeps the Meta; the removed value
// becomes the original value unless one was recorded earlier.
func DeleteValueSoft(rule string) *ProcessingAction {
	return &ProcessingAction{kind: ActionDeleteSoft, rule: rule, remark: RemarkRemoved}
}

// InsertValue replaces the node with v.
func InsertValue(rule string, v Value) *ProcessingAction {
	return &ProcessingAction{kind: ActionInsertValue, rule: rule, value: v, remark: RemarkSubstituted}
}

// RewriteString replaces a string node with s. Each range yields one remark
// of type ty; without ranges a single whole-value remark is recorded. Ranges
// are rune offsets into s, the rewritten string, and mark where each
// substitute sits; the length before the rewrite is kept as original length.
func RewriteString(rule string, ty RemarkType, s string, ranges ...Range) *ProcessingAction {
	return &ProcessingAction{kind: ActionRewriteString, rule: rule, value: String(s), remark: ty, ranges: ranges}
}

// MaskRange replaces runes [start, end) of s with mask. Offsets are clamped
// to the string.
func MaskRange(rule, s string, start, end int, mask rune) *ProcessingAction {
	runes := []rune(s)
	start = max(0, min(start, len(runes)))
	end = max(start, min(end, len(runes)))
	for i := start; i < end; i++ {
		runes[i] = mask
	}
	return RewriteString(rule, RemarkMasked, string(runes), Range{Start: start, End: end})
}

// TruncateString cuts s to maxChars runes. Strings that already fit are kept.
func TruncateString(rule, s string, maxChars int) *ProcessingAction {
	if utf8.RuneCountInString(s) <= maxChars {
		return Keep()
	}
	return RewriteString(rule, RemarkTruncated, string([]rune(s)[:max(0, maxChars)]))
}

// Visitor inspects one node. The node may be read and its Meta extended; the
// value itself should be changed only through the returned action.
type Visitor interface {
	Visit(node *Annotated[Value], st *State) ProcessingResult
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(node *Annotated[Value], st *State) ProcessingResult

func (f VisitorFunc) Visit(node *Annotated[Value], st *State) ProcessingResult { return f(node, st) }

// Chain runs several visitors at each node in order. Passed to Process, each
// member sees the node as rewritten by the previous ones and a delete ends the
// chain for that node. Used as a member of another visitor, Visit returns the
// first non-nil result.
type Chain []Visitor

func (c Chain) Visit(node *Annotated[Value], st *State) ProcessingResult {
	for _, v := range c {
		if err := v.Visit(node, st); err != nil {
			return err
		}
	}
	return nil
}

// State describes the position of the node being visited.
type State struct {
	parent  *State
	key     string
	index   int
	isIndex bool
	depth   int
}

// Depth is 0 at the root.
func (s *State) Depth() int { return s.depth }

// Parent returns the enclosing state, nil at the root.
func (s *State) Parent() *State { return s.parent }

// Key returns the object key under which the node sits.
func (s *State) Key() (string, bool) { return s.key, s.parent != nil && !s.isIndex }

// Index returns the array index of the node.
func (s *State) Index() (int, bool) { return s.index, s.isIndex }

// Path rebuilds the full path from the root.
func (s *State) Path() Path {
	p := make(Path, s.depth)
	for cur := s; cur.parent != nil; cur = cur.parent {
		if cur.isIndex {
			p[cur.depth-1] = IndexSegment(cur.index)
		} else {
			p[cur.depth-1] = KeySegment(cur.key)
		}
	}
	return p
}

func (s *State) enterKey(k string) *State {
	return &State{parent: s, key: k, depth: s.depth + 1}
}

func (s *State) enterIndex(i int) *State {
	return &State{parent: s, index: i, isIndex: true, depth: s.depth + 1}
}

// ProcessOpt configures Process. When multiple are given the last one wins.
type ProcessOpt struct {
	// Logger receives a debug entry per applied action. Nil disables logging.
	Logger *zap.Logger
}

type processor struct {
	visitors []Visitor
	log      *zap.Logger
}

// Process walks the tree rooted at a depth-first in pre-order, objects in
// insertion order and arrays in index order, and applies the action each
// visitor returns before descending. Deleted nodes are not descended into.
// Absent nodes, including absent array items, are not visited and keep their
// Meta unchanged.
//
// Process returns an error only when a visitor returns something other than
// nil or a *ProcessingAction.
func Process(a *Annotated[Value], v Visitor, opts ...ProcessOpt) error {
	var o ProcessOpt
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	p := &processor{log: o.Logger}
	if p.log == nil {
		p.log = zap.NewNop()
	}
	if c, ok := v.(Chain); ok {
		p.visitors = c
	} else {
		p.visitors = []Visitor{v}
	}
	return p.walk(a, &State{})
}

func (p *processor) walk(a *Annotated[Value], st *State) error {
	if !a.Present() {
		return nil
	}
	for _, vis := range p.visitors {
		res := vis.Visit(a, st)
		if res == nil {
			continue
		}
		var act *ProcessingAction
		if !errors.As(res, &act) {
			return fmt.Errorf("goshadow: processing %s: %w", st.Path().Pointer(), res)
		}
		p.apply(a, act, st)
		if !a.Present() {
			return nil
		}
	}

	v := a.Get()
	switch v.Kind() {
	case KindObject:
		for k, child := range v.obj.All() {
			if err := p.walk(child, st.enterKey(k)); err != nil {
				return err
			}
		}
	case KindArray:
		for i := range v.arr {
			if err := p.walk(&v.arr[i], st.enterIndex(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *processor) apply(a *Annotated[Value], act *ProcessingAction, st *State) {
	if ce := p.log.Check(zap.DebugLevel, "apply processing action"); ce != nil {
		ce.Write(
			zap.String("path", st.Path().Pointer()),
			zap.Stringer("action", act.kind),
			zap.String("rule", act.rule),
		)
	}
	m := a.Meta()
	if act.err != nil {
		m.AddError(*act.err)
	}
	switch act.kind {
	case ActionKeep:
		return
	case ActionDeleteHard:
		a.Clear()
		m.clearProvenance()
	case ActionDeleteSoft:
		old, _ := a.Take()
		m.SetOriginalValue(old)
	case ActionInsertValue:
		a.Set(act.value)
	case ActionRewriteString:
		if old, ok := a.Get().AsString(); ok {
			m.SetOriginalLength(utf8.RuneCountInString(old))
		}
		a.Set(act.value)
		if len(act.ranges) > 0 {
			for _, r := range act.ranges {
				m.AddRemark(NewRangeRemark(act.remark, act.rule, r.Start, r.End))
			}
			return
		}
	}
	m.AddRemark(NewRemark(act.remark, act.rule))
}

// ProcessTyped converts a to a Value tree, processes it and converts it back.
// Meta recorded during processing survives the round trip.
func ProcessTyped[T any](a Annotated[T], c Codec[T], v Visitor, opts ...ProcessOpt) (Annotated[T], error) {
	av := IntoAnnotated(a, c)
	err := Process(&av, v, opts...)
	return c.FromValue(av), err
}

package rules

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	g "github.com/reoring/goshadow"
	"golang.org/x/text/unicode/norm"
)

// Method is what a rule does to the values it selects.
type Method string

const (
	MethodRemove       Method = "remove"
	MethodMask         Method = "mask"
	MethodHash         Method = "hash"
	MethodPseudonymize Method = "pseudonymize"
	MethodTruncate     Method = "truncate"
	MethodReplace      Method = "replace"
	MethodNormalize    Method = "normalize"
)

var _methods = []Method{MethodRemove, MethodMask, MethodHash, MethodPseudonymize, MethodTruncate, MethodReplace, MethodNormalize}

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	for _, m := range _methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("rules: unknown method %q", s)
}

// DefaultReplacement is written by replace rules without a replacement.
const DefaultReplacement = "[Filtered]"

// MaskChar fills masked spans.
const MaskChar = '*'

// Rule selects nodes and rewrites them with one method. Methods other than
// remove and replace act on strings only; with a Pattern they rewrite the
// matching spans, otherwise the whole string.
type Rule struct {
	ID       string
	Selector Selector
	Method   Method
	Pattern  *Pattern

	// Replacement is the text written by replace.
	Replacement string
	// MaxChars bounds truncate, in runes.
	MaxChars int
	// Key keys the HMAC of hash and the UUID namespace of pseudonymize.
	Key string
	// Form is the Unicode normalization form: NFC (default), NFD, NFKC, NFKD.
	Form string
	// Soft makes remove keep the removed value as original value.
	Soft bool
	// When restricts the rule to documents satisfying the condition.
	When *Condition
}

func (r *Rule) validate() error {
	if r.ID == "" {
		return errors.New("rules: rule without id")
	}
	if _, err := ParseMethod(string(r.Method)); err != nil {
		return fmt.Errorf("%w (rule %s)", err, r.ID)
	}
	if r.Method == MethodTruncate && r.MaxChars <= 0 {
		return fmt.Errorf("rules: truncate needs max_chars > 0 (rule %s)", r.ID)
	}
	if r.Method == MethodNormalize {
		if _, err := normForm(r.Form); err != nil {
			return fmt.Errorf("%w (rule %s)", err, r.ID)
		}
	}
	return nil
}

// Visit returns the action of r for node, or nil when r does not apply.
func (r *Rule) Visit(node *g.Annotated[g.Value], st *g.State) g.ProcessingResult {
	if !r.Selector.Match(st.Path()) {
		return nil
	}
	if act := r.action(node.Get()); act != nil {
		return act
	}
	return nil
}

func (r *Rule) action(v g.Value) *g.ProcessingAction {
	s, isString := v.AsString()
	switch r.Method {
	case MethodRemove:
		if r.Pattern != nil && (!isString || len(r.Pattern.find(s)) == 0) {
			return nil
		}
		if r.Soft {
			return g.DeleteValueSoft(r.ID)
		}
		return g.DeleteValueHard(r.ID)
	case MethodReplace:
		if !isString && r.Pattern == nil {
			return g.InsertValue(r.ID, g.String(r.replacement()))
		}
	}
	if !isString {
		return nil
	}
	switch r.Method {
	case MethodTruncate:
		if utf8.RuneCountInString(s) <= r.MaxChars {
			return nil
		}
		return g.TruncateString(r.ID, s, r.MaxChars)
	case MethodNormalize:
		f, _ := normForm(r.Form)
		if n := f.String(s); n != s {
			return g.RewriteString(r.ID, g.RemarkReplaced, n)
		}
		return nil
	}

	var ty g.RemarkType
	var sub func(string) string
	switch r.Method {
	case MethodMask:
		ty, sub = g.RemarkMasked, func(t string) string {
			return strings.Repeat(string(MaskChar), utf8.RuneCountInString(t))
		}
	case MethodHash:
		ty, sub = g.RemarkHashed, r.hash
	case MethodPseudonymize:
		ty, sub = g.RemarkPseudonymized, r.pseudonym
	case MethodReplace:
		ty, sub = g.RemarkSubstituted, func(string) string { return r.replacement() }
	default:
		return nil
	}
	if r.Pattern == nil {
		out := sub(s)
		if out == s {
			return nil
		}
		return g.RewriteString(r.ID, ty, out)
	}
	spans := r.Pattern.find(s)
	if len(spans) == 0 {
		return nil
	}
	out, ranges := rewriteSpans(s, spans, sub)
	return g.RewriteString(r.ID, ty, out, ranges...)
}

// rewriteSpans substitutes each byte span and reports the rune ranges the
// substitutes occupy in the result.
func rewriteSpans(s string, spans [][2]int, sub func(string) string) (string, []g.Range) {
	b := &strings.Builder{}
	ranges := make([]g.Range, 0, len(spans))
	last, pos := 0, 0
	for _, sp := range spans {
		head := s[last:sp[0]]
		b.WriteString(head)
		pos += utf8.RuneCountInString(head)
		rep := sub(s[sp[0]:sp[1]])
		b.WriteString(rep)
		n := utf8.RuneCountInString(rep)
		ranges = append(ranges, g.Range{Start: pos, End: pos + n})
		pos += n
		last = sp[1]
	}
	b.WriteString(s[last:])
	return b.String(), ranges
}

func (r *Rule) replacement() string {
	if r.Replacement == "" {
		return DefaultReplacement
	}
	return r.Replacement
}

func (r *Rule) hash(t string) string {
	if r.Key == "" {
		sum := sha256.Sum256([]byte(t))
		return strings.ToUpper(hex.EncodeToString(sum[:]))
	}
	m := hmac.New(sha256.New, []byte(r.Key))
	m.Write([]byte(t))
	return strings.ToUpper(hex.EncodeToString(m.Sum(nil)))
}

func (r *Rule) pseudonym(t string) string {
	ns := uuid.NameSpaceOID
	if r.Key != "" {
		ns = uuid.NewSHA1(uuid.NameSpaceOID, []byte(r.Key))
	}
	return uuid.NewSHA1(ns, []byte(t)).String()
}

func normForm(s string) (norm.Form, error) {
	switch strings.ToUpper(s) {
	case "", "NFC":
		return norm.NFC, nil
	case "NFD":
		return norm.NFD, nil
	case "NFKC":
		return norm.NFKC, nil
	case "NFKD":
		return norm.NFKD, nil
	}
	return norm.NFC, fmt.Errorf("rules: unknown normalization form %q", s)
}

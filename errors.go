package goshadow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/goshadow/i18n"
)

// ErrorKind classifies an Error. The listed kinds are known to the core; any
// other string is a custom kind carried verbatim.
type ErrorKind string

const (
	ErrMissingField   ErrorKind = "missing_field"
	ErrInvalidType    ErrorKind = "invalid_type"
	ErrInvalidValue   ErrorKind = "invalid_value"
	ErrValueTooLong   ErrorKind = "value_too_long"
	ErrUnknownVariant ErrorKind = "unknown_variant"
)

// CustomErrorKind returns a kind carrying a free-form description.
func CustomErrorKind(desc string) ErrorKind { return ErrorKind(desc) }

// ParseErrorKind maps a wire code to a kind. Unknown codes become custom kinds.
func ParseErrorKind(s string) ErrorKind { return ErrorKind(s) }

// IsCustom reports whether k is not one of the core kinds.
func (k ErrorKind) IsCustom() bool {
	switch k {
	case ErrMissingField, ErrInvalidType, ErrInvalidValue, ErrValueTooLong, ErrUnknownVariant:
		return false
	}
	return true
}

func (k ErrorKind) String() string { return string(k) }

// Error is a machine-inspectable error recorded on a node's Meta. Data holds
// structured context such as the expected type or the rejected value.
type Error struct {
	kind ErrorKind
	data *Object[Value]
}

// NewError returns an error of the given kind without data.
func NewError(kind ErrorKind) Error { return Error{kind: kind} }

// MissingField reports a required field that was absent or null.
func MissingField() Error { return NewError(ErrMissingField) }

// InvalidType reports a value of the wrong shape.
func InvalidType(expected string, got Value) Error {
	return NewError(ErrInvalidType).
		With("expected", String(expected)).
		With("got", String(got.Kind().String()))
}

// InvalidValue reports a structurally valid value that is semantically wrong.
func InvalidValue(reason string) Error {
	return NewError(ErrInvalidValue).With("reason", String(reason))
}

// ValueTooLong reports a value exceeding max runes or items.
func ValueTooLong(max int) Error {
	return NewError(ErrValueTooLong).With("max", I64(int64(max)))
}

// UnknownVariant reports an enumeration value outside the allowed set.
func UnknownVariant(got string, allowed []string) Error {
	return NewError(ErrUnknownVariant).
		With("got", String(got)).
		With("allowed", String(strings.Join(allowed, ",")))
}

// Kind returns the error kind.
func (e Error) Kind() ErrorKind { return e.kind }

// Data returns the structured context. It may be nil.
func (e Error) Data() *Object[Value] { return e.data }

// Get returns one data entry.
func (e Error) Get(key string) (Value, bool) {
	a, ok := e.data.Get(key)
	if !ok {
		return Value{}, false
	}
	return a.Value()
}

// With returns a copy of e with key set to v. The receiver is not modified.
func (e Error) With(key string, v Value) Error {
	data := e.data.Clone()
	data.Insert(key, New(v))
	e.data = data
	return e
}

// Error renders a localized message, e.g. "invalid type (expected: a string)".
func (e Error) Error() string {
	params := map[string]string{}
	for k, a := range e.data.All() {
		if v, ok := a.Value(); ok {
			params[k] = scalarText(v)
		}
	}
	msg := i18n.T(string(e.kind), params)
	if e.data.Len() == 0 {
		return msg
	}
	parts := make([]string, 0, e.data.Len())
	for _, k := range e.data.Keys() {
		parts = append(parts, k+": "+params[k])
	}
	return fmt.Sprintf("%s (%s)", msg, strings.Join(parts, ", "))
}

func scalarText(v Value) string {
	switch v.kind {
	case KindString:
		return v.s
	case KindNull:
		return "null"
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return v.Describe()
		}
		return string(b)
	}
}

// Issue is a flattened view of one recorded Error, addressed by JSON Pointer.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /items/2/price).
	Code    string `json:"code"` // Error kind code.
	Message string `json:"message"`
	// Params carries the error data rendered as text for i18n and logs.
	Params map[string]string `json:"params,omitempty"`
}

// Issues is a collection of recorded errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /path
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func issueAt(p Path, e Error) Issue {
	params := map[string]string{}
	for k, a := range e.data.All() {
		if v, ok := a.Value(); ok {
			params[k] = scalarText(v)
		}
	}
	return Issue{Path: p.Pointer(), Code: string(e.kind), Message: i18n.T(string(e.kind), params), Params: params}
}

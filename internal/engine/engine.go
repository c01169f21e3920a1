package engine

import (
	"fmt"
	"io"
)

// Kind represents token kinds produced by a TokenSource.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
	// KindUnsupported is a scalar the source could not map to a JSON type,
	// for example a YAML node with an application specific tag. String holds
	// the raw text and Tag the source's type name.
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "begin_object"
	case KindEndObject:
		return "end_object"
	case KindBeginArray:
		return "begin_array"
	case KindEndArray:
		return "end_array"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string // number literal text, kept verbatim
	Bool   bool
	Tag    string
	Offset int64 // -1 when unknown
}

// IsScalar reports whether the token is a complete value on its own.
func (t Token) IsScalar() bool {
	switch t.Kind {
	case KindString, KindNumber, KindBool, KindNull, KindUnsupported:
		return true
	}
	return false
}

// TokenSource is a minimal interface required by the engine. NextToken
// returns io.EOF after the last token of the document.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// SliceSource replays a fixed token list. Sources that must see the whole
// document before emitting (YAML) build one of these.
type SliceSource struct {
	toks []Token
	pos  int
}

// NewSliceSource returns a TokenSource over toks.
func NewSliceSource(toks []Token) *SliceSource { return &SliceSource{toks: toks} }

func (s *SliceSource) NextToken() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, io.EOF
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func (s *SliceSource) Location() int64 {
	if s.pos == 0 || s.pos > len(s.toks) {
		return -1
	}
	return s.toks[s.pos-1].Offset
}

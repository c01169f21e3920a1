// Package json turns JSON text into engine tokens using goccy/go-json.
package json

import (
	"bytes"
	"errors"
	"io"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/goshadow/internal/engine"
)

type frame struct {
	isObject     bool
	expectingKey bool
}

type source struct {
	dec        *j.Decoder
	stack      []frame
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return eng.Token{}, io.EOF
		}
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{isObject: true, expectingKey: true})
			return s.token(eng.KindBeginObject), nil
		case '}':
			s.pop()
			return s.token(eng.KindEndObject), nil
		case '[':
			s.stack = append(s.stack, frame{})
			return s.token(eng.KindBeginArray), nil
		case ']':
			s.pop()
			return s.token(eng.KindEndArray), nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.isObject && top.expectingKey {
				top.expectingKey = false
				t := s.token(eng.KindKey)
				t.String = v
				return t, nil
			}
		}
		s.valueDone()
		t := s.token(eng.KindString)
		t.String = v
		return t, nil
	case bool:
		s.valueDone()
		t := s.token(eng.KindBool)
		t.Bool = v
		return t, nil
	case j.Number:
		s.valueDone()
		t := s.token(eng.KindNumber)
		t.Number = string(v)
		return t, nil
	case nil:
		s.valueDone()
		return s.token(eng.KindNull), nil
	}
	s.valueDone()
	return s.token(eng.KindNull), nil
}

func (s *source) token(k eng.Kind) eng.Token { return eng.Token{Kind: k, Offset: s.lastOffset} }

// pop closes a container, which completes a value in the parent.
func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *source) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.isObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *source) Location() int64 { return s.lastOffset }

// Package yaml turns YAML documents into engine tokens using gopkg.in/yaml.v3.
//
// Mapping order is preserved and aliases are expanded. Scalars are typed by
// their resolved tag; timestamps and binary scalars stay strings, and scalars
// with an application specific tag become unsupported tokens.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	yv3 "gopkg.in/yaml.v3"

	eng "github.com/reoring/goshadow/internal/engine"
)

// NewBytes parses the first document in b. Syntax errors are reported by the
// first call to NextToken.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

// NewReader parses the first document read from r.
func NewReader(r io.Reader) eng.TokenSource {
	var doc yv3.Node
	if err := yv3.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			// an empty stream is a null document
			return eng.NewSliceSource([]eng.Token{{Kind: eng.KindNull, Offset: -1}})
		}
		return &failed{err: err}
	}
	var e emitter
	if err := e.node(&doc); err != nil {
		return &failed{err: err}
	}
	return eng.NewSliceSource(e.toks)
}

type failed struct{ err error }

func (f *failed) NextToken() (eng.Token, error) { return eng.Token{}, f.err }
func (f *failed) Location() int64              { return -1 }

type emitter struct {
	toks    []eng.Token
	aliases []*yv3.Node
}

func (e *emitter) emit(t eng.Token) {
	t.Offset = -1
	e.toks = append(e.toks, t)
}

func (e *emitter) node(n *yv3.Node) error {
	switch n.Kind {
	case yv3.DocumentNode:
		if len(n.Content) == 0 {
			e.emit(eng.Token{Kind: eng.KindNull})
			return nil
		}
		return e.node(n.Content[0])
	case yv3.MappingNode:
		e.emit(eng.Token{Kind: eng.KindBeginObject})
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := keyText(resolveAlias(n.Content[i]))
			if err != nil {
				return fmt.Errorf("line %d: %w", n.Content[i].Line, err)
			}
			e.emit(eng.Token{Kind: eng.KindKey, String: k})
			if err := e.node(n.Content[i+1]); err != nil {
				return err
			}
		}
		e.emit(eng.Token{Kind: eng.KindEndObject})
	case yv3.SequenceNode:
		e.emit(eng.Token{Kind: eng.KindBeginArray})
		for _, c := range n.Content {
			if err := e.node(c); err != nil {
				return err
			}
		}
		e.emit(eng.Token{Kind: eng.KindEndArray})
	case yv3.AliasNode:
		for _, a := range e.aliases {
			if a == n.Alias {
				return fmt.Errorf("line %d: alias %q refers to itself", n.Line, n.Value)
			}
		}
		e.aliases = append(e.aliases, n.Alias)
		err := e.node(n.Alias)
		e.aliases = e.aliases[:len(e.aliases)-1]
		return err
	case yv3.ScalarNode:
		return e.scalar(n)
	default:
		return fmt.Errorf("line %d: unexpected yaml node kind %d", n.Line, n.Kind)
	}
	return nil
}

func (e *emitter) scalar(n *yv3.Node) error {
	switch n.ShortTag() {
	case "!!null":
		e.emit(eng.Token{Kind: eng.KindNull})
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		e.emit(eng.Token{Kind: eng.KindBool, Bool: b})
	case "!!int":
		e.emit(eng.Token{Kind: eng.KindNumber, Number: intText(n)})
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		e.emit(eng.Token{Kind: eng.KindNumber, Number: floatText(f)})
	case "!!str", "!!timestamp", "!!binary":
		e.emit(eng.Token{Kind: eng.KindString, String: n.Value})
	default:
		e.emit(eng.Token{Kind: eng.KindUnsupported, String: n.Value, Tag: n.Tag})
	}
	return nil
}

// intText normalizes YAML integer spellings (0x, 0o, underscores) to
// decimal. Integers beyond 64 bits fall back to a float.
func intText(n *yv3.Node) string {
	var i int64
	if err := n.Decode(&i); err == nil {
		return strconv.FormatInt(i, 10)
	}
	var u uint64
	if err := n.Decode(&u); err == nil {
		return strconv.FormatUint(u, 10)
	}
	var f float64
	if err := n.Decode(&f); err == nil {
		return floatText(f)
	}
	return n.Value
}

// floatText keeps a fraction or exponent so the value stays a float.
func floatText(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func resolveAlias(n *yv3.Node) *yv3.Node {
	for n.Kind == yv3.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

// keyText stringifies scalar keys. Collection keys are rejected.
func keyText(n *yv3.Node) (string, error) {
	if n.Kind != yv3.ScalarNode {
		return "", errors.New("mapping keys must be scalars")
	}
	if n.ShortTag() == "!!null" {
		return "null", nil
	}
	return n.Value, nil
}

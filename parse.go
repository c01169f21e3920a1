package goshadow

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	eng "github.com/reoring/goshadow/internal/engine"
)

// Parse error codes.
const (
	CodeSyntax       = "syntax_error"
	CodeMaxDepth     = eng.CodeMaxDepth
	CodeTruncated    = eng.CodeTruncated
	CodeDuplicateKey = "duplicate_key"
	CodeTrailingData = "trailing_data"
)

// ParseError reports input that could not be turned into a Value at all:
// malformed syntax or an exceeded limit. Semantic problems never produce a
// ParseError; they are recorded on the affected node's Meta instead.
type ParseError struct {
	Code   string
	Path   string // JSON Pointer of the offending node, "" when unknown
	Offset int64  // byte offset, -1 when unknown
	Err    error
}

func (e *ParseError) Error() string {
	b := &strings.Builder{}
	b.WriteString("goshadow: ")
	b.WriteString(e.Code)
	if e.Path != "" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(b, " (offset %d)", e.Offset)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

func lastParseOpt(opts []ParseOpt) ParseOpt {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	return opt
}

// ParseJSON parses a JSON document. A JSON null yields a present null.
func ParseJSON(data []byte, opts ...ParseOpt) (Annotated[Value], error) {
	opt := lastParseOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return Annotated[Value]{}, &ParseError{Code: CodeTruncated, Path: "/", Offset: opt.MaxBytes, Err: errors.New("max bytes exceeded")}
	}
	return ParseFrom(JSONBytes(data), opt)
}

// ParseJSONReader parses a JSON document from r. With MaxBytes set, the
// input is read up to the cap first.
func ParseJSONReader(r io.Reader, opts ...ParseOpt) (Annotated[Value], error) {
	opt := lastParseOpt(opts)
	if opt.MaxBytes > 0 {
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return Annotated[Value]{}, &ParseError{Code: CodeSyntax, Offset: -1, Err: err}
		}
		return ParseJSON(data, opt)
	}
	return ParseFrom(JSONReader(r), opt)
}

// ParseYAML parses the first YAML document in data.
func ParseYAML(data []byte, opts ...ParseOpt) (Annotated[Value], error) {
	opt := lastParseOpt(opts)
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return Annotated[Value]{}, &ParseError{Code: CodeTruncated, Path: "/", Offset: opt.MaxBytes, Err: errors.New("max bytes exceeded")}
	}
	return ParseFrom(YAMLBytes(data), opt)
}

// ParseFrom consumes src and builds the annotated Value tree. Only malformed
// syntax, exceeded limits and duplicate keys under SeverityError fail; every
// other anomaly becomes Meta on the node it concerns.
func ParseFrom(src Source, opts ...ParseOpt) (Annotated[Value], error) {
	opt := lastParseOpt(opts)
	if src.inner == nil {
		return Annotated[Value]{}, &ParseError{Code: CodeSyntax, Offset: -1, Err: errors.New("empty source")}
	}
	b := &builder{
		src: eng.WrapWithEnforcement(src.inner, eng.EnforceOptions{MaxDepth: opt.MaxDepth, MaxBytes: opt.MaxBytes}),
		opt: opt,
	}
	tok, err := b.next(nil)
	if err != nil {
		return Annotated[Value]{}, err
	}
	root, err := b.value(tok, nil)
	if err != nil {
		return Annotated[Value]{}, err
	}
	if _, err := b.src.NextToken(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after the document")
		}
		return Annotated[Value]{}, &ParseError{Code: CodeTrailingData, Offset: b.src.Location(), Err: err}
	}
	return root, nil
}

type builder struct {
	src eng.TokenSource
	opt ParseOpt
}

func (b *builder) next(p Path) (eng.Token, error) {
	tok, err := b.src.NextToken()
	if err == nil {
		return tok, nil
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return tok, &ParseError{Code: ie.Code, Path: ie.Path, Offset: b.src.Location(), Err: errors.New(ie.Message)}
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return tok, &ParseError{Code: CodeSyntax, Path: p.Pointer(), Offset: b.src.Location(), Err: err}
}

func (b *builder) value(tok eng.Token, p Path) (Annotated[Value], error) {
	switch tok.Kind {
	case eng.KindBeginObject:
		return b.object(p)
	case eng.KindBeginArray:
		return b.array(p)
	case eng.KindString:
		return New(String(tok.String)), nil
	case eng.KindBool:
		return New(Bool(tok.Bool)), nil
	case eng.KindNull:
		return New(Null()), nil
	case eng.KindNumber:
		return b.number(tok.Number), nil
	case eng.KindUnsupported:
		raw := String(tok.String)
		return FromError[Value](InvalidValue("unsupported value").With("tag", String(tok.Tag)), &raw), nil
	default:
		return Annotated[Value]{}, &ParseError{Code: CodeSyntax, Path: p.Pointer(), Offset: tok.Offset, Err: fmt.Errorf("unexpected %s token", tok.Kind)}
	}
}

func (b *builder) object(p Path) (Annotated[Value], error) {
	obj := NewObject[Value]()
	var dups []string
	for {
		tok, err := b.next(p)
		if err != nil {
			return Annotated[Value]{}, err
		}
		if tok.Kind == eng.KindEndObject {
			break
		}
		if tok.Kind != eng.KindKey {
			return Annotated[Value]{}, &ParseError{Code: CodeSyntax, Path: p.Pointer(), Offset: tok.Offset, Err: fmt.Errorf("expected key, got %s", tok.Kind)}
		}
		key := tok.String
		cp := p.Field(key)
		if obj.Has(key) {
			switch b.opt.Strictness.OnDuplicateKey {
			case SeverityError:
				return Annotated[Value]{}, &ParseError{Code: CodeDuplicateKey, Path: cp.Pointer(), Offset: tok.Offset, Err: fmt.Errorf("key %q duplicated", key)}
			case SeverityWarn:
				dups = append(dups, key)
			}
		}
		vt, err := b.next(cp)
		if err != nil {
			return Annotated[Value]{}, err
		}
		child, err := b.value(vt, cp)
		if err != nil {
			return Annotated[Value]{}, err
		}
		obj.Insert(key, child)
	}
	out := New(ObjectValue(obj))
	for _, k := range dups {
		out.meta.AddError(InvalidValue("duplicate key").With("key", String(k)))
	}
	return out, nil
}

func (b *builder) array(p Path) (Annotated[Value], error) {
	arr := Array[Value]{}
	for {
		tok, err := b.next(p)
		if err != nil {
			return Annotated[Value]{}, err
		}
		if tok.Kind == eng.KindEndArray {
			return New(ArrayValue(arr)), nil
		}
		child, err := b.value(tok, p.Index(len(arr)))
		if err != nil {
			return Annotated[Value]{}, err
		}
		arr = append(arr, child)
	}
}

// number keeps integers exact: signed when it fits, then unsigned, and only
// then float. Literals with a fraction or exponent are always floats.
func (b *builder) number(text string) Annotated[Value] {
	if !strings.ContainsAny(text, ".eEnN") {
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return New(I64(i))
		}
		if u, err := strconv.ParseUint(text, 10, 64); err == nil {
			return New(U64(u))
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		raw := String(text)
		return FromError[Value](InvalidValue("malformed number"), &raw)
	}
	if (math.IsNaN(f) || math.IsInf(f, 0)) && !b.opt.Strictness.AllowNaN {
		raw := String(text)
		return FromError[Value](InvalidValue("non-finite number"), &raw)
	}
	return New(F64(f))
}

// Parse reads JSON or YAML, detected from the first non-blank byte: '{' or
// '[' or '"' selects JSON, anything else YAML.
func Parse(data []byte, opts ...ParseOpt) (Annotated[Value], error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[' || trimmed[0] == '"') {
		return ParseJSON(data, opts...)
	}
	return ParseYAML(data, opts...)
}

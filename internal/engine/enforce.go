package engine

import (
	"strconv"
	"strings"
)

// EnforceOptions controls runtime enforcement behavior. Zero values disable
// the corresponding check.
type EnforceOptions struct {
	MaxDepth int
	MaxBytes int64
}

// Enabled reports whether any check is active.
func (o EnforceOptions) Enabled() bool { return o.MaxDepth > 0 || o.MaxBytes > 0 }

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message + " at " + e.SimpleIssue.Path }

const (
	CodeMaxDepth  = "max_depth"
	CodeTruncated = "truncated"
)

// WrapWithEnforcement returns a TokenSource that enforces maximum nesting
// depth and maximum consumed bytes. Paths in issues are JSON Pointers.
func WrapWithEnforcement(inner TokenSource, opt EnforceOptions) TokenSource {
	if !opt.Enabled() {
		return inner
	}
	return &enforcingTokenSource{inner: inner, opt: opt}
}

type frame struct {
	isArray    bool
	path       string
	nextIndex  int
	pendingKey string
}

type enforcingTokenSource struct {
	inner TokenSource
	opt   EnforceOptions
	stack []frame
}

func (e *enforcingTokenSource) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	path := e.pathForToken(tok)
	switch tok.Kind {
	case KindBeginObject, KindBeginArray:
		e.stack = append(e.stack, frame{isArray: tok.Kind == KindBeginArray, path: path})
		if e.opt.MaxDepth > 0 && len(e.stack) > e.opt.MaxDepth {
			return Token{}, IssueError{SimpleIssue{Code: CodeMaxDepth, Path: normalizeIssuePath(path), Message: "max depth exceeded"}}
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	}

	if e.opt.MaxBytes > 0 {
		if off := e.Location(); off > e.opt.MaxBytes {
			return Token{}, IssueError{SimpleIssue{Code: CodeTruncated, Path: normalizeIssuePath(path), Message: "max bytes exceeded"}}
		}
	}
	return tok, nil
}

// pathForToken returns the pointer of the value a token starts (or the
// container it closes) and advances array indices.
func (e *enforcingTokenSource) pathForToken(tok Token) string {
	if len(e.stack) == 0 {
		return ""
	}
	top := &e.stack[len(e.stack)-1]
	switch {
	case tok.Kind == KindKey:
		top.pendingKey = tok.String
		return joinJSONPointer(top.path, tok.String)
	case tok.Kind == KindEndObject || tok.Kind == KindEndArray:
		return top.path
	case top.isArray:
		p := joinJSONPointer(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	default:
		return joinJSONPointer(top.path, top.pendingKey)
	}
}

func normalizeIssuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinJSONPointer(base, token string) string {
	return base + "/" + jsonPointerEscaper.Replace(token)
}

func (e *enforcingTokenSource) Location() int64 { return e.inner.Location() }

// Package middleware annotates JSON request bodies at an HTTP boundary. The
// parsed, validated and scrubbed document is stored in the request context;
// handlers read it back with DocumentFromContext.
package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	g "github.com/reoring/goshadow"
	"github.com/reoring/goshadow/rules"
)

// DefaultMaxBytes caps request bodies when Config.MaxBytes is zero.
const DefaultMaxBytes = 1 << 20

type ctxKeyDocument struct{}

// ContextWithDocument attaches an annotated document to ctx.
func ContextWithDocument(ctx context.Context, doc g.Annotated[g.Value]) context.Context {
	return context.WithValue(ctx, ctxKeyDocument{}, doc)
}

// DocumentFromContext retrieves the document stored by Annotate.
func DocumentFromContext(ctx context.Context) (g.Annotated[g.Value], bool) {
	doc, ok := ctx.Value(ctxKeyDocument{}).(g.Annotated[g.Value])
	return doc, ok
}

// DefaultParseOpt returns a recommended default for HTTP JSON boundaries:
// duplicate keys are errors.
func DefaultParseOpt() g.ParseOpt {
	return g.ParseOpt{
		Strictness: g.Strictness{OnDuplicateKey: g.SeverityError},
		MaxBytes:   DefaultMaxBytes,
	}
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues g.Issues) map[string]any {
	if issues == nil {
		issues = g.Issues{}
	}
	return map[string]any{"issues": issues}
}

// Config selects what Annotate does with a request body.
type Config struct {
	// Schema converts the parsed document; nil keeps it as parsed.
	Schema g.Codec[g.Value]
	// Rules run after Schema; nil skips scrubbing.
	Rules *rules.Set
	// ParseOpt defaults to DefaultParseOpt when zero.
	ParseOpt *g.ParseOpt
	// RejectIssues answers 422 with the issues instead of calling the next
	// handler when the document carries any error.
	RejectIssues bool
	Logger       *zap.Logger
}

// Annotate returns a middleware that parses the JSON request body into an
// annotated document. Parse failures answer 400, oversized bodies 413.
func Annotate(cfg Config) func(http.Handler) http.Handler {
	opt := DefaultParseOpt()
	if cfg.ParseOpt != nil {
		opt = *cfg.ParseOpt
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			doc, err := g.ParseJSONReader(r.Body, opt)
			if err != nil {
				status := http.StatusBadRequest
				var pe *g.ParseError
				if errors.As(err, &pe) && pe.Code == g.CodeTruncated {
					status = http.StatusRequestEntityTooLarge
				}
				log.Debug("request body rejected", zap.String("path", r.URL.Path), zap.Error(err))
				WriteJSON(w, status, map[string]any{"error": err.Error()})
				return
			}
			if cfg.Schema != nil {
				doc = g.IntoAnnotated(cfg.Schema.FromValue(doc), cfg.Schema)
			}
			if cfg.Rules != nil {
				if err := cfg.Rules.Apply(&doc, g.ProcessOpt{Logger: log}); err != nil {
					log.Error("rules failed", zap.String("path", r.URL.Path), zap.Error(err))
					WriteJSON(w, http.StatusInternalServerError, map[string]any{"error": "processing failed"})
					return
				}
			}
			if cfg.RejectIssues {
				if iss := g.ExtractMeta(doc).Issues(); len(iss) > 0 {
					WriteJSON(w, http.StatusUnprocessableEntity, ErrorPayload(iss))
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDocument(r.Context(), doc)))
		})
	}
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteDocument writes doc as its combined JSON form.
func WriteDocument(w io.Writer, doc g.Annotated[g.Value]) error {
	b, err := g.Serializable(doc).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

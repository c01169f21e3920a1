package kubeopenapi

import "fmt"

// UnknownBehavior configures how unknown fields are treated when the schema
// does not say.
type UnknownBehavior int

const (
	UnknownPrune UnknownBehavior = iota
	UnknownStrict
	UnknownPreserve
)

// Options controls import behavior for Kubernetes OpenAPI v3 schemas.
type Options struct {
	// Unknown applies to objects without additionalProperties or
	// x-kubernetes-preserve-unknown-fields.
	Unknown UnknownBehavior
	// TruncateStrings cuts strings above maxLength instead of rejecting them.
	TruncateStrings bool
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

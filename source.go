package goshadow

import (
	"io"

	eng "github.com/reoring/goshadow/internal/engine"
	jsonsrc "github.com/reoring/goshadow/source/json"
	yamlsrc "github.com/reoring/goshadow/source/yaml"
)

// Source is a tokenized input document ready for ParseFrom.
type Source struct {
	inner  eng.TokenSource
	format string
}

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return Source{inner: jsonsrc.NewBytes(b), format: "json"} }

// JSONReader wraps an io.Reader as a JSON Source. Tokens are read lazily.
func JSONReader(r io.Reader) Source { return Source{inner: jsonsrc.NewReader(r), format: "json"} }

// YAMLBytes wraps the first YAML document in b as a Source.
func YAMLBytes(b []byte) Source { return Source{inner: yamlsrc.NewBytes(b), format: "yaml"} }

// YAMLReader wraps the first YAML document read from r as a Source.
func YAMLReader(r io.Reader) Source { return Source{inner: yamlsrc.NewReader(r), format: "yaml"} }

// Format names the input syntax ("json" or "yaml").
func (s Source) Format() string { return s.format }

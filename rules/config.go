package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	g "github.com/reoring/goshadow"
	yv3 "gopkg.in/yaml.v3"
)

// Config is the file form of a rule set.
//
// TOML:
//
//	[[rule]]
//	id = "emails"
//	selector = "**"
//	method = "mask"
//	pattern = "@email"
//
// YAML:
//
//	rules:
//	  - id: password
//	    selector: user.password
//	    method: remove
type Config struct {
	Rules []RuleConfig `toml:"rule" yaml:"rules"`
}

// RuleConfig is one rule of a Config. See Rule for the meaning of the fields.
type RuleConfig struct {
	ID          string       `toml:"id" yaml:"id"`
	Selector    string       `toml:"selector" yaml:"selector"`
	Method      string       `toml:"method" yaml:"method"`
	Pattern     string       `toml:"pattern" yaml:"pattern"`
	Replacement string       `toml:"replacement" yaml:"replacement"`
	MaxChars    int          `toml:"max_chars" yaml:"max_chars"`
	Key         string       `toml:"key" yaml:"key"`
	Form        string       `toml:"form" yaml:"form"`
	Soft        bool         `toml:"soft" yaml:"soft"`
	When        []WhenConfig `toml:"when" yaml:"when"`
}

// WhenConfig is one condition; all conditions of a rule must hold.
type WhenConfig struct {
	Path  string `toml:"path" yaml:"path"`
	Op    string `toml:"op" yaml:"op"`
	Value any    `toml:"value" yaml:"value"`
}

// Build compiles c into a Set.
func (c Config) Build() (*Set, error) {
	out := make([]*Rule, 0, len(c.Rules))
	for i, rc := range c.Rules {
		r, err := rc.rule()
		if err != nil {
			return nil, fmt.Errorf("rules: rule %d: %w", i, err)
		}
		out = append(out, r)
	}
	return NewSet(out...)
}

func (rc RuleConfig) rule() (*Rule, error) {
	sel, err := ParseSelector(rc.Selector)
	if err != nil {
		return nil, err
	}
	m, err := ParseMethod(rc.Method)
	if err != nil {
		return nil, err
	}
	pat, err := CompilePattern(rc.Pattern)
	if err != nil {
		return nil, err
	}
	r := &Rule{
		ID:          rc.ID,
		Selector:    sel,
		Method:      m,
		Pattern:     pat,
		Replacement: rc.Replacement,
		MaxChars:    rc.MaxChars,
		Key:         rc.Key,
		Form:        rc.Form,
		Soft:        rc.Soft,
	}
	if len(rc.When) > 0 {
		conds := make([]Condition, 0, len(rc.When))
		for _, w := range rc.When {
			op, err := ParseOp(w.Op)
			if err != nil {
				return nil, err
			}
			want, err := valueOf(w.Value)
			if err != nil {
				return nil, fmt.Errorf("when %s: %w", w.Path, err)
			}
			conds = append(conds, If(w.Path, op, want))
		}
		c := IfAll(conds...)
		r.When = &c
	}
	return r, nil
}

// valueOf converts a decoded scalar from TOML or YAML.
func valueOf(x any) (g.Value, error) {
	switch v := x.(type) {
	case nil:
		return g.Null(), nil
	case bool:
		return g.Bool(v), nil
	case int:
		return g.I64(int64(v)), nil
	case int64:
		return g.I64(v), nil
	case uint64:
		return g.U64(v), nil
	case float64:
		return g.F64(v), nil
	case string:
		return g.String(v), nil
	}
	return g.Null(), fmt.Errorf("unsupported condition value %T", x)
}

// LoadTOML decodes a TOML rule file. Unknown keys are rejected.
func LoadTOML(data []byte) (*Set, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("rules: decode toml: %w", err)
	}
	if und := md.Undecoded(); len(und) > 0 {
		keys := make([]string, len(und))
		for i, k := range und {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("rules: unknown keys %s", strings.Join(keys, ", "))
	}
	return c.Build()
}

// LoadYAML decodes a YAML rule file. Unknown keys are rejected; an empty
// file is an empty set.
func LoadYAML(data []byte) (*Set, error) {
	var c Config
	dec := yv3.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("rules: decode yaml: %w", err)
	}
	return c.Build()
}

// LoadFile picks the decoder from the file extension: .toml, .yaml or .yml.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return LoadTOML(data)
	case ".yaml", ".yml":
		return LoadYAML(data)
	}
	return nil, fmt.Errorf("rules: unsupported rule file %s", path)
}

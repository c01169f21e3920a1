// Package kubeopenapi imports Kubernetes OpenAPI v3 schemas (a CRD's
// openAPIV3Schema) as dsl schemas, so custom resources can be converted
// with their errors annotated in place.
package kubeopenapi

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/reoring/goshadow/dsl"
)

// unsupported keywords are reported once per node and otherwise ignored
var unsupported = []string{"oneOf", "anyOf", "allOf", "not", "pattern", "patternProperties", "x-kubernetes-validations"}

// Import compiles a subset of OpenAPI v3 (types, properties, required,
// additionalProperties, items, enum, maxLength, maxItems, format date-time,
// local $defs references and the x-kubernetes extensions for unknown fields
// and int-or-string) into a dsl.Schema.
// The input can be a decoded map[string]any, raw JSON or YAML bytes, or a
// whole CRD document.
func Import(schema any, opts Options) (dsl.Schema, Diag, error) {
	d := &simpleDiag{}
	if schema == nil {
		return nil, d, errors.New("kubeopenapi: nil schema")
	}
	var root map[string]any
	switch t := schema.(type) {
	case []byte:
		// YAML is a superset of JSON
		var node any
		if err := yaml.Unmarshal(t, &node); err != nil {
			return nil, d, fmt.Errorf("kubeopenapi: invalid document: %w", err)
		}
		if root = toStringMap(node); root == nil {
			return nil, d, errors.New("kubeopenapi: document is not a mapping")
		}
	case map[string]any:
		root = t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, d, fmt.Errorf("kubeopenapi: cannot marshal input: %w", err)
		}
		if err := json.Unmarshal(b, &root); err != nil {
			return nil, d, fmt.Errorf("kubeopenapi: invalid marshaled JSON: %w", err)
		}
	}

	// Accept direct schema (openAPIV3Schema) or unwrap CRD root (spec.versions[].schema.openAPIV3Schema)
	if spec, ok := root["openAPIV3Schema"].(map[string]any); ok {
		root = spec
	} else if unwrapped := unwrapCRDSchema(root); unwrapped != nil {
		root = unwrapped
	}

	defs := extractDefs(root)
	root = resolveOne(deepCopyMap(root), defs, d, map[string]bool{})

	if t, _ := root["type"].(string); t != "object" && t != "" {
		d.warnf("non-object at root treated as object-compatible: type=%q", t)
		root["type"] = "object"
	}
	s, err := importNode(root, "", opts, d)
	return s, d, err
}

// unwrapCRDSchema tries to extract openAPIV3Schema from a Kubernetes CRD document.
// It looks for spec.versions[].schema.openAPIV3Schema (preferring served=true),
// then falls back to spec.validation.openAPIV3Schema for legacy specs.
func unwrapCRDSchema(root map[string]any) map[string]any {
	spec, ok := root["spec"].(map[string]any)
	if !ok {
		return nil
	}
	var firstFound map[string]any
	vers, _ := spec["versions"].([]any)
	for _, v := range vers {
		vm, _ := v.(map[string]any)
		sch, _ := vm["schema"].(map[string]any)
		oas, ok := sch["openAPIV3Schema"].(map[string]any)
		if !ok {
			continue
		}
		if served, ok := vm["served"].(bool); !ok || served {
			return oas
		}
		if firstFound == nil {
			firstFound = oas
		}
	}
	if firstFound != nil {
		return firstFound
	}
	// legacy: spec.validation.openAPIV3Schema
	if val, ok := spec["validation"].(map[string]any); ok {
		if oas, ok := val["openAPIV3Schema"].(map[string]any); ok {
			return oas
		}
	}
	return nil
}

func importNode(doc map[string]any, at string, opts Options, d *simpleDiag) (dsl.Schema, error) {
	for _, kw := range unsupported {
		if _, ok := doc[kw]; ok {
			d.warnf("%s: %s is not enforced", where(at), kw)
		}
	}
	if b, _ := doc["x-kubernetes-int-or-string"].(bool); b {
		return dsl.Any(), nil
	}
	if enum := stringList(doc["enum"]); len(enum) > 0 {
		return dsl.Enum(enum...), nil
	}
	typ, _ := doc["type"].(string)
	switch typ {
	case "object":
		return importObject(doc, at, opts, d)
	case "array":
		items, ok := doc["items"].(map[string]any)
		if !ok {
			d.warnf("%s: array without items accepts anything", where(at))
			items = map[string]any{}
		}
		elem, err := importNode(items, at+"[]", opts, d)
		if err != nil {
			return nil, err
		}
		arr := dsl.Array(elem)
		if n, ok := intOf(doc["maxItems"]); ok {
			arr = arr.MaxItems(n)
		}
		return arr, nil
	case "string":
		if f, _ := doc["format"].(string); f == "date-time" {
			return dsl.Timestamp(), nil
		}
		s := dsl.String()
		if n, ok := intOf(doc["maxLength"]); ok {
			if opts.TruncateStrings {
				s = s.TruncateAt(n)
			} else {
				s = s.MaxChars(n)
			}
		}
		return s, nil
	case "integer":
		return dsl.I64(), nil
	case "number":
		return dsl.F64(), nil
	case "boolean":
		return dsl.Bool(), nil
	case "":
		if _, ok := doc["properties"]; ok {
			return importObject(doc, at, opts, d)
		}
		return dsl.Any(), nil
	}
	return nil, fmt.Errorf("kubeopenapi: %s: unsupported type %q", where(at), typ)
}

// importObject maps properties in sorted name order; a schema-valued
// additionalProperties without properties becomes a map.
func importObject(doc map[string]any, at string, opts Options, d *simpleDiag) (dsl.Schema, error) {
	props, _ := doc["properties"].(map[string]any)
	if ap, ok := doc["additionalProperties"].(map[string]any); ok && len(props) == 0 {
		elem, err := importNode(ap, at+"{}", opts, d)
		if err != nil {
			return nil, err
		}
		return dsl.Map(elem), nil
	}

	b := dsl.Object()
	switch planUnknownBehavior(doc, opts, d, at) {
	case UnknownPreserve:
		b.UnknownPassthrough()
	case UnknownStrict:
		b.UnknownStrict()
	default:
		b.UnknownStrip()
	}

	required := stringList(doc["required"])
	for _, name := range slices.Sorted(maps.Keys(props)) {
		ps, _ := props[name].(map[string]any)
		if ps == nil {
			ps = map[string]any{}
		}
		fs, err := importNode(ps, join(at, name), opts, d)
		if err != nil {
			return nil, err
		}
		step := b.Field(name, fs)
		if slices.Contains(required, name) {
			step.Required()
		}
	}
	for _, name := range required {
		if _, ok := props[name]; !ok {
			d.warnf("%s: required %q has no property schema", where(at), name)
			b.Field(name, dsl.Any()).Required()
		}
	}
	obj, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("kubeopenapi: %s: %w", where(at), err)
	}
	return obj, nil
}

// planUnknownBehavior determines how to handle unknown fields.
func planUnknownBehavior(doc map[string]any, opts Options, d *simpleDiag, at string) UnknownBehavior {
	if v, ok := doc["x-kubernetes-preserve-unknown-fields"].(bool); ok && v {
		return UnknownPreserve
	}
	switch ap := doc["additionalProperties"].(type) {
	case bool:
		if ap {
			return UnknownPreserve
		}
		return UnknownStrict
	case map[string]any:
		d.warnf("%s: additionalProperties schema next to properties is not enforced", where(at))
		return UnknownPreserve
	}
	return opts.Unknown
}

func stringList(v any) []string {
	list, _ := v.([]any)
	var out []string
	for _, it := range list {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func intOf(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		return int(n), n == float64(int(n))
	}
	return 0, false
}

func join(at, name string) string {
	if at == "" {
		return name
	}
	return at + "." + name
}

func where(at string) string {
	if at == "" {
		return "root"
	}
	return at
}

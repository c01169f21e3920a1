package kubeopenapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/reoring/goshadow/dsl"
)

// ImportYAMLForCRDKind scans a multi-document YAML (e.g., CRD bundle) and imports
// the first CustomResourceDefinition matching the given spec.names.kind.
func ImportYAMLForCRDKind(data []byte, kind string, opts Options) (dsl.Schema, Diag, error) {
	return importFromBundle(data, opts, "kind "+kind, func(crd map[string]any) bool {
		spec, _ := crd["spec"].(map[string]any)
		names, _ := spec["names"].(map[string]any)
		k, _ := names["kind"].(string)
		return k == kind
	})
}

// ImportYAMLForCRDName scans a multi-document YAML and imports the CRD
// with given metadata.name.
func ImportYAMLForCRDName(data []byte, name string, opts Options) (dsl.Schema, Diag, error) {
	return importFromBundle(data, opts, "name "+name, func(crd map[string]any) bool {
		meta, _ := crd["metadata"].(map[string]any)
		n, _ := meta["name"].(string)
		return n == name
	})
}

func importFromBundle(data []byte, opts Options, what string, match func(map[string]any) bool) (dsl.Schema, Diag, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var node any
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &simpleDiag{}, err
		}
		m := toStringMap(node)
		if m == nil {
			continue
		}
		if k, _ := m["kind"].(string); k != "CustomResourceDefinition" {
			continue
		}
		if match(m) {
			return Import(m, opts)
		}
	}
	return nil, &simpleDiag{}, fmt.Errorf("kubeopenapi: CRD %s not found in YAML bundle", what)
}

// toStringMap converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. Non-map roots return nil.
func toStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalize(vv)
		}
		return out
	}
	return nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return toStringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalize(t[i])
		}
		return arr
	}
	return v
}

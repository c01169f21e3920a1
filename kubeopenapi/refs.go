package kubeopenapi

import "strings"

const defsPrefix = "#/$defs/"

// extractDefs returns local $defs map from the given document node.
func extractDefs(doc map[string]any) map[string]any {
	if m, ok := doc["$defs"].(map[string]any); ok {
		return m
	}
	return nil
}

// resolveRefsInPlace expands local $refs below node: properties, items and
// schema-valued additionalProperties.
func resolveRefsInPlace(node map[string]any, defs map[string]any, d *simpleDiag, visited map[string]bool) {
	if node == nil {
		return
	}
	if pm, ok := node["properties"].(map[string]any); ok {
		for k, raw := range pm {
			if sch, ok := raw.(map[string]any); ok {
				pm[k] = resolveOne(sch, defs, d, visited)
			}
		}
	}
	for _, key := range []string{"items", "additionalProperties"} {
		if sch, ok := node[key].(map[string]any); ok {
			node[key] = resolveOne(sch, defs, d, visited)
		}
	}
}

// resolveOne expands a local $ref in s by merging the referenced definition
// under the keys s does not set itself. Cycles are left unexpanded.
func resolveOne(s map[string]any, defs map[string]any, d *simpleDiag, visited map[string]bool) map[string]any {
	ref, ok := s["$ref"].(string)
	if !ok {
		resolveRefsInPlace(s, defs, d, visited)
		return s
	}
	if !strings.HasPrefix(ref, defsPrefix) {
		d.warnf("$ref %q not supported (local $defs only)", ref)
		return s
	}
	key := strings.TrimPrefix(ref, defsPrefix)
	base, ok := defs[key].(map[string]any)
	if !ok {
		d.warnf("$ref to unknown $defs/%s", key)
		return s
	}
	if visited[key] {
		d.warnf("cyclic $ref detected at $defs/%s (skipping expansion)", key)
		delete(s, "$ref")
		return s
	}
	visited[key] = true
	resolved := deepCopyMap(base)
	resolveRefsInPlace(resolved, defs, d, visited)
	delete(visited, key)
	delete(s, "$ref")
	for k, v := range resolved {
		if _, exists := s[k]; !exists {
			s[k] = v
		}
	}
	resolveRefsInPlace(s, defs, d, visited)
	return s
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = deepCopy(t[i])
		}
		return out
	}
	return v
}

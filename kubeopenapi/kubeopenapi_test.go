package kubeopenapi_test

import (
	"strings"
	"testing"

	goshadow "github.com/reoring/goshadow"
	"github.com/reoring/goshadow/kubeopenapi"
)

const widgetCRD = `
apiVersion: v1
kind: ConfigMap
metadata: {name: unrelated}
---
apiVersion: apiextensions.k8s.io/v1
kind: CustomResourceDefinition
metadata:
  name: widgets.example.com
spec:
  names: {kind: Widget}
  versions:
    - name: v1alpha1
      served: false
      schema:
        openAPIV3Schema: {type: object}
    - name: v1
      served: true
      schema:
        openAPIV3Schema:
          type: object
          required: [spec]
          properties:
            apiVersion: {type: string}
            kind: {type: string}
            metadata: {type: object, x-kubernetes-preserve-unknown-fields: true}
            spec:
              type: object
              additionalProperties: false
              required: [size]
              properties:
                size: {type: string, enum: [S, M, L]}
                replicas: {type: integer}
                port: {x-kubernetes-int-or-string: true}
                note: {type: string, maxLength: 5}
                tags: {type: array, maxItems: 2, items: {type: string}}
                labels: {type: object, additionalProperties: {type: string}}
                since: {type: string, format: date-time}
`

func convert(t *testing.T, s goshadow.Codec[goshadow.Value], in string) (string, goshadow.Issues) {
	t.Helper()
	a, err := goshadow.ParseJSON([]byte(in))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out := goshadow.IntoAnnotated(s.FromValue(a), s)
	b, err := goshadow.Serializable(out).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b), goshadow.ExtractMeta(out).Issues()
}

func codes(iss goshadow.Issues) string {
	var parts []string
	for _, it := range iss {
		parts = append(parts, it.Code+"@"+it.Path)
	}
	return strings.Join(parts, " ")
}

func TestImport_Minimal_StrictUnknown(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string"},
		},
		"required":             []any{"name"},
		"additionalProperties": false,
	}
	s, diag, err := kubeopenapi.Import(schema, kubeopenapi.Options{})
	if err != nil {
		t.Fatalf("import err: %v", err)
	}
	if diag.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", diag.Warnings())
	}
	if out, iss := convert(t, s, `{"name":"ok"}`); len(iss) != 0 || out != `{"name":"ok"}` {
		t.Fatalf("clean input: %s %v", out, iss)
	}
	if _, iss := convert(t, s, `{"name":"ok","zzz":1}`); codes(iss) != "invalid_value@/zzz" {
		t.Fatalf("unknown key: %s", codes(iss))
	}
	if _, iss := convert(t, s, `{}`); codes(iss) != "missing_field@/name" {
		t.Fatalf("missing: %s", codes(iss))
	}
	if _, ok := schema["$ref"]; ok {
		t.Fatalf("input must not be modified")
	}
}

func TestImportYAMLForCRDKind_Widget(t *testing.T) {
	s, diag, err := kubeopenapi.ImportYAMLForCRDKind([]byte(widgetCRD), "Widget", kubeopenapi.Options{})
	if err != nil {
		t.Fatalf("import yaml err: %v", err)
	}
	if diag.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", diag.Warnings())
	}

	in := `{"apiVersion":"example.com/v1","kind":"Widget","metadata":{"name":"w","uid":"1"},
	"spec":{"size":"XL","replicas":"two","port":"http","note":"too long","tags":["a","b","c"],
	"labels":{"a":"x","b":2},"since":"2024-01-01T00:00:00Z","extra":true}}`
	_, iss := convert(t, s, in)
	want := "unknown_variant@/spec/size invalid_type@/spec/replicas value_too_long@/spec/note " +
		"value_too_long@/spec/tags invalid_type@/spec/labels/b invalid_value@/spec/extra"
	if got := codes(iss); got != want {
		t.Fatalf("issues\ngot  %s\nwant %s", got, want)
	}

	out, iss := convert(t, s, `{"metadata":{"name":"w","uid":"1"},"spec":{"size":"S","port":8080}}`)
	if len(iss) != 0 {
		t.Fatalf("valid widget: %v", iss)
	}
	if !strings.Contains(out, `"uid":"1"`) {
		t.Fatalf("preserve-unknown-fields must keep metadata keys: %s", out)
	}

	if _, _, err := kubeopenapi.ImportYAMLForCRDName([]byte(widgetCRD), "widgets.example.com", kubeopenapi.Options{}); err != nil {
		t.Fatalf("by name: %v", err)
	}
	if _, _, err := kubeopenapi.ImportYAMLForCRDKind([]byte(widgetCRD), "Gadget", kubeopenapi.Options{}); err == nil {
		t.Fatalf("missing kind must fail")
	}
}

func TestImport_RefsAndWarnings(t *testing.T) {
	doc := []byte(`{
		"type": "object",
		"$defs": {
			"name": {"type": "string", "maxLength": 3},
			"node": {"type": "object", "properties": {"next": {"$ref": "#/$defs/node"}}}
		},
		"properties": {
			"first": {"$ref": "#/$defs/name"},
			"list": {"type": "array", "items": {"$ref": "#/$defs/name"}},
			"tree": {"$ref": "#/$defs/node"},
			"choice": {"oneOf": [{"type": "string"}, {"type": "integer"}]},
			"remote": {"$ref": "https://example.com/s.json"}
		}
	}`)
	s, diag, err := kubeopenapi.Import(doc, kubeopenapi.Options{TruncateStrings: true})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(diag.Warnings()) != 3 {
		t.Fatalf("want cycle, oneOf and remote ref warnings, got %v", diag.Warnings())
	}
	out, iss := convert(t, s, `{"first":"abcdef","list":["ok","long"]}`)
	if len(iss) != 0 {
		t.Fatalf("truncation is not an error: %v", iss)
	}
	if !strings.HasPrefix(out, `{"first":"abc","list":["ok","lon"]`) {
		t.Fatalf("strings must be cut at maxLength: %s", out)
	}
}

func TestImport_Errors(t *testing.T) {
	if _, _, err := kubeopenapi.Import(nil, kubeopenapi.Options{}); err == nil {
		t.Fatalf("nil schema must fail")
	}
	if _, _, err := kubeopenapi.Import([]byte("- a\n- b\n"), kubeopenapi.Options{}); err == nil {
		t.Fatalf("non-mapping must fail")
	}
	if _, _, err := kubeopenapi.Import(map[string]any{"type": "object", "properties": map[string]any{
		"x": map[string]any{"type": "decimal"},
	}}, kubeopenapi.Options{}); err == nil || !strings.Contains(err.Error(), "x") {
		t.Fatalf("unsupported type must name the field: %v", err)
	}
}

func TestImport_DefaultUnknownBehavior(t *testing.T) {
	schema := map[string]any{"type": "object", "properties": map[string]any{"a": map[string]any{"type": "boolean"}}}
	for _, tc := range []struct {
		mode kubeopenapi.UnknownBehavior
		want string
	}{
		{kubeopenapi.UnknownPrune, `{"a":true}`},
		{kubeopenapi.UnknownPreserve, `{"a":true,"b":1}`},
	} {
		s, _, err := kubeopenapi.Import(schema, kubeopenapi.Options{Unknown: tc.mode})
		if err != nil {
			t.Fatal(err)
		}
		if out, _ := convert(t, s, `{"a":true,"b":1}`); out != tc.want {
			t.Fatalf("mode %d: got %s want %s", tc.mode, out, tc.want)
		}
	}
}

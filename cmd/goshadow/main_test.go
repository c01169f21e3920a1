package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userSchemaYAML = `
type: object
fields:
  name: {type: string, required: true}
  age: {type: u32, skip: "null"}
`

const maskRulesTOML = `
[[rule]]
id = "emails"
selector = "**"
method = "mask"
pattern = "@email"
`

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestParse_ModesFromStdin(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "user.yaml", userSchemaYAML)
	in := `{"name":"Ann","age":"old"}`
	meta := `{"age":{"":{"err":[["invalid_type",{"expected":"unsigned integer","got":"string"}]],"val":"old"}}}`

	out, _, err := run(t, in, "parse", "--schema", schema, "--mode", "clean")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ann"}`+"\n", out)

	out, _, err = run(t, in, "parse", "--schema", schema)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ann","_meta":`+meta+"}\n", out)

	out, _, err = run(t, in, "parse", "--schema", schema, "-m", "split")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ann"}`+"\n"+meta+"\n", out)
}

func TestParse_IndentAndYAMLInput(t *testing.T) {
	out, _, err := run(t, "a: 1\nb: [x]\n", "parse", "--indent", "2")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    \"x\"\n  ]\n}\n", out)
}

func TestParse_FilesKeepArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var names []string
	for i, doc := range []string{`{"n":0}`, `{"n":1}`, `{"n":2}`, `{"n":3}`} {
		names = append(names, writeFile(t, dir, "in"+string(rune('a'+i))+".json", doc))
	}
	out, _, err := run(t, "", append([]string{"parse", "--workers", "2", "-m", "clean"}, names...)...)
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":0}\n{\"n\":1}\n{\"n\":2}\n{\"n\":3}\n", out)
}

func TestParse_FailOnIssues(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "user.yaml", userSchemaYAML)

	_, errOut, err := run(t, `{}`, "parse", "--schema", schema, "--fail-on-issues")
	require.ErrorIs(t, err, errIssuesFound)
	assert.Contains(t, errOut, "1 issue(s) found")

	_, _, err = run(t, `{"name":"x"}`, "parse", "--schema", schema, "--fail-on-issues")
	assert.NoError(t, err)
}

func TestParse_Errors(t *testing.T) {
	_, _, err := run(t, `{"a":`, "parse")
	assert.Error(t, err)

	_, _, err = run(t, "", "parse", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, _, err = run(t, `{}`, "parse", "--mode", "fancy")
	assert.ErrorContains(t, err, "output.mode")

	_, _, err = run(t, `{"a":1,"a":2}`, "parse", "--duplicates", "error")
	assert.Error(t, err)
}

func TestParse_AppliesRules(t *testing.T) {
	dir := t.TempDir()
	rules := writeFile(t, dir, "rules.toml", maskRulesTOML)
	out, _, err := run(t, `{"msg":"mail a@b.io"}`, "parse", "--rules", rules, "-m", "clean")
	require.NoError(t, err)
	assert.Equal(t, `{"msg":"mail ******"}`+"\n", out)
}

func TestExplain_Text(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "user.yaml", userSchemaYAML)
	rules := writeFile(t, dir, "rules.toml", maskRulesTOML)

	out, _, err := run(t, `{"name":"contact bob@example.com now","age":-1}`,
		"explain", "--no-color", "--schema", schema, "--rules", rules)
	require.NoError(t, err)
	assert.Contains(t, out, "-\n")
	assert.Contains(t, out, "✗ /age  invalid_type: invalid type")
	assert.Contains(t, out, "~ /name  masked by emails [8,23) len=27")
	assert.Contains(t, out, "1 error(s), 1 remark(s)")

	out, _, err = run(t, `{"ok":true}`, "explain", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ clean")
}

func TestExplain_JSONAndJapanese(t *testing.T) {
	out, _, err := run(t, `{"a":1,"a":2}`, "explain", "--json", "--lang", "ja")
	require.NoError(t, err)

	var reports []report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Errors, 1)
	// warn records the duplicate on the enclosing object
	assert.Equal(t, "/", reports[0].Errors[0].Path)
	assert.Equal(t, "invalid_value", reports[0].Errors[0].Code)
	assert.Equal(t, "値が不正です", reports[0].Errors[0].Message)
	assert.Equal(t, "a", reports[0].Errors[0].Params["key"])
}

func TestExplain_CombinedDocument(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "user.yaml", userSchemaYAML)
	embedded, _, err := run(t, `{"age":3}`, "parse", "--schema", schema)
	require.NoError(t, err)

	out, _, err := run(t, embedded, "explain", "--document", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ /name  missing_field")
}

func TestSchemaCommand(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "user.yaml", userSchemaYAML)
	out, _, err := run(t, "", "schema", "--schema", schema)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "object", doc["type"])
	assert.Equal(t, []any{"name"}, doc["required"])

	_, _, err = run(t, "", "schema")
	assert.ErrorContains(t, err, "no schema configured")
}

func TestConfig_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "goshadow.yaml", "output:\n  mode: clean\ninput:\n  format: yaml\n")

	out, _, err := run(t, "a: 1\n", "parse", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`+"\n", out)

	// flags win over the file
	out, _, err = run(t, "a: 1\n", "parse", "--config", cfg, "--mode", "embedded", "--indent", "1")
	require.NoError(t, err)
	assert.Equal(t, "{\n \"a\": 1\n}\n", out)

	t.Setenv("GOSHADOW_INPUT_FORMAT", "json")
	_, _, err = run(t, "a: 1\n", "parse")
	assert.Error(t, err, "yaml input under a json format")

	_, _, err = run(t, "", "parse", "--config", filepath.Join(dir, "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "goshadow version: dev")
	assert.Contains(t, out, "Go version: go")
}

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "envgauge")
}

func TestVersionCommandJSON(t *testing.T) {
	out, err := execute(t, "version", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"Version"`)
}

func TestConfigShowDefaults(t *testing.T) {
	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "rubric_dir: rubrics/manual")
	assert.Contains(t, out, "timeout_seconds: 3600")
}

func TestConfigInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfgFile = path
	defer func() { cfgFile = "" }()

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)
}

func TestRubricCheckValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	rubricJSON := `{
		"repo": "demo",
		"tests": [
			{"id": "tools", "type": "commands_exist", "params": {"names": ["git"]}},
			{"id": "build", "type": "run_command", "params": {"command": "make"}, "requires": ["tools"]}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(rubricJSON), 0o644))

	out, err := execute(t, "rubric", "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Rubric: demo (2 tests, max score 2)")
	assert.Contains(t, out, "1. tools")
	assert.Contains(t, out, "2. build")
	assert.Contains(t, out, "requires tools")
}

func TestRubricCheckTransitiveRequires(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	rubricJSON := `{
		"repo": "demo",
		"tests": [
			{"id": "tools", "type": "commands_exist", "params": {"names": ["git"]}},
			{"id": "build", "type": "run_command", "params": {"command": "make"}, "requires": ["tools"]},
			{"id": "smoke", "type": "run_command", "params": {"command": "make test"}, "requires": ["build"]}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(rubricJSON), 0o644))

	out, err := execute(t, "rubric", "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "requires build (tools, build transitively)")
}

func TestRubricCheckCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.json")
	rubricJSON := `{
		"repo": "demo",
		"tests": [
			{"id": "a", "type": "run_command", "params": {"command": "true"}, "requires": ["b"]},
			{"id": "b", "type": "run_command", "params": {"command": "true"}, "requires": ["a"]}
		]
	}`
	require.NoError(t, os.WriteFile(path, []byte(rubricJSON), 0o644))

	_, err := execute(t, "rubric", "check", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestEvalRequiresFlags(t *testing.T) {
	_, err := execute(t, "eval")
	require.Error(t, err)
}

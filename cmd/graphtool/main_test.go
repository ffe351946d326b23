package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/graphtools/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_PrintsSummary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := writeFile(t, dir, "graph.hcl", `
node "source" {
  output "value" { type = number }
}
node "sink" {
  position = [200, 0]
  input "value" { type = number }
}
edge {
  from = "source.value"
  to   = "sink.value"
}
`)
	out := &bytes.Buffer{}

	err := run(out, []string{"-g", "demo", "-build", "-log-level", "warn", script})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "graph:        demo\n")
	assert.Contains(t, out.String(), "nodes:        2\n")
	assert.Contains(t, out.String(), "edges:        1\n")
	assert.Contains(t, out.String(), "integrity:    ok\n")
	assert.Contains(t, out.String(), "build:        succeeded (0 errors)\n")
}

func TestRun_BuildFailureExitCode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// An untyped input starts out null, so leaving it unconnected fails
	// validation.
	script := writeFile(t, dir, "graph.hcl", `
node "sink" {
  input "config" { type = any }
}
`)
	out := &bytes.Buffer{}

	err := run(out, []string{"-build", "-log-level", "error", script})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 4, exitErr.Code)
	assert.Contains(t, out.String(), "build:        failed")
}

func TestRun_ScriptError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := writeFile(t, dir, "broken.hcl", `
node "a" {
  input "x" {
`)
	out := &bytes.Buffer{}

	err := run(out, []string{script})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse script")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

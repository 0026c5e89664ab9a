package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_LoadsValidFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test.yaml", sampleDoc)

	l := New(nil, NewDirSource("builtin", dir))
	report, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, 0, report.Failed)

	a, ok := l.Registry().GetAction("test:login")
	require.True(t, ok)
	assert.Equal(t, "log in", a.Description)
}

func TestLoader_DropsInvalidFileButKeepsOthers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.yaml", sampleDoc)
	writeFile(t, dir, "bad.yaml", `
schema_version: 1
namespace: Bad!!
version: not-semver
actions:
  x:
    description: ""
    steps: []
`)

	l := New(nil, NewDirSource("builtin", dir))
	report, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, 1, report.Failed)
	assert.NotEmpty(t, report.Issues)

	_, ok := l.Registry().GetAction("test:login")
	assert.True(t, ok)
}

func TestLoader_LaterSourceWinsOnCollision(t *testing.T) {
	builtinDir := t.TempDir()
	projectDir := t.TempDir()
	writeFile(t, builtinDir, "test.yaml", sampleDoc)
	writeFile(t, projectDir, "test.yaml", `
schema_version: 1
namespace: test
version: 2.0.0
actions:
  login:
    description: overridden login
    steps:
      - action: fail
        args:
          message: overridden
`)

	l := New(nil, NewDirSource("builtin", builtinDir), NewDirSource("project", projectDir))
	_, err := l.Load(context.Background())
	require.NoError(t, err)

	a, ok := l.Registry().GetAction("test:login")
	require.True(t, ok)
	assert.Equal(t, "overridden login", a.Description)
}

func TestLoader_ExtendsMerge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
schema_version: 1
namespace: base
version: 1.0.0
selectors:
  submit: "#base-submit"
actions:
  common:
    description: shared action
    steps:
      - action: fail
        args:
          message: x
`)
	writeFile(t, dir, "child.yaml", `
schema_version: 1
namespace: child
version: 1.0.0
extends: [base]
actions:
  specific:
    description: child-only action
    steps:
      - action: fail
        args:
          message: x
`)

	l := New(nil, NewDirSource("builtin", dir))
	_, err := l.Load(context.Background())
	require.NoError(t, err)

	childNs, ok := l.Registry().GetNamespace("child")
	require.True(t, ok)
	assert.Contains(t, childNs.Actions, "specific")
	assert.Contains(t, childNs.Actions, "common")
	assert.Equal(t, "#base-submit", childNs.Selectors["submit"].Primary)
}

func TestLoader_Search(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test.yaml", sampleDoc)

	l := New(nil, NewDirSource("builtin", dir))
	_, err := l.Load(context.Background())
	require.NoError(t, err)

	results := l.Registry().Search("login")
	require.NotEmpty(t, results)
	assert.Equal(t, "test:login", results[0].FullName)
}

func TestLoader_ValidateFileDoesNotSwapRegistry(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test.yaml", sampleDoc)

	l := New(nil, NewDirSource("builtin", dir))
	fv, err := l.ValidateFile(filepath.Join(dir, "test.yaml"))
	require.NoError(t, err)
	assert.True(t, fv.Success)
	assert.Empty(t, fv.Errors)

	_, ok := l.Registry().GetAction("test:login")
	assert.False(t, ok, "ValidateFile must not install the built index into the live registry")
}

func TestLoader_ValidateFileReportsStructuralErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", `
schema_version: 1
namespace: Bad!!
version: not-semver
actions:
  x:
    description: ""
    steps: []
`)

	l := New(nil)
	fv, err := l.ValidateFile(filepath.Join(dir, "bad.yaml"))
	require.NoError(t, err)
	assert.False(t, fv.Success)
	require.NotEmpty(t, fv.Errors)
	assert.Equal(t, filepath.Join(dir, "bad.yaml"), fv.Path)
}

func TestLoader_ValidateFileMissingFile(t *testing.T) {
	l := New(nil)
	_, err := l.ValidateFile("/nonexistent/path/does-not-exist.yaml")
	require.Error(t, err)
}

func TestLoader_ReloadSwapsAtomically(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "test.yaml", sampleDoc)

	l := New(nil, NewDirSource("builtin", dir))
	_, err := l.Load(context.Background())
	require.NoError(t, err)

	oldRegistry := l.Registry()
	_, ok := oldRegistry.GetAction("test:login")
	require.True(t, ok)

	_, err = l.Load(context.Background())
	require.NoError(t, err)
	_, ok = l.Registry().GetAction("test:login")
	assert.True(t, ok)
}

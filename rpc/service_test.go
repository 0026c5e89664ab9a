package rpc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiond/adapter"
	"actiond/executor"
	"actiond/loader"
)

const sampleDoc = `
schema_version: 1
namespace: test
version: 1.0.0
selectors:
  submit: "#submit"
actions:
  login:
    description: log in
    params:
      user:
        type: string
        required: true
    selectors:
      field:
        primary: "#user"
        fallback: ["#username"]
    steps:
      - action: fill
        args:
          selector: field
          value: "${params.user}"
      - action: click
        args:
          selector: submit
`

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(sampleDoc), 0o644))

	l := loader.New(nil, loader.NewDirSource("builtin", dir))
	_, err := l.Load(context.Background())
	require.NoError(t, err)

	exec := executor.New(nil, l.Registry(), adapter.NewFake(), executor.DefaultLimits())
	return New(nil, l, exec)
}

func TestService_List(t *testing.T) {
	s := newTestService(t)
	summaries := s.List("test")
	require.Len(t, summaries, 1)
	assert.Equal(t, "test:login", summaries[0].FullName)
}

func TestService_Describe(t *testing.T) {
	s := newTestService(t)
	doc, err := s.Describe("test:login")
	require.Nil(t, err)
	assert.Equal(t, "log in", doc.Path("description").Data())
	assert.Equal(t, "string", doc.Path("params.user.type").Data())
	assert.Equal(t, "#user", doc.Path("selectors.field.primary").Data())
}

func TestService_DescribeNotFound(t *testing.T) {
	s := newTestService(t)
	_, err := s.Describe("test:missing")
	require.NotNil(t, err)
}

func TestService_Run(t *testing.T) {
	s := newTestService(t)
	result := s.Run(context.Background(), "test:login", map[string]any{"user": "alice"}, nil, false)
	require.True(t, result.Success, "%+v", result.Error)
}

func TestService_DryRun(t *testing.T) {
	s := newTestService(t)
	result := s.DryRun(context.Background(), "test:login", map[string]any{"user": "alice"}, nil)
	require.True(t, result.Success, "%+v", result.Error)
}

func TestService_Search(t *testing.T) {
	s := newTestService(t)
	results := s.Search("login")
	require.NotEmpty(t, results)
	assert.Equal(t, "test:login", results[0].FullName)
}

func TestService_Validate(t *testing.T) {
	s := newTestService(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "standalone.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	result, err := s.Validate(path)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Errors)
}

func TestService_ValidateReportsErrors(t *testing.T) {
	s := newTestService(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schema_version: 1
namespace: Bad!!
version: not-semver
actions:
  x:
    description: ""
    steps: []
`), 0o644))

	result, err := s.Validate(path)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, path, result.Errors[0].Path)
}

func TestService_Reload(t *testing.T) {
	s := newTestService(t)
	result, err := s.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Success)
}

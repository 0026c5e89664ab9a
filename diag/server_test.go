package diag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
actions:
  login:
    description: log in
    steps:
      - action: eval
        args:
          expression: "1"
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(sampleDoc), 0o644))

	l := loader.New(nil, loader.NewDirSource("builtin", dir))
	_, err := l.Load(context.Background())
	require.NoError(t, err)

	exec := executor.New(nil, l.Registry(), adapter.NewFake(), executor.DefaultLimits())
	return New(nil, l, exec, ":0")
}

func doGet(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t)
	rec := doGet(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Namespaces(t *testing.T) {
	s := newTestServer(t)
	rec := doGet(t, s, "/namespaces")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Namespaces []map[string]any `json:"namespaces"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Namespaces, 1)
	assert.Equal(t, "test", body.Namespaces[0]["name"])
}

func TestServer_Actions(t *testing.T) {
	s := newTestServer(t)
	rec := doGet(t, s, "/actions")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Actions []map[string]any `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Actions, 1)
	assert.Equal(t, "test:login", body.Actions[0]["fullName"])
}

func TestServer_ActionsByNamespace(t *testing.T) {
	s := newTestServer(t)
	rec := doGet(t, s, "/actions/test")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Actions []map[string]any `json:"actions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Actions, 1)
}

func TestServer_SelectorStats(t *testing.T) {
	s := newTestServer(t)
	rec := doGet(t, s, "/selectors/stats")
	assert.Equal(t, http.StatusOK, rec.Code)
}

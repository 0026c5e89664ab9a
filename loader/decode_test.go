package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `
schema_version: 1
namespace: test
version: 1.0.0
description: a test namespace
selectors:
  submit: "#submit"
  cancel:
    primary: "[data-v3='cancel']"
    fallback: [".cancel"]
actions:
  login:
    description: log in
    params:
      username:
        type: string
        required: true
    steps:
      - action: open
        args:
          url: /login
      - action: fill
        args:
          selector: "#u"
          value: "${params.username}"
`

func TestDecodeNamespace_Basic(t *testing.T) {
	ns, err := decodeNamespace([]byte(sampleDoc), "test.yaml")
	require.NoError(t, err)

	assert.Equal(t, "test", ns.Name)
	assert.Equal(t, 1, ns.SchemaVersion)
	assert.Equal(t, "#submit", ns.Selectors["submit"].Primary)
	assert.Equal(t, "[data-v3='cancel']", ns.Selectors["cancel"].Primary)
	assert.Equal(t, []string{".cancel"}, ns.Selectors["cancel"].Fallback)

	login, ok := ns.Actions["login"]
	require.True(t, ok)
	assert.Equal(t, "test:login", login.FullName)
	assert.Len(t, login.Steps, 2)
}

func TestDecodeNamespace_CompatibilityBlock(t *testing.T) {
	doc := `
schema_version: 1
namespace: test
version: 1.0.0
compatibility:
  minVersion: "1.0.0"
  maxVersion: "2.0.0"
  versionOverrides:
    2.x:
      selectors:
        submit: "#submit-v2"
actions:
  noop:
    description: no-op
    steps:
      - action: fail
        args:
          message: unreachable
`
	ns, err := decodeNamespace([]byte(doc), "test.yaml")
	require.NoError(t, err)
	require.NotNil(t, ns.Compatibility)
	assert.Equal(t, "1.0.0", ns.Compatibility.MinVersion)
	assert.Equal(t, "#submit-v2", ns.Compatibility.VersionOverrides["2.x"].Selectors["submit"].Primary)
}

func TestDecodeNamespace_InvalidYAML(t *testing.T) {
	_, err := decodeNamespace([]byte("not: [valid"), "bad.yaml")
	assert.Error(t, err)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterJSON(t *testing.T) {
	doc := []byte(`{"signature":"abc","recipient":"xyz","base_units":200}`)

	lines, err := filterJSON(doc, ".signature")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, `"abc"`, lines[0])

	lines, err = filterJSON(doc, "{sig: .signature, amount: .base_units}")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.JSONEq(t, `{"sig":"abc","amount":200}`, lines[0])
}

func TestFilterJSON_MultipleResults(t *testing.T) {
	doc := []byte(`[{"n":1},{"n":2},{"n":3}]`)

	lines, err := filterJSON(doc, ".[].n")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, lines)
}

func TestFilterJSON_InvalidFilter(t *testing.T) {
	_, err := filterJSON([]byte(`{}`), ".foo[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse jq filter")
}

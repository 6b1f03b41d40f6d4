package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (map[string]string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		return nil, err
	}
	var got map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &got), out.String())
	return got, nil
}

func TestInterpretCommand(t *testing.T) {
	got, err := runCLI(t, "interpret", "Trace", "number", "8")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"type":        "number",
		"content":     "8",
		"style":       "uppercase",
		"description": "Trace the number 8",
	}, got)
}

func TestInterpretCommandFallbackWithRule(t *testing.T) {
	got, err := runCLI(t, "interpret", "--rule", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "A", got["content"])
	assert.Equal(t, "fallback", got["rule"])
}

func TestInterpretCommandNeedsPrompt(t *testing.T) {
	_, err := runCLI(t, "interpret")
	assert.Error(t, err)
}

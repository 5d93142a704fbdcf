package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestR8Cmd_RunsFullPipelineAndPrintsMapping(t *testing.T) {
	cmd := r8Cmd
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(nil)
	*mappingOut = ""

	err := cmd.RunE(cmd, nil)
	require.NoError(t, err)

	output := out.String()
	assert.True(t, strings.Contains(output, "program classes"))
	assert.True(t, strings.Contains(output, "residual mapping"))
	// app/Dead is unreferenced and must be tree-shaken away entirely.
	assert.False(t, strings.Contains(output, "Dead"))
}

func TestD8Cmd_RunsWithoutShrinking(t *testing.T) {
	cmd := d8Cmd
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)

	err := cmd.RunE(cmd, nil)
	require.NoError(t, err)

	// with every pass slot nil, nothing is shrunk: app/Dead survives.
	assert.True(t, strings.Contains(out.String(), "Lapp/Dead;"))
}

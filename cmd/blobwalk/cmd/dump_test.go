package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpCommand_PreviewBytesZero(t *testing.T) {
	// An explicit --preview-bytes=0 means "no blob bytes", not "fall back
	// to the configured default".
	path := writeBlobFile(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"dump", path, "--level", "full", "--preview-bytes", "0"})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), `blob=""...`)
	assert.NotContains(t, out.String(), "value-one")
}

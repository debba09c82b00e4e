package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkyriedb/bloblog/pkg/bloblog"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "headers", config.ReadLevel)
	assert.Equal(t, "strict", config.Recovery)
	assert.Equal(t, 32, config.PreviewBytes)

	// Defaults must be parseable.
	_, err := ParseReadLevel(config.ReadLevel)
	assert.NoError(t, err)
	_, err = ParseRecoveryMode(config.Recovery)
	assert.NoError(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	config := &Config{
		ReadLevel:    "full",
		Recovery:     "tolerant",
		PreviewBytes: 128,
	}
	require.NoError(t, SaveConfig(config, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), stat.Mode().Perm())
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("read_level: [not a string"), 0600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestParseReadLevel(t *testing.T) {
	testCases := []struct {
		in      string
		want    bloblog.ReadLevel
		wantErr bool
	}{
		{in: "headers", want: bloblog.ReadLevelHeaderFooter},
		{in: "keys", want: bloblog.ReadLevelHeaderFooterKey},
		{in: "full", want: bloblog.ReadLevelHeaderFooterKeyBlob},
		{in: "FULL", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range testCases {
		level, err := ParseReadLevel(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, level, "input %q", tc.in)
	}
}

func TestParseRecoveryMode(t *testing.T) {
	mode, err := ParseRecoveryMode("strict")
	require.NoError(t, err)
	assert.Equal(t, bloblog.RecoveryStrict, mode)

	mode, err = ParseRecoveryMode("tolerant")
	require.NoError(t, err)
	assert.Equal(t, bloblog.RecoveryTolerant, mode)

	_, err = ParseRecoveryMode("lenient")
	assert.Error(t, err)
}

func TestConfigExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	assert.False(t, ConfigExists(path))
	require.NoError(t, SaveConfig(DefaultConfig(), path))
	assert.True(t, ConfigExists(path))
}

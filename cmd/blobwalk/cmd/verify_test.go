package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkyriedb/bloblog/pkg/bloblog"
)

// writeBlobFile creates a sealed two-record blob log file on disk.
func writeBlobFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "000001.blob")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := bloblog.NewWriter(f, bloblog.WriterOptions{})
	require.NoError(t, w.WriteHeader())
	_, err = w.AddRecord([]byte("k1"), []byte("value-one"), 100, bloblog.RecordOptions{})
	require.NoError(t, err)
	_, err = w.AddRecord([]byte("k2"), []byte("value-two"), 101, bloblog.RecordOptions{SubType: bloblog.TTLType, TTL: 60})
	require.NoError(t, err)
	_, err = w.Close()
	require.NoError(t, err)
	return path
}

func TestRunVerify(t *testing.T) {
	path := writeBlobFile(t)

	var out bytes.Buffer
	require.NoError(t, runVerify(&out, path, bloblog.RecoveryStrict))
	assert.Contains(t, out.String(), "ok, 2 records")
	assert.Contains(t, out.String(), "sealed")
}

func TestRunVerify_CorruptPayload(t *testing.T) {
	path := writeBlobFile(t)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[bloblog.HeaderSize+bloblog.RecordHeaderSize+2] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0600))

	var out bytes.Buffer
	err = runVerify(&out, path, bloblog.RecoveryStrict)
	require.Error(t, err)
	assert.True(t, bloblog.IsCorruption(err))
}

func TestRunInspect(t *testing.T) {
	path := writeBlobFile(t)

	var out bytes.Buffer
	require.NoError(t, runInspect(&out, path, bloblog.RecoveryStrict))
	assert.Contains(t, out.String(), "records:        2")
	assert.Contains(t, out.String(), "footer{count: 2, sn: [100, 101], ttl: [60, 60]}")
}

func TestRunDump(t *testing.T) {
	path := writeBlobFile(t)

	var out bytes.Buffer
	require.NoError(t, runDump(&out, path, bloblog.ReadLevelHeaderFooterKeyBlob, bloblog.RecoveryStrict, 4))

	assert.Contains(t, out.String(), `key="k1"`)
	assert.Contains(t, out.String(), `blob="valu"...`)
	assert.Contains(t, out.String(), "sn=101")
	assert.Contains(t, out.String(), "ttl=60")
}

package bloblog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "000001.blob")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestScanFile_SealedFile(t *testing.T) {
	recs := []testRecord{
		{key: []byte("k1"), blob: []byte("v1"), sn: 10},
		{key: []byte("k2"), blob: []byte("v2"), sn: 11},
		{key: []byte("k3"), blob: []byte("v3"), sn: 12},
	}
	path := writeTempFile(t, buildFile(t, WriterOptions{}, recs))

	var keys []string
	res, err := ScanFile(path, ScanOptions{
		Level:           ReadLevelHeaderFooterKeyBlob,
		Recovery:        RecoveryStrict,
		VerifyChecksums: true,
	}, func(rec *Record) error {
		keys = append(keys, string(rec.Key()))
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(3), res.Records)
	assert.Equal(t, []string{"k1", "k2", "k3"}, keys)
	assert.False(t, res.Truncated)
	require.NotNil(t, res.Footer)
	assert.Equal(t, uint64(3), res.Footer.BlobCount())
	assert.Equal(t, SequenceRange{Min: 10, Max: 12}, res.Footer.SequenceRange())

	stat, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(stat.Size()), res.BytesScanned)
}

func TestScanFile_UnsealedFile(t *testing.T) {
	recs := []testRecord{
		{key: []byte("k1"), blob: []byte("v1"), sn: 1},
		{key: []byte("k2"), blob: []byte("v2"), sn: 2},
	}
	path := writeTempFile(t, buildUnsealedFile(t, recs))

	res, err := ScanFile(path, ScanOptions{Level: ReadLevelHeaderFooter}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Records)
	assert.Nil(t, res.Footer)
	assert.False(t, res.Truncated)
}

func TestScanFile_TruncatedTail(t *testing.T) {
	recs := []testRecord{
		{key: []byte("k1"), blob: []byte("v1"), sn: 1},
		{key: []byte("k2"), blob: []byte("v2"), sn: 2},
	}
	full := buildUnsealedFile(t, recs)

	// Cut into the second record's body, like a crash mid-append.
	secondRecord := HeaderSize + RecordHeaderSize + 2 + 2 + RecordFooterSize
	cut := full[:secondRecord+RecordHeaderSize+1]

	t.Run("tolerant treats the tail as end-of-file", func(t *testing.T) {
		path := writeTempFile(t, cut)
		res, err := ScanFile(path, ScanOptions{
			Level:    ReadLevelHeaderFooterKeyBlob,
			Recovery: RecoveryTolerant,
		}, nil)
		require.NoError(t, err)

		// The intact record before the cut stays valid.
		assert.Equal(t, uint64(1), res.Records)
		assert.True(t, res.Truncated)
		assert.Equal(t, uint64(secondRecord), res.TruncationOffset)
		assert.Nil(t, res.Footer)
	})

	t.Run("strict surfaces the truncation", func(t *testing.T) {
		path := writeTempFile(t, cut)
		_, err := ScanFile(path, ScanOptions{
			Level:    ReadLevelHeaderFooterKeyBlob,
			Recovery: RecoveryStrict,
		}, nil)
		require.Error(t, err)
		assert.True(t, IsTruncation(err))
	})
}

func TestScanFile_ChecksumVerification(t *testing.T) {
	recs := []testRecord{
		{key: []byte("k1"), blob: []byte("payload"), sn: 1},
	}
	data := buildFile(t, WriterOptions{}, recs)

	// Flip one blob byte; the record header still decodes cleanly.
	data[HeaderSize+RecordHeaderSize+2+3] ^= 0x01
	path := writeTempFile(t, data)

	_, err := ScanFile(path, ScanOptions{
		Level:           ReadLevelHeaderFooterKeyBlob,
		VerifyChecksums: true,
	}, nil)
	require.Error(t, err)
	assert.True(t, IsCorruption(err))

	// Without verification the scan is a pure layout walk and succeeds.
	res, err := ScanFile(path, ScanOptions{Level: ReadLevelHeaderFooterKeyBlob}, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Records)
}

func TestScanFile_CorruptHeaderAbortsPass(t *testing.T) {
	data := buildFile(t, WriterOptions{}, []testRecord{{key: []byte("k"), blob: []byte("v"), sn: 1}})
	data[1] ^= 0xff
	path := writeTempFile(t, data)

	_, err := ScanFile(path, ScanOptions{Recovery: RecoveryTolerant}, nil)
	require.Error(t, err)
	assert.True(t, IsCorruption(err))
}

func TestScanFile_MissingFile(t *testing.T) {
	_, err := ScanFile(filepath.Join(t.TempDir(), "nope.blob"), ScanOptions{}, nil)
	require.Error(t, err)
	assert.False(t, IsCorruption(err))
}

package bloblog

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/cockroachdb/errors"
)

// maxMaterializedSize bounds how large a single key or blob the reader
// will allocate for. Size fields are read straight off disk; a claim
// beyond this is a corrupt header, not an allocation request.
const maxMaterializedSize = math.MaxInt32

// ReadLevel selects how much of a record ReadRecord materializes. Each
// level is a strict superset of the one before; the bytes consumed from the
// stream are identical at every level.
type ReadLevel uint8

const (
	// ReadLevelHeaderFooter decodes the record header and footer and skips
	// the key/blob bytes without materializing them.
	ReadLevelHeaderFooter ReadLevel = iota

	// ReadLevelHeaderFooterKey additionally materializes the key.
	ReadLevelHeaderFooterKey

	// ReadLevelHeaderFooterKeyBlob additionally materializes the blob.
	ReadLevelHeaderFooterKeyBlob
)

// RecoveryMode is the caller's policy for a truncated tail record, the
// expected leftover of an unclean shutdown. The Reader itself always
// reports truncation faithfully; only callers (see ScanFile) interpret
// RecoveryTolerant as a clean end-of-file.
type RecoveryMode uint8

const (
	// RecoveryStrict surfaces a truncated tail as corruption.
	RecoveryStrict RecoveryMode = iota

	// RecoveryTolerant treats a truncated tail as end-of-file.
	RecoveryTolerant
)

// Reader is a stateful cursor over one blob log file's byte stream. It
// reads strictly forward, one structural unit per call: ReadHeader exactly
// once, then ReadRecord zero or more times, then optionally ReadFooter.
//
// The Reader owns a single scratch buffer reused across calls; any view
// into it is valid only until the next call. Materialized key/blob bytes
// live in the caller's Record instead and survive further Reader calls. A
// Reader is not safe for concurrent use; it performs no checksum
// verification and never retries I/O.
type Reader struct {
	src           *bufio.Reader
	scratch       []byte
	bytesConsumed uint64
	headerRead    bool
}

// NewReader returns a Reader over src. The stream must be positioned at the
// start of the file; the Reader only ever moves forward.
func NewReader(src io.Reader) *Reader {
	return &Reader{
		src:     bufio.NewReaderSize(src, blockSize),
		scratch: make([]byte, blockSize),
	}
}

// BytesConsumed returns the number of bytes read or skipped so far. On
// error it points at the position the failure was detected, which is the
// context recovery policy needs.
func (r *Reader) BytesConsumed() uint64 { return r.bytesConsumed }

// ReadHeader reads and decodes the 32-byte file header. It must be the
// first call on the Reader and is legal at most once.
func (r *Reader) ReadHeader() (Header, error) {
	if r.headerRead {
		return Header{}, errors.AssertionFailedf("bloblog: file header already read")
	}

	buf := r.scratch[:HeaderSize]
	n, err := io.ReadFull(r.src, buf)
	r.bytesConsumed += uint64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Header{}, errCorruptionf("file header truncated at offset %d", r.bytesConsumed)
		}
		return Header{}, errors.Wrapf(err, "bloblog: reading file header at offset %d", r.bytesConsumed)
	}
	r.headerRead = true
	return DecodeHeader(buf)
}

// ReadRecord reads the next record into rec at the requested level,
// clearing rec first. It returns io.EOF when the stream is exhausted at a
// record boundary. A stream that ends mid-record yields a truncation error
// (IsTruncation) carrying the offset; treating that as fatal or as a clean
// tail is the caller's recovery-mode decision.
//
// ReadHeader must have succeeded before the first ReadRecord.
func (r *Reader) ReadRecord(rec *Record, level ReadLevel) error {
	if !r.headerRead {
		return errors.AssertionFailedf("bloblog: ReadRecord called before ReadHeader")
	}
	rec.clear()

	buf := r.scratch[:RecordHeaderSize]
	n, err := io.ReadFull(r.src, buf)
	r.bytesConsumed += uint64(n)
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		if err == io.ErrUnexpectedEOF {
			return errTruncatedf("record header truncated at offset %d", r.bytesConsumed)
		}
		return errors.Wrapf(err, "bloblog: reading record header at offset %d", r.bytesConsumed)
	}
	if err := rec.decodeHeaderFrom(buf); err != nil {
		return err
	}

	switch level {
	case ReadLevelHeaderFooter:
		if err := r.skip(uint64(rec.keySize) + rec.blobSize); err != nil {
			return err
		}
	case ReadLevelHeaderFooterKey:
		if err := r.checkPayloadSize(uint64(rec.keySize), "record key"); err != nil {
			return err
		}
		rec.resizeKeyBuffer(int(rec.keySize))
		if err := r.readPayload(rec.keyBuf, "record key"); err != nil {
			return err
		}
		rec.key = rec.keyBuf
		if err := r.skip(rec.blobSize); err != nil {
			return err
		}
	case ReadLevelHeaderFooterKeyBlob:
		if err := r.checkPayloadSize(uint64(rec.keySize), "record key"); err != nil {
			return err
		}
		rec.resizeKeyBuffer(int(rec.keySize))
		if err := r.readPayload(rec.keyBuf, "record key"); err != nil {
			return err
		}
		rec.key = rec.keyBuf
		if err := r.checkPayloadSize(rec.blobSize, "record blob"); err != nil {
			return err
		}
		rec.resizeBlobBuffer(int(rec.blobSize))
		if err := r.readPayload(rec.blobBuf, "record blob"); err != nil {
			return err
		}
		rec.blob = rec.blobBuf
	default:
		return errors.AssertionFailedf("bloblog: unknown read level %d", level)
	}

	return r.readRecordFooter(rec)
}

// ReadFooter reads and decodes the 56-byte file footer. The caller decides
// when the record body has been fully consumed (for example from the file
// size); the Reader itself has no way to tell records and footer apart.
func (r *Reader) ReadFooter() (Footer, error) {
	if !r.headerRead {
		return Footer{}, errors.AssertionFailedf("bloblog: ReadFooter called before ReadHeader")
	}

	buf := r.scratch[:FooterSize]
	n, err := io.ReadFull(r.src, buf)
	r.bytesConsumed += uint64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Footer{}, errCorruptionf("file footer truncated at offset %d", r.bytesConsumed)
		}
		return Footer{}, errors.Wrapf(err, "bloblog: reading file footer at offset %d", r.bytesConsumed)
	}
	return DecodeFooter(buf)
}

func (r *Reader) readRecordFooter(rec *Record) error {
	buf := r.scratch[:RecordFooterSize]
	n, err := io.ReadFull(r.src, buf)
	r.bytesConsumed += uint64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errTruncatedf("record footer truncated at offset %d", r.bytesConsumed)
		}
		return errors.Wrapf(err, "bloblog: reading record footer at offset %d", r.bytesConsumed)
	}
	rec.sn = SequenceNumber(binary.LittleEndian.Uint64(buf))
	return nil
}

// checkPayloadSize rejects size fields too large to materialize before any
// buffer is sized from them. Skipped payloads need no check: a lying size
// just runs the skip into end-of-stream, which reports truncation.
func (r *Reader) checkPayloadSize(n uint64, what string) error {
	if n > maxMaterializedSize {
		return errCorruptionf("%s size %d exceeds limit %d at offset %d", what, n, uint64(maxMaterializedSize), r.bytesConsumed)
	}
	return nil
}

// readPayload fills dst from the stream, accounting for every byte read.
func (r *Reader) readPayload(dst []byte, what string) error {
	n, err := io.ReadFull(r.src, dst)
	r.bytesConsumed += uint64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return errTruncatedf("%s truncated at offset %d", what, r.bytesConsumed)
		}
		return errors.Wrapf(err, "bloblog: reading %s at offset %d", what, r.bytesConsumed)
	}
	return nil
}

// skip advances the stream by n bytes without materializing them. The
// stream position and byte accounting end up identical to a read.
func (r *Reader) skip(n uint64) error {
	const maxChunk = 1 << 30
	for n > 0 {
		chunk := n
		if chunk > maxChunk {
			chunk = maxChunk
		}
		discarded, err := r.src.Discard(int(chunk))
		r.bytesConsumed += uint64(discarded)
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return errTruncatedf("record body truncated at offset %d", r.bytesConsumed)
			}
			return errors.Wrapf(err, "bloblog: skipping record body at offset %d", r.bytesConsumed)
		}
		n -= chunk
	}
	return nil
}

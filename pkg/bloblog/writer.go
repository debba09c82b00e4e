package bloblog

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/cockroachdb/errors"
)

// WriterOptions configures a Writer. The TTL/timestamp guesses are the
// advisory ranges recorded in the file header; leave them nil for files
// that will hold no such records.
type WriterOptions struct {
	TTLGuess       *ExpirationRange
	TimestampGuess *TimeRange

	// BufferSize sizes the write buffer; 0 selects the default.
	BufferSize int
}

// RecordOptions describes one record being appended. TTL is consulted for
// TTLType records and Timestamp for TimestampType records; both are written
// as zero otherwise.
type RecordOptions struct {
	SubType   RecordSubType
	TTL       uint32
	Timestamp uint64
}

// Writer emits one blob log file: header, then records back-to-back, then
// the sealing footer. It tracks the exact aggregate ranges (blob count,
// sequence numbers, TTLs, timestamps) the footer must carry, which is why
// summary fields on Header and Footer have no public setters.
//
// When a file should be written, rolled, or garbage-collected is the
// surrounding store's business; the Writer only owns the wire format. It
// does not fsync and does not close the underlying destination.
type Writer struct {
	dst    *bufio.Writer
	opts   WriterOptions
	offset int64

	headerWritten bool
	sealed        bool

	blobCount uint64
	snRange   SequenceRange
	ttlRange  ExpirationRange
	hasTTL    bool
	tsRange   TimeRange
	hasTS     bool

	scratch [RecordHeaderSize]byte
}

// NewWriter returns a Writer that emits a blob log file to dst.
func NewWriter(dst io.Writer, opts WriterOptions) *Writer {
	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	return &Writer{
		dst:  bufio.NewWriterSize(dst, bufSize),
		opts: opts,
	}
}

// WriteHeader writes the 32-byte file header. It must be the first call on
// the Writer and is legal at most once.
func (w *Writer) WriteHeader() error {
	if w.headerWritten {
		return errors.AssertionFailedf("bloblog: file header already written")
	}

	header := newHeader()
	if w.opts.TTLGuess != nil {
		header.setTTLGuess(*w.opts.TTLGuess)
	}
	if w.opts.TimestampGuess != nil {
		header.setTimestampGuess(*w.opts.TimestampGuess)
	}

	n, err := w.dst.Write(header.Encode())
	w.offset += int64(n)
	if err != nil {
		return errors.Wrap(err, "bloblog: writing file header")
	}
	w.headerWritten = true
	return nil
}

// AddRecord appends one record with the given key, blob, and
// store-assigned sequence number, computing both checksums. It returns the
// byte offset at which the record header starts, the value an index would
// store to locate the record.
func (w *Writer) AddRecord(key, blob []byte, sn SequenceNumber, opts RecordOptions) (int64, error) {
	if !w.headerWritten {
		return 0, errors.AssertionFailedf("bloblog: AddRecord called before WriteHeader")
	}
	if w.sealed {
		return 0, errors.AssertionFailedf("bloblog: AddRecord called on sealed file")
	}

	rec := Record{
		payloadChecksum: computePayloadChecksum(key, blob),
		keySize:         uint32(len(key)),
		blobSize:        uint64(len(blob)),
		recordType:      FullType,
		subType:         opts.SubType,
	}
	switch opts.SubType {
	case TTLType:
		rec.ttl = opts.TTL
	case TimestampType:
		rec.timeVal = opts.Timestamp
	}
	rec.encodeHeaderTo(w.scratch[:])

	recordOffset := w.offset
	for _, chunk := range [][]byte{w.scratch[:], key, blob} {
		n, err := w.dst.Write(chunk)
		w.offset += int64(n)
		if err != nil {
			return 0, errors.Wrapf(err, "bloblog: writing record at offset %d", recordOffset)
		}
	}

	var footer [RecordFooterSize]byte
	binary.LittleEndian.PutUint64(footer[:], uint64(sn))
	n, err := w.dst.Write(footer[:])
	w.offset += int64(n)
	if err != nil {
		return 0, errors.Wrapf(err, "bloblog: writing record footer at offset %d", recordOffset)
	}

	w.observe(&rec, sn)
	return recordOffset, nil
}

// observe folds one record into the aggregates the footer will seal.
func (w *Writer) observe(rec *Record, sn SequenceNumber) {
	if w.blobCount == 0 {
		w.snRange = SequenceRange{Min: sn, Max: sn}
	} else {
		if sn < w.snRange.Min {
			w.snRange.Min = sn
		}
		if sn > w.snRange.Max {
			w.snRange.Max = sn
		}
	}
	w.blobCount++

	switch rec.subType {
	case TTLType:
		if !w.hasTTL {
			w.ttlRange = ExpirationRange{Min: rec.ttl, Max: rec.ttl}
			w.hasTTL = true
		} else {
			if rec.ttl < w.ttlRange.Min {
				w.ttlRange.Min = rec.ttl
			}
			if rec.ttl > w.ttlRange.Max {
				w.ttlRange.Max = rec.ttl
			}
		}
	case TimestampType:
		if !w.hasTS {
			w.tsRange = TimeRange{Min: rec.timeVal, Max: rec.timeVal}
			w.hasTS = true
		} else {
			if rec.timeVal < w.tsRange.Min {
				w.tsRange.Min = rec.timeVal
			}
			if rec.timeVal > w.tsRange.Max {
				w.tsRange.Max = rec.timeVal
			}
		}
	}
}

// Flush pushes buffered bytes to the destination without sealing the file.
func (w *Writer) Flush() error {
	return errors.Wrap(w.dst.Flush(), "bloblog: flushing")
}

// Close seals the file: it writes the 56-byte footer with the exact
// aggregates observed since WriteHeader and flushes. The sealed footer is
// returned for the caller's bookkeeping. No further records may be added.
func (w *Writer) Close() (Footer, error) {
	if !w.headerWritten {
		return Footer{}, errors.AssertionFailedf("bloblog: Close called before WriteHeader")
	}
	if w.sealed {
		return Footer{}, errors.AssertionFailedf("bloblog: file already sealed")
	}

	footer := newFooter()
	footer.blobCount = w.blobCount
	footer.setSequenceRange(w.snRange)
	if w.hasTTL {
		footer.setTTLRange(w.ttlRange)
	}
	if w.hasTS {
		footer.setTimestampRange(w.tsRange)
	}

	n, err := w.dst.Write(footer.Encode())
	w.offset += int64(n)
	if err != nil {
		return Footer{}, errors.Wrap(err, "bloblog: writing file footer")
	}
	if err := w.dst.Flush(); err != nil {
		return Footer{}, errors.Wrap(err, "bloblog: flushing sealed file")
	}
	w.sealed = true
	return footer, nil
}

// Size returns the number of bytes emitted so far, including buffered ones.
func (w *Writer) Size() int64 {
	return w.offset
}

package bloblog

import (
	"hash/crc32"

	"github.com/cockroachdb/errors"
)

// MagicNumber identifies a blob log file. It appears in both the file
// header and the file footer; anything else is rejected as a foreign file.
const MagicNumber uint32 = 0x626C6676

// Fixed sizes of the file's structural units, in bytes.
const (
	// HeaderSize is magic(4) + flags(4) + ttl guess(4+4) + ts guess(8+8).
	HeaderSize = 32

	// FooterSize is magic(4) + flags(4) + blob count(8) + ttl range(4+4) +
	// sequence range(8+8) + ts range(8+8).
	FooterSize = 56

	// RecordHeaderSize is header checksum(4) + payload checksum(4) +
	// key size(4) + blob size(8) + ttl(4) + time(8) + type(1) + subtype(1).
	RecordHeaderSize = 34

	// RecordFooterSize holds the sequence number, assigned by the owning
	// store after the record body is staged.
	RecordFooterSize = 8
)

// blockSize sizes the reader's reusable scratch buffer.
const blockSize = 32 * 1024

// Presence flag bits shared by the header and footer flags word.
const (
	flagHasTTL       uint32 = 1 << 0
	flagHasTimestamp uint32 = 1 << 1
)

// SequenceNumber is the owning store's global write-order identifier.
type SequenceNumber uint64

// RecordType is the fragment role of a record. Only FullType is produced
// today; the remaining values are reserved for a future writer that
// fragments records across files, and their ordinals are part of the wire
// format.
type RecordType uint8

const (
	FullType RecordType = iota
	FirstType
	MiddleType
	LastType
)

// RecordSubType selects how a record's ttl/time fields are interpreted.
type RecordSubType uint8

const (
	RegularType RecordSubType = iota
	TTLType
	TimestampType
)

// ExpirationRange is an inclusive [Min, Max] range of TTL values.
type ExpirationRange struct {
	Min uint32
	Max uint32
}

// TimeRange is an inclusive [Min, Max] range of timestamps.
type TimeRange struct {
	Min uint64
	Max uint64
}

// SequenceRange is an inclusive [Min, Max] range of sequence numbers.
type SequenceRange struct {
	Min SequenceNumber
	Max SequenceNumber
}

// ErrCorruption is a marker error for all corruption conditions: magic
// mismatch, undersized fixed regions, and size fields inconsistent with the
// bytes actually read. Use IsCorruption rather than direct comparison.
var ErrCorruption = errors.New("bloblog: corruption")

// ErrTruncatedRecord marks a record cut short by end-of-stream, the normal
// tail condition after an unclean shutdown. Truncation errors are also
// corruption errors; whether they are fatal is the caller's recovery
// policy.
var ErrTruncatedRecord = errors.New("bloblog: truncated record")

// IsCorruption returns true if the error indicates on-disk corruption.
func IsCorruption(err error) bool {
	return errors.Is(err, ErrCorruption)
}

// IsTruncation returns true if the error indicates a record truncated by
// end-of-stream.
func IsTruncation(err error) bool {
	return errors.Is(err, ErrTruncatedRecord)
}

func errCorruptionf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf("bloblog: "+format, args...), ErrCorruption)
}

func errTruncatedf(format string, args ...interface{}) error {
	return errors.Mark(
		errors.Mark(errors.Newf("bloblog: "+format, args...), ErrTruncatedRecord),
		ErrCorruption)
}

// crcTable is the Castagnoli polynomial used for both record checksums.
var crcTable = crc32.MakeTable(crc32.Castagnoli)

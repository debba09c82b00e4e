package bloblog

import (
	"encoding/binary"
	"fmt"
)

// Footer is the fixed 56-byte trailer written once when a blob log file is
// sealed. Unlike the header's advisory guesses, its TTL/timestamp ranges
// are exact aggregates over the file's records, and the sequence-number
// range is always present. A file that crashed before sealing has no
// footer; readers discover that by scanning records to end-of-file.
type Footer struct {
	magicNumber  uint32
	blobCount    uint64
	hasTTL       bool
	ttlRange     ExpirationRange
	hasTimestamp bool
	tsRange      TimeRange
	snRange      SequenceRange
}

// MagicNumber returns the magic constant recorded in the footer.
func (f *Footer) MagicNumber() uint32 { return f.magicNumber }

// BlobCount returns the number of records in the file.
func (f *Footer) BlobCount() uint64 { return f.blobCount }

// HasTTL reports whether the file contains TTL'd records.
func (f *Footer) HasTTL() bool { return f.hasTTL }

// HasTimestamp reports whether the file contains timestamp-tagged records.
func (f *Footer) HasTimestamp() bool { return f.hasTimestamp }

// TTLRange returns the exact TTL range over the file's records, if any
// carried a TTL.
func (f *Footer) TTLRange() (ExpirationRange, bool) {
	return f.ttlRange, f.hasTTL
}

// TimestampRange returns the exact timestamp range over the file's records,
// if any carried a timestamp.
func (f *Footer) TimestampRange() (TimeRange, bool) {
	return f.tsRange, f.hasTimestamp
}

// SequenceRange returns the minimum and maximum sequence number across the
// file's records.
func (f *Footer) SequenceRange() SequenceRange { return f.snRange }

// Summary field setters are package-private: only the writer path, which
// observes every record, may populate them.
func (f *Footer) setTTLRange(ttl ExpirationRange) {
	f.ttlRange = ttl
	f.hasTTL = true
}

func (f *Footer) setTimestampRange(ts TimeRange) {
	f.tsRange = ts
	f.hasTimestamp = true
}

func (f *Footer) setSequenceRange(sn SequenceRange) {
	f.snRange = sn
}

// Encode serializes the footer into a fresh 56-byte slice.
// Layout: magic(4) + flags(4) + blob count(8) + ttl range(4+4) +
// sequence range(8+8) + ts range(8+8), little-endian, absent ranges
// zero-filled.
func (f *Footer) Encode() []byte {
	buf := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(buf[0:4], f.magicNumber)

	var flags uint32
	if f.hasTTL {
		flags |= flagHasTTL
	}
	if f.hasTimestamp {
		flags |= flagHasTimestamp
	}
	binary.LittleEndian.PutUint32(buf[4:8], flags)
	binary.LittleEndian.PutUint64(buf[8:16], f.blobCount)

	if f.hasTTL {
		binary.LittleEndian.PutUint32(buf[16:20], f.ttlRange.Min)
		binary.LittleEndian.PutUint32(buf[20:24], f.ttlRange.Max)
	}
	binary.LittleEndian.PutUint64(buf[24:32], uint64(f.snRange.Min))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(f.snRange.Max))
	if f.hasTimestamp {
		binary.LittleEndian.PutUint64(buf[40:48], f.tsRange.Min)
		binary.LittleEndian.PutUint64(buf[48:56], f.tsRange.Max)
	}
	return buf
}

// DecodeFooter decodes a file footer from data. It fails with a corruption
// error on short input or a magic mismatch; on error the returned Footer is
// the zero value.
func DecodeFooter(data []byte) (Footer, error) {
	if len(data) < FooterSize {
		return Footer{}, errCorruptionf("file footer too short: %d bytes, need %d", len(data), FooterSize)
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		return Footer{}, errCorruptionf("bad file footer magic number: 0x%08x", magic)
	}

	f := Footer{magicNumber: magic}
	flags := binary.LittleEndian.Uint32(data[4:8])
	f.blobCount = binary.LittleEndian.Uint64(data[8:16])
	if flags&flagHasTTL != 0 {
		f.setTTLRange(ExpirationRange{
			Min: binary.LittleEndian.Uint32(data[16:20]),
			Max: binary.LittleEndian.Uint32(data[20:24]),
		})
	}
	f.snRange = SequenceRange{
		Min: SequenceNumber(binary.LittleEndian.Uint64(data[24:32])),
		Max: SequenceNumber(binary.LittleEndian.Uint64(data[32:40])),
	}
	if flags&flagHasTimestamp != 0 {
		f.setTimestampRange(TimeRange{
			Min: binary.LittleEndian.Uint64(data[40:48]),
			Max: binary.LittleEndian.Uint64(data[48:56]),
		})
	}
	return f, nil
}

// String renders the footer for diagnostics.
func (f *Footer) String() string {
	s := fmt.Sprintf("footer{count: %d, sn: [%d, %d]", f.blobCount, f.snRange.Min, f.snRange.Max)
	if f.hasTTL {
		s += fmt.Sprintf(", ttl: [%d, %d]", f.ttlRange.Min, f.ttlRange.Max)
	}
	if f.hasTimestamp {
		s += fmt.Sprintf(", ts: [%d, %d]", f.tsRange.Min, f.tsRange.Max)
	}
	return s + "}"
}

func newFooter() Footer {
	return Footer{magicNumber: MagicNumber}
}

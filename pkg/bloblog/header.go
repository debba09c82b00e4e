package bloblog

import "encoding/binary"

// Header is the fixed 32-byte region written once at the start of every
// blob log file. The TTL and timestamp guesses are advisory ranges supplied
// by the writer; either may be absent, and decode reproduces exactly the
// presence the encoder recorded.
type Header struct {
	magicNumber  uint32
	hasTTL       bool
	ttlGuess     ExpirationRange
	hasTimestamp bool
	tsGuess      TimeRange
}

// HasTTL reports whether the file advertises a TTL guess.
func (h *Header) HasTTL() bool { return h.hasTTL }

// HasTimestamp reports whether the file advertises a timestamp guess.
func (h *Header) HasTimestamp() bool { return h.hasTimestamp }

// TTLGuess returns the advisory TTL range, if present.
func (h *Header) TTLGuess() (ExpirationRange, bool) {
	return h.ttlGuess, h.hasTTL
}

// TimestampGuess returns the advisory timestamp range, if present.
func (h *Header) TimestampGuess() (TimeRange, bool) {
	return h.tsGuess, h.hasTimestamp
}

// Only the writer path may set the advisory ranges; there are no public
// setters.
func (h *Header) setTTLGuess(ttl ExpirationRange) {
	h.ttlGuess = ttl
	h.hasTTL = true
}

func (h *Header) setTimestampGuess(ts TimeRange) {
	h.tsGuess = ts
	h.hasTimestamp = true
}

// Encode serializes the header into a fresh 32-byte slice.
// Layout: magic(4) + flags(4) + ttl guess(4+4) + ts guess(8+8),
// little-endian, absent ranges zero-filled.
func (h *Header) Encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.magicNumber)

	var flags uint32
	if h.hasTTL {
		flags |= flagHasTTL
	}
	if h.hasTimestamp {
		flags |= flagHasTimestamp
	}
	binary.LittleEndian.PutUint32(buf[4:8], flags)

	if h.hasTTL {
		binary.LittleEndian.PutUint32(buf[8:12], h.ttlGuess.Min)
		binary.LittleEndian.PutUint32(buf[12:16], h.ttlGuess.Max)
	}
	if h.hasTimestamp {
		binary.LittleEndian.PutUint64(buf[16:24], h.tsGuess.Min)
		binary.LittleEndian.PutUint64(buf[24:32], h.tsGuess.Max)
	}
	return buf
}

// DecodeHeader decodes a file header from data. It fails with a corruption
// error on short input or a magic mismatch; on error the returned Header is
// the zero value.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errCorruptionf("file header too short: %d bytes, need %d", len(data), HeaderSize)
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != MagicNumber {
		return Header{}, errCorruptionf("bad file header magic number: 0x%08x", magic)
	}

	h := Header{magicNumber: magic}
	flags := binary.LittleEndian.Uint32(data[4:8])
	if flags&flagHasTTL != 0 {
		h.setTTLGuess(ExpirationRange{
			Min: binary.LittleEndian.Uint32(data[8:12]),
			Max: binary.LittleEndian.Uint32(data[12:16]),
		})
	}
	if flags&flagHasTimestamp != 0 {
		h.setTimestampGuess(TimeRange{
			Min: binary.LittleEndian.Uint64(data[16:24]),
			Max: binary.LittleEndian.Uint64(data[24:32]),
		})
	}
	return h, nil
}

func newHeader() Header {
	return Header{magicNumber: MagicNumber}
}

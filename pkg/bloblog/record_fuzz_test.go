//go:build fuzz
// +build fuzz

package bloblog

import (
	"bytes"
	"testing"
)

// FuzzRecord_DecodeHeader throws arbitrary bytes at the record header
// decoder: it must reject short input, never panic, and round-trip
// whatever it accepts.
func FuzzRecord_DecodeHeader(f *testing.F) {
	seed := Record{keySize: 2, blobSize: 5, subType: TTLType, ttl: 60}
	buf := make([]byte, RecordHeaderSize)
	seed.encodeHeaderTo(buf)

	f.Add(buf)
	f.Add([]byte{})
	f.Add(bytes.Repeat([]byte{0xff}, RecordHeaderSize))

	f.Fuzz(func(t *testing.T, data []byte) {
		var rec Record
		err := rec.decodeHeaderFrom(data)
		if len(data) < RecordHeaderSize {
			if err == nil {
				t.Fatalf("accepted %d-byte header", len(data))
			}
			if !IsCorruption(err) {
				t.Fatalf("short input not reported as corruption: %v", err)
			}
			return
		}
		if err != nil {
			t.Fatalf("rejected full-size header: %v", err)
		}

		reencoded := make([]byte, RecordHeaderSize)
		rec.encodeHeaderTo(reencoded)
		// encodeHeaderTo recomputes the header checksum, so compare
		// everything after the checksum word.
		if !bytes.Equal(reencoded[4:], data[4:RecordHeaderSize]) {
			t.Fatalf("round trip mismatch:\n got %x\nwant %x", reencoded[4:], data[4:RecordHeaderSize])
		}
	})
}

// FuzzHeader_Decode does the same for the file header decoder.
func FuzzHeader_Decode(f *testing.F) {
	h := newHeader()
	h.setTTLGuess(ExpirationRange{Min: 1, Max: 2})
	f.Add(h.Encode())
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		decoded, err := DecodeHeader(data)
		if err != nil {
			if !IsCorruption(err) {
				t.Fatalf("decode error is not corruption: %v", err)
			}
			return
		}
		// Reserved flag bits are not preserved, so round-trip through a
		// re-encode rather than comparing raw bytes.
		again, err := DecodeHeader(decoded.Encode())
		if err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}
		if again != decoded {
			t.Fatalf("accepted header does not round trip: %+v vs %+v", again, decoded)
		}
	})
}

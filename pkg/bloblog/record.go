package bloblog

import (
	"encoding/binary"
	"hash/crc32"
)

// Record is one stored value plus its metadata. A Reader fills the same
// Record across calls; the key/blob byte storage is owned by the Record and
// allocated only when a read level materializes it, so those slices stay
// valid across later Reader calls until the Record is reused.
//
// The sequence number lives in a trailing 8-byte record footer, not in the
// 34-byte record header, because the owning store assigns it after the
// record body is staged.
type Record struct {
	headerChecksum  uint32
	payloadChecksum uint32
	keySize         uint32
	blobSize        uint64
	ttl             uint32
	timeVal         uint64
	sn              SequenceNumber
	recordType      RecordType
	subType         RecordSubType

	// key/blob alias keyBuf/blobBuf when materialized, and are nil
	// otherwise.
	key     []byte
	blob    []byte
	keyBuf  []byte
	blobBuf []byte
}

// HeaderChecksum returns the checksum over the record's header fields.
func (r *Record) HeaderChecksum() uint32 { return r.headerChecksum }

// PayloadChecksum returns the checksum over the record's key and blob
// bytes. Depending on the write path this field may be unset (zero).
func (r *Record) PayloadChecksum() uint32 { return r.payloadChecksum }

// KeySize returns the key length recorded in the header.
func (r *Record) KeySize() uint32 { return r.keySize }

// BlobSize returns the blob length recorded in the header.
func (r *Record) BlobSize() uint64 { return r.blobSize }

// TTL returns the record's TTL value; meaningful only for TTLType records.
func (r *Record) TTL() uint32 { return r.ttl }

// Timestamp returns the record's time value; meaningful only for
// TimestampType records.
func (r *Record) Timestamp() uint64 { return r.timeVal }

// SequenceNumber returns the sequence number from the record footer.
func (r *Record) SequenceNumber() SequenceNumber { return r.sn }

// Type returns the record's fragment role.
func (r *Record) Type() RecordType { return r.recordType }

// SubType returns the record's payload subtype.
func (r *Record) SubType() RecordSubType { return r.subType }

// Key returns the materialized key, or nil if the read level skipped it.
func (r *Record) Key() []byte { return r.key }

// Blob returns the materialized blob, or nil if the read level skipped it.
func (r *Record) Blob() []byte { return r.blob }

// clear resets all decoded fields while keeping the owned buffers for
// reuse.
func (r *Record) clear() {
	r.headerChecksum = 0
	r.payloadChecksum = 0
	r.keySize = 0
	r.blobSize = 0
	r.ttl = 0
	r.timeVal = 0
	r.sn = 0
	r.recordType = FullType
	r.subType = RegularType
	r.key = nil
	r.blob = nil
}

// resizeKeyBuffer sizes the owned key storage to exactly n bytes,
// reallocating only when it must grow.
func (r *Record) resizeKeyBuffer(n int) {
	if cap(r.keyBuf) < n {
		r.keyBuf = make([]byte, n)
	}
	r.keyBuf = r.keyBuf[:n]
}

// resizeBlobBuffer sizes the owned blob storage to exactly n bytes,
// reallocating only when it must grow.
func (r *Record) resizeBlobBuffer(n int) {
	if cap(r.blobBuf) < n {
		r.blobBuf = make([]byte, n)
	}
	r.blobBuf = r.blobBuf[:n]
}

// decodeHeaderFrom decodes the fixed 34-byte record header.
// Layout: header checksum(4) + payload checksum(4) + key size(4) +
// blob size(8) + ttl(4) + time(8) + type(1) + subtype(1), little-endian.
//
// Checksums are not verified here; header decode runs before the payload
// bytes exist, so verification is layered above (see VerifyRecord). On
// error the record is left cleared.
func (r *Record) decodeHeaderFrom(data []byte) error {
	r.clear()
	if len(data) < RecordHeaderSize {
		return errCorruptionf("record header too short: %d bytes, need %d", len(data), RecordHeaderSize)
	}

	r.headerChecksum = binary.LittleEndian.Uint32(data[0:4])
	r.payloadChecksum = binary.LittleEndian.Uint32(data[4:8])
	r.keySize = binary.LittleEndian.Uint32(data[8:12])
	r.blobSize = binary.LittleEndian.Uint64(data[12:20])
	r.ttl = binary.LittleEndian.Uint32(data[20:24])
	r.timeVal = binary.LittleEndian.Uint64(data[24:32])
	r.recordType = RecordType(data[32])
	r.subType = RecordSubType(data[33])
	return nil
}

// encodeHeaderTo writes the 34-byte record header into buf, computing the
// header checksum over the fields that follow the two checksum words.
func (r *Record) encodeHeaderTo(buf []byte) {
	_ = buf[RecordHeaderSize-1]
	binary.LittleEndian.PutUint32(buf[4:8], r.payloadChecksum)
	binary.LittleEndian.PutUint32(buf[8:12], r.keySize)
	binary.LittleEndian.PutUint64(buf[12:20], r.blobSize)
	binary.LittleEndian.PutUint32(buf[20:24], r.ttl)
	binary.LittleEndian.PutUint64(buf[24:32], r.timeVal)
	buf[32] = byte(r.recordType)
	buf[33] = byte(r.subType)
	r.headerChecksum = crc32.Checksum(buf[8:RecordHeaderSize], crcTable)
	binary.LittleEndian.PutUint32(buf[0:4], r.headerChecksum)
}

func computePayloadChecksum(key, blob []byte) uint32 {
	crc := crc32.Update(0, crcTable, key)
	return crc32.Update(crc, crcTable, blob)
}

// VerifyRecord checks the record's checksums against its contents. The
// header checksum is always checked. The payload checksum is checked only
// when both key and blob were materialized by the read level, and is
// skipped when the writer left it unset. Reject-versus-warn on failure is
// the caller's policy; the sequential reader never calls this.
func VerifyRecord(r *Record) error {
	var hdr [RecordHeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[8:12], r.keySize)
	binary.LittleEndian.PutUint64(hdr[12:20], r.blobSize)
	binary.LittleEndian.PutUint32(hdr[20:24], r.ttl)
	binary.LittleEndian.PutUint64(hdr[24:32], r.timeVal)
	hdr[32] = byte(r.recordType)
	hdr[33] = byte(r.subType)
	if got := crc32.Checksum(hdr[8:], crcTable); got != r.headerChecksum {
		return errCorruptionf("record header checksum mismatch: computed 0x%08x, stored 0x%08x", got, r.headerChecksum)
	}

	if r.payloadChecksum != 0 && r.key != nil && r.blob != nil {
		if got := computePayloadChecksum(r.key, r.blob); got != r.payloadChecksum {
			return errCorruptionf("record payload checksum mismatch: computed 0x%08x, stored 0x%08x", got, r.payloadChecksum)
		}
	}
	return nil
}

// Package bloblog implements the on-disk format and sequential reader for
// blob log files: append-only side-store files that hold large values
// out-of-line from a key-value engine's primary index. The index stays
// compact by storing only (file, offset, size) pointers; the values live
// here and are retrieved by offset.
//
// # File Layout
//
// A blob log file is, in order:
//
//	[File header: 32 bytes]
//	[Record 1][Record 2]...[Record N]
//	[File footer: 56 bytes]
//
// and each record is:
//
//	[Record header: 34 bytes][Key][Blob][Record footer: 8 bytes]
//
// All integers are little-endian. The file header carries the magic number
// and optional advisory TTL/timestamp ranges; the footer, written when the
// file is sealed, carries the record count and exact aggregate ranges. A
// file that crashed before sealing has no footer, which is a normal
// condition: recovery scans records until end-of-file.
//
// The record footer holds the sequence number, separated from the record
// header because the owning store assigns it after the record body is
// staged.
//
// # Reading
//
// Reader walks a file strictly forward, one structural unit per call:
// ReadHeader once, then ReadRecord per record, then ReadFooter. ReadRecord
// takes a ReadLevel choosing how much payload to materialize; the stream
// position advances identically at every level. The Reader verifies no
// checksums; VerifyRecord layers that policy above it. ScanFile wires the
// pieces into a whole-file pass with recovery-mode handling for truncated
// tails.
//
// # Writing
//
// Writer produces well-formed files and owns the aggregate summary fields
// the footer seals. Deciding when files are created, rolled, or
// garbage-collected belongs to the surrounding store.
//
// Readers and Writers are single-threaded; different files may be
// processed concurrently with one instance each.
package bloblog

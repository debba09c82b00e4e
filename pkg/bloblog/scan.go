package bloblog

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// ScanOptions configures a whole-file pass over a blob log.
type ScanOptions struct {
	// Level controls how much of each record is materialized for the
	// callback.
	Level ReadLevel

	// Recovery decides whether a truncated tail record aborts the scan or
	// is reported as a clean end-of-file.
	Recovery RecoveryMode

	// VerifyChecksums runs VerifyRecord on every record. The payload
	// checksum can only be checked at ReadLevelHeaderFooterKeyBlob.
	VerifyChecksums bool
}

// ScanResult summarizes one pass over a blob log file.
type ScanResult struct {
	// Header is the decoded file header.
	Header Header

	// Records is the number of complete records read.
	Records uint64

	// BytesScanned is the total bytes consumed from the file.
	BytesScanned uint64

	// Footer is the decoded file footer, or nil if the file was never
	// sealed (crash before seal) or its tail was dropped.
	Footer *Footer

	// Truncated reports that a partial tail record was encountered and
	// tolerated; TruncationOffset is where it began.
	Truncated        bool
	TruncationOffset uint64
}

// ScanFile reads the blob log at path from header to footer, invoking fn
// (when non-nil) for each record. The *Record passed to fn is reused
// between calls; fn must copy anything it keeps.
//
// The reader below this has no way to tell the footer from one more
// record, so ScanFile uses the file size: once exactly FooterSize bytes
// remain at a record boundary, the rest is read as the footer. A file that
// ends at a record boundary without those bytes simply has no footer. A
// tail cut mid-record is corruption under RecoveryStrict and a reported,
// non-fatal condition under RecoveryTolerant; records before the cut are
// valid either way.
func ScanFile(path string, opts ScanOptions, fn func(*Record) error) (*ScanResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "bloblog: opening %s", path)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "bloblog: stat %s", path)
	}
	fileSize := uint64(stat.Size())

	r := NewReader(f)
	header, err := r.ReadHeader()
	if err != nil {
		return nil, err
	}

	res := &ScanResult{Header: header}
	var rec Record
	for {
		remaining := fileSize - r.BytesConsumed()
		if remaining == 0 {
			break
		}
		if remaining == FooterSize {
			footer, err := r.ReadFooter()
			if err != nil {
				if opts.Recovery == RecoveryTolerant && IsCorruption(err) {
					res.Truncated = true
					res.TruncationOffset = fileSize - FooterSize
					break
				}
				return nil, err
			}
			res.Footer = &footer
			break
		}

		recordOffset := r.BytesConsumed()
		if err := r.ReadRecord(&rec, opts.Level); err != nil {
			if err == io.EOF {
				break
			}
			if IsTruncation(err) && opts.Recovery == RecoveryTolerant {
				res.Truncated = true
				res.TruncationOffset = recordOffset
				break
			}
			return nil, err
		}
		if opts.VerifyChecksums {
			if err := VerifyRecord(&rec); err != nil {
				return nil, errors.Wrapf(err, "at offset %d", recordOffset)
			}
		}
		res.Records++
		if fn != nil {
			if err := fn(&rec); err != nil {
				return nil, err
			}
		}
	}

	res.BytesScanned = r.BytesConsumed()
	return res, nil
}

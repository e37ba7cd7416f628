package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

// sniffLen is the number of leading bytes used for MIME detection.
const sniffLen = 1024

// Summary describes the content of one ingested stream.
type Summary struct {
	// SHA256 is the lowercase hex digest of the full stream
	SHA256 string

	// MIMEType is sniffed from the leading bytes, without parameters
	MIMEType string

	// Size is the stream length in bytes
	Size int64
}

// Digest reads r in full and returns its SHA-256 digest, sniffed MIME type,
// and size in bytes. The reader is rewound to the start before returning so
// the caller can re-read it for persistence.
func Digest(r io.ReadSeeker) (*Summary, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to start: %w", err)
	}

	h := sha256.New()
	size, err := io.Copy(h, r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind for sniff: %w", err)
	}

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("read sniff prefix: %w", err)
	}
	mtype := mimetype.Detect(buf[:n]).String()
	// Strip parameters like "; charset=utf-8" so stored types stay bare
	if mediaType, _, perr := mime.ParseMediaType(mtype); perr == nil {
		mtype = mediaType
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind after sniff: %w", err)
	}

	return &Summary{
		SHA256:   hex.EncodeToString(h.Sum(nil)),
		MIMEType: mtype,
		Size:     size,
	}, nil
}

// DigestFile re-hashes the file at path. Used for integrity verification
// against the digest recorded at ingestion.
func DigestFile(f io.Reader) (string, int64, error) {
	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("read content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

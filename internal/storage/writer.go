package storage

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer stores immutable file blobs under a root directory. Blobs are
// written once at ingestion and never modified.
type Writer struct {
	root string
}

// NewWriter returns a Writer rooted at dir. The directory is created on
// first write, not here, so constructing a Writer never touches disk.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// Root returns the storage root directory.
func (w *Writer) Root() string {
	return w.root
}

// FileName returns the storage name for an upload: the owning document's id,
// an underscore, and the sanitized original filename. The id prefix gives
// every document its own namespace, so equal filenames in different
// documents map to distinct paths.
func FileName(docID, original string) string {
	return docID + "_" + SanitizeForFilename(original)
}

// Write copies r to the blob for (docID, filename) and returns the final
// absolute path. The content goes to a temp file in the same directory,
// is synced, then renamed into place. A failed write removes the temp file
// and leaves no final path, so a database row can only ever reference a
// fully written blob.
func (w *Writer) Write(docID, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(w.root, 0700); err != nil {
		return "", fmt.Errorf("create storage root: %w", err)
	}

	finalPath, err := filepath.Abs(filepath.Join(w.root, FileName(docID, filename)))
	if err != nil {
		return "", fmt.Errorf("resolve storage path: %w", err)
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return "", fmt.Errorf("generate temp file name: %w", err)
	}
	tempPath := finalPath + "." + hex.EncodeToString(randBytes) + ".tmp"

	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	// Clean up temp file on failure
	success := false
	defer func() {
		if f != nil {
			f.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write content: %w", err)
	}

	// Ensure bytes hit disk before the rename makes the path visible
	if err := f.Sync(); err != nil {
		return "", fmt.Errorf("sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close: %w", err)
	}
	f = nil

	if err := os.Rename(tempPath, finalPath); err != nil {
		return "", fmt.Errorf("finalize: %w", err)
	}

	success = true
	return finalPath, nil
}

// Remove deletes stored blobs, ignoring individual failures. Used to clean
// up after an aborted ingestion.
func (w *Writer) Remove(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

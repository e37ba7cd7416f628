package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"docstore/internal/config"
	"docstore/internal/db"
	"docstore/internal/document"
	"docstore/internal/errors"
	"docstore/internal/storage"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Title string       // required
	Notes string       // optional markdown
	Tags  []string     // cleaned before persistence
	Files []FileUpload // at least one
}

// StoredFile describes one successfully ingested file.
type StoredFile struct {
	Filename  string `json:"filename"`
	Filesize  int64  `json:"filesize"`
	MIMEType  string `json:"mimetype"`
	SHA256    string `json:"sha256"`
	LocalPath string `json:"local_path"`
}

// FileFailure describes one upload that could not be ingested.
type FileFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	DocumentID string        `json:"document_id"`
	CreatedAt  int64         `json:"created_at"`
	Stored     []StoredFile  `json:"stored_files"`
	Failed     []FileFailure `json:"failed_files,omitempty"`
}

// Add ingests a new document: digests and stores each upload, then inserts
// the document with its surviving files and tags in one transaction.
//
// Files are processed independently. An upload that cannot be read, exceeds
// the size limit, or fails to write is reported in Failed and skipped; the
// document still commits with the files that made it. If no file makes it,
// nothing is persisted.
func Add(ctx context.Context, database *sql.DB, cfg *config.Config, store *storage.Writer, input AddInput) (*AddOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewValidation("title is required")
	}
	if len(input.Files) == 0 {
		return nil, errors.NewValidation("at least one file is required")
	}

	// Storage paths derive from the sanitized name, so two uploads whose
	// names sanitize alike would land on the same blob.
	seen := make(map[string]bool, len(input.Files))
	for _, up := range input.Files {
		if strings.TrimSpace(up.Name) == "" {
			return nil, errors.NewValidation("file name must not be empty")
		}
		key := storage.SanitizeForFilename(up.Name)
		if seen[key] {
			return nil, errors.NewValidation(fmt.Sprintf("duplicate filename in submission: %s", up.Name))
		}
		seen[key] = true
	}

	tags := document.CleanTags(input.Tags)

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	var (
		files   []document.File
		failed  []FileFailure
		written []string
	)
	for _, up := range input.Files {
		select {
		case <-ctx.Done():
			store.Remove(written)
			return nil, errors.NewCancelled("add")
		default:
		}

		sum, err := storage.Digest(up.Content)
		if err != nil {
			failed = append(failed, FileFailure{Filename: up.Name, Reason: err.Error()})
			continue
		}
		if cfg != nil && cfg.MaxFileBytes > 0 && sum.Size > cfg.MaxFileBytes {
			failed = append(failed, FileFailure{
				Filename: up.Name,
				Reason:   fmt.Sprintf("file exceeds size limit of %d bytes", cfg.MaxFileBytes),
			})
			continue
		}

		path, err := store.Write(id, up.Name, up.Content)
		if err != nil {
			failed = append(failed, FileFailure{Filename: up.Name, Reason: err.Error()})
			continue
		}
		written = append(written, path)

		files = append(files, document.File{
			Filename:  up.Name,
			Filesize:  sum.Size,
			MIMEType:  sum.MIMEType,
			SHA256:    sum.SHA256,
			LocalPath: path,
		})
	}

	if len(files) == 0 {
		return nil, errors.NewStorage("", fmt.Errorf("no file could be stored (%d failed)", len(failed)))
	}

	doc := &document.Document{
		ID:        id,
		Title:     title,
		Notes:     input.Notes,
		Tags:      tags,
		Files:     files,
		CreatedAt: now,
	}
	if err := db.InsertDocument(ctx, database, doc); err != nil {
		// The blobs are orphans without their metadata rows
		store.Remove(written)
		return nil, err
	}

	stored := make([]StoredFile, len(files))
	for i, f := range files {
		stored[i] = StoredFile{
			Filename:  f.Filename,
			Filesize:  f.Filesize,
			MIMEType:  f.MIMEType,
			SHA256:    f.SHA256,
			LocalPath: f.LocalPath,
		}
	}

	return &AddOutput{
		DocumentID: id,
		CreatedAt:  now,
		Stored:     stored,
		Failed:     failed,
	}, nil
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

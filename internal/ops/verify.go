package ops

import (
	"context"
	"database/sql"
	"strings"

	"docstore/internal/db"
	"docstore/internal/document"
	"docstore/internal/errors"
	"docstore/internal/storage"
)

// VerifyStatus classifies one file integrity check.
type VerifyStatus string

const (
	VerifyOK       VerifyStatus = "ok"       // bytes on disk hash to the stored digest
	VerifyMismatch VerifyStatus = "mismatch" // bytes differ from the stored digest
	VerifyMissing  VerifyStatus = "missing"  // blob cannot be read at local_path
)

// VerifyResult reports one file's integrity check.
type VerifyResult struct {
	DocumentID string       `json:"document_id"`
	Filename   string       `json:"filename"`
	LocalPath  string       `json:"local_path"`
	Status     VerifyStatus `json:"status"`
	Expected   string       `json:"expected_sha256,omitempty"`
	Actual     string       `json:"actual_sha256,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// VerifyInput contains parameters for the Verify operation.
type VerifyInput struct {
	ID string // empty checks the whole archive
}

// VerifyOutput contains the result of the Verify operation.
type VerifyOutput struct {
	Checked int            `json:"checked"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
	Results []VerifyResult `json:"results"`
}

// Verify re-hashes the stored bytes of each file and compares them against
// the digests recorded at ingestion. With an ID it checks one document,
// otherwise the whole archive.
func Verify(ctx context.Context, database *sql.DB, input VerifyInput) (*VerifyOutput, error) {
	var docs []document.Document
	if id := strings.TrimSpace(input.ID); id != "" {
		doc, err := db.GetByID(ctx, database, id)
		if err != nil {
			return nil, err
		}
		docs = []document.Document{*doc}
	} else {
		var err error
		docs, err = db.AllDocuments(ctx, database)
		if err != nil {
			return nil, err
		}
	}

	out := &VerifyOutput{Results: []VerifyResult{}}
	for i := range docs {
		for _, f := range docs[i].Files {
			select {
			case <-ctx.Done():
				return nil, errors.NewCancelled("verify")
			default:
			}
			out.Results = append(out.Results, checkFile(docs[i].ID, f))
		}
	}

	out.Checked = len(out.Results)
	for _, r := range out.Results {
		if r.Status == VerifyOK {
			out.Passed++
		}
	}
	out.Failed = out.Checked - out.Passed
	return out, nil
}

// checkFile hashes one stored blob and classifies the outcome.
func checkFile(docID string, f document.File) VerifyResult {
	r := VerifyResult{
		DocumentID: docID,
		Filename:   f.Filename,
		LocalPath:  f.LocalPath,
		Expected:   f.SHA256,
	}

	blob, err := openFileNoFollowRead(f.LocalPath)
	if err != nil {
		r.Status = VerifyMissing
		if !errors.Is(err, errors.ErrNotFound) {
			r.Error = err.Error()
		}
		return r
	}
	defer blob.Close()

	actual, _, err := storage.DigestFile(blob)
	if err != nil {
		r.Status = VerifyMissing
		r.Error = err.Error()
		return r
	}

	r.Actual = actual
	if actual != f.SHA256 {
		r.Status = VerifyMismatch
		return r
	}
	r.Status = VerifyOK
	return r
}

package db

import (
	"context"
	"database/sql"
	"strings"

	"docstore/internal/document"
	"docstore/internal/errors"
)

// InsertDocument stores a document with its files and tags in one
// transaction. Nothing is visible until every row has been written.
// Unique constraint violations (id collision, duplicate filename, reused
// storage path) surface as INTEGRITY errors.
func InsertDocument(ctx context.Context, db *sql.DB, d *document.Document) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO documents (document_id, title, notes, created_at, archived)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		d.ID, d.Title, d.Notes, d.CreatedAt, boolToInt(d.Archived))
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewIntegrity(err.Error())
		}
		return errors.NewInternal(err)
	}

	fileQuery := `
		INSERT INTO files (document_id, filename, filesize, mimetype, sha256, local_path)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for i := range d.Files {
		f := &d.Files[i]
		f.DocumentID = d.ID
		res, err := tx.ExecContext(ctx, fileQuery,
			f.DocumentID, f.Filename, f.Filesize, f.MIMEType, f.SHA256, f.LocalPath)
		if err != nil {
			if isUniqueConstraintError(err) {
				return errors.NewIntegrity(err.Error())
			}
			return errors.NewInternal(err)
		}
		if id, err := res.LastInsertId(); err == nil {
			f.FileID = id
		}
	}

	// OR IGNORE: duplicate tags for the same document are idempotent
	for _, tag := range d.Tags {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO tags (document_id, tag) VALUES (?, ?)", d.ID, tag); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetByID retrieves a document with its files and tags.
func GetByID(ctx context.Context, db *sql.DB, id string) (*document.Document, error) {
	var (
		d        document.Document
		archived int
	)
	query := `
		SELECT document_id, title, notes, created_at, archived
		FROM documents
		WHERE document_id = ?
	`
	err := db.QueryRowContext(ctx, query, id).
		Scan(&d.ID, &d.Title, &d.Notes, &d.CreatedAt, &archived)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	d.Archived = archived != 0

	files, err := filesByDocument(ctx, db, []string{id})
	if err != nil {
		return nil, err
	}
	d.Files = files[id]

	tags, err := tagsByDocument(ctx, db, []string{id})
	if err != nil {
		return nil, err
	}
	d.Tags = tags[id]

	return &d, nil
}

// SetArchived flips the archived flag. The update is idempotent: setting the
// flag to its current value still counts as a match. Unknown ids fail with
// NOT_FOUND.
func SetArchived(ctx context.Context, db *sql.DB, id string, archived bool) error {
	result, err := db.ExecContext(ctx,
		"UPDATE documents SET archived = ? WHERE document_id = ?", boolToInt(archived), id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// TagCount is one row of the tags report.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagCounts returns, per tag, the number of documents carrying it, ordered
// by tag. The primary key (document_id, tag) makes the plain count a count
// of distinct documents.
func TagCounts(ctx context.Context, db *sql.DB) ([]TagCount, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT tag, COUNT(*) FROM tags GROUP BY tag ORDER BY tag")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var counts []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, errors.NewInternal(err)
		}
		counts = append(counts, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return counts, nil
}

// AllDocuments loads every document with files and tags attached, newest
// first. Used by export and whole-archive verification.
func AllDocuments(ctx context.Context, db *sql.DB) ([]document.Document, error) {
	query := `
		SELECT document_id, title, notes, created_at, archived
		FROM documents
		ORDER BY created_at DESC, document_id DESC
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var docs []document.Document
	for rows.Next() {
		var (
			d        document.Document
			archived int
		)
		if err := rows.Scan(&d.ID, &d.Title, &d.Notes, &d.CreatedAt, &archived); err != nil {
			return nil, errors.NewInternal(err)
		}
		d.Archived = archived != 0
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	files, err := filesByDocument(ctx, db, nil)
	if err != nil {
		return nil, err
	}
	tags, err := tagsByDocument(ctx, db, nil)
	if err != nil {
		return nil, err
	}

	for i := range docs {
		docs[i].Files = files[docs[i].ID]
		docs[i].Tags = tags[docs[i].ID]
	}

	return docs, nil
}

// filesByDocument loads file rows grouped by document, in insertion order.
// A nil ids slice loads files for every document.
func filesByDocument(ctx context.Context, db *sql.DB, ids []string) (map[string][]document.File, error) {
	query := `
		SELECT file_id, document_id, filename, filesize, mimetype, sha256, local_path
		FROM files
	`
	var args []any
	if ids != nil {
		if len(ids) == 0 {
			return map[string][]document.File{}, nil
		}
		query += " WHERE document_id IN (" + placeholders(len(ids)) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += " ORDER BY file_id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	files := make(map[string][]document.File)
	for rows.Next() {
		var f document.File
		if err := rows.Scan(&f.FileID, &f.DocumentID, &f.Filename, &f.Filesize,
			&f.MIMEType, &f.SHA256, &f.LocalPath); err != nil {
			return nil, errors.NewInternal(err)
		}
		files[f.DocumentID] = append(files[f.DocumentID], f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return files, nil
}

// tagsByDocument loads tag lists grouped by document, in insertion order.
// A nil ids slice loads tags for every document.
func tagsByDocument(ctx context.Context, db *sql.DB, ids []string) (map[string][]string, error) {
	query := "SELECT document_id, tag FROM tags"
	var args []any
	if ids != nil {
		if len(ids) == 0 {
			return map[string][]string{}, nil
		}
		query += " WHERE document_id IN (" + placeholders(len(ids)) + ")"
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += " ORDER BY rowid"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	tags := make(map[string][]string)
	for rows.Next() {
		var id, tag string
		if err := rows.Scan(&id, &tag); err != nil {
			return nil, errors.NewInternal(err)
		}
		tags[id] = append(tags[id], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return tags, nil
}

// placeholders returns n comma-separated "?" markers.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// boolToInt converts a bool to the 0/1 form stored in SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

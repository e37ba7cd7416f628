package db

import (
	"context"
	"database/sql"
	"strings"

	"docstore/internal/document"
	"docstore/internal/errors"
	"docstore/internal/query"
)

// Search runs a compiled plan and returns matching documents as view rows,
// most recently created first, each carrying its tag list and file
// name/path lists. Results are not filtered by archived state; that is the
// caller's concern.
func Search(ctx context.Context, db *sql.DB, plan *query.Plan) ([]document.View, error) {
	q := "SELECT d.document_id, d.title, d.notes, d.created_at, d.archived FROM documents d"
	if !plan.Empty() {
		q += " WHERE " + strings.Join(plan.Predicates, " AND ")
	}
	q += " ORDER BY d.created_at DESC, d.document_id DESC"

	rows, err := db.QueryContext(ctx, q, plan.Args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var (
		views []document.View
		ids   []string
	)
	for rows.Next() {
		var (
			v        document.View
			archived int
		)
		if err := rows.Scan(&v.ID, &v.Title, &v.Notes, &v.CreatedAt, &archived); err != nil {
			return nil, errors.NewInternal(err)
		}
		v.Archived = archived != 0
		views = append(views, v)
		ids = append(ids, v.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if len(views) == 0 {
		return nil, nil
	}

	// Attach tag and file lists in Go rather than via joined group_concat:
	// a double join multiplies rows when a document has several of both,
	// and group_concat order is not guaranteed to pair names with paths.
	tags, err := tagsByDocument(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	files, err := filesByDocument(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	for i := range views {
		v := &views[i]
		v.Tags = tags[v.ID]
		for _, f := range files[v.ID] {
			v.Filenames = append(v.Filenames, f.Filename)
			v.LocalPaths = append(v.LocalPaths, f.LocalPath)
		}
	}

	return views, nil
}

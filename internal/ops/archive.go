package ops

import (
	"context"
	"database/sql"

	"docstore/internal/db"
)

// ArchiveInput contains parameters for the Archive operation.
type ArchiveInput struct {
	ID       string
	Archived bool
}

// ArchiveOutput contains the result of the Archive operation.
type ArchiveOutput struct {
	ID       string `json:"document_id"`
	Archived bool   `json:"archived"`
}

// Archive sets a document's archived flag. Setting the flag to its current
// value is a no-op; files and tags are untouched either way.
func Archive(ctx context.Context, database *sql.DB, input ArchiveInput) (*ArchiveOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}

	if err := db.SetArchived(ctx, database, id, input.Archived); err != nil {
		return nil, err
	}

	return &ArchiveOutput{ID: id, Archived: input.Archived}, nil
}

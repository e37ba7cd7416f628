package ops

import (
	"context"
	"database/sql"

	"docstore/internal/db"
	"docstore/internal/document"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	document.Document // embedded (copy, not pointer)
}

// Fetch retrieves a document with its files and tags.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id, err := ValidateID(input.ID)
	if err != nil {
		return nil, err
	}

	doc, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	return &FetchOutput{Document: *doc}, nil
}

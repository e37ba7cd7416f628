package ops

import (
	"context"
	"database/sql"

	"docstore/internal/db"
)

// TagCountsOutput contains the result of the TagCounts operation.
type TagCountsOutput struct {
	Tags []db.TagCount `json:"tags"`
}

// TagCounts reports every tag in the archive with the number of documents
// carrying it, ordered by tag.
func TagCounts(ctx context.Context, database *sql.DB) (*TagCountsOutput, error) {
	counts, err := db.TagCounts(ctx, database)
	if err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []db.TagCount{}
	}
	return &TagCountsOutput{Tags: counts}, nil
}

package ops

import (
	"context"
	"database/sql"

	"docstore/internal/db"
	"docstore/internal/document"
	"docstore/internal/query"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query           string // empty matches everything
	IncludeArchived bool
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Items []document.View `json:"items"`
	Count int             `json:"count"`
}

// Search compiles the query and runs it, most recently created first.
// Archived documents are dropped unless IncludeArchived is set; the
// repository itself does not filter by archive state.
func Search(ctx context.Context, database *sql.DB, input SearchInput) (*SearchOutput, error) {
	plan, err := query.Parse(input.Query)
	if err != nil {
		return nil, err
	}

	views, err := db.Search(ctx, database, plan)
	if err != nil {
		return nil, err
	}

	items := make([]document.View, 0, len(views))
	for _, v := range views {
		if v.Archived && !input.IncludeArchived {
			continue
		}
		items = append(items, v)
	}

	return &SearchOutput{Items: items, Count: len(items)}, nil
}

package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"docstore/internal/config"
	"docstore/internal/errors"
	"docstore/internal/ops"
	"docstore/internal/storage"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db    *sql.DB
	cfg   *config.Config
	store *storage.Writer
}

// NewHandlers creates a new Handlers instance. baseDir is the archive
// base directory used to resolve the file storage root.
func NewHandlers(db *sql.DB, cfg *config.Config, baseDir string) *Handlers {
	return &Handlers{
		db:    db,
		cfg:   cfg,
		store: storage.NewWriter(ops.StorageRoot(baseDir, cfg)),
	}
}

// Request types for each tool

// AddRequest represents the arguments for document_add.
type AddRequest struct {
	Title string   `json:"title"`
	Notes string   `json:"notes,omitempty"`
	Tags  []string `json:"tags,omitempty"`
	Paths []string `json:"paths"`
}

// SearchRequest represents the arguments for document_search.
type SearchRequest struct {
	Query           string `json:"query,omitempty"`
	IncludeArchived bool   `json:"include_archived,omitempty"`
}

// FetchRequest represents the arguments for document_fetch.
type FetchRequest struct {
	ID string `json:"id"`
}

// ArchiveRequest represents the arguments for document_archive.
type ArchiveRequest struct {
	ID       string `json:"id"`
	Archived bool   `json:"archived"`
}

// VerifyRequest represents the arguments for document_verify.
type VerifyRequest struct {
	ID string `json:"id,omitempty"`
}

// ExportRequest represents the arguments for document_export.
type ExportRequest struct {
	Path string `json:"path,omitempty"`
}

// Handler implementations

// HandleAdd handles the document_add tool call. Each source path is
// checked against the allowed directories before it is opened.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	uploads := make([]ops.FileUpload, 0, len(input.Paths))
	var opened []*os.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, path := range input.Paths {
		if err := ops.ValidateSourceFile(path, h.cfg); err != nil {
			return errorResult(err), nil
		}
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return errorResult(errors.NewFileNotFound(path)), nil
			}
			return errorResult(errors.NewStorage(filepath.Base(path), err)), nil
		}
		opened = append(opened, f)
		uploads = append(uploads, ops.FileUpload{Name: filepath.Base(path), Content: f})
	}

	result, err := ops.Add(ctx, h.db, h.cfg, h.store, ops.AddInput{
		Title: input.Title,
		Notes: input.Notes,
		Tags:  input.Tags,
		Files: uploads,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the document_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Search(ctx, h.db, ops.SearchInput{
		Query:           input.Query,
		IncludeArchived: input.IncludeArchived,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFetch handles the document_fetch tool call.
func (h *Handlers) HandleFetch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FetchRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Fetch(ctx, h.db, ops.FetchInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleArchive handles the document_archive tool call.
func (h *Handlers) HandleArchive(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ArchiveRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Archive(ctx, h.db, ops.ArchiveInput{
		ID:       input.ID,
		Archived: input.Archived,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTagCounts handles the document_tag_counts tool call.
func (h *Handlers) HandleTagCounts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.TagCounts(ctx, h.db)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleVerify handles the document_verify tool call.
func (h *Handlers) HandleVerify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[VerifyRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Verify(ctx, h.db, ops.VerifyInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the document_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewValidation(err.Error())), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{Path: input.Path})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Details are stripped from INTERNAL errors before they cross the wire.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var storeErr *errors.StoreError
	if stderrors.As(err, &storeErr) {
		errorObj := map[string]any{
			"code":    storeErr.Code,
			"message": storeErr.Message,
			"status":  storeErr.Status,
		}
		if storeErr.Code != errors.ErrInternal && storeErr.Details != nil {
			errorObj["details"] = storeErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}

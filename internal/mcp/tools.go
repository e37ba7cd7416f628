package mcp

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the document archive. Tool names follow the
// pattern "document_<action>" so clients can disable them by name.

var addToolDef = mcp.Tool{
	Name:        "document_add",
	Description: "Add a document to the archive. Reads the given files from disk, stores content-addressed copies, and records title, notes, and tags.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"title": map[string]interface{}{
				"type":        "string",
				"description": "Document title",
			},
			"notes": map[string]interface{}{
				"type":        "string",
				"description": "Free-form notes in Markdown",
			},
			"tags": map[string]interface{}{
				"type":        "array",
				"description": "Tags to attach (trimmed, deduplicated)",
				"items": map[string]interface{}{
					"type": "string",
				},
			},
			"paths": map[string]interface{}{
				"type":        "array",
				"description": "Absolute paths of files to ingest; each must lie inside an allowed directory",
				"items": map[string]interface{}{
					"type": "string",
				},
			},
		},
		Required: []string{"title", "paths"},
	},
}

var searchToolDef = mcp.Tool{
	Name:        "document_search",
	Description: "Search documents. Query syntax: tag:<v>, year:<yyyy>, mime:<v>, -<term> to exclude, and literal terms joined with AND/OR matching title or notes. Empty query returns everything.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Search query (empty matches all documents)",
			},
			"include_archived": map[string]interface{}{
				"type":        "boolean",
				"description": "Include archived documents in the results (default false)",
			},
		},
	},
}

var fetchToolDef = mcp.Tool{
	Name:        "document_fetch",
	Description: "Fetch a single document by ID, including its files and tags.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Document ID (ULID)",
			},
		},
		Required: []string{"id"},
	},
}

var archiveToolDef = mcp.Tool{
	Name:        "document_archive",
	Description: "Set a document's archived state. Archived documents are hidden from search unless include_archived is set; their files stay on disk.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Document ID (ULID)",
			},
			"archived": map[string]interface{}{
				"type":        "boolean",
				"description": "true to archive, false to restore",
			},
		},
		Required: []string{"id", "archived"},
	},
}

var tagCountsToolDef = mcp.Tool{
	Name:        "document_tag_counts",
	Description: "List every tag in use with the number of documents carrying it, ordered by tag.",
	InputSchema: mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	},
}

var verifyToolDef = mcp.Tool{
	Name:        "document_verify",
	Description: "Re-hash stored files and compare against the digests recorded at ingest. Reports ok, mismatch, or missing per file.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"id": map[string]interface{}{
				"type":        "string",
				"description": "Document ID to verify; omit to verify the whole archive",
			},
		},
	},
}

var exportToolDef = mcp.Tool{
	Name:        "document_export",
	Description: "Export all document metadata to a JSONL file (header line followed by one record per document). File content is not exported.",
	InputSchema: mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Destination path ending in .jsonl; defaults to ~/.docstore/exports/archive-<timestamp>.jsonl",
			},
		},
	},
}

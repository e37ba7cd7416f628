package document

// Document represents an archived entry: user metadata plus the files
// ingested with it.
type Document struct {
	// ID is a ULID that uniquely identifies this document
	ID string `json:"document_id"`

	// Title is the user-supplied title (non-empty, trimmed)
	Title string `json:"title"`

	// Notes is free-form markdown notes (may be empty, never NULL)
	Notes string `json:"notes"`

	// Tags is the cleaned tag list (trimmed, deduplicated, order preserved)
	Tags []string `json:"tags"`

	// Files is the stored files belonging to this document
	Files []File `json:"files"`

	// CreatedAt is the Unix timestamp when the document was created
	CreatedAt int64 `json:"created_at"`

	// Archived hides the document from default search results
	Archived bool `json:"archived"`
}

// File represents one stored blob belonging to a document. Rows are written
// once at ingestion and never updated.
type File struct {
	// FileID is the autoincrement row id
	FileID int64 `json:"file_id"`

	// DocumentID is the owning document's ULID
	DocumentID string `json:"document_id"`

	// Filename is the original upload name, kept as metadata only;
	// it never participates in the storage path unsanitized
	Filename string `json:"filename"`

	// Filesize is the stored size in bytes
	Filesize int64 `json:"filesize"`

	// MIMEType is sniffed from content at ingestion, never client-supplied
	MIMEType string `json:"mimetype"`

	// SHA256 is the lowercase hex digest of the stored bytes
	SHA256 string `json:"sha256"`

	// LocalPath is the absolute path of the blob under the storage root
	LocalPath string `json:"local_path"`
}

// View is a search result row: document fields plus the concatenated tag
// and file lists the result listing needs, without a per-document fetch.
type View struct {
	ID         string   `json:"document_id"`
	Title      string   `json:"title"`
	Notes      string   `json:"notes"`
	CreatedAt  int64    `json:"created_at"`
	Archived   bool     `json:"archived"`
	Tags       []string `json:"tags"`
	Filenames  []string `json:"filenames"`
	LocalPaths []string `json:"local_paths"`
}

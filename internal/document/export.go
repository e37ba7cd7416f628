package document

// ExportRecord represents a document record in JSONL export format.
// Exports carry metadata only; blob contents stay under the storage root
// and LocalPath lets a reader locate them.
type ExportRecord struct {
	ID        string       `json:"document_id"`
	Title     string       `json:"title"`
	Notes     string       `json:"notes"`
	Tags      []string     `json:"tags"`
	Files     []ExportFile `json:"files"`
	CreatedAt int64        `json:"created_at"`
	Archived  bool         `json:"archived"`
}

// ExportFile is the file metadata within an export record.
type ExportFile struct {
	Filename  string `json:"filename"`
	Filesize  int64  `json:"filesize"`
	MIMEType  string `json:"mimetype"`
	SHA256    string `json:"sha256"`
	LocalPath string `json:"local_path"`
}

// ToExportRecord converts a Document to its export form.
func ToExportRecord(d *Document) *ExportRecord {
	files := make([]ExportFile, 0, len(d.Files))
	for _, f := range d.Files {
		files = append(files, ExportFile{
			Filename:  f.Filename,
			Filesize:  f.Filesize,
			MIMEType:  f.MIMEType,
			SHA256:    f.SHA256,
			LocalPath: f.LocalPath,
		})
	}

	return &ExportRecord{
		ID:        d.ID,
		Title:     d.Title,
		Notes:     d.Notes,
		Tags:      d.Tags,
		Files:     files,
		CreatedAt: d.CreatedAt,
		Archived:  d.Archived,
	}
}

package web

import (
	"database/sql"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"

	"docstore/internal/config"
	"docstore/internal/document"
	"docstore/internal/errors"
	"docstore/internal/ops"
	"docstore/internal/storage"
)

// maxUploadMemory bounds the in-memory portion of a multipart upload;
// larger parts spill to temp files.
const maxUploadMemory = 32 << 20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	store    *storage.Writer
	renderer *Renderer
}

// HandleList handles GET /documents — list and search documents.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	archived := parseBoolParam(r, "archived")

	result, err := ops.Search(r.Context(), h.db, ops.SearchInput{
		Query:           query,
		IncludeArchived: archived,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Documents",
			Version: h.renderer.version,
			Nav:     "documents",
		},
		Items:    result.Items,
		Count:    result.Count,
		Query:    query,
		Archived: archived,
	})
}

// HandleNewForm handles GET /documents/new — show the upload form.
func (h *Handlers) HandleNewForm(w http.ResponseWriter, r *http.Request) {
	var maxBytes int64
	if h.cfg != nil {
		maxBytes = h.cfg.MaxFileBytes
	}

	h.renderer.renderPage(w, r, "new", NewPageData{
		PageData: PageData{
			Title:   "Add Document",
			Version: h.renderer.version,
			Nav:     "new",
		},
		MaxFileBytes: maxBytes,
	})
}

// HandleCreate handles POST /documents — ingest an uploaded document.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("invalid multipart form data"))
		return
	}

	headers := r.MultipartForm.File["files"]
	uploads := make([]ops.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			h.renderer.renderError(w, r, errors.NewStorage(fh.Filename, err))
			return
		}
		defer f.Close()
		uploads = append(uploads, ops.FileUpload{Name: fh.Filename, Content: f})
	}

	result, err := ops.Add(r.Context(), h.db, h.cfg, h.store, ops.AddInput{
		Title: r.FormValue("title"),
		Notes: r.FormValue("notes"),
		Tags:  document.ParseTagList(r.FormValue("tags")),
		Files: uploads,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/documents/"+result.DocumentID, http.StatusFound)
}

// HandleDetail handles GET /documents/{id} — view a single document.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("document id is required"))
		return
	}

	doc, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   doc.Title,
			Version: h.renderer.version,
			Nav:     "documents",
		},
		Document:      doc,
		RenderedNotes: renderMarkdown(doc.Notes),
	})
}

// HandleArchive handles POST /documents/{id}/archive — set archived state.
func (h *Handlers) HandleArchive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("document id is required"))
		return
	}

	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("invalid form data"))
		return
	}

	result, err := ops.Archive(r.Context(), h.db, ops.ArchiveInput{
		ID:       id,
		Archived: r.FormValue("archived") == "true",
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/documents/"+id)
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"document_id": result.ID,
			"archived":    result.Archived,
		})
		return
	}

	// Default: redirect back to the document
	http.Redirect(w, r, "/documents/"+id, http.StatusFound)
}

// HandleDownload handles GET /documents/{id}/files/{file} — download a stored blob.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewValidation("document id is required"))
		return
	}
	fileID, err := strconv.ParseInt(r.PathValue("file"), 10, 64)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewValidation("file id must be an integer"))
		return
	}

	doc, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var file *document.File
	for i := range doc.Files {
		if doc.Files[i].FileID == fileID {
			file = &doc.Files[i]
			break
		}
	}
	if file == nil {
		h.renderer.renderError(w, r, errors.NewFileNotFound(r.PathValue("file")))
		return
	}

	blob, err := os.Open(file.LocalPath)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewFileNotFound(file.Filename))
		return
	}
	defer blob.Close()

	info, err := blob.Stat()
	if err != nil {
		h.renderer.renderError(w, r, errors.NewStorage(file.Filename, err))
		return
	}

	// Serve with the recorded MIME type and original filename, not whatever
	// the sanitized blob name would sniff to.
	w.Header().Set("Content-Type", file.MIMEType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	http.ServeContent(w, r, file.Filename, info.ModTime(), blob)
}

// HandleTags handles GET /tags — tag usage report.
func (h *Handlers) HandleTags(w http.ResponseWriter, r *http.Request) {
	result, err := ops.TagCounts(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "tags", TagsPageData{
		PageData: PageData{
			Title:   "Tags",
			Version: h.renderer.version,
			Nav:     "tags",
		},
		Tags: result.Tags,
	})
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

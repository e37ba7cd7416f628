package ops

import (
	"io"
	"path/filepath"
	"strings"

	"docstore/internal/config"
	"docstore/internal/errors"
)

// FileUpload is one file submitted for ingestion. Content must be
// rewindable: it is read once for digesting and once for the blob write.
type FileUpload struct {
	Name    string
	Content io.ReadSeeker
}

// ValidateID checks and trims a document id.
func ValidateID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.NewValidation("document id is required")
	}
	return id, nil
}

// StorageRoot resolves the blob directory for a base directory: the
// configured override if set, otherwise <base>/files.
func StorageRoot(baseDir string, cfg *config.Config) string {
	if cfg != nil && cfg.StorageDir != "" {
		return cfg.StorageDir
	}
	return filepath.Join(baseDir, "files")
}

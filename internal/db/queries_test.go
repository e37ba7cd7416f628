package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"docstore/internal/document"
	"docstore/internal/errors"
)

// newTestDocument creates a document with two files and two tags for testing.
func newTestDocument(id, title string) *document.Document {
	return &document.Document{
		ID:        id,
		Title:     title,
		Notes:     "some notes",
		CreatedAt: time.Now().Unix(),
		Tags:      []string{"alpha", "beta"},
		Files: []document.File{
			{
				Filename:  "a.txt",
				Filesize:  3,
				MIMEType:  "text/plain",
				SHA256:    strings.Repeat("a", 64),
				LocalPath: "/tmp/store/" + id + "_a.txt",
			},
			{
				Filename:  "b.pdf",
				Filesize:  9,
				MIMEType:  "application/pdf",
				SHA256:    strings.Repeat("b", 64),
				LocalPath: "/tmp/store/" + id + "_b.pdf",
			},
		},
	}
}

func TestInsertAndGetByID(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	d := newTestDocument("01ABC123", "Tax Report")
	if err := InsertDocument(ctx, db, d); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	retrieved, err := GetByID(ctx, db, "01ABC123")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	if retrieved.ID != d.ID {
		t.Errorf("ID = %q, want %q", retrieved.ID, d.ID)
	}
	if retrieved.Title != d.Title {
		t.Errorf("Title = %q, want %q", retrieved.Title, d.Title)
	}
	if retrieved.Notes != d.Notes {
		t.Errorf("Notes = %q, want %q", retrieved.Notes, d.Notes)
	}
	if retrieved.CreatedAt != d.CreatedAt {
		t.Errorf("CreatedAt = %d, want %d", retrieved.CreatedAt, d.CreatedAt)
	}
	if retrieved.Archived {
		t.Error("Archived = true, want false")
	}

	if len(retrieved.Tags) != 2 || retrieved.Tags[0] != "alpha" || retrieved.Tags[1] != "beta" {
		t.Errorf("Tags = %v, want [alpha beta]", retrieved.Tags)
	}

	if len(retrieved.Files) != 2 {
		t.Fatalf("Files = %d, want 2", len(retrieved.Files))
	}
	// Insertion order preserved
	if retrieved.Files[0].Filename != "a.txt" || retrieved.Files[1].Filename != "b.pdf" {
		t.Errorf("file order = %q, %q; want a.txt, b.pdf",
			retrieved.Files[0].Filename, retrieved.Files[1].Filename)
	}
	for i, f := range retrieved.Files {
		if f.FileID == 0 {
			t.Errorf("Files[%d].FileID = 0, want assigned row id", i)
		}
		if f.DocumentID != d.ID {
			t.Errorf("Files[%d].DocumentID = %q, want %q", i, f.DocumentID, d.ID)
		}
	}
	if retrieved.Files[1].MIMEType != "application/pdf" {
		t.Errorf("MIMEType = %q, want application/pdf", retrieved.Files[1].MIMEType)
	}
	if retrieved.Files[0].SHA256 != strings.Repeat("a", 64) {
		t.Errorf("SHA256 = %q, want 64 a's", retrieved.Files[0].SHA256)
	}
}

func TestInsertDocument_NoFilesNoTags(t *testing.T) {
	// The db layer itself does not enforce the one-file minimum; that is
	// checked before ingestion reaches it
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	d := &document.Document{ID: "01BARE", Title: "Bare", CreatedAt: time.Now().Unix()}
	if err := InsertDocument(ctx, db, d); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	retrieved, err := GetByID(ctx, db, "01BARE")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(retrieved.Files) != 0 || len(retrieved.Tags) != 0 {
		t.Errorf("Files = %v, Tags = %v; want both empty", retrieved.Files, retrieved.Tags)
	}
}

func TestInsertDocument_DuplicateID(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	first := newTestDocument("01DUP", "First")
	if err := InsertDocument(ctx, db, first); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	second := newTestDocument("01DUP", "Second")
	for i := range second.Files {
		second.Files[i].LocalPath += ".other"
	}
	err = InsertDocument(ctx, db, second)
	if !errors.Is(err, errors.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity for id collision, got: %v", err)
	}

	// The first document must be untouched
	retrieved, err := GetByID(ctx, db, "01DUP")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.Title != "First" {
		t.Errorf("Title = %q, want %q", retrieved.Title, "First")
	}
}

func TestInsertDocument_DuplicateFilenameRolledBack(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	d := newTestDocument("01DUPFILE", "Doc")
	d.Files[1].Filename = d.Files[0].Filename // violates UNIQUE(document_id, filename)

	err = InsertDocument(ctx, db, d)
	if !errors.Is(err, errors.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got: %v", err)
	}

	// Whole transaction rolled back: no document row either
	_, err = GetByID(ctx, db, "01DUPFILE")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after rollback, got: %v", err)
	}
}

func TestInsertDocument_DuplicateLocalPath(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	first := newTestDocument("01PATH1", "First")
	if err := InsertDocument(ctx, db, first); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	second := newTestDocument("01PATH2", "Second")
	second.Files[0].LocalPath = first.Files[0].LocalPath // reuse a stored path

	err = InsertDocument(ctx, db, second)
	if !errors.Is(err, errors.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got: %v", err)
	}

	_, err = GetByID(ctx, db, "01PATH2")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after rollback, got: %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	_, err = GetByID(ctx, db, "nonexistent")
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetByID should return ErrNotFound, got: %v", err)
	}
}

func TestSetArchived(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	d := newTestDocument("01ARCH", "Doc")
	if err := InsertDocument(ctx, db, d); err != nil {
		t.Fatalf("InsertDocument failed: %v", err)
	}

	if err := SetArchived(ctx, db, "01ARCH", true); err != nil {
		t.Fatalf("SetArchived(true) failed: %v", err)
	}
	retrieved, err := GetByID(ctx, db, "01ARCH")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !retrieved.Archived {
		t.Error("Archived = false, want true")
	}

	// Re-archiving an archived document is a no-op, not an error
	if err := SetArchived(ctx, db, "01ARCH", true); err != nil {
		t.Fatalf("SetArchived(true) repeat failed: %v", err)
	}

	if err := SetArchived(ctx, db, "01ARCH", false); err != nil {
		t.Fatalf("SetArchived(false) failed: %v", err)
	}
	retrieved, err = GetByID(ctx, db, "01ARCH")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.Archived {
		t.Error("Archived = true, want false")
	}
}

func TestSetArchived_NotFound(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	err = SetArchived(ctx, db, "nonexistent", true)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("SetArchived should return ErrNotFound, got: %v", err)
	}
}

func TestTagCounts(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	d1 := newTestDocument("01TAGS1", "One")
	d1.Tags = []string{"work", "taxes"}
	d2 := newTestDocument("01TAGS2", "Two")
	d2.Tags = []string{"work"}
	d3 := newTestDocument("01TAGS3", "Three")
	d3.Tags = nil

	for _, d := range []*document.Document{d1, d2, d3} {
		if err := InsertDocument(ctx, db, d); err != nil {
			t.Fatalf("InsertDocument(%s) failed: %v", d.ID, err)
		}
	}

	counts, err := TagCounts(ctx, db)
	if err != nil {
		t.Fatalf("TagCounts failed: %v", err)
	}

	want := []TagCount{{Tag: "taxes", Count: 1}, {Tag: "work", Count: 2}}
	if len(counts) != len(want) {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("counts[%d] = %v, want %v", i, counts[i], want[i])
		}
	}
}

func TestTagCounts_Empty(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	counts, err := TagCounts(ctx, db)
	if err != nil {
		t.Fatalf("TagCounts failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("counts = %v, want empty", counts)
	}
}

func TestAllDocuments(t *testing.T) {
	ctx := context.Background()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer db.Close()

	older := newTestDocument("01OLDER", "Older")
	older.CreatedAt = 1000
	newer := newTestDocument("01NEWER", "Newer")
	newer.CreatedAt = 2000

	for _, d := range []*document.Document{older, newer} {
		if err := InsertDocument(ctx, db, d); err != nil {
			t.Fatalf("InsertDocument(%s) failed: %v", d.ID, err)
		}
	}

	docs, err := AllDocuments(ctx, db)
	if err != nil {
		t.Fatalf("AllDocuments failed: %v", err)
	}

	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}
	if docs[0].ID != "01NEWER" || docs[1].ID != "01OLDER" {
		t.Errorf("order = %q, %q; want newest first", docs[0].ID, docs[1].ID)
	}
	for _, d := range docs {
		if len(d.Files) != 2 {
			t.Errorf("%s Files = %d, want 2", d.ID, len(d.Files))
		}
		if len(d.Tags) != 2 {
			t.Errorf("%s Tags = %d, want 2", d.ID, len(d.Tags))
		}
	}
}

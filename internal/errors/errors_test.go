package errors

import (
	"fmt"
	"testing"
)

func TestStoreError_Error(t *testing.T) {
	err := &StoreError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "document not found",
	}

	expected := "NOT_FOUND: document not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewValidation(t *testing.T) {
	err := NewValidation("title is required")

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "title is required" {
		t.Errorf("Message = %q, want %q", err.Message, "title is required")
	}
}

func TestNewBadQuery(t *testing.T) {
	err := NewBadQuery("tag:", "empty value")

	if err.Code != ErrValidation {
		t.Errorf("Code = %q, want %q", err.Code, ErrValidation)
	}
	if err.Details["token"] != "tag:" {
		t.Errorf("Details[token] = %v, want %q", err.Details["token"], "tag:")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01ARZ3NDEKTSV4RRFFQ69G5FAV")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["document_id"] != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Errorf("Details[document_id] = %v, want the id", err.Details["document_id"])
	}
}

func TestNewIntegrity(t *testing.T) {
	err := NewIntegrity("document id collision")

	if err.Code != ErrIntegrity {
		t.Errorf("Code = %q, want %q", err.Code, ErrIntegrity)
	}
	if err.Status != 409 {
		t.Errorf("Status = %d, want 409", err.Status)
	}
}

func TestNewStorage(t *testing.T) {
	t.Run("with filename", func(t *testing.T) {
		err := NewStorage("report.pdf", fmt.Errorf("disk full"))

		if err.Code != ErrStorage {
			t.Errorf("Code = %q, want %q", err.Code, ErrStorage)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		if err.Details["filename"] != "report.pdf" {
			t.Errorf("Details[filename] = %v, want %q", err.Details["filename"], "report.pdf")
		}
	})

	t.Run("without filename", func(t *testing.T) {
		err := NewStorage("", fmt.Errorf("disk full"))
		if err.Details != nil {
			t.Errorf("Details = %v, want nil when no filename given", err.Details)
		}
	})
}

func TestNewInternal(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		originalErr := fmt.Errorf("database connection failed")
		err := NewInternal(originalErr)

		if err.Code != ErrInternal {
			t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
		}
		if err.Status != 500 {
			t.Errorf("Status = %d, want 500", err.Status)
		}
		// Message should be generic (not leak internal details)
		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		// Original error should be stored in Details for logging
		if err.Details["internal_error"] != "database connection failed" {
			t.Errorf("Details[internal_error] = %q, want %q", err.Details["internal_error"], "database connection failed")
		}
	})

	t.Run("with nil", func(t *testing.T) {
		err := NewInternal(nil)

		if err.Message != "an internal error occurred" {
			t.Errorf("Message = %q, want %q", err.Message, "an internal error occurred")
		}
		// Details should be empty but not nil
		if err.Details == nil {
			t.Error("Details should not be nil")
		}
	})
}

func TestIs(t *testing.T) {
	t.Run("matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if !Is(err, ErrNotFound) {
			t.Error("Is() = false, want true")
		}
	})

	t.Run("non-matching code", func(t *testing.T) {
		err := NewNotFound("test")
		if Is(err, ErrIntegrity) {
			t.Error("Is() = true, want false")
		}
	})

	t.Run("non-StoreError", func(t *testing.T) {
		err := fmt.Errorf("plain error")
		if Is(err, ErrNotFound) {
			t.Error("Is() = true, want false for non-StoreError")
		}
	})

	t.Run("wrapped StoreError", func(t *testing.T) {
		inner := NewNotFound("test")
		wrapped := fmt.Errorf("files[0]: %w", inner)
		if !Is(wrapped, ErrNotFound) {
			t.Error("Is() = false, want true for wrapped StoreError")
		}
		if Is(wrapped, ErrIntegrity) {
			t.Error("Is() = true, want false for wrong code on wrapped StoreError")
		}
	})
}

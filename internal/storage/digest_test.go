package storage

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestDigest_KnownContent(t *testing.T) {
	// Precomputed: echo -n "hello world" | sha256sum
	const wantSHA = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

	r := strings.NewReader("hello world")
	sum, err := Digest(r)
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}

	if sum.SHA256 != wantSHA {
		t.Errorf("SHA256 = %q, want %q", sum.SHA256, wantSHA)
	}
	if sum.Size != 11 {
		t.Errorf("Size = %d, want 11", sum.Size)
	}
	if sum.MIMEType != "text/plain" {
		t.Errorf("MIMEType = %q, want %q (parameters stripped)", sum.MIMEType, "text/plain")
	}
}

func TestDigest_EmptyContent(t *testing.T) {
	// SHA-256 of the empty string
	const wantSHA = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	sum, err := Digest(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	if sum.SHA256 != wantSHA {
		t.Errorf("SHA256 = %q, want %q", sum.SHA256, wantSHA)
	}
	if sum.Size != 0 {
		t.Errorf("Size = %d, want 0", sum.Size)
	}
}

func TestDigest_SniffsMIMEFromMagicBytes(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{
			name:    "pdf",
			content: []byte("%PDF-1.4\n%fake minimal pdf body"),
			want:    "application/pdf",
		},
		{
			name:    "png",
			content: []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0},
			want:    "image/png",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sum, err := Digest(bytes.NewReader(tc.content))
			if err != nil {
				t.Fatalf("Digest() error = %v", err)
			}
			if sum.MIMEType != tc.want {
				t.Errorf("MIMEType = %q, want %q", sum.MIMEType, tc.want)
			}
		})
	}
}

func TestDigest_RewindsReader(t *testing.T) {
	content := "the full content must remain readable"
	r := strings.NewReader(content)

	if _, err := Digest(r); err != nil {
		t.Fatalf("Digest() error = %v", err)
	}

	// Caller must be able to re-read the stream from the start
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(got) != content {
		t.Errorf("after Digest, ReadAll = %q, want %q", got, content)
	}
}

func TestDigest_SeeksToStartFirst(t *testing.T) {
	r := strings.NewReader("hello world")
	// Reader deliberately mid-stream; Digest must still hash everything
	if _, err := r.Seek(5, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	sum, err := Digest(r)
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	if sum.Size != 11 {
		t.Errorf("Size = %d, want 11 (full stream)", sum.Size)
	}
}

func TestDigest_ContentLargerThanSniffWindow(t *testing.T) {
	content := bytes.Repeat([]byte("a"), sniffLen*3)
	sum, err := Digest(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}
	if sum.Size != int64(len(content)) {
		t.Errorf("Size = %d, want %d", sum.Size, len(content))
	}
}

func TestDigestFile_MatchesDigest(t *testing.T) {
	content := "identical bytes, identical digest"

	sum, err := Digest(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Digest() error = %v", err)
	}

	sha, size, err := DigestFile(strings.NewReader(content))
	if err != nil {
		t.Fatalf("DigestFile() error = %v", err)
	}

	if sha != sum.SHA256 {
		t.Errorf("DigestFile sha = %q, want %q", sha, sum.SHA256)
	}
	if size != sum.Size {
		t.Errorf("DigestFile size = %d, want %d", size, sum.Size)
	}
}

package ops

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"docstore/internal/config"
	"docstore/internal/errors"
)

// allowedTestDir returns a resolved temp dir registered in a fresh config's
// allowed paths.
func allowedTestDir(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolving temp dir: %v", err)
	}
	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{dir}
	return dir, cfg
}

func TestValidatePath_AllowedDirectory(t *testing.T) {
	dir, cfg := allowedTestDir(t)

	if err := ValidatePath(filepath.Join(dir, "out.jsonl"), PathCheckWrite, cfg); err != nil {
		t.Errorf("ValidatePath failed: %v", err)
	}
}

func TestValidatePath_RejectsTraversal(t *testing.T) {
	_, cfg := allowedTestDir(t)

	paths := []string{
		"../escape.jsonl",
		"/tmp/../etc/cron.jsonl",
		"exports/../../secret.jsonl",
	}
	for _, p := range paths {
		err := ValidatePath(p, PathCheckWrite, cfg)
		if !errors.Is(err, errors.ErrValidation) {
			t.Errorf("ValidatePath(%q) = %v, want VALIDATION", p, err)
		}
	}
}

func TestValidatePath_RequiresJSONL(t *testing.T) {
	dir, cfg := allowedTestDir(t)

	for _, name := range []string{"out.txt", "out.json", "out"} {
		err := ValidatePath(filepath.Join(dir, name), PathCheckWrite, cfg)
		if !errors.Is(err, errors.ErrValidation) {
			t.Errorf("ValidatePath(%q) = %v, want VALIDATION", name, err)
		}
	}
}

func TestValidatePath_EmptyPath(t *testing.T) {
	err := ValidatePath("", PathCheckWrite, config.DefaultConfig())
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("ValidatePath = %v, want VALIDATION", err)
	}
}

func TestValidatePath_RejectsUnallowedDirectory(t *testing.T) {
	_, cfg := allowedTestDir(t)

	other, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolving temp dir: %v", err)
	}
	verr := ValidatePath(filepath.Join(other, "out.jsonl"), PathCheckWrite, cfg)
	if !errors.Is(verr, errors.ErrValidation) {
		t.Errorf("ValidatePath = %v, want VALIDATION", verr)
	}
}

func TestValidatePath_RejectsSubdirectoryOfAllowed(t *testing.T) {
	dir, cfg := allowedTestDir(t)

	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	err := ValidatePath(filepath.Join(sub, "out.jsonl"), PathCheckWrite, cfg)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("ValidatePath = %v, want VALIDATION for a subdirectory", err)
	}
}

func TestValidatePath_UnsafeModeSkipsDirectoryCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolving temp dir: %v", err)
	}
	if err := ValidatePath(filepath.Join(dir, "anywhere.jsonl"), PathCheckWrite, cfg); err != nil {
		t.Errorf("ValidatePath failed: %v", err)
	}
}

func TestValidatePath_RejectsSymlinkEvenUnsafe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on Windows")
	}

	cfg := config.DefaultConfig()
	cfg.AllowUnsafePaths = true

	dir := t.TempDir()
	target := filepath.Join(dir, "target.jsonl")
	if err := os.WriteFile(target, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("writing target: %v", err)
	}
	link := filepath.Join(dir, "link.jsonl")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	err := ValidatePath(link, PathCheckWrite, cfg)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("ValidatePath = %v, want VALIDATION for symlink", err)
	}
}

func TestValidatePath_RejectsSymlinkParent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on Windows")
	}

	real, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolving temp dir: %v", err)
	}
	linkDir := filepath.Join(t.TempDir(), "linkdir")
	if err := os.Symlink(real, linkDir); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.AllowedPaths = []string{linkDir}

	// The allowed entry resolves to the real dir, so the path through the
	// symlinked parent no longer matches
	verr := ValidatePath(filepath.Join(linkDir, "out.jsonl"), PathCheckWrite, cfg)
	if !errors.Is(verr, errors.ErrValidation) {
		t.Errorf("ValidatePath = %v, want VALIDATION", verr)
	}
}

func TestValidateSourceFile_Exists(t *testing.T) {
	dir, cfg := allowedTestDir(t)

	// Any extension is fine for source files
	src := filepath.Join(dir, "scan.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4"), 0600); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	if err := ValidateSourceFile(src, cfg); err != nil {
		t.Errorf("ValidateSourceFile failed: %v", err)
	}
}

func TestValidateSourceFile_NotFound(t *testing.T) {
	dir, cfg := allowedTestDir(t)

	err := ValidateSourceFile(filepath.Join(dir, "absent.pdf"), cfg)
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("ValidateSourceFile = %v, want NOT_FOUND", err)
	}
}

func TestValidateSourceFile_RejectsUnallowedDirectory(t *testing.T) {
	_, cfg := allowedTestDir(t)

	other := t.TempDir()
	src := filepath.Join(other, "scan.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4"), 0600); err != nil {
		t.Fatalf("writing source: %v", err)
	}

	err := ValidateSourceFile(src, cfg)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("ValidateSourceFile = %v, want VALIDATION", err)
	}
}

func TestValidateSourceFile_RejectsSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on Windows")
	}

	dir, cfg := allowedTestDir(t)
	target := filepath.Join(dir, "real.txt")
	if err := os.WriteFile(target, []byte("data"), 0600); err != nil {
		t.Fatalf("writing target: %v", err)
	}
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	err := ValidateSourceFile(link, cfg)
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("ValidateSourceFile = %v, want VALIDATION", err)
	}
}

func TestDefaultExportsDir(t *testing.T) {
	dir, err := DefaultExportsDir()
	if err != nil {
		t.Fatalf("DefaultExportsDir failed: %v", err)
	}
	if !strings.HasSuffix(dir, filepath.Join(".docstore", "exports")) {
		t.Errorf("dir = %q, want .docstore/exports under home", dir)
	}
}

func TestContainsTraversal(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"simple.jsonl", false},
		{"/abs/path/file.jsonl", false},
		{"../up.jsonl", true},
		{"a/../b.jsonl", true},
		{"trailing/..", true},
		{"..hidden.jsonl", false}, // ".." must be a whole component
		{"a..b/file.jsonl", false},
	}
	for _, tc := range cases {
		if got := containsTraversal(tc.path); got != tc.want {
			t.Errorf("containsTraversal(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

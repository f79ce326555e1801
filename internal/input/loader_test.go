// internal/input/loader_test.go
package input

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "draft.txt")
	if err := os.WriteFile(testFile, []byte("hello"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr error
		anyErr  bool
	}{
		{name: "valid file", path: testFile},
		{name: "directory", path: tmpDir, wantErr: ErrDirectory},
		{name: "nonexistent path", path: filepath.Join(tmpDir, "nope.txt"), anyErr: true},
		{name: "sensitive ssh path", path: "/home/user/.ssh/id_rsa", wantErr: ErrSensitive},
		{name: "sensitive env file", path: "/path/to/.env", wantErr: ErrSensitive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePath(tt.path)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidatePath(%q) error = %v, want %v", tt.path, err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Errorf("ValidatePath(%q) should fail", tt.path)
				}
			default:
				if err != nil {
					t.Fatalf("ValidatePath(%q) failed: %v", tt.path, err)
				}
				if !filepath.IsAbs(got) {
					t.Errorf("ValidatePath(%q) = %q, want an absolute path", tt.path, got)
				}
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got := ExpandHome("~/notes.txt"); got != filepath.Join(home, "notes.txt") {
		t.Errorf("ExpandHome(~/notes.txt) = %q", got)
	}
	if got := ExpandHome("~"); got != home {
		t.Errorf("ExpandHome(~) = %q, want %q", got, home)
	}
	if got := ExpandHome("~other/x"); got != "~other/x" {
		t.Errorf("ExpandHome(~other/x) = %q, want unchanged", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("ExpandHome(/abs/path) = %q, want unchanged", got)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "essay.md")
	os.WriteFile(path, []byte("Ths is a tset."), 0644)
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}
	if got != "Ths is a tset." {
		t.Errorf("LoadFile() = %q", got)
	}

	big := filepath.Join(dir, "big.txt")
	os.WriteFile(big, []byte(strings.Repeat("a", MaxFileSize+1)), 0644)
	if _, err := LoadFile(big); !errors.Is(err, ErrTooLarge) {
		t.Errorf("LoadFile(big) error = %v, want ErrTooLarge", err)
	}

	bin := filepath.Join(dir, "blob.txt")
	os.WriteFile(bin, []byte{0xff, 0xfe, 0x00, 0x01}, 0644)
	if _, err := LoadFile(bin); !errors.Is(err, ErrBinary) {
		t.Errorf("LoadFile(binary) error = %v, want ErrBinary", err)
	}

	if _, err := LoadFile(dir); !errors.Is(err, ErrDirectory) {
		t.Errorf("LoadFile(dir) error = %v, want ErrDirectory", err)
	}
}

func TestNeedsUpload(t *testing.T) {
	tests := map[string]bool{
		"notes.txt":   false,
		"README.md":   false,
		"NOTES.TXT":   false,
		"Makefile":    false,
		"report.pdf":  true,
		"letter.docx": true,
	}
	for path, want := range tests {
		if got := NeedsUpload(path); got != want {
			t.Errorf("NeedsUpload(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestOpenForUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	os.WriteFile(path, []byte("%PDF-1.4"), 0644)

	f, name, err := OpenForUpload(path)
	if err != nil {
		t.Fatalf("OpenForUpload() failed: %v", err)
	}
	defer f.Close()

	if name != "report.pdf" {
		t.Errorf("name = %q, want report.pdf", name)
	}
	data, _ := io.ReadAll(f)
	if string(data) != "%PDF-1.4" {
		t.Errorf("content = %q", data)
	}

	if _, _, err := OpenForUpload("/home/user/.aws/credentials"); !errors.Is(err, ErrSensitive) {
		t.Errorf("OpenForUpload(sensitive) error = %v, want ErrSensitive", err)
	}
}

func TestReadInput(t *testing.T) {
	got, err := ReadInput(strings.NewReader("piped text\n"))
	if err != nil {
		t.Fatalf("ReadInput() failed: %v", err)
	}
	if got != "piped text\n" {
		t.Errorf("ReadInput() = %q", got)
	}

	if _, err := ReadInput(strings.NewReader(strings.Repeat("x", MaxFileSize+1))); !errors.Is(err, ErrTooLarge) {
		t.Errorf("ReadInput(oversized) error = %v, want ErrTooLarge", err)
	}
}

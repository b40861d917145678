package collect

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestFindPhotoDb(t *testing.T) {
	root := t.TempDir()
	hidden := filepath.Join(root, ".Trashes", PhotoDbFileName)
	visible := filepath.Join(root, "Photos", PhotoDbFileName)
	writeFile(t, hidden, []byte("hidden"))
	writeFile(t, visible, []byte("visible"))
	writeFile(t, filepath.Join(root, "Music", "track.mp3"), []byte("mp3"))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"mount point", root, visible},
		{"photos directory", filepath.Join(root, "Photos"), visible},
		{"container file", visible, visible},
	}
	for _, tt := range tests {
		got, err := findPhotoDb(tt.path)
		if err != nil {
			t.Errorf("%s: findPhotoDb returned error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: findPhotoDb = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFindPhotoDb_NotFound(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Music", "track.mp3"), []byte("mp3"))

	if _, err := findPhotoDb(root); !errors.Is(err, ErrPhotoDbNotFound) {
		t.Errorf("expected ErrPhotoDbNotFound, got %v", err)
	}
	if _, err := findPhotoDb(filepath.Join(root, "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestReadPhotoDbFile_Limit(t *testing.T) {
	path := filepath.Join(t.TempDir(), PhotoDbFileName)
	writeFile(t, path, []byte("0123456789"))

	if buf, err := readPhotoDbFile(path, 10); err != nil || len(buf) != 10 {
		t.Errorf("readPhotoDbFile at limit = %d bytes, %v", len(buf), err)
	}
	if _, err := readPhotoDbFile(path, 9); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

package home

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("with explicit path", func(t *testing.T) {
		dir, err := New("/tmp/test-lompack")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dir.Path() != "/tmp/test-lompack" {
			t.Errorf("expected path /tmp/test-lompack, got %s", dir.Path())
		}
	})

	t.Run("with empty path uses default", func(t *testing.T) {
		dir, err := New("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, DefaultDirName)
		if dir.Path() != expected {
			t.Errorf("expected path %s, got %s", expected, dir.Path())
		}
	})
}

func TestDir_Paths(t *testing.T) {
	dir, _ := New("/tmp/test-lompack")

	t.Run("DatabasePath", func(t *testing.T) {
		expected := "/tmp/test-lompack/lompack.db"
		if dir.DatabasePath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.DatabasePath())
		}
	})

	t.Run("ConfigPath", func(t *testing.T) {
		expected := "/tmp/test-lompack/config.yaml"
		if dir.ConfigPath() != expected {
			t.Errorf("expected %s, got %s", expected, dir.ConfigPath())
		}
	})

	t.Run("MediaPath", func(t *testing.T) {
		expected := "/tmp/test-lompack/media/rec1/photo.jpg"
		if dir.MediaPath("rec1", "photo.jpg") != expected {
			t.Errorf("expected %s, got %s", expected, dir.MediaPath("rec1", "photo.jpg"))
		}
	})
}

func TestDir_EnsureExists(t *testing.T) {
	tmpDir := t.TempDir()
	homePath := filepath.Join(tmpDir, "lompack-test")

	dir, err := New(homePath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dir.Exists() {
		t.Error("directory should not exist before EnsureExists")
	}

	if err := dir.EnsureExists(); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	if !dir.Exists() {
		t.Error("directory should exist after EnsureExists")
	}

	if _, err := os.Stat(filepath.Join(homePath, MediaDirName)); os.IsNotExist(err) {
		t.Error("media directory should exist after EnsureExists")
	}
}

func TestDir_EnsureMediaDir(t *testing.T) {
	dir, _ := New(t.TempDir())
	if err := dir.EnsureMediaDir("rec42"); err != nil {
		t.Fatalf("EnsureMediaDir failed: %v", err)
	}
	if _, err := os.Stat(dir.MediaDir("rec42")); err != nil {
		t.Errorf("media dir missing: %v", err)
	}
}

package utils

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetLastCachedFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "cache")
	if err != nil {
		t.Fatalf("Failed to create temporary directory: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	newest1 := CachedBundlePath(tmpDir, 1, "https://example.com/gtfs1")
	createFileWithModTime(t, newest1, time.Now().Add(-2*time.Hour))
	createFileWithModTime(t, CachedBundlePath(tmpDir, 1, "https://example.com/gtfs1-old"), time.Now().Add(-3*time.Hour))

	newest2 := CachedBundlePath(tmpDir, 2, "https://example.com/gtfs2")
	createFileWithModTime(t, newest2, time.Now().Add(-1*time.Hour))
	// network 12 shares the "network_1" prefix text but not "network_1_"
	createFileWithModTime(t, CachedBundlePath(tmpDir, 12, "https://example.com/gtfs12"), time.Now())

	lastFile, err := GetLastCachedFile(tmpDir, 1)
	if err != nil {
		t.Fatalf("GetLastCachedFile failed: %v", err)
	}
	if lastFile != newest1 {
		t.Errorf("Expected last file for network 1 to be %s, got %s", newest1, lastFile)
	}

	lastFile, err = GetLastCachedFile(tmpDir, 2)
	if err != nil {
		t.Fatalf("GetLastCachedFile failed: %v", err)
	}
	if lastFile != newest2 {
		t.Errorf("Expected last file for network 2 to be %s, got %s", newest2, lastFile)
	}

	_, err = GetLastCachedFile(tmpDir, 3)
	if err == nil {
		t.Error("Expected an error for a network with no cached files, but got nil")
	}
	t.Run("Invalid Cache Directory Read", func(t *testing.T) {
		invalidDir := "/invalid/cache/dir"
		_, err := GetLastCachedFile(invalidDir, 1)
		if err == nil {
			t.Errorf("Expected error for os.ReadDir failure, got none")
		}
	})

	t.Run("Empty Cache Directory", func(t *testing.T) {
		emptyDir, err := os.MkdirTemp("", "emptycache")
		if err != nil {
			t.Fatalf("Failed to create empty temporary directory: %v", err)
		}
		defer os.RemoveAll(emptyDir)

		_, err = GetLastCachedFile(emptyDir, 2)
		if err == nil {
			t.Errorf("Expected error for empty cache directory, but got none")
		}
	})
}

func createFileWithModTime(t *testing.T, path string, modTime time.Time) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create file %s: %v", path, err)
	}
	defer file.Close()

	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("Failed to set modification time for file %s: %v", path, err)
	}
}

func TestCreateCacheDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Creates new directory", func(t *testing.T) {
		baseTempDir := t.TempDir()
		tempDir := filepath.Join(baseTempDir, "test-cache")

		err := CreateCacheDirectory(tempDir, logger)
		if err != nil {
			t.Fatalf("Failed to create cache directory: %v", err)
		}

		stat, err := os.Stat(tempDir)
		if err != nil {
			t.Fatalf("Failed to stat directory: %v", err)
		}
		if !stat.IsDir() {
			t.Error("Cache directory was created but is not a directory")
		}
	})

	t.Run("Handles existing directory", func(t *testing.T) {
		baseTempDir := t.TempDir()
		tempDir := filepath.Join(baseTempDir, "test-cache")

		if err := os.MkdirAll(tempDir, os.ModePerm); err != nil {
			t.Fatalf("Failed to create test directory: %v", err)
		}

		err := CreateCacheDirectory(tempDir, logger)
		if err != nil {
			t.Errorf("Failed on existing directory: %v", err)
		}
	})

	t.Run("Fails: if path is a file", func(t *testing.T) {
		baseTempDir := t.TempDir()
		filePath := filepath.Join(baseTempDir, "test-file")

		if file, err := os.Create(filePath); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		} else {
			file.Close()
		}

		err := CreateCacheDirectory(filePath, logger)
		if err == nil {
			t.Error("Expected error when path is a file, but got nil")
		}
	})

}

func TestCachedBundlePath(t *testing.T) {
	a := CachedBundlePath("/cache", 3, "https://example.com/a.zip")
	b := CachedBundlePath("/cache", 3, "https://example.com/b.zip")
	if a == b {
		t.Error("expected different URLs to map to different files")
	}
	if filepath.Dir(a) != "/cache" {
		t.Errorf("expected file inside the cache dir, got %s", a)
	}
	if got := filepath.Base(a); got[:10] != "network_3_" || filepath.Ext(got) != ".zip" {
		t.Errorf("unexpected file name %s", got)
	}
}

func TestMakeMap(t *testing.T) {
	if m := MakeMap("k", "v"); len(m) != 1 || m["k"] != "v" {
		t.Errorf("unexpected map %v", m)
	}
}

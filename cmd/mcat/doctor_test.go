package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franz/music-catalog/internal/store"
)

func TestCheckSQLite(t *testing.T) {
	result := checkSQLite()

	if result.error {
		t.Errorf("SQLite check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected version information in message")
	}
}

func TestCheckDatabase_NonExistent(t *testing.T) {
	// Check a database that doesn't exist
	dbPath := filepath.Join(t.TempDir(), "nonexistent.db")

	result := checkDatabase(dbPath)

	// Should not error - database will be created on first run
	if result.error {
		t.Errorf("non-existent database check should not error: %s", result.message)
	}

	if !strings.Contains(result.message, "will be created") {
		t.Errorf("expected message about database creation, got %q", result.message)
	}
}

func TestCheckDatabase_Existing(t *testing.T) {
	// Create a real database
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Add a test run
	run, err := db.StartRun("raw.csv")
	if err != nil {
		t.Fatalf("failed to record test run: %v", err)
	}
	run.Status = store.StatusSucceeded
	if err := db.FinishRun(run, nil); err != nil {
		t.Fatalf("failed to finish test run: %v", err)
	}
	db.Close()

	// Now check the database
	result := checkDatabase(dbPath)

	if result.error {
		t.Errorf("database check failed: %s", result.message)
	}

	if !strings.Contains(result.message, "1 runs") {
		t.Errorf("expected run count in message, got %q", result.message)
	}
}

func TestCheckDatabase_Empty(t *testing.T) {
	// Test with empty database path
	result := checkDatabase("")

	if !result.warning {
		t.Error("expected warning for empty database path")
	}
}

func TestCheckRawFile(t *testing.T) {
	dir := t.TempDir()
	encodings := []string{"utf-8", "latin-1"}

	tests := []struct {
		name    string
		content string
		create  bool
		error   bool
		warning bool
		message string
	}{
		{"missing", "", false, false, true, "not found"},
		{"complete", "track_id,track_name,artist_name\n1,Song,Artist\n", true, false, false, "1 rows"},
		{"latin1", "track_id,track_name,artist_name\n1,Caf\xe9,Artist\n", true, false, false, "latin-1"},
		{"lacks columns", "track_id,track_name\n1,Song\n", true, false, true, "artist_name"},
		{"empty", "", true, true, false, "cannot read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".csv")
			if tt.create {
				if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
			}

			result := checkRawFile(path, encodings)
			if result.error != tt.error || result.warning != tt.warning {
				t.Errorf("error=%v warning=%v, want %v %v (%s)", result.error, result.warning, tt.error, tt.warning, result.message)
			}
			if !strings.Contains(result.message, tt.message) {
				t.Errorf("message %q does not mention %q", result.message, tt.message)
			}
		})
	}
}

func TestCheckRawFile_BadEncoding(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw.csv")
	if err := os.WriteFile(path, []byte("track_id\n1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := checkRawFile(path, []string{"ebcdic"})
	if !result.error {
		t.Error("expected error for unknown encoding")
	}
}

func TestCheckSnapshot(t *testing.T) {
	dir := t.TempDir()

	result := checkSnapshot(filepath.Join(dir, "missing.csv"))
	if result.error || result.warning {
		t.Errorf("missing snapshot should pass: %s", result.message)
	}

	path := filepath.Join(dir, "clean.csv")
	if err := os.WriteFile(path, []byte("\ufefftrack_id,track_name\n1,Song\n2,Other\n"), 0644); err != nil {
		t.Fatal(err)
	}
	result = checkSnapshot(path)
	if result.error || result.warning || !strings.Contains(result.message, "2 tracks") {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestCheckWritableDirectory_Valid(t *testing.T) {
	dir := t.TempDir()

	result := checkWritableDirectory(dir, "Output directory")

	if result.error {
		t.Errorf("directory check failed: %s", result.message)
	}
}

func TestCheckWritableDirectory_Create(t *testing.T) {
	tmpDir := t.TempDir()
	newDir := filepath.Join(tmpDir, "newdir")

	result := checkWritableDirectory(newDir, "Output directory")

	if result.error {
		t.Errorf("directory check failed: %s", result.message)
	}

	// Verify directory was created
	if _, err := os.Stat(newDir); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestCheckWritableDirectory_File(t *testing.T) {
	// Create a file instead of directory
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "file.txt")
	if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	result := checkWritableDirectory(filePath, "Output directory")

	if !result.error {
		t.Error("expected error when path is a file, not a directory")
	}
}

func TestCheckDiskSpace(t *testing.T) {
	// Use temp directory which should have disk space info
	dir := t.TempDir()

	result := checkDiskSpace(dir, "test")

	// Should not error
	if result.error {
		t.Errorf("disk space check failed: %s", result.message)
	}

	if result.message == "" {
		t.Error("expected message with disk space info")
	}
}

func TestCheckDiskSpace_NonExistent(t *testing.T) {
	result := checkDiskSpace("/nonexistent/path", "test")

	// Should produce a warning (not error)
	if !result.warning {
		t.Error("expected warning for non-existent path")
	}
}

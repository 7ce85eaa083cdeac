package main

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/franz/music-catalog/internal/dataset"
	"github.com/franz/music-catalog/internal/store"
	"github.com/franz/music-catalog/internal/util"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks on the environment and configuration",
	Long: `Run diagnostic checks to ensure mcat can operate correctly.

This command checks:
- SQLite version compatibility
- Run history database accessibility and integrity
- Raw export presence, encoding and columns
- Snapshot presence and readability
- Write permission for the artifacts and output directories
- Disk space availability

Use this command to troubleshoot issues before running other commands.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

type checkResult struct {
	name    string
	message string
	error   bool
	warning bool
}

func runDoctor(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	log.Info("=== mcat doctor - System Diagnostics ===")
	log.Info("")

	results := []checkResult{
		checkSQLite(),
		checkDatabase(a.cfg.DBPath),
		checkRawFile(a.cfg.RawPath, a.cfg.Encodings),
		checkSnapshot(a.cfg.SnapshotPath),
		checkWritableDirectory(a.cfg.ArtifactsDir, "Artifacts directory"),
		checkWritableDirectory(a.cfg.OutputDir, "Output directory"),
		checkDiskSpace(a.cfg.ArtifactsDir, "artifacts"),
	}

	// Print results
	log.Info("")
	log.Info("=== Diagnostic Results ===")
	log.Info("")

	hasErrors := false
	hasWarnings := false

	for _, r := range results {
		symbol := "✓"
		if r.error {
			symbol = "✗"
			hasErrors = true
		} else if r.warning {
			symbol = "⚠"
			hasWarnings = true
		}

		line := fmt.Sprintf("[%s] %s", symbol, r.name)
		if r.message != "" {
			line += fmt.Sprintf(": %s", r.message)
		}

		if r.error {
			log.Error("%s", line)
		} else if r.warning {
			log.Warn("%s", line)
		} else {
			log.Success("%s", line)
		}
	}

	// Summary
	log.Info("")
	if hasErrors {
		log.Error("❌ Some critical checks failed. Please resolve errors before running mcat.")
		return fmt.Errorf("system diagnostics failed")
	} else if hasWarnings {
		log.Warn("⚠️  Some checks produced warnings. Review them before proceeding.")
	} else {
		log.Success("✅ All checks passed! mcat is ready.")
	}

	return nil
}

// checkSQLite verifies SQLite version
func checkSQLite() checkResult {
	// modernc.org/sqlite is pure Go; just verify we can get the version
	version := store.SQLiteVersion()
	if version == "" {
		return checkResult{
			name:    "SQLite",
			error:   true,
			message: "unable to determine version",
		}
	}

	return checkResult{
		name:    "SQLite",
		message: fmt.Sprintf("version %s (built-in)", version),
	}
}

// checkDatabase verifies database file accessibility
func checkDatabase(dbPath string) checkResult {
	if dbPath == "" {
		return checkResult{
			name:    "Database",
			warning: true,
			message: "no database path specified (use --db flag or config)",
		}
	}

	// Check if database exists
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return checkResult{
				name:    "Database",
				message: fmt.Sprintf("%s (will be created on first run)", dbPath),
			}
		}
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", dbPath, err),
		}
	}

	// Check if it's a regular file
	if !info.Mode().IsRegular() {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("%s is not a regular file", dbPath),
		}
	}

	// Try to open it
	db, err := store.Open(dbPath)
	if err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("cannot open %s: %v", dbPath, err),
		}
	}
	defer db.Close()

	// Check integrity
	if err := db.CheckIntegrity(); err != nil {
		return checkResult{
			name:    "Database",
			error:   true,
			message: fmt.Sprintf("integrity check failed: %v", err),
		}
	}

	// Get some stats
	counts, _ := db.CountRuns()
	runs := 0
	for _, n := range counts {
		runs += n
	}
	size := util.FormatBytes(info.Size())

	return checkResult{
		name:    "Database",
		message: fmt.Sprintf("%s (%s, %d runs)", dbPath, size, runs),
	}
}

// checkRawFile verifies the raw export can be decoded and has the key columns
func checkRawFile(path string, encodingNames []string) checkResult {
	const name = "Raw export"

	if !util.FileExists(path) {
		return checkResult{
			name:    name,
			warning: true,
			message: fmt.Sprintf("%s not found (needed only when no snapshot exists)", path),
		}
	}

	encodings, err := dataset.Encodings(encodingNames)
	if err != nil {
		return checkResult{name: name, error: true, message: err.Error()}
	}

	t, err := dataset.Load(path, encodings)
	if err != nil {
		return checkResult{
			name:    name,
			error:   true,
			message: fmt.Sprintf("cannot read %s: %v", path, err),
		}
	}

	missing := t.Schema.Missing(dataset.TrackID, dataset.TrackName, dataset.ArtistName)
	if len(missing) > 0 {
		return checkResult{
			name:    name,
			warning: true,
			message: fmt.Sprintf("%s (%s) lacks columns: %s", path, t.Encoding, columnList(missing)),
		}
	}

	return checkResult{
		name:    name,
		message: fmt.Sprintf("%s (%s, %s rows, %d known columns)", path, t.Encoding, count(t.Len()), len(t.Schema.Columns())),
	}
}

// checkSnapshot verifies the canonical snapshot, if present, can be loaded
func checkSnapshot(path string) checkResult {
	const name = "Snapshot"

	if !util.FileExists(path) {
		return checkResult{
			name:    name,
			message: fmt.Sprintf("%s (will be created on first run)", path),
		}
	}

	t, err := dataset.LoadSnapshot(path)
	if err != nil {
		return checkResult{
			name:    name,
			warning: true,
			message: fmt.Sprintf("%s unreadable, it will be rebuilt: %v", path, err),
		}
	}

	return checkResult{
		name:    name,
		message: fmt.Sprintf("%s (%s tracks)", path, count(t.Len())),
	}
}

// checkWritableDirectory verifies a directory is writable, creating it if needed
func checkWritableDirectory(path, label string) checkResult {
	// Check if exists
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Try to create it
			if err := os.MkdirAll(path, 0755); err != nil {
				return checkResult{
					name:    label,
					error:   true,
					message: fmt.Sprintf("cannot create %s: %v", path, err),
				}
			}
			return checkResult{
				name:    label,
				message: fmt.Sprintf("%s (created)", path),
			}
		}
		return checkResult{
			name:    label,
			error:   true,
			message: fmt.Sprintf("cannot access %s: %v", path, err),
		}
	}

	if !info.IsDir() {
		return checkResult{
			name:    label,
			error:   true,
			message: fmt.Sprintf("%s is not a directory", path),
		}
	}

	// Check write permission by creating a temp file
	testFile := filepath.Join(path, ".mcat_write_test")
	f, err := os.Create(testFile)
	if err != nil {
		return checkResult{
			name:    label,
			error:   true,
			message: fmt.Sprintf("cannot write to %s: %v", path, err),
		}
	}
	f.Close()
	os.Remove(testFile)

	return checkResult{
		name:    label,
		message: fmt.Sprintf("%s (writable)", path),
	}
}

// checkDiskSpace verifies available disk space
func checkDiskSpace(path string, label string) checkResult {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return checkResult{
			name:    fmt.Sprintf("Disk space (%s)", label),
			warning: true,
			message: fmt.Sprintf("cannot determine disk space: %v", err),
		}
	}

	// Available bytes = available blocks * block size
	availBytes := stat.Bavail * uint64(stat.Bsize)

	// Snapshots, reports and charts are small; warn below 100 MB
	warning := false
	warningMsg := ""
	if availBytes < 100*1024*1024 {
		warning = true
		warningMsg = " (low space!)"
	}

	return checkResult{
		name:    fmt.Sprintf("Disk space (%s)", label),
		warning: warning,
		message: fmt.Sprintf("%s available%s", util.FormatBytes(int64(availBytes)), warningMsg),
	}
}

package report

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func readEvents(t *testing.T, path string) []Event {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	var events []Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded Event
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("Failed to decode line %d: %v", len(events)+1, err)
		}
		events = append(events, decoded)
	}
	return events
}

func TestNewEventLogger(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "artifacts")

	logger, err := NewEventLogger(tmpDir, LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logger.Path()); err != nil {
		t.Errorf("Event log file was not created at %s", logger.Path())
	}

	filename := filepath.Base(logger.Path())
	if !strings.HasPrefix(filename, "events-") || !strings.HasSuffix(filename, ".jsonl") {
		t.Errorf("Event log filename format incorrect: %s", filename)
	}
}

func TestEventLogger_CleaningRun(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}
	logger.SetRunID("run-1")

	logger.LogLoad("data/raw/spotify_data.csv", "latin-1", 120, nil)
	logger.LogStage("deduplicate", 120, 115, 0, 3*time.Millisecond)
	logger.LogSkip("coerce-types", "missing columns: explicit")
	logger.LogSave("data/processed/clean.csv", 110, 20*time.Millisecond, nil)
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 4 {
		t.Fatalf("Expected 4 events, got %d", len(events))
	}

	for i, e := range events {
		if e.RunID != "run-1" {
			t.Errorf("event %d: expected run_id run-1, got %q", i, e.RunID)
		}
		if e.Timestamp.IsZero() {
			t.Errorf("event %d: timestamp not set", i)
		}
	}

	if events[0].Event != EventLoad || events[0].Encoding != "latin-1" || events[0].RowsAfter != 120 {
		t.Errorf("unexpected load event: %+v", events[0])
	}
	if events[1].Stage != "deduplicate" || events[1].RowsBefore != 120 || events[1].RowsAfter != 115 {
		t.Errorf("unexpected stage event: %+v", events[1])
	}
	if events[1].Level != LevelInfo {
		t.Errorf("stage that removed rows should log at info, got %s", events[1].Level)
	}
	if events[2].Level != LevelWarning || events[2].Reason == "" {
		t.Errorf("unexpected skip event: %+v", events[2])
	}
	if events[3].Duration != 20 {
		t.Errorf("Expected duration 20 ms, got %d", events[3].Duration)
	}
}

func TestEventLogger_ErrorsRaiseLevel(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	boom := errors.New("disk full")
	logger.LogSave("out.csv", 0, 0, boom)
	logger.LogChart("06_pareto", "", boom)
	logger.Close()

	events := readEvents(t, logger.Path())
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Level != LevelError || events[0].Error != "disk full" {
		t.Errorf("unexpected save event: %+v", events[0])
	}
	// A failed chart does not abort the batch
	if events[1].Level != LevelWarning || events[1].Extra["chart"] != "06_pareto" {
		t.Errorf("unexpected chart event: %+v", events[1])
	}
}

func TestEventLogger_ConcurrentWrites(t *testing.T) {
	logger, err := NewEventLogger(t.TempDir(), LevelDebug)
	if err != nil {
		t.Fatalf("NewEventLogger failed: %v", err)
	}

	const numGoroutines = 10
	const eventsPerGoroutine = 20

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < eventsPerGoroutine; j++ {
				if err := logger.LogQuery("search", "love", j); err != nil {
					t.Errorf("Concurrent log failed: %v", err)
				}
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if got := len(readEvents(t, logger.Path())); got != numGoroutines*eventsPerGoroutine {
		t.Errorf("Expected %d events, got %d", numGoroutines*eventsPerGoroutine, got)
	}
}

func TestEventLogger_NullLogger(t *testing.T) {
	logger := NullLogger()

	if err := logger.Log(&Event{Level: LevelInfo, Event: EventLoad}); err != nil {
		t.Errorf("NullLogger.Log should not return error, got: %v", err)
	}
	if err := logger.LogStage("sort", 1, 1, 0, 0); err != nil {
		t.Errorf("NullLogger.LogStage should not return error, got: %v", err)
	}
	logger.SetRunID("ignored")
	if err := logger.Close(); err != nil {
		t.Errorf("NullLogger.Close should not return error, got: %v", err)
	}
	if path := logger.Path(); path != "" {
		t.Errorf("NullLogger.Path should return empty string, got: %s", path)
	}
}

func TestEventLogger_LogLevelFiltering(t *testing.T) {
	all := []Event{
		{Level: LevelDebug, Event: EventQuery},
		{Level: LevelInfo, Event: EventLoad},
		{Level: LevelWarning, Event: EventSkip},
		{Level: LevelError, Event: EventError},
	}

	testCases := []struct {
		name          string
		minLevel      EventLevel
		expectedCount int
	}{
		{"LevelDebug logs all", LevelDebug, 4},
		{"LevelInfo skips debug", LevelInfo, 3},
		{"LevelWarning skips debug and info", LevelWarning, 2},
		{"LevelError only logs errors", LevelError, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := NewEventLogger(t.TempDir(), tc.minLevel)
			if err != nil {
				t.Fatalf("NewEventLogger failed: %v", err)
			}
			for _, e := range all {
				e := e
				if err := logger.Log(&e); err != nil {
					t.Fatalf("Log failed: %v", err)
				}
			}
			logger.Close()

			if got := len(readEvents(t, logger.Path())); got != tc.expectedCount {
				t.Errorf("Expected %d events logged, got %d", tc.expectedCount, got)
			}
		})
	}
}

func TestParseEventLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    EventLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarning, false},
		{"warning", LevelWarning, false},
		{"error", LevelError, false},
		{"loud", "", true},
	}

	for _, tt := range tests {
		got, err := ParseEventLevel(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEventLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEventLevel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

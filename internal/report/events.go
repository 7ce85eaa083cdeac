package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType represents the type of event
type EventType string

const (
	EventLoad     EventType = "load"
	EventStage    EventType = "stage"
	EventSkip     EventType = "skip"
	EventSave     EventType = "save"
	EventSnapshot EventType = "snapshot"
	EventChart    EventType = "chart"
	EventQuery    EventType = "query"
	EventError    EventType = "error"
)

// EventLevel represents the severity level
type EventLevel string

const (
	LevelDebug   EventLevel = "debug"
	LevelInfo    EventLevel = "info"
	LevelWarning EventLevel = "warning"
	LevelError   EventLevel = "error"
)

// levelPriority maps event levels to numeric priorities for comparison
var levelPriority = map[EventLevel]int{
	LevelDebug:   0,
	LevelInfo:    1,
	LevelWarning: 2,
	LevelError:   3,
}

// ParseEventLevel validates a level name from configuration
func ParseEventLevel(s string) (EventLevel, error) {
	level := EventLevel(s)
	if s == "warn" {
		level = LevelWarning
	}
	if _, ok := levelPriority[level]; !ok {
		return "", fmt.Errorf("unknown event level %q", s)
	}
	return level, nil
}

// Event represents a single event in a cleaning run or query session
type Event struct {
	Timestamp  time.Time         `json:"ts"`
	Level      EventLevel        `json:"level"`
	Event      EventType         `json:"event"`
	RunID      string            `json:"run_id,omitempty"`
	Stage      string            `json:"stage,omitempty"`
	SrcPath    string            `json:"src_path,omitempty"`
	DestPath   string            `json:"dest_path,omitempty"`
	Encoding   string            `json:"encoding,omitempty"`
	RowsBefore int               `json:"rows_before,omitempty"`
	RowsAfter  int               `json:"rows_after,omitempty"`
	Changed    int               `json:"changed,omitempty"`
	Reason     string            `json:"reason,omitempty"`
	Duration   int64             `json:"duration_ms,omitempty"` // in milliseconds
	Error      string            `json:"error,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// EventLogger writes events to a JSONL file
type EventLogger struct {
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	path     string
	minLevel EventLevel
	runID    string
}

// NewEventLogger creates a new event logger with a minimum log level
// minLevel determines which events are written (e.g., LevelInfo skips LevelDebug)
func NewEventLogger(outputDir string, minLevel EventLevel) (*EventLogger, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("events-%s.jsonl", timestamp)
	path := filepath.Join(outputDir, filename)

	// Append so two commands started in the same second share one log
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create event log: %w", err)
	}

	return &EventLogger{
		file:     file,
		encoder:  json.NewEncoder(file),
		path:     path,
		minLevel: minLevel,
	}, nil
}

// SetRunID tags every subsequent event with id
func (l *EventLogger) SetRunID(id string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.runID = id
	l.mu.Unlock()
}

// Log writes an event to the JSONL file
func (l *EventLogger) Log(event *Event) error {
	if l == nil || l.file == nil {
		return nil // Silently ignore if logger not initialized
	}

	if levelPriority[event.Level] < levelPriority[l.minLevel] {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}

	if err := l.encoder.Encode(event); err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	return nil
}

// LogLoad logs a table ingestion
func (l *EventLogger) LogLoad(srcPath, encoding string, rows int, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:     level,
		Event:     EventLoad,
		SrcPath:   srcPath,
		Encoding:  encoding,
		RowsAfter: rows,
		Error:     errMsg,
	})
}

// LogStage logs the outcome of one cleaning stage
func (l *EventLogger) LogStage(stage string, rowsBefore, rowsAfter, changed int, duration time.Duration) error {
	level := LevelDebug
	if rowsBefore != rowsAfter || changed > 0 {
		level = LevelInfo
	}

	return l.Log(&Event{
		Level:      level,
		Event:      EventStage,
		Stage:      stage,
		RowsBefore: rowsBefore,
		RowsAfter:  rowsAfter,
		Changed:    changed,
		Duration:   duration.Milliseconds(),
	})
}

// LogSkip logs a stage skipped because its columns are absent
func (l *EventLogger) LogSkip(stage, reason string) error {
	return l.Log(&Event{
		Level:  LevelWarning,
		Event:  EventSkip,
		Stage:  stage,
		Reason: reason,
	})
}

// LogSave logs a snapshot write
func (l *EventLogger) LogSave(destPath string, rows int, duration time.Duration, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelError
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:     level,
		Event:     EventSave,
		DestPath:  destPath,
		RowsAfter: rows,
		Duration:  duration.Milliseconds(),
		Error:     errMsg,
	})
}

// LogSnapshot logs that a session reused an existing snapshot
func (l *EventLogger) LogSnapshot(srcPath string, rows int) error {
	return l.Log(&Event{
		Level:     LevelInfo,
		Event:     EventSnapshot,
		SrcPath:   srcPath,
		RowsAfter: rows,
	})
}

// LogChart logs a chart dataset write
func (l *EventLogger) LogChart(name, destPath string, err error) error {
	level := LevelInfo
	errMsg := ""
	if err != nil {
		level = LevelWarning
		errMsg = err.Error()
	}

	return l.Log(&Event{
		Level:    level,
		Event:    EventChart,
		DestPath: destPath,
		Error:    errMsg,
		Extra: map[string]string{
			"chart": name,
		},
	})
}

// LogQuery logs a search or comparison and whether it matched
func (l *EventLogger) LogQuery(kind, query string, matches int) error {
	return l.Log(&Event{
		Level:     LevelDebug,
		Event:     EventQuery,
		RowsAfter: matches,
		Extra: map[string]string{
			"kind":  kind,
			"query": query,
		},
	})
}

// LogError logs an error event
func (l *EventLogger) LogError(event EventType, srcPath string, err error) error {
	return l.Log(&Event{
		Level:   LevelError,
		Event:   event,
		SrcPath: srcPath,
		Error:   err.Error(),
	})
}

// Close closes the event log file
func (l *EventLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}

// Path returns the path to the event log file
func (l *EventLogger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// NullLogger returns a no-op event logger
func NullLogger() *EventLogger {
	return nil
}

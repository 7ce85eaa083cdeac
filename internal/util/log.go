package util

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// LogConfig controls how a Logger renders messages
type LogConfig struct {
	Verbose bool // show debug messages
	Quiet   bool // errors only
	Colors  bool
	Out     io.Writer // defaults to os.Stderr
}

// Logger is a leveled console logger. It is built once at startup and
// handed to every component that needs to report progress.
type Logger struct {
	level  LogLevel
	out    io.Writer
	colors bool
	now    func() time.Time

	debug   *color.Color
	info    *color.Color
	warn    *color.Color
	err     *color.Color
	success *color.Color
}

// NewLogger creates a Logger from cfg
func NewLogger(cfg LogConfig) *Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	level := LevelInfo
	if cfg.Verbose {
		level = LevelDebug
	}
	// Quiet wins over verbose
	if cfg.Quiet {
		level = LevelError
	}

	l := &Logger{
		level:   level,
		out:     out,
		colors:  cfg.Colors,
		now:     time.Now,
		debug:   color.New(color.FgHiBlack),
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
		err:     color.New(color.FgRed),
		success: color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{l.debug, l.info, l.warn, l.err, l.success} {
		if cfg.Colors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return l
}

// Discard returns a Logger that drops everything. Handy in tests.
func Discard() *Logger {
	return NewLogger(LogConfig{Out: io.Discard})
}

// Level returns the minimum level this logger displays
func (l *Logger) Level() LogLevel {
	if l == nil {
		return LevelError + 1
	}
	return l.level
}

// IsQuiet reports whether only errors are shown
func (l *Logger) IsQuiet() bool {
	return l.Level() >= LevelError
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.write(LevelDebug, "[DEBUG]", format, args...)
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LevelInfo, "[INFO] ", format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LevelWarn, "[WARN] ", format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LevelError, "[ERROR]", format, args...)
}

// Success logs success messages (always shown unless quiet)
func (l *Logger) Success(format string, args ...interface{}) {
	l.write(LevelInfo, "[OK]   ", format, args...)
}

func (l *Logger) write(level LogLevel, tag, format string, args ...interface{}) {
	if l == nil || level < l.level {
		return
	}

	c := l.info
	switch {
	case tag == "[OK]   ":
		c = l.success
	case level == LevelDebug:
		c = l.debug
	case level == LevelWarn:
		c = l.warn
	case level == LevelError:
		c = l.err
	}

	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "%s %s %s\n", c.Sprint(l.now().Format("15:04:05")), tag, msg)
}

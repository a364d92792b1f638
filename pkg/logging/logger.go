// Package logging writes a per-run debug log for plansave components.
//
// Hook output on stdout belongs to the host, so diagnostics go to
// <log_dir>/<session-id>-plansave.log instead. If the file cannot be opened
// the logger falls back to stderr.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// sink is the destination shared by every component logger of a run.
type sink struct {
	mu        sync.Mutex
	logger    *log.Logger
	file      *os.File
	closeOnce sync.Once
}

// Logger provides component-tagged debug logging.
//
// All log methods write unconditionally; level filtering belongs to the
// console logger.
type Logger struct {
	sessionID string
	component string
	logPath   string
	sink      *sink
	now       func() time.Time
}

// NewLogger opens <dir>/<session-id>-plansave.log in append mode. An empty
// sessionID gets a fresh uuid. An empty dir disables logging and returns a
// logger that discards everything.
//
// If the directory or file cannot be created, it returns a logger writing
// to stderr along with the error, so callers can warn and carry on.
func NewLogger(dir, sessionID, component string) (*Logger, error) {
	sessionID = sanitizeSessionID(sessionID)
	if dir == "" {
		return newLogger(sessionID, component, "", nil, io.Discard), nil
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		err = fmt.Errorf("failed to create log directory: %w", err)
		return newFallbackLogger(sessionID, component, err), err
	}

	logPath := filepath.Join(dir, fmt.Sprintf("%s-plansave.log", sessionID))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		err = fmt.Errorf("failed to open log file: %w", err)
		return newFallbackLogger(sessionID, component, err), err
	}

	return newLogger(sessionID, component, logPath, file, file), nil
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return newLogger(sanitizeSessionID(""), "discard", "", nil, io.Discard)
}

func newLogger(sessionID, component, logPath string, file *os.File, w io.Writer) *Logger {
	return &Logger{
		sessionID: sessionID,
		component: component,
		logPath:   logPath,
		sink:      &sink{logger: log.New(w, "", 0), file: file},
		now:       time.Now,
	}
}

func newFallbackLogger(sessionID, component string, err error) *Logger {
	l := newLogger(sessionID, component, "", nil, os.Stderr)
	l.Warnf("failed to initialize file logging: %v", err)
	l.Warnf("falling back to stderr logging")
	return l
}

func sanitizeSessionID(id string) string {
	id = unsafeNameChars.ReplaceAllString(id, "-")
	if id == "" || id == "-" {
		return uuid.New().String()
	}
	return id
}

// With returns a logger for another component sharing the same file.
func (l *Logger) With(component string) *Logger {
	clone := *l
	clone.component = component
	return &clone
}

func (l *Logger) write(level, format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	timestamp := l.now().Format("2006-01-02 15:04:05.000")

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.logger.Printf("[%s] [%s] [%s] %s", timestamp, l.component, level, message)
}

// Debugf logs a debug-level message
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// SessionID returns the session the log file is named after
func (l *Logger) SessionID() string {
	return l.sessionID
}

// LogPath returns the log file path, empty when not logging to a file
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times and from any
// component logger of the run.
func (l *Logger) Close() error {
	var err error
	l.sink.closeOnce.Do(func() {
		if l.sink.file != nil {
			err = l.sink.file.Close()
		}
	})
	return err
}

package archiver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// LogLevel represents the console verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only warnings and errors
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows what was archived (default)
	LogLevelNormal
	// LogLevelVerbose shows discovery decisions
	LogLevelVerbose
	// LogLevelDebug shows all internal details for debugging
	LogLevelDebug
)

// ParseLogLevel converts a configured verbosity to a LogLevel.
// Unknown values map to LogLevelNormal.
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "quiet":
		return LogLevelQuiet
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}

// Palette shared with the rest of the entrhq tooling.
var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	amber      = lipgloss.Color("#F5C16C")
	errorRed   = lipgloss.Color("203")
	mutedGray  = lipgloss.Color("#6B7280")
)

// Logger prints human-readable progress to the console. Stdout belongs to
// the hook host, so it writes to stderr unless told otherwise.
type Logger struct {
	level  LogLevel
	writer io.Writer

	infoStyle    lipgloss.Style
	successStyle lipgloss.Style
	warnStyle    lipgloss.Style
	errorStyle   lipgloss.Style
	detailStyle  lipgloss.Style
}

// NewLogger creates a console logger writing to stderr.
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a console logger for w. Colors are dropped
// when w is not a terminal.
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	r := lipgloss.NewRenderer(w)
	return &Logger{
		level:        level,
		writer:       w,
		infoStyle:    r.NewStyle().Foreground(salmonPink),
		successStyle: r.NewStyle().Foreground(mintGreen).Bold(true),
		warnStyle:    r.NewStyle().Foreground(amber),
		errorStyle:   r.NewStyle().Foreground(errorRed).Bold(true),
		detailStyle:  r.NewStyle().Foreground(mutedGray),
	}
}

// Level returns the configured verbosity.
func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) println(style lipgloss.Style, text string) {
	fmt.Fprintln(l.writer, style.Render(text))
}

// Successf prints a success message with checkmark
func (l *Logger) Successf(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.println(l.successStyle, "✓ "+fmt.Sprintf(format, args...))
	}
}

// Infof prints an informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level >= LogLevelNormal {
		l.println(l.infoStyle, fmt.Sprintf(format, args...))
	}
}

// Warningf prints a warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.println(l.warnStyle, "⚠ Warning: "+fmt.Sprintf(format, args...))
}

// Errorf prints an error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.println(l.errorStyle, "✗ Error: "+fmt.Sprintf(format, args...))
}

// Verbosef prints detailed information (only in verbose mode)
func (l *Logger) Verbosef(format string, args ...interface{}) {
	if l.level >= LogLevelVerbose {
		l.println(l.detailStyle, "→ "+fmt.Sprintf(format, args...))
	}
}

// Debugf prints debug information (only in debug mode)
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.println(l.detailStyle, "[DEBUG] "+fmt.Sprintf(format, args...))
	}
}

// FileWritten logs an archived file
func (l *Logger) FileWritten(path string) {
	if l.level >= LogLevelNormal {
		l.println(l.successStyle, "  📝 Saved: "+path)
	}
}

// GitOperation logs a git operation
func (l *Logger) GitOperation(operation, details string) {
	if l.level < LogLevelNormal {
		return
	}
	l.println(l.infoStyle, "  🔀 Git: "+operation)
	if details != "" && l.level >= LogLevelVerbose {
		l.println(l.detailStyle, "    "+details)
	}
}

// Summary prints the outcome of a run. A run that archived nothing is only
// reported in verbose mode.
func (l *Logger) Summary(s *Summary) {
	if s == nil || l.level < LogLevelNormal {
		return
	}

	if s.Entry == nil {
		l.Verbosef("plansave: nothing archived")
		for _, reason := range s.Skipped {
			l.Verbosef("  skipped: %s", reason)
		}
		return
	}

	l.Successf("plansave: archived %s", s.Entry.BaseName)
	if l.level >= LogLevelVerbose && s.Plan != nil {
		l.Verbosef("plan source: %s", s.Plan.Source)
		if s.Plan.Path != "" {
			l.Verbosef("plan file: %s", s.Plan.Path)
		}
	}
	if l.level >= LogLevelVerbose && s.TranscriptPath != "" {
		l.Verbosef("transcript: %s", s.TranscriptPath)
	}
	if s.CommitHash != "" {
		l.Infof("  commit %s", s.CommitHash)
	}
	l.Debugf("finished in %s", s.Duration)
}

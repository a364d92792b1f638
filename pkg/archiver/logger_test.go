package archiver

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/plansave/pkg/plan"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"quiet", LogLevelQuiet},
		{"normal", LogLevelNormal},
		{"Verbose", LogLevelVerbose},
		{" debug ", LogLevelDebug},
		{"", LogLevelNormal},
		{"loud", LogLevelNormal},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   LogLevel
		visible []string
		hidden  []string
	}{
		{
			name:    "quiet",
			level:   LogLevelQuiet,
			visible: []string{"Warning: w", "Error: e"},
			hidden:  []string{"info", "done", "detail", "dbg"},
		},
		{
			name:    "normal",
			level:   LogLevelNormal,
			visible: []string{"info", "✓ done", "Warning: w"},
			hidden:  []string{"detail", "dbg"},
		},
		{
			name:    "verbose",
			level:   LogLevelVerbose,
			visible: []string{"→ detail"},
			hidden:  []string{"dbg"},
		},
		{
			name:    "debug",
			level:   LogLevelDebug,
			visible: []string{"[DEBUG] dbg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoggerWithWriter(tt.level, &buf)
			l.Infof("info")
			l.Successf("done")
			l.Warningf("w")
			l.Errorf("e")
			l.Verbosef("detail")
			l.Debugf("dbg")

			out := buf.String()
			for _, s := range tt.visible {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.hidden {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestLogger_NoColorsWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerWithWriter(LogLevelNormal, &buf).Successf("saved")
	assert.Equal(t, "✓ saved\n", buf.String())
}

func TestLogger_Summary(t *testing.T) {
	summary := &Summary{
		Plan:       &plan.Document{Source: plan.SourceRecentFile, Path: "/plans/p.md"},
		Entry:      &Entry{BaseName: "2026-03-14-claude-p"},
		CommitHash: "abc1234",
	}

	var buf bytes.Buffer
	NewLoggerWithWriter(LogLevelNormal, &buf).Summary(summary)
	assert.Contains(t, buf.String(), "archived 2026-03-14-claude-p")
	assert.Contains(t, buf.String(), "commit abc1234")
	assert.NotContains(t, buf.String(), "plan source")

	buf.Reset()
	NewLoggerWithWriter(LogLevelVerbose, &buf).Summary(summary)
	assert.Contains(t, buf.String(), "plan source: recent-file")

	buf.Reset()
	NewLoggerWithWriter(LogLevelNormal, &buf).Summary(&Summary{Skipped: []string{"no plan found"}})
	assert.Empty(t, buf.String())

	buf.Reset()
	NewLoggerWithWriter(LogLevelQuiet, &buf).Summary(summary)
	assert.Empty(t, buf.String())
}

// Package hook decodes the event a coding-agent host sends to hook commands
// and installs plansave into a project's hook settings.
package hook

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/entrhq/plansave/pkg/config"
)

// maxEventBytes bounds how much of stdin is read.
const maxEventBytes = 4 << 20

// Event names the archiver reacts to.
const (
	EventStop        = "Stop"
	EventSessionEnd  = "SessionEnd"
	EventPostToolUse = "PostToolUse"
)

// planPathKeys are tried in order for an explicit plan location.
var planPathKeys = []string{"plan_path", "planPath", "file_path"}

// toolPlanPathKeys are only consulted for the plan-exit tool, since other
// tools' file arguments are not plans.
var toolPlanPathKeys = []string{"tool_input.plan_path", "tool_input.file_path"}

// ExitPlanModeTool is the tool whose PostToolUse event marks a finished plan.
const ExitPlanModeTool = "ExitPlanMode"

// Event is the decoded hook payload. Every field is optional.
type Event struct {
	SessionID      string
	TranscriptPath string
	PlanPath       string
	CWD            string
	HookEventName  string
	Reason         string
	ToolName       string
}

// ReadEvent decodes an event from r. Empty input yields an empty event; input
// that is not a JSON object yields an empty event and an error the caller
// may log and ignore.
func ReadEvent(r io.Reader) (*Event, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxEventBytes))
	if err != nil {
		return &Event{}, fmt.Errorf("failed to read hook event: %w", err)
	}
	return ParseEvent(data)
}

// ParseEvent decodes an event payload.
func ParseEvent(data []byte) (*Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Event{}, nil
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return &Event{}, fmt.Errorf("hook event is not a JSON object")
	}

	event := &Event{
		SessionID:      firstString(data, "session_id", "sessionId"),
		TranscriptPath: firstString(data, "transcript_path", "transcriptPath"),
		PlanPath:       firstString(data, planPathKeys...),
		CWD:            firstString(data, "cwd", "workingDirectory"),
		HookEventName:  firstString(data, "hook_event_name", "hookEventName"),
		Reason:         firstString(data, "reason"),
		ToolName:       firstString(data, "tool_name"),
	}
	if event.PlanPath == "" && event.ToolName == ExitPlanModeTool {
		event.PlanPath = firstString(data, toolPlanPathKeys...)
	}
	return event, nil
}

// Resolve expands "~" and makes the event's paths absolute against its
// working directory, falling back to dir when the event carries none.
func (e *Event) Resolve(dir string) {
	if strings.TrimSpace(e.CWD) == "" {
		e.CWD = dir
	}
	e.CWD = config.ExpandPath(e.CWD, dir)
	e.TranscriptPath = config.ExpandPath(e.TranscriptPath, e.CWD)
	e.PlanPath = config.ExpandPath(e.PlanPath, e.CWD)
}

func firstString(data []byte, paths ...string) string {
	for _, path := range paths {
		if value := gjson.GetBytes(data, path); value.Type == gjson.String {
			if s := strings.TrimSpace(value.String()); s != "" {
				return s
			}
		}
	}
	return ""
}

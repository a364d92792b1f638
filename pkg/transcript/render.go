package transcript

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Render produces one "Role: text" paragraph per turn, separated by blank
// lines. Turns whose content has nothing renderable (e.g. only tool
// results) are dropped. The result is passed through Clean.
func Render(t *Transcript) string {
	if t == nil {
		return ""
	}

	paragraphs := make([]string, 0, len(t.Entries))
	for _, entry := range t.Entries {
		text := strings.TrimSpace(RenderContent(entry.Content))
		if text == "" {
			continue
		}
		paragraphs = append(paragraphs, fmt.Sprintf("%s: %s", roleLabel(entry.Role), text))
	}
	if len(paragraphs) == 0 {
		return ""
	}

	return Clean(strings.Join(paragraphs, "\n\n")) + "\n"
}

// RenderContent flattens a content value: text blocks are joined by
// newlines and each tool invocation becomes a [Tool: name] marker.
func RenderContent(c Content) string {
	if len(c.Blocks) == 0 {
		return c.Text
	}

	parts := make([]string, 0, len(c.Blocks))
	for _, block := range c.Blocks {
		switch b := block.(type) {
		case TextBlock:
			if strings.TrimSpace(b.Text) != "" {
				parts = append(parts, b.Text)
			}
		case ToolUseBlock:
			parts = append(parts, fmt.Sprintf("[Tool: %s]", b.Name))
		case ToolResultBlock, ThinkingBlock, UnknownBlock:
			// not part of the readable conversation
		}
	}
	return strings.Join(parts, "\n")
}

func roleLabel(role Role) string {
	switch role {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	}
	r := []rune(string(role))
	if len(r) == 0 {
		return "Unknown"
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Clean removes ANSI escape sequences and non-printable control characters,
// keeping newlines and tabs, and collapses runs of identical adjacent lines.
// CRLF line endings become LF.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = ansi.Strip(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			sb.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		sb.WriteRune(r)
	}
	return dedupeLines(sb.String())
}

// dedupeLines drops each line equal to the one before it, ignoring
// trailing whitespace. The first line of a run is kept as written.
func dedupeLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	prev := ""
	for i, line := range lines {
		key := strings.TrimRightFunc(line, unicode.IsSpace)
		if i > 0 && key == prev {
			continue
		}
		kept = append(kept, line)
		prev = key
	}
	return strings.Join(kept, "\n")
}

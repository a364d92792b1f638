package transcript

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Block is one typed element of a structured message content.
// The concrete types are TextBlock, ToolUseBlock, ToolResultBlock,
// ThinkingBlock and UnknownBlock.
type Block interface {
	BlockType() string
}

// TextBlock carries plain message text.
type TextBlock struct {
	Text string `json:"text"`
}

// ToolUseBlock records the agent invoking a tool.
type ToolUseBlock struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// ToolResultBlock carries a tool's output back to the agent.
type ToolResultBlock struct {
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	IsError   bool            `json:"is_error"`
}

// ThinkingBlock holds model reasoning, never rendered.
type ThinkingBlock struct {
	Thinking string `json:"thinking"`
}

// UnknownBlock preserves the tag of a block type this package does not model.
type UnknownBlock struct {
	Type string
}

func (TextBlock) BlockType() string       { return "text" }
func (ToolUseBlock) BlockType() string    { return "tool_use" }
func (ToolResultBlock) BlockType() string { return "tool_result" }
func (ThinkingBlock) BlockType() string   { return "thinking" }
func (b UnknownBlock) BlockType() string  { return b.Type }

// Content is either a plain string or a list of blocks.
type Content struct {
	Text   string
	Blocks []Block
}

// IsEmpty reports whether the content carries neither text nor blocks.
func (c Content) IsEmpty() bool {
	return c.Text == "" && len(c.Blocks) == 0
}

// UnmarshalJSON accepts a JSON string, an array of typed blocks, or null.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Content{}
		return nil
	}

	switch data[0] {
	case '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*c = Content{Text: text}
		return nil
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return err
		}
		blocks := make([]Block, 0, len(raws))
		for _, raw := range raws {
			block, err := decodeBlock(raw)
			if err != nil {
				return err
			}
			blocks = append(blocks, block)
		}
		*c = Content{Blocks: blocks}
		return nil
	default:
		return fmt.Errorf("unsupported content JSON starting with %q", data[0])
	}
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &tag); err != nil {
		return nil, fmt.Errorf("failed to decode content block: %w", err)
	}

	switch tag.Type {
	case "text":
		var b TextBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case "tool_use":
		var b ToolUseBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case "tool_result":
		var b ToolResultBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case "thinking":
		var b ThinkingBlock
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return UnknownBlock{Type: tag.Type}, nil
	}
}

// Entry is a single conversational turn.
type Entry struct {
	Role    Role
	Content Content
}

// Transcript is the decoded form of a line-delimited JSON session log.
type Transcript struct {
	Entries []Entry

	// Malformed counts lines that were not valid JSON records.
	Malformed int
}

// Package transcript decodes coding-agent session logs (one JSON record per
// line) and renders them as plain labeled text.
package transcript

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single record; tool outputs can be large.
const maxLineSize = 10 * 1024 * 1024

// record accepts both the flat {"role","content"} shape and the
// {"type","message":{"role","content"}} envelope.
type record struct {
	Type    string          `json:"type"`
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Message *struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

// Parse reads records line by line. Malformed lines, including lines over
// maxLineSize, are counted and skipped; an error is returned only when
// reading fails, together with the entries decoded so far.
func Parse(r io.Reader) (*Transcript, error) {
	t := &Transcript{}
	br := bufio.NewReaderSize(r, 256*1024)

	for {
		line, oversize, readErr := readLine(br, maxLineSize)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return t, fmt.Errorf("failed to read transcript: %w", readErr)
		}

		line = bytes.TrimSpace(line)
		switch {
		case oversize:
			t.Malformed++
		case len(line) > 0:
			entry, ok, err := decodeLine(line)
			if err != nil {
				t.Malformed++
			} else if ok {
				t.Entries = append(t.Entries, entry)
			}
		}

		if readErr != nil {
			return t, nil
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed to its end and reported as oversize with no content.
func readLine(br *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	oversize := false
	for {
		chunk, err := br.ReadSlice('\n')
		chunk = bytes.TrimSuffix(chunk, []byte("\n"))
		if !oversize {
			if len(line)+len(chunk) > limit {
				oversize = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, oversize, err
	}
}

// ParseFile opens and parses a transcript file.
func ParseFile(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func decodeLine(line []byte) (Entry, bool, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Entry{}, false, err
	}

	role := rec.Role
	rawContent := rec.Content
	if rec.Message != nil {
		if rec.Message.Role != "" {
			role = rec.Message.Role
		}
		if len(rec.Message.Content) > 0 {
			rawContent = rec.Message.Content
		}
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		// summaries, snapshots and other bookkeeping records carry only a type
		switch Role(rec.Type) {
		case RoleUser, RoleAssistant:
			role = rec.Type
		default:
			return Entry{}, false, nil
		}
	}

	var content Content
	if len(rawContent) > 0 {
		if err := json.Unmarshal(rawContent, &content); err != nil {
			return Entry{}, false, err
		}
	}
	if content.IsEmpty() {
		return Entry{}, false, nil
	}

	return Entry{Role: Role(role), Content: content}, true, nil
}

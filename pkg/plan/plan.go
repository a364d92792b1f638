// Package plan loads plan documents and derives the slug used in their
// archive names.
package plan

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Source records how a plan was found.
type Source string

const (
	SourceExplicit     Source = "explicit"
	SourceTranscript   Source = "transcript-reference"
	SourceRecentFile   Source = "recent-file"
	SourceExitPlanMode Source = "exit-plan-mode"
)

// Document is a plan ready to be archived.
type Document struct {
	Content []byte
	// Path is empty for plans recovered inline from a transcript.
	Path    string
	Source  Source
	ModTime time.Time
}

// Load reads a plan file from disk.
func Load(path string, source Source) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat plan: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("plan %s is not a regular file", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	return &Document{
		Content: content,
		Path:    path,
		Source:  source,
		ModTime: info.ModTime(),
	}, nil
}

// FromText wraps inline plan content.
func FromText(content string, source Source, modTime time.Time) *Document {
	return &Document{
		Content: []byte(content),
		Source:  source,
		ModTime: modTime,
	}
}

// IsMarkdownPath reports whether a path has a Markdown extension.
func IsMarkdownPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// Heading returns the text of the first heading in the plan.
func (d *Document) Heading() string {
	if d == nil {
		return ""
	}
	if heading := firstMarkdownHeading(d.Content); heading != "" {
		return heading
	}
	return firstHashLine(d.Content)
}

// Slug derives the archive slug: heading first, then the file name stem,
// then the session identifier.
func (d *Document) Slug(sessionID string) string {
	if slug := Slugify(d.Heading()); slug != "" {
		return slug
	}
	if d != nil && d.Path != "" {
		stem := strings.TrimSuffix(filepath.Base(d.Path), filepath.Ext(d.Path))
		if slug := Slugify(stem); slug != "" {
			return slug
		}
	}
	return SessionSlug(sessionID)
}

func firstMarkdownHeading(source []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var heading string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			heading = strings.TrimSpace(nodeText(h, source))
			if heading != "" {
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return heading
}

func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(c.Value)
		default:
			sb.WriteString(nodeText(c, source))
		}
	}
	return sb.String()
}

// firstHashLine handles headings goldmark does not accept, like "#Title".
func firstHashLine(source []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(source))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if strings.HasPrefix(line, "#") {
			if title := strings.TrimSpace(strings.TrimLeft(line, "#")); title != "" {
				return title
			}
		}
	}
	return ""
}

// Package export turns a generated document into a standalone HTML file.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Style marks how a line is rendered.
type Style int

const (
	StyleNormal Style = iota
	StyleBold
)

// Line is one non-blank line of the document.
type Line struct {
	Style Style
	Text  string
}

var numberedHeading = regexp.MustCompile(`^\d+\.\d+`)

// FormatLines classifies document lines. Numbered subheadings ("1.1"),
// "##" headings, lines wrapped in "**" and a References heading are bold;
// blank lines are dropped.
func FormatLines(text string) []Line {
	var lines []Line
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			continue
		case numberedHeading.MatchString(line):
			lines = append(lines, Line{Style: StyleBold, Text: line})
		case strings.HasPrefix(line, "##"):
			lines = append(lines, Line{Style: StyleBold, Text: strings.TrimSpace(strings.ReplaceAll(line, "##", ""))})
		case len(line) >= 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"):
			lines = append(lines, Line{Style: StyleBold, Text: strings.TrimSpace(strings.ReplaceAll(line, "**", ""))})
		case strings.HasPrefix(strings.ToLower(line), "references"):
			lines = append(lines, Line{Style: StyleBold, Text: strings.TrimSpace(strings.ReplaceAll(line, "*", ""))})
		default:
			lines = append(lines, Line{Style: StyleNormal, Text: line})
		}
	}
	return lines
}

// Filename derives a file name from the title: spaces become underscores
// and slashes become dashes.
func Filename(title, ext string) string {
	name := strings.TrimSpace(title)
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "/", "-")
	if name == "" {
		name = "document"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return name + ext
}

// Markdown renders classified lines as one paragraph each.
func Markdown(lines []Line) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if l.Style == StyleBold && l.Text != "" {
			parts = append(parts, "**"+l.Text+"**")
			continue
		}
		parts = append(parts, l.Text)
	}
	return strings.Join(parts, "\n\n")
}

// HTML renders the document body as a complete HTML page titled title.
func HTML(title, body string) []byte {
	md := "# " + strings.TrimSpace(title) + "\n\n" + Markdown(FormatLines(body)) + "\n"

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: strings.TrimSpace(title),
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.ToHTML([]byte(md), p, renderer)
}

// ToFile writes the HTML document into dir and returns its path.
func ToFile(dir, title, body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("export: document is empty")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(dir, Filename(title, ".html"))
	if err := os.WriteFile(path, HTML(title, body), 0644); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return path, nil
}

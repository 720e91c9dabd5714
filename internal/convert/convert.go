// Package convert builds document model instances deterministically from
// source files: markdown, HTML, plain text, docx, pdf, and csv. It is the
// non-LLM path to the same canonical structure the ingestion pipeline
// produces.
package convert

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gnkm/mdstruct/internal/document"
)

// Converter turns raw document bytes into a document tree.
type Converter interface {
	Convert(r io.Reader, filename string) (*document.Document, error)
}

// SupportedExtensions lists file extensions this package can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate converter for a filename.
func ForFile(filename string) (Converter, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextConverter{}, nil
	case ".md", ".markdown":
		return &MarkdownConverter{}, nil
	case ".csv":
		return &CSVConverter{}, nil
	case ".html", ".htm":
		return &HTMLConverter{}, nil
	case ".pdf":
		return &PDFConverter{}, nil
	case ".docx":
		return &DOCXConverter{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// treeBuilder assembles Heading/Content nodes from a linear walk over a
// source document, nesting headings by level: a new heading closes every
// open heading at the same or deeper level.
type treeBuilder struct {
	roots []document.Node
	stack []*openHeading
}

type openHeading struct {
	level    int
	text     string
	children []document.Node
}

func newTreeBuilder() *treeBuilder {
	return &treeBuilder{roots: []document.Node{}}
}

// AddHeading opens a heading at the given level.
func (b *treeBuilder) AddHeading(level int, text string) {
	for len(b.stack) > 0 && b.stack[len(b.stack)-1].level >= level {
		b.pop()
	}
	b.stack = append(b.stack, &openHeading{
		level:    level,
		text:     text,
		children: []document.Node{},
	})
}

// AddContent appends a content block under the innermost open heading, or at
// the top level if none is open. Empty text is dropped.
func (b *treeBuilder) AddContent(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	node := document.Content{Content: text}
	if n := len(b.stack); n > 0 {
		b.stack[n-1].children = append(b.stack[n-1].children, node)
	} else {
		b.roots = append(b.roots, node)
	}
}

func (b *treeBuilder) pop() {
	n := len(b.stack)
	h := b.stack[n-1]
	b.stack = b.stack[:n-1]
	node := document.Heading{Level: h.level, Text: h.text, Children: h.children}
	if n-1 > 0 {
		parent := b.stack[n-2]
		parent.children = append(parent.children, node)
	} else {
		b.roots = append(b.roots, node)
	}
}

// Document closes all open headings and returns the finished tree.
func (b *treeBuilder) Document() *document.Document {
	for len(b.stack) > 0 {
		b.pop()
	}
	return &document.Document{Contents: b.roots}
}

package convert

import (
	"strings"

	"github.com/gnkm/mdstruct/internal/document"
)

// ToMarkdown renders a document tree back to Markdown text: ATX headings,
// blank-line-separated paragraphs. Levels outside 1..6 are clamped so the
// output stays renderable.
func ToMarkdown(d *document.Document) string {
	var sb strings.Builder
	renderNodes(&sb, d.Contents)
	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func renderNodes(sb *strings.Builder, nodes []document.Node) {
	for _, n := range nodes {
		switch node := n.(type) {
		case document.Content:
			sb.WriteString(node.Content)
			sb.WriteString("\n\n")
		case document.Heading:
			level := node.Level
			if level < 1 {
				level = 1
			}
			if level > 6 {
				level = 6
			}
			sb.WriteString(strings.Repeat("#", level))
			sb.WriteString(" ")
			sb.WriteString(node.Text)
			sb.WriteString("\n\n")
			renderNodes(sb, node.Children)
		}
	}
}

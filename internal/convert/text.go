package convert

import (
	"bufio"
	"io"
	"strings"

	"github.com/gnkm/mdstruct/internal/document"
)

// TextConverter handles plain text files: each blank-line-separated
// paragraph becomes one content block.
type TextConverter struct{}

func (c *TextConverter) Convert(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := newTreeBuilder()
	var current strings.Builder

	flush := func() {
		b.AddContent(current.String())
		current.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Document(), nil
}

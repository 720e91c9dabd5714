// Package chunker splits a structured document into retrieval-sized pieces.
// Chunk boundaries follow the heading hierarchy, and every chunk carries the
// breadcrumb of heading titles above it.
package chunker

import (
	"strings"

	"github.com/gnkm/mdstruct/internal/document"
)

// Config controls chunking behavior.
type Config struct {
	ChunkSize    int // Target chunk size in tokens.
	ChunkOverlap int // Overlap between consecutive chunks in tokens.
	MinChunk     int // Minimum chunk size to emit; 0 keeps everything.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    1200,
		ChunkOverlap: 150,
		MinChunk:     0,
	}
}

// Chunk is one retrieval unit of a document.
type Chunk struct {
	Text       string   `json:"text"`
	Index      int      `json:"index"`
	Breadcrumb []string `json:"breadcrumb,omitempty"`
	Tokens     int      `json:"tokens"`
}

// Split walks a document and produces structure-aware chunks. Consecutive
// content blocks under the same heading are merged before splitting, so a
// chunk never straddles a heading boundary.
func Split(doc *document.Document, cfg Config) []Chunk {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1200
	}
	if cfg.ChunkOverlap < 0 {
		cfg.ChunkOverlap = 0
	}
	if cfg.MinChunk < 0 {
		cfg.MinChunk = 0
	}

	var chunks []Chunk
	walkNodes(doc.Contents, nil, cfg, &chunks)
	return chunks
}

func walkNodes(nodes []document.Node, breadcrumb []string, cfg Config, chunks *[]Chunk) {
	var section []string

	flush := func() {
		if len(section) == 0 {
			return
		}
		emitSection(strings.Join(section, "\n\n"), breadcrumb, cfg, chunks)
		section = section[:0]
	}

	for _, node := range nodes {
		switch n := node.(type) {
		case document.Content:
			if text := strings.TrimSpace(n.Content); text != "" {
				section = append(section, text)
			}
		case document.Heading:
			flush()
			bc := append(copyBreadcrumb(breadcrumb), n.Text)
			walkNodes(n.Children, bc, cfg, chunks)
		}
	}
	flush()
}

func emitSection(text string, breadcrumb []string, cfg Config, chunks *[]Chunk) {
	var parts []string
	if tokens := EstimateTokens(text); tokens <= cfg.ChunkSize {
		parts = []string{text}
	} else {
		parts = splitText(text, cfg.ChunkSize, cfg.ChunkOverlap)
	}
	for _, part := range parts {
		tokens := EstimateTokens(part)
		if tokens < cfg.MinChunk {
			continue
		}
		*chunks = append(*chunks, Chunk{
			Text:       part,
			Index:      len(*chunks),
			Breadcrumb: copyBreadcrumb(breadcrumb),
			Tokens:     tokens,
		})
	}
}

// splitText breaks text into chunks of approximately targetTokens, with overlap.
func splitText(text string, targetTokens, overlapTokens int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		paraTokens := EstimateTokens(para)

		// A single oversized paragraph gets split by sentences.
		if paraTokens > targetTokens {
			if currentTokens > 0 {
				result = append(result, current.String())
				current.Reset()
				currentTokens = 0
			}
			result = append(result, splitBySentences(para, targetTokens, overlapTokens)...)
			continue
		}

		if currentTokens+paraTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())

			overlap := overlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
		currentTokens += paraTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitBySentences breaks a large paragraph into sentence-based chunks.
func splitBySentences(text string, targetTokens, overlapTokens int) []string {
	sentences := splitSentences(text)

	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, sent := range sentences {
		sentTokens := EstimateTokens(sent)

		if currentTokens+sentTokens > targetTokens && currentTokens > 0 {
			result = append(result, current.String())
			overlap := overlapText(current.String(), overlapTokens)
			current.Reset()
			currentTokens = 0
			if overlap != "" {
				current.WriteString(overlap)
				currentTokens = EstimateTokens(overlap)
			}
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sent)
		currentTokens += sentTokens
	}

	if currentTokens > 0 {
		result = append(result, current.String())
	}

	return result
}

// splitSentences does basic sentence splitting. Japanese terminators are
// recognized alongside ASCII ones since much of the corpus is Japanese.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		switch r {
		case '。', '！', '？':
			sentences = append(sentences, strings.TrimSpace(current.String()))
			current.Reset()
		case '.', '!', '?':
			if i+1 < len(runes) && runes[i+1] == ' ' {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
			}
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// overlapText extracts the last N tokens worth of text for overlap.
func overlapText(text string, targetTokens int) string {
	words := strings.Fields(text)
	targetWords := int(float64(targetTokens) / 1.33)
	if targetWords <= 0 || len(words) <= targetWords {
		return ""
	}
	return strings.Join(words[len(words)-targetWords:], " ")
}

func copyBreadcrumb(bc []string) []string {
	if len(bc) == 0 {
		return nil
	}
	out := make([]string, len(bc))
	copy(out, bc)
	return out
}

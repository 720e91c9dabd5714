package chunker

import (
	"strings"
	"unicode/utf8"
)

// EstimateTokens gives a rough token count. Exact tokenization is not
// required for chunking, so a cheap heuristic is used: about 1.33 tokens per
// whitespace-separated word, with a rune-based floor (~4 runes per token) so
// unsegmented CJK text is not undercounted.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := int(float64(words) * 1.33)
	if byRunes := utf8.RuneCountInString(text) / 4; byRunes > tokens {
		tokens = byRunes
	}
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

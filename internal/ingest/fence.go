package ingest

import "strings"

// StripFences removes an enclosing Markdown code fence from raw LLM output.
// Only whole fence-marker lines at the very start and end of the (trimmed)
// text are removed; fence markers inside the payload are left alone. Text
// with no leading fence is returned unchanged. An opening fence with no
// closing fence is stripped best-effort so the parse stage can report the
// real problem.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	lines := strings.Split(trimmed, "\n")
	// Drop the opening fence line (``` or ```json etc.).
	lines = lines[1:]

	// Drop the closing fence line if the last line is one.
	if n := len(lines); n > 0 && isFenceLine(lines[n-1]) {
		lines = lines[:n-1]
	}

	return strings.Join(lines, "\n")
}

func isFenceLine(line string) bool {
	s := strings.TrimSpace(line)
	return strings.HasPrefix(s, "```") && strings.TrimLeft(s, "`") == ""
}

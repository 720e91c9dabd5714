package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Marshal renders a document in its canonical JSON form: stable key order
// (level, text, children on headings), 2-space indentation, and non-ASCII
// characters emitted literally. The output carries no trailing newline.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// marshalNoEscape is json.Marshal without HTML escaping, so angle brackets
// and ampersands in body text stay readable.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

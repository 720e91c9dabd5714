package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// Options controls validation behavior during decoding.
type Options struct {
	// CheckLevelRange rejects heading levels outside 1..6. Off by default:
	// producers occasionally emit out-of-range levels and some callers want
	// to see them rather than fail.
	CheckLevelRange bool
}

// Violation is one structural problem found during validation, located by an
// index chain from the root (e.g. "contents[1].children[0].level").
type Violation struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidationError reports every structural violation found in a single pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		v := e.Violations[0]
		return fmt.Sprintf("invalid document: %s: %s", v.Path, v.Reason)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid document (%d violations):", len(e.Violations))
	for _, v := range e.Violations {
		fmt.Fprintf(&sb, "\n  %s: %s", v.Path, v.Reason)
	}
	return sb.String()
}

// decoder accumulates violations while walking a generic value.
type decoder struct {
	opts       Options
	violations []Violation
}

func (d *decoder) fail(path, format string, args ...any) {
	d.violations = append(d.violations, Violation{
		Path:   path,
		Reason: fmt.Sprintf(format, args...),
	})
}

// Decode validates a generic parsed JSON value (maps, slices, strings,
// numbers) against the document model. On failure it returns a
// *ValidationError listing every violation found, not just the first.
func Decode(v any, opts Options) (*Document, error) {
	d := &decoder{opts: opts}

	root, ok := v.(map[string]any)
	if !ok {
		d.fail("$", "expected a JSON object at the root, got %s", typeName(v))
		return nil, &ValidationError{Violations: d.violations}
	}

	rawContents, ok := root["contents"]
	if !ok {
		d.fail("$", "missing required field %q", "contents")
	}
	for key := range root {
		if key != "contents" {
			d.fail("$", "unexpected field %q", key)
		}
	}

	var contents []Node
	if ok {
		contents = d.decodeList(rawContents, "contents")
	}

	if len(d.violations) > 0 {
		return nil, &ValidationError{Violations: d.violations}
	}
	return &Document{Contents: contents}, nil
}

func (d *decoder) decodeList(v any, path string) []Node {
	list, ok := v.([]any)
	if !ok {
		d.fail(path, "expected an array, got %s", typeName(v))
		return nil
	}
	nodes := make([]Node, 0, len(list))
	for i, item := range list {
		if n, ok := d.decodeNode(item, fmt.Sprintf("%s[%d]", path, i)); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// decodeNode resolves the untagged Content/Heading union by shape. An object
// that matches neither shape fully, or both at once, is a violation.
func (d *decoder) decodeNode(v any, path string) (Node, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		d.fail(path, "expected an object, got %s", typeName(v))
		return nil, false
	}

	_, hasContent := obj["content"]
	_, hasLevel := obj["level"]
	_, hasText := obj["text"]
	_, hasChildren := obj["children"]
	headingish := hasLevel || hasText || hasChildren

	switch {
	case hasContent && headingish:
		d.fail(path, "object has both %q and heading fields; it must be exactly one of the two shapes", "content")
		return nil, false
	case hasContent:
		return d.decodeContent(obj, path)
	case headingish:
		return d.decodeHeading(obj, path)
	default:
		d.fail(path, "object matches neither shape: expected %q or %q+%q+%q", "content", "level", "text", "children")
		return nil, false
	}
}

func (d *decoder) decodeContent(obj map[string]any, path string) (Node, bool) {
	before := len(d.violations)
	for key := range obj {
		if key != "content" {
			d.fail(path, "unexpected field %q on a content block", key)
		}
	}
	text, ok := obj["content"].(string)
	if !ok {
		d.fail(path+".content", "expected a string, got %s", typeName(obj["content"]))
	}
	if len(d.violations) > before {
		return nil, false
	}
	return Content{Content: text}, true
}

func (d *decoder) decodeHeading(obj map[string]any, path string) (Node, bool) {
	before := len(d.violations)
	for _, field := range []string{"level", "text", "children"} {
		if _, ok := obj[field]; !ok {
			d.fail(path, "missing required field %q on a heading", field)
		}
	}
	for key := range obj {
		switch key {
		case "level", "text", "children":
		default:
			d.fail(path, "unexpected field %q on a heading", key)
		}
	}

	var h Heading
	if raw, ok := obj["level"]; ok {
		if level, ok := asInt(raw); ok {
			h.Level = level
			if d.opts.CheckLevelRange && (level < 1 || level > 6) {
				d.fail(path+".level", "heading level %d outside 1..6", level)
			}
		} else {
			d.fail(path+".level", "expected an integer, got %s", typeName(raw))
		}
	}
	if raw, ok := obj["text"]; ok {
		if text, ok := raw.(string); ok {
			h.Text = text
		} else {
			d.fail(path+".text", "expected a string, got %s", typeName(raw))
		}
	}
	if raw, ok := obj["children"]; ok {
		h.Children = d.decodeList(raw, path+".children")
	}

	if len(d.violations) > before {
		return nil, false
	}
	return h, true
}

// asInt accepts the numeric representations a generic JSON parse can produce
// and rejects anything with a fractional part.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64, int:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// ParseGeneric decodes JSON text into generic values, keeping numbers as
// json.Number so integer levels survive intact.
func ParseGeneric(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// Trailing non-whitespace after the value is malformed input, not a
	// second document.
	var extra any
	switch err := dec.Decode(&extra); err {
	case io.EOF:
	case nil:
		return nil, fmt.Errorf("unexpected trailing data after JSON value")
	default:
		return nil, fmt.Errorf("trailing data after JSON value: %w", err)
	}
	return v, nil
}

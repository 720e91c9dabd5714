// Package document defines the recursive Markdown document model: a tree of
// headings and content blocks, with structural validation and a canonical
// JSON form.
package document

// Node is one block in a document: either a Content leaf or a Heading branch.
// The set of implementations is closed.
type Node interface {
	isNode()
}

// Content is a leaf node holding one paragraph of body text.
type Content struct {
	Content string
}

func (Content) isNode() {}

// Heading is a branch node with a depth level, title text, and ordered
// children. Children may nest Headings of any level; monotonic level
// increase is a producer convention, not enforced here.
type Heading struct {
	Level    int
	Text     string
	Children []Node
}

func (Heading) isNode() {}

// Document is the root: an ordered forest of top-level blocks.
type Document struct {
	Contents []Node
}

// UnmarshalJSON parses and validates a document with default options.
func (d *Document) UnmarshalJSON(b []byte) error {
	v, err := ParseGeneric(b)
	if err != nil {
		return err
	}
	doc, err := Decode(v, Options{})
	if err != nil {
		return err
	}
	*d = *doc
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(struct {
		Content string `json:"content"`
	}{c.Content})
}

func (h Heading) MarshalJSON() ([]byte, error) {
	children := h.Children
	if children == nil {
		children = []Node{}
	}
	return marshalNoEscape(struct {
		Level    int    `json:"level"`
		Text     string `json:"text"`
		Children []Node `json:"children"`
	}{h.Level, h.Text, children})
}

func (d Document) MarshalJSON() ([]byte, error) {
	contents := d.Contents
	if contents == nil {
		contents = []Node{}
	}
	return marshalNoEscape(struct {
		Contents []Node `json:"contents"`
	}{contents})
}

// Stats summarizes the shape of a document.
type Stats struct {
	Headings int `json:"headings"`
	Contents int `json:"contents"`
	MaxDepth int `json:"max_depth"`
}

// Summarize counts nodes and measures nesting depth.
func Summarize(d *Document) Stats {
	var s Stats
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		if len(nodes) > 0 && depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		for _, n := range nodes {
			switch node := n.(type) {
			case Content:
				s.Contents++
			case Heading:
				s.Headings++
				walk(node.Children, depth+1)
			}
		}
	}
	walk(d.Contents, 1)
	return s
}

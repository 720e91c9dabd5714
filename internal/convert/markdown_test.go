package convert

import (
	"strings"
	"testing"

	"github.com/gnkm/mdstruct/internal/document"
)

func TestMarkdownConverter_HeadingHierarchy(t *testing.T) {
	input := `## 導入

ここでは導入をおこなう。

## メインコンテンツ

メインコンテンツを扱う。

### サブコンテンツ 1

サブコンテンツ 1 を扱う。

### サブコンテンツ 2

サブコンテンツ 2 を扱う。

## まとめ

ここではまとめをおこなう。
`
	c := &MarkdownConverter{}
	doc, err := c.Convert(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Contents) != 3 {
		t.Fatalf("expected 3 top-level headings, got %d", len(doc.Contents))
	}

	intro, ok := doc.Contents[0].(document.Heading)
	if !ok {
		t.Fatalf("expected Heading, got %T", doc.Contents[0])
	}
	if intro.Level != 2 || intro.Text != "導入" {
		t.Errorf("unexpected first heading: %+v", intro)
	}
	if len(intro.Children) != 1 {
		t.Fatalf("expected 1 child under 導入, got %d", len(intro.Children))
	}
	if c, ok := intro.Children[0].(document.Content); !ok || c.Content != "ここでは導入をおこなう。" {
		t.Errorf("unexpected 導入 content: %#v", intro.Children[0])
	}

	main, ok := doc.Contents[1].(document.Heading)
	if !ok {
		t.Fatalf("expected Heading, got %T", doc.Contents[1])
	}
	if main.Text != "メインコンテンツ" {
		t.Errorf("unexpected second heading: %+v", main)
	}
	// One paragraph plus two level-3 subsections.
	if len(main.Children) != 3 {
		t.Fatalf("expected 3 children under メインコンテンツ, got %d", len(main.Children))
	}
	sub1, ok := main.Children[1].(document.Heading)
	if !ok || sub1.Level != 3 || sub1.Text != "サブコンテンツ 1" {
		t.Errorf("unexpected first subsection: %#v", main.Children[1])
	}
	sub2, ok := main.Children[2].(document.Heading)
	if !ok || sub2.Level != 3 || sub2.Text != "サブコンテンツ 2" {
		t.Errorf("unexpected second subsection: %#v", main.Children[2])
	}
}

func TestMarkdownConverter_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.
`
	c := &MarkdownConverter{}
	doc, err := c.Convert(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Contents) != 2 {
		t.Fatalf("expected 2 content blocks, got %d", len(doc.Contents))
	}
	for i, n := range doc.Contents {
		if _, ok := n.(document.Content); !ok {
			t.Errorf("node %d: expected Content, got %T", i, n)
		}
	}
}

func TestMarkdownConverter_SkipLevels(t *testing.T) {
	input := `# Top

## Middle

#### Deep

Deep text.
`
	c := &MarkdownConverter{}
	doc, err := c.Convert(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	top := doc.Contents[0].(document.Heading)
	middle := top.Children[0].(document.Heading)
	deep := middle.Children[0].(document.Heading)
	if deep.Level != 4 || deep.Text != "Deep" {
		t.Errorf("expected h4 nested under h2, got %+v", deep)
	}
	if len(deep.Children) != 1 {
		t.Errorf("expected 1 content under h4, got %d", len(deep.Children))
	}
}

func TestMarkdownConverter_CanonicalOutput(t *testing.T) {
	input := "## 導入\n\n本文\n"
	c := &MarkdownConverter{}
	doc, err := c.Convert(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, err := document.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"level": 2`, `"text": "導入"`, `"content": "本文"`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("canonical output missing %s:\n%s", want, out)
		}
	}
}

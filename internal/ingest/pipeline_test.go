package ingest

import (
	"errors"
	"strings"
	"testing"

	"github.com/gnkm/mdstruct/internal/document"
)

func TestPipeline_FencedScenario(t *testing.T) {
	input := "```json\n{\"contents\":[{\"level\":2,\"text\":\"導入\",\"children\":[{\"content\":\"本文\"}]}]}\n```"

	p := New(document.Options{})
	doc, err := p.Run(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Contents) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(doc.Contents))
	}
	h, ok := doc.Contents[0].(document.Heading)
	if !ok {
		t.Fatalf("expected Heading, got %T", doc.Contents[0])
	}
	if h.Level != 2 || h.Text != "導入" {
		t.Errorf("unexpected heading: %+v", h)
	}
	if len(h.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(h.Children))
	}
	c, ok := h.Children[0].(document.Content)
	if !ok || c.Content != "本文" {
		t.Errorf("expected content %q, got %#v", "本文", h.Children[0])
	}

	out, err := p.RunCanonical(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"  \"contents\"", "導入", "本文"} {
		if !strings.Contains(out, want) {
			t.Errorf("canonical output missing %q:\n%s", want, out)
		}
	}
}

func TestPipeline_MalformedPayload(t *testing.T) {
	p := New(document.Options{})
	_, err := p.Run("not json at all")

	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedError, got %v", err)
	}
	if malformed.Text != "not json at all" {
		t.Errorf("expected original text retained, got %q", malformed.Text)
	}
	if malformed.Unwrap() == nil {
		t.Error("expected underlying parser error to be wrapped")
	}

	kind, ok := Classify(err)
	if !ok || kind != KindMalformedPayload {
		t.Errorf("expected kind %q, got %q (ok=%v)", KindMalformedPayload, kind, ok)
	}
}

func TestPipeline_SchemaViolation(t *testing.T) {
	p := New(document.Options{})
	_, err := p.Run(`{"contents":[{"level":2,"text":"t"}]}`)

	var verr *document.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *document.ValidationError, got %v", err)
	}

	kind, ok := Classify(err)
	if !ok || kind != KindSchemaViolation {
		t.Errorf("expected kind %q, got %q (ok=%v)", KindSchemaViolation, kind, ok)
	}
}

func TestPipeline_TrailingProseIsMalformed(t *testing.T) {
	p := New(document.Options{})
	_, err := p.Run(`{"contents":[]} Hope this helps!`)

	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected *MalformedError for trailing prose, got %v", err)
	}
}

func TestPipeline_HookSeesStages(t *testing.T) {
	var stages []Stage
	p := New(document.Options{})
	p.Hook = func(s Stage) { stages = append(stages, s) }

	if _, err := p.RunCanonical(`{"contents":[]}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Stage{StageStrip, StageParse, StageValidate, StageRender}
	if len(stages) != len(want) {
		t.Fatalf("expected %d stage events, got %d: %v", len(want), len(stages), stages)
	}
	for i, s := range want {
		if stages[i] != s {
			t.Errorf("stage %d: expected %q, got %q", i, s, stages[i])
		}
	}
}

func TestPipeline_LevelRangeOption(t *testing.T) {
	input := `{"contents":[{"level":9,"text":"t","children":[]}]}`

	if _, err := New(document.Options{}).Run(input); err != nil {
		t.Errorf("level 9 should pass by default: %v", err)
	}
	if _, err := New(document.Options{CheckLevelRange: true}).Run(input); err == nil {
		t.Error("level 9 should fail with range checking enabled")
	}
}

// Package ingest turns raw LLM response text into a validated document and
// its canonical serialization. The pipeline is pure: text in, text or typed
// error out, no I/O.
package ingest

import (
	"github.com/gnkm/mdstruct/internal/document"
)

// Stage identifies a pipeline phase for progress hooks.
type Stage string

const (
	StageStrip    Stage = "strip_fences"
	StageParse    Stage = "parse"
	StageValidate Stage = "validate"
	StageRender   Stage = "render"
)

// Hook observes stage transitions. The orchestration layer attaches one to
// surface progress; the pipeline itself stays side-effect-free.
type Hook func(stage Stage)

// Pipeline validates LLM output against the document model.
type Pipeline struct {
	Opts document.Options
	Hook Hook
}

// New returns a pipeline with the given validation options.
func New(opts document.Options) *Pipeline {
	return &Pipeline{Opts: opts}
}

func (p *Pipeline) enter(stage Stage) {
	if p.Hook != nil {
		p.Hook(stage)
	}
}

// Run parses and validates raw response text into a document. Failures are
// either *MalformedError or *document.ValidationError; both retain full
// diagnostic context.
func (p *Pipeline) Run(text string) (*document.Document, error) {
	p.enter(StageStrip)
	stripped := StripFences(text)

	p.enter(StageParse)
	value, err := document.ParseGeneric([]byte(stripped))
	if err != nil {
		return nil, &MalformedError{Err: err, Text: stripped}
	}

	p.enter(StageValidate)
	doc, err := document.Decode(value, p.Opts)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// RunCanonical runs the full pipeline and renders the canonical JSON form.
func (p *Pipeline) RunCanonical(text string) (string, error) {
	doc, err := p.Run(text)
	if err != nil {
		return "", err
	}

	p.enter(StageRender)
	out, err := document.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

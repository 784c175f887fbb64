package site

import (
	"github.com/jonathan/resume-site/internal/document"
	"github.com/jonathan/resume-site/internal/rendering"
	"github.com/jonathan/resume-site/internal/types"
)

// RenderOptions controls how one document becomes a page
type RenderOptions struct {
	BasePath  string
	Untrusted bool
}

// RenderDocument normalizes doc and renders it with tmpl, returning the page
// and the model it was built from.
func RenderDocument(tmpl *rendering.Template, doc document.RawDocument, opts RenderOptions) (string, *types.ResumeModel) {
	model := document.Normalize(doc)
	ctx := rendering.ModelContext(model, rendering.ContextOptions{BasePath: NormalizeBase(opts.BasePath)})
	if opts.Untrusted {
		ctx = rendering.StripUntrusted(ctx)
	}
	return tmpl.Execute(ctx), model
}

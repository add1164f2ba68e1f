package pages

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts a document body into HTML. Markdown sources go through
// goldmark with GFM extensions; HTML sources pass through untouched.
// The renderer is stateless and safe for concurrent use.
type Renderer struct {
	engine goldmark.Markdown
}

// NewRenderer constructs a renderer. Raw HTML inside Markdown is kept: page
// sources are authored in-repo, not user supplied.
func NewRenderer() *Renderer {
	return &Renderer{
		engine: goldmark.New(
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithExtensions(
				extension.GFM,
				extension.Linkify,
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
}

// Render returns the HTML body for doc.
func (r *Renderer) Render(doc *Document) ([]byte, error) {
	if doc.Format != FormatMarkdown {
		return doc.Body, nil
	}

	var buf bytes.Buffer
	if err := r.engine.Convert(doc.Body, &buf); err != nil {
		return nil, fmt.Errorf("pages: render %s: %w", doc.FilePath, err)
	}
	return buf.Bytes(), nil
}

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed templates/layout.html
var layoutFS embed.FS

// LayoutData feeds the page shell template. Body is pre-rendered page HTML;
// the shell carries the placeholder containers the fragment pass fills.
type LayoutData struct {
	Lang        string
	Title       string
	Description string
	Canonical   string
	Stylesheets []string
	Scripts     []string
	Body        template.HTML
}

// Layout executes the page shell template.
type Layout struct {
	tpl *template.Template
}

// NewLayout parses the shell template from fsys, or the embedded default
// when fsys is nil.
func NewLayout(fsys fs.FS, name string) (*Layout, error) {
	if fsys == nil {
		fsys = layoutFS
		name = "templates/layout.html"
	}

	tpl, err := template.ParseFS(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("render: parse layout %s: %w", name, err)
	}
	return &Layout{tpl: tpl}, nil
}

// Execute renders the shell around the page body.
func (l *Layout) Execute(data LayoutData) (string, error) {
	var buf bytes.Buffer
	if err := l.tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render: execute layout: %w", err)
	}
	return buf.String(), nil
}

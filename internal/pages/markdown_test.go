package pages_test

import (
	"strings"
	"testing"

	"github.com/denudev/sitekit/internal/pages"
)

func TestRendererMarkdown(t *testing.T) {
	renderer := pages.NewRenderer()
	doc := &pages.Document{
		Format: pages.FormatMarkdown,
		Body:   []byte("# Welcome\n\nVisit https://denu.dev today.\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"),
	}

	out, err := renderer.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	if !strings.Contains(html, `<h1 id="welcome">Welcome</h1>`) {
		t.Fatalf("expected heading with generated id: %s", html)
	}
	if !strings.Contains(html, `<a href="https://denu.dev"`) {
		t.Fatalf("expected bare URL linkified: %s", html)
	}
	if !strings.Contains(html, "<table>") {
		t.Fatalf("expected table extension active: %s", html)
	}
}

func TestRendererKeepsInlineHTML(t *testing.T) {
	renderer := pages.NewRenderer()
	doc := &pages.Document{
		Format: pages.FormatMarkdown,
		Body:   []byte(`Text with <span data-i18n="nav.home">Home</span> inline.`),
	}

	out, err := renderer.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), `<span data-i18n="nav.home">`) {
		t.Fatalf("expected inline HTML preserved: %s", out)
	}
}

func TestRendererPassesHTMLThrough(t *testing.T) {
	renderer := pages.NewRenderer()
	doc := &pages.Document{
		Format: pages.FormatHTML,
		Body:   []byte("<section># not markdown</section>"),
	}

	out, err := renderer.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "<section># not markdown</section>" {
		t.Fatalf("expected untouched body got %s", out)
	}
}

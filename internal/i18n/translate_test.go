package i18n_test

import (
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/denudev/sitekit/internal/dom"
	"github.com/denudev/sitekit/internal/i18n"
)

type stubTranslator struct {
	entries map[string]string
}

func (s stubTranslator) Translate(lang, key string) string {
	if value, ok := s.entries[lang+"/"+key]; ok {
		return value
	}
	return key
}

func newTranslator() stubTranslator {
	return stubTranslator{entries: map[string]string{
		"fa/nav.discover":      "کاوش",
		"fa/contact.form.name": "نام",
		"en/nav.discover":      "Discover",
	}}
}

func parseDoc(t *testing.T, markup string) *html.Node {
	t.Helper()
	doc, err := dom.ParseString(markup)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func renderDoc(t *testing.T, doc *html.Node) string {
	t.Helper()
	out, err := dom.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out
}

func TestApplyReplacesText(t *testing.T) {
	doc := parseDoc(t, `<html lang="en"><body><span data-i18n="nav.discover">Discover</span></body></html>`)

	i18n.Apply(doc, newTranslator(), "fa", "en", "lang")

	out := renderDoc(t, doc)
	if !strings.Contains(out, "کاوش") {
		t.Fatalf("expected translated text in output: %s", out)
	}
	if strings.Contains(out, ">Discover<") {
		t.Fatalf("expected original text gone: %s", out)
	}
	if !strings.Contains(out, `lang="fa"`) {
		t.Fatalf("expected document language updated: %s", out)
	}
}

func TestApplyPreservesLeadingIcon(t *testing.T) {
	doc := parseDoc(t, `<html><body><a data-i18n="nav.discover"><i class="icon icon-compass"></i>Discover</a></body></html>`)

	i18n.Apply(doc, newTranslator(), "fa", "en", "lang")

	out := renderDoc(t, doc)
	iconAt := strings.Index(out, "icon-compass")
	textAt := strings.Index(out, "کاوش")
	if iconAt == -1 || textAt == -1 {
		t.Fatalf("expected icon and text present: %s", out)
	}
	if iconAt > textAt {
		t.Fatalf("expected icon before text: %s", out)
	}
}

func TestApplyPreservesTrailingIcon(t *testing.T) {
	doc := parseDoc(t, `<html><body><a data-i18n="nav.discover">Discover<i class="icon icon-arrow"></i></a></body></html>`)

	i18n.Apply(doc, newTranslator(), "fa", "en", "lang")

	out := renderDoc(t, doc)
	iconAt := strings.Index(out, "icon-arrow")
	textAt := strings.Index(out, "کاوش")
	if iconAt == -1 || textAt == -1 {
		t.Fatalf("expected icon and text present: %s", out)
	}
	if textAt > iconAt {
		t.Fatalf("expected text before trailing icon: %s", out)
	}
}

func TestApplySetsPlaceholderOnFormControls(t *testing.T) {
	doc := parseDoc(t, `<html><body><input data-i18n="contact.form.name" placeholder="Name"><textarea data-i18n="contact.form.name"></textarea></body></html>`)

	i18n.Apply(doc, newTranslator(), "fa", "en", "lang")

	out := renderDoc(t, doc)
	if strings.Count(out, `placeholder="نام"`) != 2 {
		t.Fatalf("expected both controls to carry translated placeholder: %s", out)
	}
}

func TestApplyFallsBackToRawKey(t *testing.T) {
	doc := parseDoc(t, `<html><body><span data-i18n="missing.key">old</span></body></html>`)

	i18n.Apply(doc, newTranslator(), "fa", "en", "lang")

	out := renderDoc(t, doc)
	if !strings.Contains(out, ">missing.key<") {
		t.Fatalf("expected raw key rendered literally: %s", out)
	}
}

func TestApplyUpdatesCanonicalLink(t *testing.T) {
	doc := parseDoc(t, `<html><head><link rel="canonical" href="https://denu.dev/about"></head><body></body></html>`)

	i18n.Apply(doc, newTranslator(), "fa", "en", "lang")
	out := renderDoc(t, doc)
	if !strings.Contains(out, "https://denu.dev/about?lang=fa") {
		t.Fatalf("expected canonical to gain language parameter: %s", out)
	}

	i18n.Apply(doc, newTranslator(), "en", "en", "lang")
	out = renderDoc(t, doc)
	if strings.Contains(out, "lang=") {
		t.Fatalf("expected canonical parameter dropped for default language: %s", out)
	}
}

func TestApplyIsRepeatable(t *testing.T) {
	doc := parseDoc(t, `<html><body><a data-i18n="nav.discover"><i class="icon"></i>Discover</a></body></html>`)
	translator := newTranslator()

	i18n.Apply(doc, translator, "fa", "en", "lang")
	first := renderDoc(t, doc)
	i18n.Apply(doc, translator, "fa", "en", "lang")
	second := renderDoc(t, doc)

	if first != second {
		t.Fatalf("expected repeated pass to be stable:\nfirst:  %s\nsecond: %s", first, second)
	}
}

// Package render composes the page passes: fragment injection, translation,
// companion link rewriting, and theme decoration over one document tree.
package render

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/denudev/sitekit/internal/dom"
	"github.com/denudev/sitekit/internal/environments"
	"github.com/denudev/sitekit/internal/fragments"
	"github.com/denudev/sitekit/internal/i18n"
	"github.com/denudev/sitekit/internal/links"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/internal/themes"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// themeStyleID anchors the injected CSS variable block so repeat passes
// replace it instead of stacking duplicates.
const themeStyleID = "theme-vars"

// Request carries the per-view resolution state a render pass needs.
type Request struct {
	Env       environments.Context
	Overrides environments.Overrides
	Language  string
	Variant   string
}

// Pipeline runs the full pass sequence over a parsed document. Every pass is
// idempotent, so a pipeline can re-run any subset when runtime state changes.
type Pipeline struct {
	translator      interfaces.Translator
	defaultLanguage string
	langParam       string
	fragments       *fragments.Loader
	links           *links.Rewriter
	themes          *themes.Selector
	logger          interfaces.Logger
}

// Config wires the pipeline collaborators.
type Config struct {
	Translator      interfaces.Translator
	DefaultLanguage string
	LanguageParam   string
	Fragments       *fragments.Loader
	Links           *links.Rewriter
	Themes          *themes.Selector
	Logger          interfaces.Logger
}

// NewPipeline constructs a pipeline. Fragments and Themes are optional;
// a nil collaborator skips its pass.
func NewPipeline(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Pipeline{
		translator:      cfg.Translator,
		defaultLanguage: cfg.DefaultLanguage,
		langParam:       cfg.LanguageParam,
		fragments:       cfg.Fragments,
		links:           cfg.Links,
		themes:          cfg.Themes,
		logger:          logger,
	}
}

// Render runs the full pass sequence: fragments first so their subtrees are
// covered by the translation and link passes that follow, theme decoration
// last.
func (p *Pipeline) Render(ctx context.Context, doc *html.Node, req Request) error {
	if p.fragments != nil {
		p.fragments.Inject(ctx, doc)
	}
	p.ApplyLanguage(doc, req)
	p.RewriteLinks(doc, req)
	return p.ApplyTheme(doc, req.Variant)
}

// ApplyLanguage runs the translation pass for the request language.
func (p *Pipeline) ApplyLanguage(doc *html.Node, req Request) {
	if p.translator == nil {
		return
	}
	i18n.Apply(doc, p.translator, req.Language, p.defaultLanguage, p.langParam)
}

// RewriteLinks runs the companion link pass over unprocessed anchors.
func (p *Pipeline) RewriteLinks(doc *html.Node, req Request) {
	if p.links == nil {
		return
	}
	p.links.Rewrite(doc, req.Env, req.Overrides, req.Language)
}

// RefreshLinks recomputes already processed anchors, keeping their markers.
func (p *Pipeline) RefreshLinks(doc *html.Node, req Request) {
	if p.links == nil {
		return
	}
	p.links.Refresh(doc, req.Env, req.Overrides, req.Language)
}

// ResetLinks clears processed markers so the next rewrite reconsiders every
// marked anchor.
func (p *Pipeline) ResetLinks(doc *html.Node) {
	if p.links == nil {
		return
	}
	p.links.Reset(doc)
}

// ApplyTheme decorates the document root with the variant class and injects
// the theme's CSS variable block into head.
func (p *Pipeline) ApplyTheme(doc *html.Node, variant string) error {
	if p.themes == nil {
		return nil
	}

	themeCtx, err := p.themes.Context(variant)
	if err != nil {
		return fmt.Errorf("render: theme pass: %w", err)
	}

	root := dom.FindElement(doc, "html")
	if root != nil {
		swapVariantClass(root, themeCtx.Variant)
		dom.SetAttr(root, "data-theme", themeCtx.Variant)
	}

	if len(themeCtx.CSSVars) > 0 {
		if head := dom.FindElement(doc, "head"); head != nil {
			upsertThemeStyle(head, themeCtx.CSSVars)
		}
	}
	return nil
}

func swapVariantClass(root *html.Node, variant string) {
	existing, _ := dom.Attr(root, "class")
	var kept []string
	for _, cls := range strings.Fields(existing) {
		if !strings.HasPrefix(cls, "theme-") {
			kept = append(kept, cls)
		}
	}
	kept = append(kept, "theme-"+variant)
	dom.SetAttr(root, "class", strings.Join(kept, " "))
}

func upsertThemeStyle(head *html.Node, vars map[string]string) {
	style := dom.ByID(head, themeStyleID)
	if style == nil {
		style = &html.Node{
			Type: html.ElementNode,
			Data: "style",
			Attr: []html.Attribute{{Key: "id", Val: themeStyleID}},
		}
		head.AppendChild(style)
	}

	dom.RemoveChildren(style)
	style.AppendChild(dom.TextNode(cssVariableBlock(vars)))
}

func cssVariableBlock(vars map[string]string) string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root{")
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(":")
		b.WriteString(vars[name])
		b.WriteString(";")
	}
	b.WriteString("}")
	return b.String()
}

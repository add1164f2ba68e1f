// Package links rewrites marked anchors so they target the companion
// application origin resolved for the current environment.
package links

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/denudev/sitekit/internal/dom"
	"github.com/denudev/sitekit/internal/environments"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

const (
	// MarkerClass designates an anchor as companion-app bound.
	MarkerClass = "app-link"
	// TargetAttr names the in-app route or path the anchor targets.
	TargetAttr = "data-app-path"
	// ProcessedAttr marks an anchor as already rewritten, keeping re-scans
	// idempotent until a fragment reload clears it.
	ProcessedAttr = "data-app-resolved"
)

// Rewriter performs the scan-and-rewrite pass over a document tree.
type Rewriter struct {
	resolver     *environments.Resolver
	logger       interfaces.Logger
	redirectBase string
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger attaches the module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(rw *Rewriter) {
		if logger != nil {
			rw.logger = logger
		}
	}
}

// WithRedirectBase makes rewritten hrefs point at the given same-origin
// prefix (e.g. "/go") followed by the anchor target, so the destination is
// recomputed server-side at click time instead of being baked into the page.
// Static export leaves this unset and assigns absolute destinations.
func WithRedirectBase(base string) Option {
	return func(rw *Rewriter) {
		rw.redirectBase = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// NewRewriter constructs a rewriter around the companion URL resolver.
func NewRewriter(resolver *environments.Resolver, opts ...Option) *Rewriter {
	rw := &Rewriter{
		resolver: resolver,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(rw)
	}
	return rw
}

// Rewrite scans the document for marked anchors not yet processed and assigns
// their computed destination. Any unexpected failure is caught and logged;
// the page stays functional with the remaining links unrewritten.
func (rw *Rewriter) Rewrite(doc *html.Node, env environments.Context, overrides environments.Overrides, lang string) {
	defer rw.recoverPass("rewrite")

	for _, anchor := range rw.markedAnchors(doc) {
		if _, processed := dom.Attr(anchor, ProcessedAttr); processed {
			continue
		}
		rw.rewriteAnchor(anchor, env, overrides, lang)
	}
}

// Refresh recomputes the destination of every already-processed anchor in
// place, without clearing processed markers. Used when the active language
// changes after the initial pass.
func (rw *Rewriter) Refresh(doc *html.Node, env environments.Context, overrides environments.Overrides, lang string) {
	defer rw.recoverPass("refresh")

	for _, anchor := range rw.markedAnchors(doc) {
		if _, processed := dom.Attr(anchor, ProcessedAttr); !processed {
			continue
		}
		rw.rewriteAnchor(anchor, env, overrides, lang)
	}
}

// Reset clears every processed marker so the next Rewrite performs a full
// pass. Invoked when fragments reload: newly injected partials may contain
// new qualifying anchors, and existing anchors may carry updated targets.
func (rw *Rewriter) Reset(doc *html.Node) {
	for _, anchor := range rw.markedAnchors(doc) {
		dom.RemoveAttr(anchor, ProcessedAttr)
	}
}

func (rw *Rewriter) markedAnchors(doc *html.Node) []*html.Node {
	var anchors []*html.Node
	dom.Walk(doc, func(n *html.Node) bool {
		if n.Data == "a" && dom.HasClass(n, MarkerClass) {
			anchors = append(anchors, n)
		}
		return true
	})
	return anchors
}

func (rw *Rewriter) rewriteAnchor(anchor *html.Node, env environments.Context, overrides environments.Overrides, lang string) {
	target := rw.targetFor(anchor)

	destination, err := rw.resolver.TargetURL(env, overrides, target, lang)
	if err != nil {
		rw.logger.Warn("links.rewrite.skip", "target", target, "error", err)
		return
	}

	href := destination
	if rw.redirectBase != "" {
		href = rw.redirectBase + "/" + strings.TrimLeft(target, "/")
	}

	dom.SetAttr(anchor, "href", href)
	dom.SetAttr(anchor, ProcessedAttr, "true")

	if host := hostOf(destination); host != "" && !strings.EqualFold(host, env.Host) {
		dom.SetAttr(anchor, "target", "_blank")
		dom.SetAttr(anchor, "rel", "noopener noreferrer")
	}
}

// targetFor resolves the anchor's in-app target: the designated attribute
// wins; otherwise the pre-rewrite href path is adopted (and recorded in the
// attribute so later refreshes stay stable); otherwise root.
func (rw *Rewriter) targetFor(anchor *html.Node) string {
	if target, ok := dom.Attr(anchor, TargetAttr); ok && strings.TrimSpace(target) != "" {
		return strings.TrimSpace(target)
	}

	if href, ok := dom.Attr(anchor, "href"); ok && strings.TrimSpace(href) != "" {
		path := pathOf(href)
		dom.SetAttr(anchor, TargetAttr, path)
		return path
	}

	dom.SetAttr(anchor, TargetAttr, "/")
	return "/"
}

func (rw *Rewriter) recoverPass(pass string) {
	if rec := recover(); rec != nil {
		rw.logger.Error("links.pass.panic", "pass", pass, "panic", rec)
	}
}

func pathOf(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Path == "" {
		return "/"
	}
	return parsed.Path
}

func hostOf(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

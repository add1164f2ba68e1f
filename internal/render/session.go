package render

import (
	"context"
	"sync"

	"golang.org/x/net/html"

	"github.com/denudev/sitekit/internal/events"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// Session binds a live document to the event bus so later runtime changes
// re-run the affected passes: a language change re-translates and refreshes
// processed links, freshly loaded fragments get the full pass sequence, and
// a scheme change re-decorates the theme.
type Session struct {
	pipeline *Pipeline
	doc      *html.Node

	mu      sync.Mutex
	req     Request
	cancels []func()
}

// NewSession subscribes the document to the bus topics. Close releases the
// subscriptions.
func NewSession(bus interfaces.EventBus, pipeline *Pipeline, doc *html.Node, req Request) *Session {
	s := &Session{
		pipeline: pipeline,
		doc:      doc,
		req:      req,
	}

	s.cancels = append(s.cancels,
		bus.Subscribe(events.TopicLanguageChanged, s.onLanguageChanged),
		bus.Subscribe(events.TopicFragmentsLoaded, s.onFragmentsLoaded),
		bus.Subscribe(events.TopicSchemeChanged, s.onSchemeChanged),
	)
	return s
}

// Request returns the session's current resolution state.
func (s *Session) Request() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.req
}

// Close releases the bus subscriptions.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil
}

func (s *Session) onLanguageChanged(_ context.Context, evt interfaces.Event) {
	lang, _ := evt.Payload[events.PayloadLanguage].(string)
	if lang == "" {
		return
	}

	s.mu.Lock()
	s.req.Language = lang
	req := s.req
	s.mu.Unlock()

	s.pipeline.ApplyLanguage(s.doc, req)
	s.pipeline.RefreshLinks(s.doc, req)
}

func (s *Session) onFragmentsLoaded(_ context.Context, _ interfaces.Event) {
	s.mu.Lock()
	req := s.req
	s.mu.Unlock()

	// New subtrees carry no processed markers; a reset plus rewrite also
	// reconsiders anchors whose targets changed across the reload.
	s.pipeline.ResetLinks(s.doc)
	s.pipeline.ApplyLanguage(s.doc, req)
	s.pipeline.RewriteLinks(s.doc, req)
	_ = s.pipeline.ApplyTheme(s.doc, req.Variant)
}

func (s *Session) onSchemeChanged(_ context.Context, evt interfaces.Event) {
	variant, _ := evt.Payload[events.PayloadScheme].(string)
	if variant == "" {
		return
	}

	s.mu.Lock()
	s.req.Variant = variant
	s.mu.Unlock()

	_ = s.pipeline.ApplyTheme(s.doc, variant)
}

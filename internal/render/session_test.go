package render

import (
	"context"
	"strings"
	"testing"

	"github.com/denudev/sitekit/internal/dom"
	"github.com/denudev/sitekit/internal/environments"
	"github.com/denudev/sitekit/internal/events"
	"github.com/denudev/sitekit/pkg/interfaces"
)

func TestSessionLanguageChangeRetranslates(t *testing.T) {
	bus := events.NewBus()
	pipeline := newTestPipeline()
	doc := testDocument(t)
	req := Request{Env: environments.Detect("denu.dev"), Language: "en"}

	if err := pipeline.Render(context.Background(), doc, req); err != nil {
		t.Fatalf("render: %v", err)
	}

	session := NewSession(bus, pipeline, doc, req)
	defer session.Close()

	bus.Publish(context.Background(), interfaces.Event{
		Topic:   events.TopicLanguageChanged,
		Payload: map[string]any{events.PayloadLanguage: "fa"},
	})

	out, err := dom.Render(doc)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(out, "شروع کنید") {
		t.Fatalf("expected retranslated document: %s", out)
	}
	if !strings.Contains(out, "https://app.denu.dev/signup?lang=fa") {
		t.Fatalf("expected processed links refreshed: %s", out)
	}
	if session.Request().Language != "fa" {
		t.Fatalf("expected session state updated got %s", session.Request().Language)
	}
}

func TestSessionFragmentsLoadedRerunsPasses(t *testing.T) {
	bus := events.NewBus()
	pipeline := newTestPipeline()
	doc := testDocument(t)
	req := Request{Env: environments.Detect("denu.dev"), Language: "fa"}

	session := NewSession(bus, pipeline, doc, req)
	defer session.Close()

	// Simulate a fragment reload arriving after subscription.
	pipeline.fragments.Inject(context.Background(), doc)
	bus.Publish(context.Background(), interfaces.Event{Topic: events.TopicFragmentsLoaded})

	out, err := dom.Render(doc)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	if !strings.Contains(out, "شروع کنید") {
		t.Fatalf("expected injected fragment translated: %s", out)
	}
	if !strings.Contains(out, "https://app.denu.dev/signup?lang=fa") {
		t.Fatalf("expected injected anchors rewritten: %s", out)
	}
}

func TestSessionCloseUnsubscribes(t *testing.T) {
	bus := events.NewBus()
	pipeline := newTestPipeline()
	doc := testDocument(t)
	req := Request{Env: environments.Detect("denu.dev"), Language: "en"}

	session := NewSession(bus, pipeline, doc, req)
	session.Close()

	bus.Publish(context.Background(), interfaces.Event{
		Topic:   events.TopicLanguageChanged,
		Payload: map[string]any{events.PayloadLanguage: "fa"},
	})

	if session.Request().Language != "en" {
		t.Fatalf("expected closed session untouched got %s", session.Request().Language)
	}
}

func TestSessionSchemeChangeUpdatesVariant(t *testing.T) {
	bus := events.NewBus()
	pipeline := newTestPipeline()
	doc := testDocument(t)
	req := Request{Env: environments.Detect("denu.dev"), Language: "en", Variant: "light"}

	session := NewSession(bus, pipeline, doc, req)
	defer session.Close()

	bus.Publish(context.Background(), interfaces.Event{
		Topic:   events.TopicSchemeChanged,
		Payload: map[string]any{events.PayloadScheme: "dark"},
	})

	if session.Request().Variant != "dark" {
		t.Fatalf("expected dark variant got %s", session.Request().Variant)
	}
}

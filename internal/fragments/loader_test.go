package fragments_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"golang.org/x/net/html"

	"github.com/denudev/sitekit/internal/dom"
	"github.com/denudev/sitekit/internal/events"
	"github.com/denudev/sitekit/internal/fragments"
	"github.com/denudev/sitekit/pkg/interfaces"
)

func pageShell(t *testing.T) *html.Node {
	t.Helper()
	doc, err := dom.ParseString(`<html><body>
		<div id="navbar-container"></div>
		<div id="footer-container"></div>
	</body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func testFragments() []fragments.Fragment {
	return []fragments.Fragment{
		{Name: "navbar", Path: "partials/navbar.html", Container: "navbar-container"},
		{Name: "footer", Path: "partials/footer.html", Container: "footer-container"},
	}
}

func testSource() fragments.FSSource {
	return fragments.FSSource{FS: fstest.MapFS{
		"partials/navbar.html": {Data: []byte(`<nav id="site-nav">nav</nav>`)},
		"partials/footer.html": {Data: []byte(`<footer id="site-footer">footer</footer>`)},
	}}
}

func TestInjectFillsContainers(t *testing.T) {
	loader := fragments.NewLoader(testSource(), testFragments())
	doc := pageShell(t)

	loader.Inject(context.Background(), doc)

	out, err := dom.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `id="site-nav"`) || !strings.Contains(out, `id="site-footer"`) {
		t.Fatalf("expected both partials injected: %s", out)
	}
	if !loader.AllLoaded() {
		t.Fatal("expected all fragments settled")
	}
}

func TestInjectPublishesOnceAllSettled(t *testing.T) {
	bus := events.NewBus()
	count := 0
	bus.Subscribe(events.TopicFragmentsLoaded, func(context.Context, interfaces.Event) {
		count++
	})

	loader := fragments.NewLoader(testSource(), testFragments(), fragments.WithBus(bus))
	loader.Inject(context.Background(), pageShell(t))

	if count != 1 {
		t.Fatalf("expected one loaded notification got %d", count)
	}
}

type partialSource struct {
	fs  fragments.FSSource
	err error
}

func (p partialSource) Fetch(ctx context.Context, path string) (string, error) {
	if strings.Contains(path, "navbar") {
		return "", p.err
	}
	return p.fs.Fetch(ctx, path)
}

func TestInjectFailureStillSettles(t *testing.T) {
	bus := events.NewBus()
	count := 0
	bus.Subscribe(events.TopicFragmentsLoaded, func(context.Context, interfaces.Event) {
		count++
	})

	source := partialSource{fs: testSource(), err: errors.New("unreachable")}
	loader := fragments.NewLoader(source, testFragments(), fragments.WithBus(bus))
	doc := pageShell(t)

	loader.Inject(context.Background(), doc)

	out, err := dom.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "site-nav") {
		t.Fatalf("expected failed fragment container left empty: %s", out)
	}
	if !strings.Contains(out, "site-footer") {
		t.Fatalf("expected surviving fragment injected: %s", out)
	}
	if !loader.Loaded("navbar") {
		t.Fatal("expected failed fragment to count as settled")
	}
	if count != 1 {
		t.Fatalf("expected loaded notification despite failure got %d", count)
	}
}

func TestInjectMissingContainerSettles(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div id="navbar-container"></div></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	loader := fragments.NewLoader(testSource(), testFragments())
	loader.Inject(context.Background(), doc)

	if !loader.AllLoaded() {
		t.Fatal("expected all fragments settled despite missing container")
	}
}

func TestReloadRepublishes(t *testing.T) {
	bus := events.NewBus()
	count := 0
	bus.Subscribe(events.TopicFragmentsLoaded, func(context.Context, interfaces.Event) {
		count++
	})

	loader := fragments.NewLoader(testSource(), testFragments(), fragments.WithBus(bus))
	doc := pageShell(t)

	loader.Inject(context.Background(), doc)
	loader.Reload(context.Background(), doc)

	if count != 2 {
		t.Fatalf("expected reload to republish got %d", count)
	}
}

func TestInjectReplacesExistingContent(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><div id="navbar-container"><p>placeholder</p></div><div id="footer-container"></div></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	loader := fragments.NewLoader(testSource(), testFragments())
	loader.Inject(context.Background(), doc)

	out, err := dom.Render(doc)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "placeholder") {
		t.Fatalf("expected placeholder content replaced: %s", out)
	}
}

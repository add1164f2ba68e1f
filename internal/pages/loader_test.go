package pages_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/denudev/sitekit/internal/pages"
)

func sourceFS(docs map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, contents := range docs {
		fsys[name] = &fstest.MapFile{Data: []byte(contents)}
	}
	return fsys
}

func TestLoaderRoutesFromFileNames(t *testing.T) {
	fsys := sourceFS(map[string]string{
		"index.md": "---\ntitle: landing.headline\n---\n# Welcome",
		"about.md": "---\ntitle: about.title\n---\nAbout body",
	})

	collection, err := pages.NewLoader(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, ok := collection.ByRoute("/"); !ok {
		t.Fatal("expected index mounted at /")
	}
	if doc, ok := collection.ByRoute("/about"); !ok || doc.FrontMatter.Title != "about.title" {
		t.Fatalf("expected about page, got ok=%v", ok)
	}
}

func TestLoaderSlugOverridesFileName(t *testing.T) {
	fsys := sourceFS(map[string]string{
		"legal-privacy.md": "---\ntitle: legal.privacy.title\nslug: privacy\n---\nbody",
	})

	collection, err := pages.NewLoader(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := collection.ByRoute("/privacy"); !ok {
		t.Fatal("expected slug-mounted route /privacy")
	}
	if _, ok := collection.ByRoute("/legal-privacy"); ok {
		t.Fatal("expected file-based route unused when slug present")
	}
}

func TestLoaderNormalizesMessySlug(t *testing.T) {
	fsys := sourceFS(map[string]string{
		"page.md": "---\ntitle: about.title\nslug: \"About Denu!\"\n---\nbody",
	})

	collection, err := pages.NewLoader(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	docs := collection.All()
	if len(docs) != 1 {
		t.Fatalf("expected one document got %d", len(docs))
	}
	route := docs[0].Route
	if strings.ContainsAny(route, " !") || route == "/page" {
		t.Fatalf("expected normalized slug route got %q", route)
	}
}

func TestLoaderSkipsDrafts(t *testing.T) {
	fsys := sourceFS(map[string]string{
		"index.md": "---\ntitle: landing.headline\n---\nbody",
		"wip.md":   "---\ntitle: wip\ndraft: true\n---\nbody",
	})

	collection, err := pages.NewLoader(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := collection.ByRoute("/wip"); ok {
		t.Fatal("expected draft excluded")
	}
	if len(collection.All()) != 1 {
		t.Fatalf("expected one published page got %d", len(collection.All()))
	}
}

func TestLoaderRejectsDuplicateRoutes(t *testing.T) {
	fsys := sourceFS(map[string]string{
		"about.md":   "---\ntitle: about.title\n---\nbody",
		"company.md": "---\ntitle: about.title\nslug: about\n---\nbody",
	})

	if _, err := pages.NewLoader(fsys).Load(context.Background()); err == nil {
		t.Fatal("expected duplicate route error")
	}
}

func TestLoaderRequiresTitle(t *testing.T) {
	fsys := sourceFS(map[string]string{
		"index.md": "---\nslug: index\n---\nbody",
	})

	if _, err := pages.NewLoader(fsys).Load(context.Background()); !errors.Is(err, pages.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired got %v", err)
	}
}

func TestLoaderNavOrdering(t *testing.T) {
	fsys := sourceFS(map[string]string{
		"index.md":   "---\ntitle: landing.headline\nnav: true\nnav_order: 1\n---\nbody",
		"contact.md": "---\ntitle: contact.title\nnav: true\nnav_order: 3\n---\nbody",
		"about.md":   "---\ntitle: about.title\nnav: true\nnav_order: 2\n---\nbody",
		"privacy.md": "---\ntitle: legal.privacy.title\n---\nbody",
	})

	collection, err := pages.NewLoader(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	nav := collection.Nav()
	if len(nav) != 3 {
		t.Fatalf("expected 3 nav pages got %d", len(nav))
	}
	routes := []string{nav[0].Route, nav[1].Route, nav[2].Route}
	if routes[0] != "/" || routes[1] != "/about" || routes[2] != "/contact" {
		t.Fatalf("unexpected nav order: %v", routes)
	}
}

func TestLoaderIgnoresNonPageSources(t *testing.T) {
	fsys := sourceFS(map[string]string{
		"index.md":   "---\ntitle: landing.headline\n---\nbody",
		"notes.txt":  "not a page",
		"styles.css": "body {}",
	})

	collection, err := pages.NewLoader(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(collection.All()) != 1 {
		t.Fatalf("expected one page got %d", len(collection.All()))
	}
}

func TestCollectionRouteNormalization(t *testing.T) {
	fsys := sourceFS(map[string]string{
		"about.md": "---\ntitle: about.title\n---\nbody",
	})

	collection, err := pages.NewLoader(fsys).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, route := range []string{"/about", "about", "/about/", " /about "} {
		if _, ok := collection.ByRoute(route); !ok {
			t.Fatalf("expected %q to resolve", route)
		}
	}
}

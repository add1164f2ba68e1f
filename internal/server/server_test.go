package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"

	"github.com/denudev/sitekit/internal/environments"
	"github.com/denudev/sitekit/internal/fragments"
	"github.com/denudev/sitekit/internal/i18n"
	"github.com/denudev/sitekit/internal/pages"
	"github.com/denudev/sitekit/internal/prefs"
	"github.com/denudev/sitekit/internal/render"
	"github.com/denudev/sitekit/internal/runtimeconfig"
	"github.com/denudev/sitekit/internal/server"
)

type catalogTranslator struct {
	catalog *i18n.Catalog
}

func (t catalogTranslator) Translate(lang, key string) string {
	if value, ok := t.catalog.Lookup(lang, key); ok {
		return value
	}
	return key
}

func newTestServer(t *testing.T) (*server.Server, prefs.PreferenceRepository) {
	t.Helper()

	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Themes = false

	catalog, err := i18n.NewCatalog(map[string]map[string]string{
		"en": {
			"landing.headline": "Find what matters",
			"nav.signup":       "Get started",
		},
		"fa": {
			"landing.headline": "آنچه مهم است را بیاب",
			"nav.signup":       "شروع کنید",
		},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	pageFS := fstest.MapFS{
		"index.md":    {Data: []byte("---\ntitle: landing.headline\n---\n<span data-i18n=\"landing.headline\">Find what matters</span>")},
		"override.md": {Data: []byte("---\ntitle: landing.headline\n---\n<meta name=\"companion-origin\" content=\"http://companion.localdev:9300\">\n<a class=\"app-link\" data-app-path=\"signup\" href=\"#\">Get started</a>")},
	}
	collection, err := pages.NewLoader(pageFS).Load(context.Background())
	if err != nil {
		t.Fatalf("pages: %v", err)
	}

	layout, err := render.NewLayout(nil, "")
	if err != nil {
		t.Fatalf("layout: %v", err)
	}

	fragmentFS := fstest.MapFS{
		"navbar.html": {Data: []byte(`<nav id="site-nav"><a class="app-link" data-app-path="signup" href="#" data-i18n="nav.signup">Get started</a></nav>`)},
		"drawer.html": {Data: []byte(`<aside id="site-drawer"></aside>`)},
		"footer.html": {Data: []byte(`<footer id="site-footer"></footer>`)},
	}

	repo := prefs.NewMemoryRepository()
	srv := server.New(server.Dependencies{
		Config:     cfg,
		Collection: collection,
		Renderer:   pages.NewRenderer(),
		Layout:     layout,
		Catalog:    catalog,
		Resolver:   i18n.NewResolver(catalog, cfg.I18N.DefaultLanguage, cfg.I18N.TimezoneLanguages),
		Translator: catalogTranslator{catalog: catalog},
		Fragments:  fragments.FSSource{FS: fragmentFS},
		Links: environments.NewResolver(
			cfg.Environments.CompanionSubdomain,
			cfg.Environments.Routes,
			cfg.Environments.ConventionalPorts,
			cfg.I18N.DefaultLanguage,
			cfg.I18N.QueryParam,
		),
		PrefsRepo: repo,
	})
	return srv, repo
}

func get(t *testing.T, srv *server.Server, target string, prepare func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Host = "denu.dev"
	if prepare != nil {
		prepare(req)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, srv *server.Server, target string, form url.Values, prepare func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Host = "denu.dev"
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if prepare != nil {
		prepare(req)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestPageRendersWithFragments(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="site-nav"`) {
		t.Fatalf("expected navbar fragment injected: %s", body)
	}
	if !strings.Contains(body, `href="/go/signup"`) {
		t.Fatalf("expected companion link routed through redirect: %s", body)
	}
	if !strings.Contains(body, "Find what matters") {
		t.Fatalf("expected default-language translation: %s", body)
	}

	var visitorCookie bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "sk_visitor" && cookie.HttpOnly {
			visitorCookie = true
		}
	}
	if !visitorCookie {
		t.Fatal("expected visitor cookie assigned")
	}
}

func TestPageQueryLanguageWins(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/?lang=fa", func(req *http.Request) {
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	})

	body := rec.Body.String()
	if !strings.Contains(body, "آنچه مهم است را بیاب") {
		t.Fatalf("expected fa translation: %s", body)
	}
	if !strings.Contains(body, `lang="fa"`) {
		t.Fatalf("expected fa document language: %s", body)
	}
}

func TestPageAcceptLanguageFallback(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/", func(req *http.Request) {
		req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9")
	})

	if !strings.Contains(rec.Body.String(), `lang="fa"`) {
		t.Fatalf("expected browser language honored: %s", rec.Body.String())
	}
}

func TestPageTimezoneHeuristic(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/", func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "sk_tz", Value: "Asia/Tehran"})
	})

	if !strings.Contains(rec.Body.String(), `lang="fa"`) {
		t.Fatalf("expected timezone heuristic to pick fa: %s", rec.Body.String())
	}
}

func TestPageNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestCompanionRedirect(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/go/signup", nil)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://app.denu.dev/signup" {
		t.Fatalf("expected companion destination got %s", loc)
	}
}

func TestCompanionRedirectHonorsEnvironment(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := get(t, srv, "/go/signup", func(req *http.Request) {
		req.Host = "qa.denu.dev"
	})

	if loc := rec.Header().Get("Location"); loc != "https://qa.app.denu.dev/signup" {
		t.Fatalf("expected qa destination got %s", loc)
	}
}

func TestCompanionRedirectHonorsOverrideAfterRender(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/", func(req *http.Request) {
		req.Host = "localhost:3000"
	})
	if !strings.Contains(rec.Body.String(), `href="/go/signup"`) {
		t.Fatalf("expected rendered page to defer companion resolution: %s", rec.Body.String())
	}

	// An override active at click time wins even though the page was
	// rendered before it existed.
	rec = get(t, srv, "/go/signup?companion_origin=http://localhost:9100", func(req *http.Request) {
		req.Host = "localhost:3000"
	})
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "http://localhost:9100/signup" {
		t.Fatalf("expected overridden destination got %s", loc)
	}
}

func TestPageMetaCompanionOverride(t *testing.T) {
	srv, _ := newTestServer(t)

	// A page-level <meta name="companion-origin"> points the companion at a
	// foreign host, so its anchors pick up the new-tab decoration.
	rec := get(t, srv, "/override", func(req *http.Request) {
		req.Host = "localhost:3000"
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `target="_blank"`) {
		t.Fatalf("expected meta override to mark cross-host anchor: %s", rec.Body.String())
	}

	// Without the meta tag the local companion shares the hostname.
	rec = get(t, srv, "/", func(req *http.Request) {
		req.Host = "localhost:3000"
	})
	if strings.Contains(rec.Body.String(), `target="_blank"`) {
		t.Fatalf("expected same-host companion without override: %s", rec.Body.String())
	}
}

func TestSetLanguagePersists(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postForm(t, srv, "/language", url.Values{"language": {"fa"}}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	follow := get(t, srv, "/", func(req *http.Request) {
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
	})
	if !strings.Contains(follow.Body.String(), `lang="fa"`) {
		t.Fatalf("expected stored preference honored: %s", follow.Body.String())
	}
}

func TestSetLanguageRejectsUnsupported(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postForm(t, srv, "/language", url.Values{"language": {"de"}}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rec.Code)
	}
}

func TestSetThemePersistsAndClears(t *testing.T) {
	srv, repo := newTestServer(t)

	rec := postForm(t, srv, "/theme", url.Values{"mode": {"dark"}}, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	var visitor string
	for _, cookie := range cookies {
		if cookie.Name == "sk_visitor" {
			visitor = cookie.Value
		}
	}
	if visitor == "" {
		t.Fatal("expected visitor cookie")
	}

	records, err := listVisitorPrefs(repo, visitor)
	if err != nil {
		t.Fatalf("list prefs: %v", err)
	}
	if len(records) != 1 || records[0].Value != "dark" {
		t.Fatalf("expected dark persisted got %v", records)
	}

	rec = postForm(t, srv, "/theme", url.Values{"mode": {"system"}}, func(req *http.Request) {
		for _, cookie := range cookies {
			req.AddCookie(cookie)
		}
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", rec.Code)
	}
	records, err = listVisitorPrefs(repo, visitor)
	if err != nil {
		t.Fatalf("list prefs: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected preference cleared got %v", records)
	}
}

func listVisitorPrefs(repo prefs.PreferenceRepository, visitor string) ([]*prefs.PreferenceRecord, error) {
	id, err := uuid.Parse(visitor)
	if err != nil {
		return nil, err
	}
	return repo.ListByVisitor(context.Background(), id)
}

func TestPartialServed(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := get(t, srv, "/partials/navbar", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `id="site-nav"`) {
		t.Fatalf("unexpected partial body: %s", rec.Body.String())
	}

	rec = get(t, srv, "/partials/unknown", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

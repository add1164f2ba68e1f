package server

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/net/html"

	"github.com/denudev/sitekit/internal/dom"
	"github.com/denudev/sitekit/internal/events"
	"github.com/denudev/sitekit/internal/fragments"
	"github.com/denudev/sitekit/internal/links"
	"github.com/denudev/sitekit/internal/render"
	"github.com/denudev/sitekit/internal/themes"
	"github.com/denudev/sitekit/pkg/interfaces"
)

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.deps.Collection.ByRoute(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	state := s.resolveRequest(w, r)

	body, err := s.deps.Renderer.Render(doc)
	if err != nil {
		s.logger.Error("server.page.render", "route", doc.Route, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := render.LayoutData{
		Lang:        state.language,
		Title:       s.deps.Translator.Translate(state.language, doc.FrontMatter.Title),
		Description: s.deps.Translator.Translate(state.language, doc.FrontMatter.Description),
		Canonical:   state.env.Origin() + doc.Route,
		Body:        template.HTML(body),
	}
	if s.deps.Themes != nil {
		if themeCtx, err := s.deps.Themes.Context(state.variant); err == nil {
			data.Stylesheets, data.Scripts = themes.SplitAssets(themeCtx.Assets)
		} else {
			s.logger.Warn("server.page.theme", "variant", state.variant, "error", err)
		}
	}

	shell, err := s.deps.Layout.Execute(data)
	if err != nil {
		s.logger.Error("server.page.layout", "route", doc.Route, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	tree, err := dom.ParseString(shell)
	if err != nil {
		s.logger.Error("server.page.parse", "route", doc.Route, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	state.overrides.Meta = metaCompanionOrigin(tree)

	pipeline := render.NewPipeline(render.Config{
		Translator:      s.deps.Translator,
		DefaultLanguage: s.deps.Resolver.DefaultLanguage(),
		LanguageParam:   s.deps.Config.I18N.QueryParam,
		Fragments:       s.fragmentLoader(),
		Links: links.NewRewriter(s.deps.Links,
			links.WithLogger(s.logger),
			links.WithRedirectBase(companionRedirectBase),
		),
		Themes: s.deps.Themes,
		Logger: s.logger,
	})

	req := render.Request{
		Env:       state.env,
		Overrides: state.overrides,
		Language:  state.language,
		Variant:   state.variant,
	}
	if err := pipeline.Render(r.Context(), tree, req); err != nil {
		s.logger.Warn("server.page.pipeline", "route", doc.Route, "error", err)
	}

	out, err := dom.Render(tree)
	if err != nil {
		s.logger.Error("server.page.write", "route", doc.Route, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}

func (s *Server) handlePartial(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var target string
	for _, fragment := range s.deps.Config.Fragments.Required {
		if fragment.Name == name {
			target = fragment.Path
			break
		}
	}
	if target == "" {
		http.NotFound(w, r)
		return
	}

	markup, err := s.deps.Fragments.Fetch(r.Context(), target)
	if err != nil {
		s.logger.Warn("server.partial.fetch", "name", name, "error", err)
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(markup))
}

// handleCompanionRedirect recomputes the companion target at click time, so
// preference or override changes since page render are honored.
func (s *Server) handleCompanionRedirect(w http.ResponseWriter, r *http.Request) {
	state := s.resolveRequest(w, r)
	route := strings.Trim(chi.URLParam(r, "*"), "/")

	target, err := s.deps.Links.TargetURL(state.env, state.overrides, route, state.language)
	if err != nil {
		s.logger.Warn("server.companion.redirect", "route", route, "error", err)
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handleSetLanguage(w http.ResponseWriter, r *http.Request) {
	state := s.resolveRequest(w, r)

	lang := strings.TrimSpace(r.FormValue("language"))
	if lang == "" || !s.deps.Catalog.Has(lang) {
		http.Error(w, "unsupported language", http.StatusUnprocessableEntity)
		return
	}

	if err := state.store.Set(r.Context(), interfaces.PreferenceLanguage, lang); err != nil {
		s.logger.Error("server.language.persist", "language", lang, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s.deps.Bus != nil {
		s.deps.Bus.Publish(r.Context(), interfaces.Event{
			Topic:   events.TopicLanguageChanged,
			Payload: map[string]any{events.PayloadLanguage: lang},
		})
	}

	redirectBack(w, r)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	state := s.resolveRequest(w, r)

	mode := themes.ParseMode(r.FormValue("mode"))
	var err error
	if mode.Explicit() {
		err = state.store.Set(r.Context(), interfaces.PreferenceTheme, string(mode))
	} else {
		err = state.store.Delete(r.Context(), interfaces.PreferenceTheme)
	}
	if err != nil {
		s.logger.Error("server.theme.persist", "mode", string(mode), "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if s.deps.Bus != nil {
		scheme := r.Header.Get("Sec-CH-Prefers-Color-Scheme")
		if scheme == "" {
			scheme = themes.VariantLight
		}
		s.deps.Bus.Publish(r.Context(), interfaces.Event{
			Topic:   events.TopicSchemeChanged,
			Payload: map[string]any{events.PayloadScheme: mode.Concretize(scheme)},
		})
	}

	redirectBack(w, r)
}

func (s *Server) fragmentLoader() *fragments.Loader {
	required := make([]fragments.Fragment, 0, len(s.deps.Config.Fragments.Required))
	for _, fragment := range s.deps.Config.Fragments.Required {
		required = append(required, fragments.Fragment{
			Name:      fragment.Name,
			Path:      fragment.Path,
			Container: fragment.Container,
		})
	}
	return fragments.NewLoader(s.deps.Fragments, required,
		fragments.WithLogger(s.logger),
		fragments.WithBus(s.deps.Bus),
	)
}

// metaCompanionOrigin extracts the page-level companion origin override
// declared as <meta name="companion-origin" content="...">.
func metaCompanionOrigin(tree *html.Node) string {
	var origin string
	dom.Walk(tree, func(n *html.Node) bool {
		if n.Data != "meta" {
			return true
		}
		if name, _ := dom.Attr(n, "name"); name != "companion-origin" {
			return true
		}
		content, _ := dom.Attr(n, "content")
		origin = strings.TrimSpace(content)
		return false
	})
	return origin
}

func redirectBack(w http.ResponseWriter, r *http.Request) {
	target := r.Header.Get("Referer")
	if target == "" || !strings.HasPrefix(target, "/") && !sameHost(target, r.Host) {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func sameHost(raw, host string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.Host == host
}

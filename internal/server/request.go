package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/denudev/sitekit/internal/environments"
	"github.com/denudev/sitekit/internal/i18n"
	"github.com/denudev/sitekit/internal/identity"
	"github.com/denudev/sitekit/internal/prefs"
	"github.com/denudev/sitekit/internal/themes"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// Cookie names. The visitor cookie scopes preference persistence; the rest
// are signal fallbacks a fresh backend can resolve from without a database
// round trip.
const (
	cookieVisitor  = "sk_visitor"
	cookieTimezone = "sk_tz"
)

const cookieMaxAge = 365 * 24 * time.Hour

// requestState is everything one request resolves before rendering.
type requestState struct {
	visitorID uuid.UUID
	store     *prefs.Store
	env       environments.Context
	overrides environments.Overrides
	language  string
	variant   string
}

func (s *Server) resolveRequest(w http.ResponseWriter, r *http.Request) requestState {
	cfg := s.deps.Config
	state := requestState{}

	state.visitorID = s.ensureVisitor(w, r)
	state.store = prefs.NewStore(s.deps.PrefsRepo, state.visitorID, prefs.WithStoreLogger(s.logger))

	state.env = environments.Detect(requestHost(r))
	if forwardedTLS(r) {
		state.env.Scheme = "https"
	}

	storedOrigin, _, _ := state.store.Get(r.Context(), interfaces.PreferenceCompanionOrigin)
	state.overrides = environments.Overrides{
		Runtime:     cfg.Environments.LocalOverride,
		Stored:      storedOrigin,
		QueryOrigin: r.URL.Query().Get("companion_origin"),
		QueryPort:   r.URL.Query().Get("companion_port"),
	}

	storedLang, _, _ := state.store.Get(r.Context(), interfaces.PreferenceLanguage)
	state.language = s.deps.Resolver.Resolve(i18n.Signals{
		Query:           r.URL.Query().Get(cfg.I18N.QueryParam),
		Stored:          storedLang,
		AcceptLanguages: i18n.AcceptLanguageHeader(r.Header.Get("Accept-Language")),
		Timezone:        cookieValue(r, cookieTimezone),
	})

	state.variant = s.resolveVariant(r, state.store)
	return state
}

// resolveVariant concretizes the visitor's theme mode against the OS scheme
// hint. An explicit stored mode wins over the hint.
func (s *Server) resolveVariant(r *http.Request, store *prefs.Store) string {
	storedMode, _, _ := store.Get(r.Context(), interfaces.PreferenceTheme)
	mode := themes.ParseMode(storedMode)

	scheme := r.Header.Get("Sec-CH-Prefers-Color-Scheme")
	if scheme == "" {
		scheme = themes.VariantLight
	}
	return mode.Concretize(scheme)
}

func (s *Server) ensureVisitor(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if raw := cookieValue(r, cookieVisitor); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id
		}
	}

	id := identity.VisitorUUID(uuid.NewString())
	http.SetCookie(w, &http.Cookie{
		Name:     cookieVisitor,
		Value:    id.String(),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func requestHost(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return r.Host
}

func forwardedTLS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

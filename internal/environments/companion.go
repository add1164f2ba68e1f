package environments

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"

	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

const companionGroup = "companion"

// Overrides carries the local-development escape hatches consulted, in order,
// before the conventional base URL is derived. First present wins.
type Overrides struct {
	// Runtime is the process-global override (set by a dev tool or config).
	Runtime string
	// Stored is the persisted override from the preference store.
	Stored string
	// Meta is the page-level <meta name="companion-origin"> override.
	Meta string
	// QueryOrigin is the explicit ?companion_origin= override.
	QueryOrigin string
	// QueryPort is the explicit ?companion_port= override, combined with localhost.
	QueryPort string
}

func (o Overrides) first() string {
	for _, candidate := range []string{o.Runtime, o.Stored, o.Meta, o.QueryOrigin} {
		if strings.TrimSpace(candidate) != "" {
			return strings.TrimSpace(candidate)
		}
	}
	if port := strings.TrimSpace(o.QueryPort); port != "" {
		return "http://localhost:" + port
	}
	return ""
}

// Resolver computes companion-application base URLs and full target URLs for
// in-app routes. Route managers are cached per base URL since the named route
// table never changes at runtime.
type Resolver struct {
	subdomain         string
	routes            map[string]string
	conventionalPorts map[string]struct{}
	defaultLanguage   string
	langParam         string
	logger            interfaces.Logger

	mu       sync.Mutex
	managers map[string]*urlkit.RouteManager
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLogger attaches the module logger used for fallback diagnostics.
func WithLogger(logger interfaces.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver constructs a companion URL resolver.
//
// subdomain is the label the companion lives under ("app"); routes names the
// companion paths links may target; conventionalPorts are local ports assumed
// to serve this site rather than the companion.
func NewResolver(subdomain string, routes map[string]string, conventionalPorts []int, defaultLanguage, langParam string, opts ...ResolverOption) *Resolver {
	ports := make(map[string]struct{}, len(conventionalPorts))
	for _, port := range conventionalPorts {
		ports[fmt.Sprintf("%d", port)] = struct{}{}
	}

	copied := make(map[string]string, len(routes))
	for name, path := range routes {
		copied[strings.TrimSpace(name)] = path
	}

	r := &Resolver{
		subdomain:         strings.Trim(strings.TrimSpace(subdomain), "."),
		routes:            copied,
		conventionalPorts: ports,
		defaultLanguage:   strings.ToLower(strings.TrimSpace(defaultLanguage)),
		langParam:         strings.TrimSpace(langParam),
		logger:            logging.NoOp(),
		managers:          make(map[string]*urlkit.RouteManager),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BaseURL resolves the companion application origin for the environment. A
// value is always produced: when nothing better is known the current origin
// is returned with a diagnostic warning, never a hard failure.
func (r *Resolver) BaseURL(env Context, overrides Overrides) string {
	if env.Tier != TierLocal {
		return env.Scheme + "://" + env.SubdomainPrefix() + r.subdomain + "." + env.RootDomain
	}

	if origin := overrides.first(); origin != "" {
		return normalizeOrigin(origin)
	}

	if _, conventional := r.conventionalPorts[env.Port]; !conventional && env.Port != "" {
		// An unconventional port locally usually means the page is being
		// served by the companion app itself.
		return env.Origin()
	}

	r.logger.Warn("environments.companion.fallback",
		"host", env.Host,
		"port", env.Port,
		"fallback", env.Origin(),
	)
	return env.Origin()
}

// TargetURL computes the full companion URL for a named route or raw path,
// attaching the active language as a query parameter unless it equals the
// default language.
func (r *Resolver) TargetURL(env Context, overrides Overrides, target, lang string) (string, error) {
	base := r.BaseURL(env, overrides)
	lang = strings.ToLower(strings.TrimSpace(lang))
	withLang := lang != "" && lang != r.defaultLanguage && r.langParam != ""

	if route := strings.TrimSpace(target); route != "" && !strings.HasPrefix(route, "/") {
		if _, known := r.routes[route]; known {
			return r.buildNamedRoute(base, route, lang, withLang)
		}
	}

	return r.joinPath(base, target, lang, withLang)
}

func (r *Resolver) buildNamedRoute(base, route, lang string, withLang bool) (string, error) {
	manager, err := r.managerFor(base)
	if err != nil {
		return "", err
	}
	group, err := lookupGroup(manager, companionGroup)
	if err != nil {
		return "", err
	}
	builder, err := safeBuilder(group, route)
	if err != nil {
		return "", err
	}
	if withLang {
		builder.WithQuery(r.langParam, lang)
	}
	return builder.Build()
}

func (r *Resolver) joinPath(base, target, lang string, withLang bool) (string, error) {
	path := strings.TrimSpace(target)
	if path == "" {
		path = "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	parsed, err := url.Parse(base + path)
	if err != nil {
		return "", fmt.Errorf("environments: join %q + %q: %w", base, path, err)
	}
	if withLang {
		query := parsed.Query()
		query.Set(r.langParam, lang)
		parsed.RawQuery = query.Encode()
	}
	return parsed.String(), nil
}

func (r *Resolver) managerFor(base string) (*urlkit.RouteManager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if manager, ok := r.managers[base]; ok {
		return manager, nil
	}

	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    companionGroup,
				BaseURL: base,
				Paths:   r.routes,
			},
		},
	})
	if manager == nil {
		return nil, fmt.Errorf("environments: route manager for %q", base)
	}
	r.managers[base] = manager
	return manager, nil
}

// normalizeOrigin trims a user-supplied origin down to scheme://host[:port].
func normalizeOrigin(origin string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if !strings.Contains(origin, "://") {
		origin = "http://" + origin
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return origin
	}
	host := parsed.Host
	if h, p, err := net.SplitHostPort(parsed.Host); err == nil && isDefaultPort(parsed.Scheme, p) {
		host = h
	}
	return parsed.Scheme + "://" + host
}

// lookupGroup guards urlkit's panic-on-missing lookup behind an error.
func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	if manager == nil {
		return nil, fmt.Errorf("environments: route manager not configured")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("environments: route group %q not found", name)
		}
	}()
	group = manager.Group(name)
	return group, err
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	if group == nil {
		return nil, fmt.Errorf("environments: urlkit group is nil")
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("environments: urlkit builder panic: %v", rec)
		}
	}()
	builder = group.Builder(route)
	return builder, err
}

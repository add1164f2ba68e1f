package i18n

import "strings"

// Signals carries the per-request inputs the resolver weighs, ordered by the
// precedence chain: explicit query parameter, persisted preference, browser
// language list, timezone heuristic, default.
type Signals struct {
	// Query is the value of the language query parameter, when present.
	Query string
	// Stored is the persisted preference from prior visits, when present.
	Stored string
	// AcceptLanguages is the browser's ordered language-preference list,
	// full tags ("en-US", "fa").
	AcceptLanguages []string
	// Timezone is the resolved IANA timezone identifier, when known.
	Timezone string
}

// Resolver applies the fixed precedence chain over a supported-language set.
type Resolver struct {
	catalog           *Catalog
	defaultLanguage   string
	timezoneLanguages map[string]string
}

// NewResolver constructs a resolver. timezoneLanguages map IANA identifiers
// to a supported language (the geographic heuristic); unsupported mappings
// are ignored at resolution time.
func NewResolver(catalog *Catalog, defaultLanguage string, timezoneLanguages map[string]string) *Resolver {
	copied := make(map[string]string, len(timezoneLanguages))
	for zone, lang := range timezoneLanguages {
		copied[strings.TrimSpace(zone)] = normalizeLanguage(lang)
	}
	return &Resolver{
		catalog:           catalog,
		defaultLanguage:   normalizeLanguage(defaultLanguage),
		timezoneLanguages: copied,
	}
}

// Resolve walks the precedence chain and returns the first supported match,
// falling back to the default language. It never fails.
func (r *Resolver) Resolve(signals Signals) string {
	if lang := normalizeLanguage(signals.Query); lang != "" && r.catalog.Has(lang) {
		return lang
	}

	if lang := normalizeLanguage(signals.Stored); lang != "" && r.catalog.Has(lang) {
		return lang
	}

	for _, tag := range signals.AcceptLanguages {
		if lang := PrimarySubtag(tag); lang != "" && r.catalog.Has(lang) {
			return lang
		}
	}

	if zone := strings.TrimSpace(signals.Timezone); zone != "" {
		if lang, ok := r.timezoneLanguages[zone]; ok && r.catalog.Has(lang) {
			return lang
		}
	}

	return r.defaultLanguage
}

// DefaultLanguage returns the chain's terminal fallback.
func (r *Resolver) DefaultLanguage() string {
	return r.defaultLanguage
}

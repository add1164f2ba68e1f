package i18n

import (
	"context"
	"errors"
	"sync"

	"github.com/denudev/sitekit/internal/events"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

var (
	ErrCatalogRequired     = errors.New("i18n: catalog required")
	ErrLanguageUnsupported = errors.New("i18n: language not supported")
)

// Service owns the active language and exposes translation lookup. The active
// language is computed once at construction and changes only through
// SetLanguage; lookups never fail — a missing key falls back to the raw key.
type Service interface {
	interfaces.LanguageSource
	interfaces.Translator

	// Resolve applies the precedence chain to per-request signals without
	// touching the active language.
	Resolve(signals Signals) string
	// SetLanguage activates a supported language, persists it, and
	// publishes a language-changed notification. Unsupported codes are
	// logged and leave the state untouched.
	SetLanguage(ctx context.Context, code string) error
	// Catalog exposes the immutable translation table.
	Catalog() *Catalog
}

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithLogger attaches the module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBus attaches the event bus used for language-changed notifications.
func WithBus(bus interfaces.EventBus) ServiceOption {
	return func(s *service) {
		s.bus = bus
	}
}

// WithStore attaches the preference store the active language persists to.
func WithStore(store interfaces.PreferenceStore) ServiceOption {
	return func(s *service) {
		s.store = store
	}
}

// WithInitialSignals resolves the starting language from the provided signals
// instead of the bare default.
func WithInitialSignals(signals Signals) ServiceOption {
	return func(s *service) {
		s.initial = &signals
	}
}

type service struct {
	catalog  *Catalog
	resolver *Resolver
	logger   interfaces.Logger
	bus      interfaces.EventBus
	store    interfaces.PreferenceStore
	initial  *Signals

	mu      sync.RWMutex
	current string
}

// NewService constructs the language service around an immutable catalog.
func NewService(catalog *Catalog, cfg Config, timezoneLanguages map[string]string, opts ...ServiceOption) (Service, error) {
	if catalog == nil {
		return nil, ErrCatalogRequired
	}

	defaultLanguage := normalizeLanguage(cfg.DefaultLanguage)
	if defaultLanguage == "" || !catalog.Has(defaultLanguage) {
		return nil, ErrLanguageUnsupported
	}

	s := &service{
		catalog:  catalog,
		resolver: NewResolver(catalog, defaultLanguage, timezoneLanguages),
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}

	signals := Signals{}
	if s.initial != nil {
		signals = *s.initial
	}
	if signals.Stored == "" && s.store != nil {
		if stored, ok, err := s.store.Get(context.Background(), interfaces.PreferenceLanguage); err == nil && ok {
			signals.Stored = stored
		}
	}
	s.current = s.resolver.Resolve(signals)

	return s, nil
}

func (s *service) Catalog() *Catalog {
	return s.catalog
}

func (s *service) Resolve(signals Signals) string {
	return s.resolver.Resolve(signals)
}

func (s *service) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *service) DefaultLanguage() string {
	return s.resolver.DefaultLanguage()
}

func (s *service) SetLanguage(ctx context.Context, code string) error {
	lang := normalizeLanguage(code)
	if !s.catalog.Has(lang) {
		s.logger.Warn("i18n.set_language.unsupported", "language", code)
		return ErrLanguageUnsupported
	}

	s.mu.Lock()
	changed := s.current != lang
	s.current = lang
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Set(ctx, interfaces.PreferenceLanguage, lang); err != nil {
			s.logger.Warn("i18n.set_language.persist_failed", "language", lang, "error", err)
		}
	}

	if changed && s.bus != nil {
		s.bus.Publish(ctx, interfaces.Event{
			Topic:   events.TopicLanguageChanged,
			Payload: map[string]any{events.PayloadLanguage: lang},
		})
	}

	return nil
}

// Translate returns the catalog string for (lang, key), or the raw key when
// the language or key is absent. This fallback is intentional, not an error
// path: untranslated keys render literally.
func (s *service) Translate(lang, key string) string {
	lang = normalizeLanguage(lang)
	if lang == "" {
		lang = s.Current()
	}
	if value, ok := s.catalog.Lookup(lang, key); ok {
		return value
	}
	return key
}

package themes

import (
	"context"
	"sync"

	"github.com/denudev/sitekit/internal/events"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// SchemeSource exposes the OS-level color-scheme signal and change
// notifications for it.
type SchemeSource interface {
	// Current returns "light" or "dark", or empty when unknown.
	Current() string
	// Subscribe registers a change callback and returns an unsubscribe
	// function.
	Subscribe(func(scheme string)) (unsubscribe func())
}

// StaticScheme is a SchemeSource pinned to a fixed value; change
// notifications never fire. Useful for exports and tests.
type StaticScheme string

func (s StaticScheme) Current() string               { return string(s) }
func (s StaticScheme) Subscribe(func(string)) func() { return func() {} }

// Service owns the active theme mode. The stored preference always wins;
// only when no explicit preference is persisted does a scheme change
// reapply automatically.
type Service interface {
	// Mode returns the visitor's setting (system when unset).
	Mode() Mode
	// Variant concretizes the current mode against the live scheme.
	Variant() string
	// SetMode persists an explicit preference, or clears it for
	// ModeSystem, and publishes a scheme-changed notification.
	SetMode(ctx context.Context, mode Mode) error
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

// WithBus attaches the event bus used for scheme-changed notifications.
func WithBus(bus interfaces.EventBus) ServiceOption {
	return func(s *service) {
		s.bus = bus
	}
}

// WithStore attaches the preference store the mode persists to.
func WithStore(store interfaces.PreferenceStore) ServiceOption {
	return func(s *service) {
		s.store = store
	}
}

type service struct {
	scheme SchemeSource
	logger interfaces.Logger
	bus    interfaces.EventBus
	store  interfaces.PreferenceStore

	mu   sync.RWMutex
	mode Mode

	unsubscribe func()
}

// NewService constructs the theme service, seeding the mode from the
// preference store when a value was persisted.
func NewService(scheme SchemeSource, opts ...ServiceOption) Service {
	if scheme == nil {
		scheme = StaticScheme("")
	}

	s := &service{
		scheme: scheme,
		logger: logging.NoOp(),
		mode:   ModeSystem,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.store != nil {
		if stored, ok, err := s.store.Get(context.Background(), interfaces.PreferenceTheme); err == nil && ok {
			s.mode = ParseMode(stored)
		}
	}

	s.unsubscribe = scheme.Subscribe(s.onSchemeChange)

	return s
}

func (s *service) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

func (s *service) Variant() string {
	return s.Mode().Concretize(s.scheme.Current())
}

func (s *service) SetMode(ctx context.Context, mode Mode) error {
	normalized := ParseMode(string(mode))

	s.mu.Lock()
	s.mode = normalized
	s.mu.Unlock()

	if s.store != nil {
		var err error
		if normalized.Explicit() {
			err = s.store.Set(ctx, interfaces.PreferenceTheme, string(normalized))
		} else {
			err = s.store.Delete(ctx, interfaces.PreferenceTheme)
		}
		if err != nil {
			s.logger.Warn("themes.set_mode.persist_failed", "mode", normalized, "error", err)
		}
	}

	s.publish(ctx)
	return nil
}

// onSchemeChange reapplies the live signal, but only while no explicit
// preference is persisted: an explicit choice always wins until cleared.
func (s *service) onSchemeChange(scheme string) {
	if s.Mode().Explicit() {
		return
	}
	s.logger.Debug("themes.scheme_changed", "scheme", scheme)
	s.publish(context.Background())
}

func (s *service) publish(ctx context.Context) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, interfaces.Event{
		Topic:   events.TopicSchemeChanged,
		Payload: map[string]any{events.PayloadScheme: s.Variant()},
	})
}

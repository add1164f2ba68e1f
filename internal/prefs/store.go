// Package prefs stores per-visitor preferences: language, theme mode, and
// the companion origin override.
package prefs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// Store exposes the preference surface for one visitor. It satisfies
// interfaces.PreferenceStore so the language and theme services stay unaware
// of visitor scoping and persistence details.
type Store struct {
	repo      PreferenceRepository
	visitorID uuid.UUID
	logger    interfaces.Logger
}

// StoreOption configures a visitor store.
type StoreOption func(*Store)

// WithStoreLogger attaches the module logger.
func WithStoreLogger(logger interfaces.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore scopes the repository to a single visitor.
func NewStore(repo PreferenceRepository, visitorID uuid.UUID, opts ...StoreOption) *Store {
	s := &Store{
		repo:      repo,
		visitorID: visitorID,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VisitorID returns the visitor this store is scoped to.
func (s *Store) VisitorID() uuid.UUID {
	return s.visitorID
}

// Get reads one preference. A missing key reports ok=false without error.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	rec, err := s.repo.Get(ctx, s.visitorID, key)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("prefs: get %q: %w", key, err)
	}
	return rec.Value, true, nil
}

// Set writes one preference, replacing any prior value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.repo.Save(ctx, &PreferenceRecord{
		VisitorID: s.visitorID,
		Key:       key,
		Value:     value,
	})
	if err != nil {
		return fmt.Errorf("prefs: set %q: %w", key, err)
	}
	s.logger.Debug("prefs.set", "visitor", s.visitorID.String(), "key", key)
	return nil
}

// Delete removes one preference. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.repo.Delete(ctx, s.visitorID, key); err != nil {
		return fmt.Errorf("prefs: delete %q: %w", key, err)
	}
	return nil
}

var _ interfaces.PreferenceStore = (*Store)(nil)

package prefs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// PreferenceRepository exposes persistence operations for visitor preferences.
type PreferenceRepository interface {
	Save(ctx context.Context, rec *PreferenceRecord) (*PreferenceRecord, error)
	Get(ctx context.Context, visitorID uuid.UUID, key string) (*PreferenceRecord, error)
	ListByVisitor(ctx context.Context, visitorID uuid.UUID) ([]*PreferenceRecord, error)
	Delete(ctx context.Context, visitorID uuid.UUID, key string) error
}

// NotFoundError is returned when a preference cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

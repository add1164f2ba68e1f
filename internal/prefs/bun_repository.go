package prefs

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunPreferenceRepository implements PreferenceRepository with optional caching.
type BunPreferenceRepository struct {
	repo repository.Repository[*PreferenceRecord]
	now  func() time.Time
}

// NewBunPreferenceRepository creates a preference repository without caching.
func NewBunPreferenceRepository(db *bun.DB) *BunPreferenceRepository {
	return NewBunPreferenceRepositoryWithCache(db, nil, nil)
}

// NewBunPreferenceRepositoryWithCache creates a preference repository with caching support.
func NewBunPreferenceRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunPreferenceRepository {
	base := NewPreferenceRecordRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunPreferenceRepository{repo: base, now: time.Now}
}

// Save upserts the record keyed by its deterministic visitor/key id.
func (r *BunPreferenceRepository) Save(ctx context.Context, rec *PreferenceRecord) (*PreferenceRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = PreferenceID(rec.VisitorID, rec.Key)
	}
	if rec.ScopeKey == "" {
		rec.ScopeKey = PreferenceScopeKey(rec.VisitorID, rec.Key)
	}

	existing, err := r.repo.GetByID(ctx, rec.ID.String())
	if err != nil {
		if !errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, fmt.Errorf("preference repository error: %w", err)
		}
		rec.CreatedAt = r.now().UTC()
		rec.UpdatedAt = rec.CreatedAt
		created, err := r.repo.Create(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("preference repository error: %w", err)
		}
		return created, nil
	}

	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = r.now().UTC()
	updated, err := r.repo.Update(ctx, rec,
		repository.UpdateByID(rec.ID.String()),
		repository.UpdateColumns(
			"value",
			"updated_at",
		),
	)
	if err != nil {
		return nil, fmt.Errorf("preference repository error: %w", err)
	}
	return updated, nil
}

func (r *BunPreferenceRepository) Get(ctx context.Context, visitorID uuid.UUID, key string) (*PreferenceRecord, error) {
	record, err := r.repo.GetByIdentifier(ctx, PreferenceScopeKey(visitorID, key))
	if err != nil {
		return nil, mapRepositoryError(err, "preference", key)
	}
	return record, nil
}

func (r *BunPreferenceRepository) ListByVisitor(ctx context.Context, visitorID uuid.UUID) ([]*PreferenceRecord, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.visitor_id = ?", visitorID.String())
	}))
	if err != nil {
		return nil, fmt.Errorf("preference repository error: %w", err)
	}
	return records, nil
}

func (r *BunPreferenceRepository) Delete(ctx context.Context, visitorID uuid.UUID, key string) error {
	return r.repo.Delete(ctx, &PreferenceRecord{ID: PreferenceID(visitorID, key)})
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

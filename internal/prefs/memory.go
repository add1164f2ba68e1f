package prefs

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*PreferenceRecord
}

// NewMemoryRepository constructs an in-memory preference repository.
func NewMemoryRepository() PreferenceRepository {
	return &memoryRepository{
		byID: make(map[uuid.UUID]*PreferenceRecord),
	}
}

func (m *memoryRepository) Save(_ context.Context, rec *PreferenceRecord) (*PreferenceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := clonePreference(rec)
	if cloned.ID == uuid.Nil {
		cloned.ID = PreferenceID(cloned.VisitorID, cloned.Key)
	}
	if cloned.ScopeKey == "" {
		cloned.ScopeKey = PreferenceScopeKey(cloned.VisitorID, cloned.Key)
	}
	m.byID[cloned.ID] = cloned
	return clonePreference(cloned), nil
}

func (m *memoryRepository) Get(_ context.Context, visitorID uuid.UUID, key string) (*PreferenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[PreferenceID(visitorID, key)]
	if !ok {
		return nil, &NotFoundError{Resource: "preference", Key: key}
	}
	return clonePreference(rec), nil
}

func (m *memoryRepository) ListByVisitor(_ context.Context, visitorID uuid.UUID) ([]*PreferenceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var records []*PreferenceRecord
	for _, rec := range m.byID {
		if rec.VisitorID == visitorID {
			records = append(records, clonePreference(rec))
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Key < records[j].Key })
	return records, nil
}

func (m *memoryRepository) Delete(_ context.Context, visitorID uuid.UUID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.byID, PreferenceID(visitorID, key))
	return nil
}

func clonePreference(rec *PreferenceRecord) *PreferenceRecord {
	if rec == nil {
		return nil
	}
	cloned := *rec
	return &cloned
}

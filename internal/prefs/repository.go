package prefs

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewPreferenceRecordRepository creates a repository for preference records.
func NewPreferenceRecordRepository(db *bun.DB) repository.Repository[*PreferenceRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PreferenceRecord]{
		NewRecord: func() *PreferenceRecord { return &PreferenceRecord{} },
		GetID: func(rec *PreferenceRecord) uuid.UUID {
			return rec.ID
		},
		SetID: func(rec *PreferenceRecord, id uuid.UUID) {
			rec.ID = id
		},
		GetIdentifier: func() string {
			return "scope_key"
		},
		GetIdentifierValue: func(rec *PreferenceRecord) string {
			return rec.ScopeKey
		},
	})
}

package prefs

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/denudev/sitekit/internal/identity"
)

// PreferenceRecord persists one visitor preference (language, theme,
// companion origin override).
type PreferenceRecord struct {
	bun.BaseModel `bun:"table:visitor_preferences,alias:vp"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	VisitorID uuid.UUID `bun:"visitor_id,notnull,type:uuid" json:"visitor_id"`
	ScopeKey  string    `bun:"scope_key,notnull" json:"scope_key"`
	Key       string    `bun:"key,notnull" json:"key"`
	Value     string    `bun:"value,notnull" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// PreferenceID derives the stable record id for a visitor/key pair, so repeat
// writes update in place instead of accreting rows.
func PreferenceID(visitorID uuid.UUID, key string) uuid.UUID {
	return identity.UUID("sitekit:pref:" + visitorID.String() + ":" + key)
}

// PreferenceScopeKey is the unique lookup identifier for a visitor/key pair.
func PreferenceScopeKey(visitorID uuid.UUID, key string) string {
	return visitorID.String() + ":" + key
}

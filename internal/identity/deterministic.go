package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// VisitorUUID derives the record identifier for a visitor preference row.
func VisitorUUID(visitorID string) uuid.UUID {
	return UUID("sitekit:visitor:" + strings.TrimSpace(visitorID))
}

// LanguageUUID derives the record identifier for a language catalog entry.
func LanguageUUID(code string) uuid.UUID {
	return UUID("sitekit:language:" + strings.ToLower(strings.TrimSpace(code)))
}

// PageUUID derives the record identifier for a page route.
func PageUUID(route string) uuid.UUID {
	return UUID("sitekit:page:" + strings.TrimSpace(route))
}

package interfaces

import "context"

// Preference keys persisted across visits.
const (
	PreferenceLanguage        = "language"
	PreferenceTheme           = "theme"
	PreferenceCompanionOrigin = "companion_origin"
)

// PreferenceStore persists the small set of visitor preferences. Absence of a
// key is reported through ok=false, never as an error.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

package themes

import "strings"

// Mode is the visitor-facing theme setting. "system" is never applied
// literally: it concretizes against the live scheme signal at application
// time.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

// Variants a mode can concretize to.
const (
	VariantLight = "light"
	VariantDark  = "dark"
)

// ParseMode normalizes a stored or user-supplied mode string. Unknown values
// map to ModeSystem so a corrupted preference never breaks rendering.
func ParseMode(raw string) Mode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "light":
		return ModeLight
	case "dark":
		return ModeDark
	default:
		return ModeSystem
	}
}

// Concretize resolves the mode to an applicable variant. scheme is the live
// OS-level color-scheme signal ("light"/"dark", empty when unknown).
func (m Mode) Concretize(scheme string) string {
	switch m {
	case ModeLight:
		return VariantLight
	case ModeDark:
		return VariantDark
	}
	if strings.EqualFold(strings.TrimSpace(scheme), VariantDark) {
		return VariantDark
	}
	return VariantLight
}

// Explicit reports whether the mode is a user decision that outranks the
// system signal.
func (m Mode) Explicit() bool {
	return m == ModeLight || m == ModeDark
}

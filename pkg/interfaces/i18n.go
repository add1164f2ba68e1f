package interfaces

// Translator resolves a catalog string for a language and dot-delimited key.
// Implementations never fail: a missing key yields the key itself.
type Translator interface {
	Translate(lang, key string) string
}

// LanguageSource reports the currently active language for a scope (a request
// or a rendered document).
type LanguageSource interface {
	Current() string
	DefaultLanguage() string
}

package i18n

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrCatalogEmpty         = errors.New("i18n: catalog needs at least one language")
	ErrCatalogLanguageEmpty = errors.New("i18n: catalog language has no keys")
)

// Catalog is an immutable language → key → display-string table. It is built
// once at startup and shared read-only across requests.
type Catalog struct {
	entries map[string]map[string]string
	codes   []string
}

// NewCatalog copies the provided table into an immutable catalog. Every
// language present must carry at least one key.
func NewCatalog(translations map[string]map[string]string) (*Catalog, error) {
	if len(translations) == 0 {
		return nil, ErrCatalogEmpty
	}

	entries := make(map[string]map[string]string, len(translations))
	codes := make([]string, 0, len(translations))
	for code, keys := range translations {
		normalized := normalizeLanguage(code)
		if normalized == "" {
			return nil, fmt.Errorf("i18n: empty language code in catalog")
		}
		if len(keys) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrCatalogLanguageEmpty, normalized)
		}
		copied := make(map[string]string, len(keys))
		for key, value := range keys {
			copied[key] = value
		}
		entries[normalized] = copied
		codes = append(codes, normalized)
	}
	sort.Strings(codes)

	return &Catalog{entries: entries, codes: codes}, nil
}

// Languages lists the catalog's language codes in sorted order.
func (c *Catalog) Languages() []string {
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

// Has reports whether the catalog carries the language.
func (c *Catalog) Has(lang string) bool {
	_, ok := c.entries[normalizeLanguage(lang)]
	return ok
}

// Lookup returns the display string for (lang, key) and whether it exists.
func (c *Catalog) Lookup(lang, key string) (string, bool) {
	keys, ok := c.entries[normalizeLanguage(lang)]
	if !ok {
		return "", false
	}
	value, ok := keys[key]
	return value, ok
}

// Keys returns the key set of a language in sorted order.
func (c *Catalog) Keys(lang string) []string {
	keys, ok := c.entries[normalizeLanguage(lang)]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(keys))
	for key := range keys {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

func normalizeLanguage(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// PrimarySubtag reduces a BCP 47 tag to its primary language subtag:
// "en-US" → "en", "fa_IR" → "fa".
func PrimarySubtag(tag string) string {
	tag = normalizeLanguage(tag)
	if idx := strings.IndexAny(tag, "-_"); idx != -1 {
		tag = tag[:idx]
	}
	return tag
}

package generator

import (
	"path"
	"strings"
)

// outputPath maps a route and language to its on-disk artifact. The default
// language owns the tree root; other languages nest under their code.
func outputPath(route, lang, defaultLang string) string {
	clean := strings.Trim(strings.TrimSpace(route), "/")

	if lang == "" || strings.EqualFold(lang, defaultLang) {
		if clean == "" {
			return "index.html"
		}
		return path.Join(clean, "index.html")
	}

	if clean == "" {
		return path.Join(lang, "index.html")
	}
	return path.Join(lang, clean, "index.html")
}

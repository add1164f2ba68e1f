package i18n

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/denudev/sitekit/internal/dom"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// KeyAttr marks an element as translatable; its value is the catalog key.
const KeyAttr = "data-i18n"

// AcceptLanguageHeader parses an Accept-Language header into its ordered tag
// list, quality values stripped. "fa-IR,fa;q=0.9,en;q=0.8" → [fa-IR fa en].
func AcceptLanguageHeader(header string) []string {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if idx := strings.Index(part, ";"); idx != -1 {
			part = part[:idx]
		}
		part = strings.TrimSpace(part)
		if part != "" && part != "*" {
			tags = append(tags, part)
		}
	}
	return tags
}

// Apply re-translates the whole document for the given language: every
// element carrying the key attribute is patched, the document language
// attribute is updated, and the canonical link gains (or loses) the language
// query parameter. The pass has no notion of partial update — it always
// re-scans the full tree, which makes it safe to re-run after fragment
// injection or a language change.
func Apply(doc *html.Node, translator interfaces.Translator, lang, defaultLang, queryParam string) {
	dom.Walk(doc, func(n *html.Node) bool {
		key, ok := dom.Attr(n, KeyAttr)
		if !ok || strings.TrimSpace(key) == "" {
			return true
		}
		applyTranslation(n, translator.Translate(lang, key))
		return true
	})

	if root := dom.FindElement(doc, "html"); root != nil {
		dom.SetAttr(root, "lang", lang)
	}
	updateCanonicalLink(doc, lang, defaultLang, queryParam)
}

// applyTranslation writes the resolved string into the element: text inputs
// get a placeholder, everything else gets its text content replaced while
// embedded icon children stay in place and in order.
func applyTranslation(n *html.Node, value string) {
	switch n.Data {
	case "input", "textarea":
		dom.SetAttr(n, "placeholder", value)
		return
	}

	icons := iconChildren(n)
	if len(icons) == 0 {
		dom.RemoveChildren(n)
		n.AppendChild(dom.TextNode(value))
		return
	}

	// Judge placement on the original order: text goes before the first
	// icon, except when icons open the element, where it goes after the
	// last icon of that leading run.
	iconsLead := firstMeaningfulChildIsIcon(n)

	// Remove only text nodes; icons are never removed or reordered.
	var next *html.Node
	for child := n.FirstChild; child != nil; child = next {
		next = child.NextSibling
		if child.Type == html.TextNode {
			n.RemoveChild(child)
		}
	}

	text := dom.TextNode(value)
	if iconsLead {
		last := lastLeadingIcon(n)
		if last != nil && last.NextSibling != nil {
			n.InsertBefore(text, last.NextSibling)
		} else {
			n.AppendChild(text)
		}
		return
	}
	n.InsertBefore(text, icons[0])
}

func iconChildren(n *html.Node) []*html.Node {
	var icons []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if isIcon(child) {
			icons = append(icons, child)
		}
	}
	return icons
}

func firstMeaningfulChildIsIcon(n *html.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.TextNode {
			if strings.TrimSpace(child.Data) == "" {
				continue
			}
			return false
		}
		if child.Type == html.ElementNode {
			return isIcon(child)
		}
	}
	return false
}

func isIcon(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "i", "svg", "img":
		return true
	}
	if classes, ok := dom.Attr(n, "class"); ok {
		for _, class := range strings.Fields(classes) {
			if strings.Contains(class, "icon") {
				return true
			}
		}
	}
	return false
}

func lastLeadingIcon(n *html.Node) *html.Node {
	var last *html.Node
	for child := n.FirstChild; child != nil && isIcon(child); child = child.NextSibling {
		last = child
	}
	return last
}

func updateCanonicalLink(doc *html.Node, lang, defaultLang, queryParam string) {
	if queryParam == "" {
		return
	}

	var canonical *html.Node
	dom.Walk(doc, func(n *html.Node) bool {
		if n.Data == "link" {
			if rel, ok := dom.Attr(n, "rel"); ok && rel == "canonical" {
				canonical = n
				return false
			}
		}
		return true
	})
	if canonical == nil {
		return
	}

	href, ok := dom.Attr(canonical, "href")
	if !ok {
		return
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return
	}

	query := parsed.Query()
	if lang == defaultLang {
		query.Del(queryParam)
	} else {
		query.Set(queryParam, lang)
	}
	parsed.RawQuery = query.Encode()
	dom.SetAttr(canonical, "href", parsed.String())
}

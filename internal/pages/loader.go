package pages

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// Collection is the loaded page set, addressable by route.
type Collection struct {
	byRoute map[string]*Document
	ordered []*Document
}

// EmptyCollection returns a collection with no documents.
func EmptyCollection() *Collection {
	return &Collection{byRoute: map[string]*Document{}}
}

// Loader walks a source tree and builds the page collection.
type Loader struct {
	fsys   fs.FS
	logger interfaces.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger attaches the module logger.
func WithLoaderLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader constructs a loader over the given source tree.
func NewLoader(fsys fs.FS, opts ...LoaderOption) *Loader {
	l := &Loader{fsys: fsys, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses every Markdown and HTML source under the tree. Draft documents
// are skipped. Routes derive from the frontmatter slug when present,
// otherwise from the file path; "index" maps to "/".
func (l *Loader) Load(ctx context.Context) (*Collection, error) {
	collection := &Collection{byRoute: make(map[string]*Document)}

	err := fs.WalkDir(l.fsys, ".", func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !isPageSource(entry) {
			return nil
		}

		data, err := fs.ReadFile(l.fsys, entry)
		if err != nil {
			return fmt.Errorf("pages: read %s: %w", entry, err)
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("pages: stat %s: %w", entry, err)
		}

		doc, err := BuildDocument(entry, data, info.ModTime())
		if err != nil {
			return err
		}
		if doc.FrontMatter.Draft {
			l.logger.Debug("pages.skip.draft", "path", entry)
			return nil
		}

		route, err := routeFor(doc)
		if err != nil {
			return err
		}
		doc.Route = route

		if existing, ok := collection.byRoute[route]; ok {
			return fmt.Errorf("pages: route %q claimed by both %s and %s", route, existing.FilePath, entry)
		}
		collection.byRoute[route] = doc
		collection.ordered = append(collection.ordered, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(collection.ordered, func(i, j int) bool {
		a, b := collection.ordered[i], collection.ordered[j]
		if a.FrontMatter.NavOrder != b.FrontMatter.NavOrder {
			return a.FrontMatter.NavOrder < b.FrontMatter.NavOrder
		}
		return a.Route < b.Route
	})

	l.logger.Info("pages.loaded", "count", len(collection.ordered))
	return collection, nil
}

// ByRoute returns the document mounted at route.
func (c *Collection) ByRoute(route string) (*Document, bool) {
	doc, ok := c.byRoute[normalizeRoute(route)]
	return doc, ok
}

// All returns documents in navigation order.
func (c *Collection) All() []*Document {
	return append([]*Document(nil), c.ordered...)
}

// Nav returns the documents flagged for navigation, in order.
func (c *Collection) Nav() []*Document {
	var nav []*Document
	for _, doc := range c.ordered {
		if doc.FrontMatter.Nav {
			nav = append(nav, doc)
		}
	}
	return nav
}

func isPageSource(entry string) bool {
	switch strings.ToLower(path.Ext(entry)) {
	case ".md", ".markdown", ".html", ".htm":
		return true
	default:
		return false
	}
}

func routeFor(doc *Document) (string, error) {
	candidate := strings.TrimSpace(doc.FrontMatter.Slug)
	if candidate == "" {
		base := path.Base(doc.FilePath)
		candidate = strings.TrimSuffix(base, path.Ext(base))
	} else if !slug.IsValid(candidate) {
		normalized, err := slug.Normalize(candidate)
		if err != nil || normalized == "" {
			return "", fmt.Errorf("%w: %q (%s)", ErrSlugInvalid, candidate, doc.FilePath)
		}
		candidate = normalized
	}

	if candidate == "index" {
		return "/", nil
	}
	return "/" + candidate, nil
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" || route == "/" {
		return "/"
	}
	return "/" + strings.Trim(route, "/")
}

// Package fragments fetches partial HTML snippets (navbar, drawer, footer)
// and injects them into placeholder containers of a page document.
package fragments

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/html"

	"github.com/denudev/sitekit/internal/dom"
	"github.com/denudev/sitekit/internal/events"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// Fragment binds one partial file to its placeholder container id.
type Fragment struct {
	Name      string
	Path      string
	Container string
}

// Source fetches raw partial markup. Implementations must be safe for
// concurrent use: fetches carry no ordering guarantee relative to each other.
type Source interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// FSSource serves partials from a file system tree.
type FSSource struct {
	FS fs.FS
}

func (s FSSource) Fetch(_ context.Context, path string) (string, error) {
	data, err := fs.ReadFile(s.FS, strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HTTPSource fetches partials over plain HTTP GET, the only wire access this
// runtime performs.
type HTTPSource struct {
	Base   string
	Client *http.Client
}

func (s HTTPSource) Fetch(ctx context.Context, path string) (string, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.Base, "/")+"/"+strings.TrimPrefix(path, "/"), nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fragments: fetch %s: status %d", path, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Loader tracks a loaded flag per fragment and fires the fragments-loaded
// notification only once every required flag is set, regardless of the order
// fetches complete in. A failed fetch is logged and leaves the container
// empty; it still counts as settled so one broken partial cannot wedge the
// page.
type Loader struct {
	source    Source
	fragments []Fragment
	bus       interfaces.EventBus
	logger    interfaces.Logger

	mu     sync.Mutex
	loaded map[string]bool
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger attaches the module logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBus attaches the event bus the loaded notification publishes on.
func WithBus(bus interfaces.EventBus) Option {
	return func(l *Loader) {
		l.bus = bus
	}
}

// NewLoader constructs a loader for the required fragment set.
func NewLoader(source Source, fragments []Fragment, opts ...Option) *Loader {
	l := &Loader{
		source:    source,
		fragments: append([]Fragment(nil), fragments...),
		logger:    logging.NoOp(),
		loaded:    make(map[string]bool, len(fragments)),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Inject fetches every fragment concurrently, injects the results into their
// placeholder containers, and publishes the fragments-loaded notification.
// Injection itself runs on the calling goroutine: the document tree is only
// ever mutated single-threaded.
func (l *Loader) Inject(ctx context.Context, doc *html.Node) {
	type result struct {
		fragment Fragment
		markup   string
		err      error
	}

	results := make([]result, len(l.fragments))
	var wg sync.WaitGroup
	for i, fragment := range l.fragments {
		wg.Add(1)
		go func(i int, fragment Fragment) {
			defer wg.Done()
			markup, err := l.source.Fetch(ctx, fragment.Path)
			results[i] = result{fragment: fragment, markup: markup, err: err}
		}(i, fragment)
	}
	wg.Wait()

	for _, res := range results {
		l.settle(doc, res.fragment, res.markup, res.err)
	}

	if l.AllLoaded() && l.bus != nil {
		l.bus.Publish(ctx, interfaces.Event{Topic: events.TopicFragmentsLoaded})
	}
}

// Reload clears every loaded flag and re-runs Inject, republishing the
// loaded notification so consumers resynchronize against the fresh subtrees.
func (l *Loader) Reload(ctx context.Context, doc *html.Node) {
	l.mu.Lock()
	l.loaded = make(map[string]bool, len(l.fragments))
	l.mu.Unlock()

	l.Inject(ctx, doc)
}

// Loaded reports whether the named fragment has settled.
func (l *Loader) Loaded(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded[name]
}

// AllLoaded reports whether every required fragment has settled.
func (l *Loader) AllLoaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, fragment := range l.fragments {
		if !l.loaded[fragment.Name] {
			return false
		}
	}
	return true
}

func (l *Loader) settle(doc *html.Node, fragment Fragment, markup string, err error) {
	defer func() {
		l.mu.Lock()
		l.loaded[fragment.Name] = true
		l.mu.Unlock()
	}()

	if err != nil {
		l.logger.Warn("fragments.fetch.failed", "fragment", fragment.Name, "path", fragment.Path, "error", err)
		return
	}

	container := dom.ByID(doc, fragment.Container)
	if container == nil {
		l.logger.Debug("fragments.container.missing", "fragment", fragment.Name, "container", fragment.Container)
		return
	}

	dom.RemoveChildren(container)
	if err := dom.AppendFragment(container, markup); err != nil {
		l.logger.Warn("fragments.inject.failed", "fragment", fragment.Name, "error", err)
	}
}

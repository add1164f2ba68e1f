// Package sitekit is the embeddable runtime for the denu.dev marketing
// site: language resolution and translation, theme variant selection,
// environment-aware companion links, fragment composition, and static
// export.
package sitekit

import (
	"context"

	"golang.org/x/net/html"

	"github.com/denudev/sitekit/internal/commands/sitecmd"
	"github.com/denudev/sitekit/internal/di"
	"github.com/denudev/sitekit/internal/environments"
	"github.com/denudev/sitekit/internal/generator"
	"github.com/denudev/sitekit/internal/i18n"
	"github.com/denudev/sitekit/internal/pages"
	"github.com/denudev/sitekit/internal/render"
	"github.com/denudev/sitekit/internal/server"
	"github.com/denudev/sitekit/internal/themes"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// LanguageService exports the language service contract.
type LanguageService = i18n.Service

// LanguageSignals exports the resolver's input signals.
type LanguageSignals = i18n.Signals

// ThemeService exports the theme service contract.
type ThemeService = themes.Service

// GeneratorService exports the static export contract.
type GeneratorService = generator.Service

// EnvironmentContext exports the detected environment descriptor.
type EnvironmentContext = environments.Context

// EnvironmentOverrides exports the companion origin override chain.
type EnvironmentOverrides = environments.Overrides

// BuildOptions exports the static export invocation options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the static export summary.
type BuildResult = generator.BuildResult

// PageCollection exports the loaded page set.
type PageCollection = pages.Collection

// DocumentSession exports the live-document binding that resynchronizes a
// parsed page when the language, fragments, or color scheme change.
type DocumentSession = render.Session

// RenderRequest exports the per-document resolution state.
type RenderRequest = render.Request

// Module is the top level runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a module from configuration with optional dependency
// overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Languages returns the language service.
func (m *Module) Languages() LanguageService {
	return m.container.I18NService()
}

// DetectEnvironment classifies a request host into its deployment tier.
func (m *Module) DetectEnvironment(host string) EnvironmentContext {
	return environments.Detect(host)
}

// LinkResolver returns the companion link resolver.
func (m *Module) LinkResolver() *environments.Resolver {
	return m.container.LinkResolver()
}

// Themes returns the theme selector, nil when themes are disabled.
func (m *Module) Themes() *themes.Selector {
	return m.container.ThemeSelector()
}

// Theme returns the mode-owning theme service.
func (m *Module) Theme() ThemeService {
	return m.container.ThemeService()
}

// SetLanguage activates a supported language module-wide, persisting the
// choice and notifying open document sessions.
func (m *Module) SetLanguage(ctx context.Context, code string) error {
	return m.container.LanguageCommand().Execute(ctx, sitecmd.SetLanguageCommand{Language: code})
}

// SetTheme switches the theme mode module-wide; "system" clears the stored
// preference.
func (m *Module) SetTheme(ctx context.Context, mode string) error {
	return m.container.ThemeCommand().Execute(ctx, sitecmd.SetThemeCommand{Mode: mode})
}

// ReloadFragments re-injects the required partials into a live document and
// republishes the loaded notification sessions resynchronize on.
func (m *Module) ReloadFragments(ctx context.Context, doc *html.Node) error {
	return m.container.ReloadCommand().Execute(ctx, sitecmd.ReloadFragmentsCommand{Document: doc})
}

// OpenSession binds a parsed document to the event bus so runtime changes
// re-run the affected render passes. Callers own the returned session and
// must Close it.
func (m *Module) OpenSession(doc *html.Node, req RenderRequest) *DocumentSession {
	return render.NewSession(m.container.Bus(), m.container.Pipeline(), doc, req)
}

// Pages returns the loaded page collection.
func (m *Module) Pages() *PageCollection {
	return m.container.Pages()
}

// Generator returns the static export service.
func (m *Module) Generator() GeneratorService {
	return m.container.Generator()
}

// Server returns the HTTP server.
func (m *Module) Server() *server.Server {
	return m.container.Server()
}

// Bus returns the event bus runtime components publish on.
func (m *Module) Bus() interfaces.EventBus {
	return m.container.Bus()
}

// Close releases owned resources.
func (m *Module) Close(_ context.Context) error {
	return m.container.Close()
}

// Package di assembles the sitekit runtime from configuration: logging,
// storage, the language catalog, theme selection, environment resolution,
// fragment loading, and the page pipeline.
package di

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"time"

	repocache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/denudev/sitekit/internal/commands/sitecmd"
	"github.com/denudev/sitekit/internal/environments"
	"github.com/denudev/sitekit/internal/events"
	"github.com/denudev/sitekit/internal/fragments"
	"github.com/denudev/sitekit/internal/generator"
	"github.com/denudev/sitekit/internal/i18n"
	"github.com/denudev/sitekit/internal/identity"
	"github.com/denudev/sitekit/internal/links"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/internal/logging/gologger"
	"github.com/denudev/sitekit/internal/pages"
	"github.com/denudev/sitekit/internal/prefs"
	"github.com/denudev/sitekit/internal/render"
	"github.com/denudev/sitekit/internal/runtimeconfig"
	"github.com/denudev/sitekit/internal/server"
	"github.com/denudev/sitekit/internal/themes"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// Container owns the wired runtime services.
type Container struct {
	Config runtimeconfig.Config

	provider  interfaces.LoggerProvider
	bus       interfaces.EventBus
	db        *bun.DB
	prefsRepo prefs.PreferenceRepository

	catalog     *i18n.Catalog
	resolver    *i18n.Resolver
	i18nSvc     i18n.Service
	themeSel    *themes.Selector
	themeSvc    themes.Service
	linkRes     *environments.Resolver
	fragSource  fragments.Source
	collection  *pages.Collection
	renderer    *pages.Renderer
	layout      *render.Layout
	pipeline    *render.Pipeline
	moduleStore *prefs.Store
	langCmd     *sitecmd.SetLanguageHandler
	themeCmd    *sitecmd.SetThemeHandler
	reloadCmd   *sitecmd.ReloadFragmentsHandler
	genSvc      generator.Service
	srv         *server.Server
}

// Option overrides a container dependency before wiring.
type Option func(*Container)

// WithLoggerProvider replaces the configured logging provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.provider = provider
		}
	}
}

// WithBus replaces the event bus.
func WithBus(bus interfaces.EventBus) Option {
	return func(c *Container) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithBunDB injects an externally managed database handle.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

// WithPreferenceRepository replaces the preference repository.
func WithPreferenceRepository(repo prefs.PreferenceRepository) Option {
	return func(c *Container) {
		if repo != nil {
			c.prefsRepo = repo
		}
	}
}

// WithFragmentSource replaces the fragment source.
func WithFragmentSource(source fragments.Source) Option {
	return func(c *Container) {
		if source != nil {
			c.fragSource = source
		}
	}
}

// NewContainer wires the runtime from configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if c.bus == nil {
		c.bus = events.NewBus(events.WithLogger(c.moduleLogger("sitekit.events")))
	}
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	if err := c.configureI18N(); err != nil {
		return nil, err
	}
	c.configureThemes()
	c.configureEnvironments()
	if err := c.configurePages(); err != nil {
		return nil, err
	}
	c.configureRender()
	c.configureCommands()
	if err := c.configureGenerator(); err != nil {
		return nil, err
	}
	c.configureServer()
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.provider != nil {
		return nil
	}
	if !c.Config.Features.Logger {
		return nil
	}

	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return fmt.Errorf("di: configure logging: %w", err)
	}
	c.provider = provider
	return nil
}

func (c *Container) moduleLogger(name string) interfaces.Logger {
	return logging.ModuleLogger(c.provider, name)
}

func (c *Container) configureStorage() error {
	if err := c.configureRepository(); err != nil {
		return err
	}

	// The module-scoped store backs host-driven preference changes made
	// outside any HTTP request, keyed by a stable synthetic visitor.
	c.moduleStore = prefs.NewStore(c.prefsRepo, identity.VisitorUUID("sitekit.module"),
		prefs.WithStoreLogger(c.moduleLogger("sitekit.prefs")),
	)
	return nil
}

func (c *Container) configureRepository() error {
	if c.prefsRepo != nil {
		return nil
	}
	if !c.Config.Storage.Enabled {
		c.prefsRepo = prefs.NewMemoryRepository()
		return nil
	}

	if c.db == nil {
		sqlDB, err := sql.Open("sqlite3", c.Config.Storage.DSN)
		if err != nil {
			return fmt.Errorf("di: open storage: %w", err)
		}
		c.db = bun.NewDB(sqlDB, sqlitedialect.New())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := c.db.NewCreateTable().Model((*prefs.PreferenceRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("di: ensure preference table: %w", err)
	}

	if c.Config.Cache.Enabled {
		cacheCfg := repocache.DefaultConfig()
		if c.Config.Cache.DefaultTTL > 0 {
			cacheCfg.TTL = c.Config.Cache.DefaultTTL
		}
		cacheService, err := repocache.NewCacheService(cacheCfg)
		if err != nil {
			return fmt.Errorf("di: configure cache: %w", err)
		}
		c.prefsRepo = prefs.NewBunPreferenceRepositoryWithCache(c.db, cacheService, repocache.NewDefaultKeySerializer())
		return nil
	}

	c.prefsRepo = prefs.NewBunPreferenceRepository(c.db)
	return nil
}

func (c *Container) configureI18N() error {
	fixture, err := c.loadCatalogFixture()
	if err != nil {
		return err
	}

	catalog, err := i18n.NewCatalog(fixture.Translations)
	if err != nil {
		return fmt.Errorf("di: build catalog: %w", err)
	}
	c.catalog = catalog
	c.resolver = i18n.NewResolver(catalog, c.Config.I18N.DefaultLanguage, c.Config.I18N.TimezoneLanguages)

	svc, err := i18n.NewService(catalog,
		i18n.Config{
			DefaultLanguage: c.Config.I18N.DefaultLanguage,
			Languages:       c.Config.I18N.Languages,
		},
		c.Config.I18N.TimezoneLanguages,
		i18n.WithLogger(logging.LocalesLogger(c.provider)),
		i18n.WithBus(c.bus),
		i18n.WithStore(c.moduleStore),
	)
	if err != nil {
		return fmt.Errorf("di: configure i18n: %w", err)
	}
	c.i18nSvc = svc
	return nil
}

func (c *Container) loadCatalogFixture() (*i18n.Fixture, error) {
	if c.Config.I18N.CatalogPath == "" {
		return i18n.DefaultFixture()
	}
	return i18n.NewLoader(c.Config.I18N.CatalogPath).Load(context.Background())
}

func (c *Container) configureThemes() {
	c.themeSvc = themes.NewService(
		themes.StaticScheme(c.Config.Themes.DefaultVariant),
		themes.WithLogger(logging.ThemesLogger(c.provider)),
		themes.WithBus(c.bus),
		themes.WithStore(c.moduleStore),
	)

	if !c.Config.Features.Themes {
		return
	}
	c.themeSel = themes.NewSelector(themes.SelectorConfig{
		Name:           c.Config.Themes.Name,
		Path:           c.Config.Themes.Path,
		DefaultVariant: c.Config.Themes.DefaultVariant,
		CSSVarPrefix:   c.Config.Themes.CSSVarPrefix,
	}, nil)
}

func (c *Container) configureEnvironments() {
	c.linkRes = environments.NewResolver(
		c.Config.Environments.CompanionSubdomain,
		c.Config.Environments.Routes,
		c.Config.Environments.ConventionalPorts,
		c.Config.I18N.DefaultLanguage,
		c.Config.I18N.QueryParam,
		environments.WithLogger(logging.EnvironmentsLogger(c.provider)),
	)
}

func (c *Container) configurePages() error {
	if c.fragSource == nil {
		c.fragSource = fragments.FSSource{FS: os.DirFS(c.Config.Fragments.Dir)}
	}

	layout, err := render.NewLayout(nil, "")
	if err != nil {
		return err
	}
	c.layout = layout
	c.renderer = pages.NewRenderer()

	if !c.Config.Pages.Enabled {
		c.collection = pages.EmptyCollection()
		return nil
	}

	loader := pages.NewLoader(os.DirFS(c.Config.Pages.Dir),
		pages.WithLoaderLogger(c.moduleLogger("sitekit.pages")),
	)
	collection, err := loader.Load(context.Background())
	if err != nil {
		return fmt.Errorf("di: load pages: %w", err)
	}
	c.collection = collection
	return nil
}

// configureRender builds the shared pass pipeline document sessions and the
// static export render through.
func (c *Container) configureRender() {
	c.pipeline = render.NewPipeline(render.Config{
		Translator:      c.i18nSvc,
		DefaultLanguage: c.Config.I18N.DefaultLanguage,
		LanguageParam:   c.Config.I18N.QueryParam,
		Fragments:       c.fragmentLoader(logging.FragmentsLogger(c.provider)),
		Links:           links.NewRewriter(c.linkRes, links.WithLogger(logging.LinksLogger(c.provider))),
		Themes:          c.themeSel,
		Logger:          c.moduleLogger("sitekit.render"),
	})
}

func (c *Container) configureCommands() {
	c.langCmd = sitecmd.NewSetLanguageHandler(c.i18nSvc, logging.LocalesLogger(c.provider))
	c.themeCmd = sitecmd.NewSetThemeHandler(c.themeSvc, logging.ThemesLogger(c.provider))
	c.reloadCmd = sitecmd.NewReloadFragmentsHandler(
		c.fragmentLoader(logging.FragmentsLogger(c.provider)),
		logging.FragmentsLogger(c.provider),
	)
}

func (c *Container) configureGenerator() error {
	if !c.Config.Features.Generator || !c.Config.Generator.Enabled {
		c.genSvc = generator.NewDisabledService()
		return nil
	}

	logger := logging.GeneratorLogger(c.provider)

	var themeFS fs.FS
	if c.themeSel != nil {
		themeFS = os.DirFS(c.Config.Themes.Path)
	}

	svc, err := generator.NewService(generator.Config{
		OutputDir:       c.Config.Generator.OutputDir,
		CanonicalHost:   c.Config.Site.CanonicalHost,
		Languages:       c.Config.I18N.Languages,
		DefaultLanguage: c.Config.I18N.DefaultLanguage,
		Variant:         c.Config.Themes.DefaultVariant,
		CleanFirst:      c.Config.Generator.CleanFirst,
	}, generator.Dependencies{
		Collection: c.collection,
		Renderer:   c.renderer,
		Layout:     c.layout,
		Pipeline:   c.pipeline,
		Translator: c.i18nSvc,
		Themes:     c.themeSel,
		ThemeFS:    themeFS,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("di: configure generator: %w", err)
	}
	c.genSvc = svc
	return nil
}

func (c *Container) fragmentLoader(logger interfaces.Logger) *fragments.Loader {
	required := make([]fragments.Fragment, 0, len(c.Config.Fragments.Required))
	for _, fragment := range c.Config.Fragments.Required {
		required = append(required, fragments.Fragment{
			Name:      fragment.Name,
			Path:      fragment.Path,
			Container: fragment.Container,
		})
	}
	return fragments.NewLoader(c.fragSource, required,
		fragments.WithLogger(logger),
		fragments.WithBus(c.bus),
	)
}

func (c *Container) configureServer() {
	var staticFS fs.FS
	if c.Config.Server.StaticDir != "" {
		staticFS = os.DirFS(c.Config.Server.StaticDir)
	}

	c.srv = server.New(server.Dependencies{
		Config:     c.Config,
		Collection: c.collection,
		Renderer:   c.renderer,
		Layout:     c.layout,
		Catalog:    c.catalog,
		Resolver:   c.resolver,
		Translator: c.i18nSvc,
		Themes:     c.themeSel,
		Fragments:  c.fragSource,
		Links:      c.linkRes,
		PrefsRepo:  c.prefsRepo,
		Bus:        c.bus,
		Logger:     logging.ServerLogger(c.provider),
		StaticFS:   staticFS,
	})
}

// Bus returns the event bus.
func (c *Container) Bus() interfaces.EventBus { return c.bus }

// Catalog returns the translation catalog.
func (c *Container) Catalog() *i18n.Catalog { return c.catalog }

// LanguageResolver returns the signal-chain resolver.
func (c *Container) LanguageResolver() *i18n.Resolver { return c.resolver }

// I18NService returns the language service.
func (c *Container) I18NService() i18n.Service { return c.i18nSvc }

// ThemeSelector returns the theme selector, nil when themes are disabled.
func (c *Container) ThemeSelector() *themes.Selector { return c.themeSel }

// ThemeService returns the mode-owning theme service.
func (c *Container) ThemeService() themes.Service { return c.themeSvc }

// Pipeline returns the shared render pass pipeline.
func (c *Container) Pipeline() *render.Pipeline { return c.pipeline }

// LanguageCommand returns the set-language command handler.
func (c *Container) LanguageCommand() *sitecmd.SetLanguageHandler { return c.langCmd }

// ThemeCommand returns the set-theme command handler.
func (c *Container) ThemeCommand() *sitecmd.SetThemeHandler { return c.themeCmd }

// ReloadCommand returns the fragment reload command handler.
func (c *Container) ReloadCommand() *sitecmd.ReloadFragmentsHandler { return c.reloadCmd }

// LinkResolver returns the companion link resolver.
func (c *Container) LinkResolver() *environments.Resolver { return c.linkRes }

// Pages returns the loaded page collection.
func (c *Container) Pages() *pages.Collection { return c.collection }

// Generator returns the static export service.
func (c *Container) Generator() generator.Service { return c.genSvc }

// Server returns the HTTP server.
func (c *Container) Server() *server.Server { return c.srv }

// PreferenceRepository returns the visitor preference repository.
func (c *Container) PreferenceRepository() prefs.PreferenceRepository { return c.prefsRepo }

// LoggerProvider returns the configured logger provider, possibly nil.
func (c *Container) LoggerProvider() interfaces.LoggerProvider { return c.provider }

// Close releases owned resources.
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

package runtimeconfig

import (
	"errors"
	"strings"
	"time"
)

// ErrDefaultLanguageRequired indicates the language table has no default entry.
var ErrDefaultLanguageRequired = errors.New("sitekit config: default language is required")

// ErrDefaultLanguageUnsupported indicates the default language is missing from the supported set.
var ErrDefaultLanguageUnsupported = errors.New("sitekit config: default language must be listed in languages")

// ErrLanguagesRequired indicates no supported language was configured.
var ErrLanguagesRequired = errors.New("sitekit config: at least one language is required")

var ErrThemeVariantInvalid = errors.New("sitekit config: theme default variant must be light or dark")
var ErrCompanionSubdomainRequired = errors.New("sitekit config: companion subdomain is required")
var ErrFragmentContainerRequired = errors.New("sitekit config: every fragment needs a container id")
var ErrPagesDirRequired = errors.New("sitekit config: pages directory is required when pages are enabled")
var ErrGeneratorOutputDirRequired = errors.New("sitekit config: generator output directory is required when the generator is enabled")
var ErrStorageDSNRequired = errors.New("sitekit config: storage DSN is required when preferences persistence is enabled")
var ErrLoggingProviderUnknown = errors.New("sitekit config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("sitekit config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("sitekit config: logging format is invalid")

// Config aggregates feature flags and module bindings for the site runtime.
// Fields intentionally use simple types so host applications can extend them
// later.
type Config struct {
	Site         SiteConfig        `koanf:"site"`
	I18N         I18NConfig        `koanf:"i18n"`
	Themes       ThemeConfig       `koanf:"themes"`
	Environments EnvironmentConfig `koanf:"environments"`
	Fragments    FragmentsConfig   `koanf:"fragments"`
	Pages        PagesConfig       `koanf:"pages"`
	Server       ServerConfig      `koanf:"server"`
	Storage      StorageConfig     `koanf:"storage"`
	Cache        CacheConfig       `koanf:"cache"`
	Generator    GeneratorConfig   `koanf:"generator"`
	Logging      LoggingConfig     `koanf:"logging"`
	Features     Features          `koanf:"features"`
}

// SiteConfig identifies the site itself.
type SiteConfig struct {
	Name          string `koanf:"name"`
	CanonicalHost string `koanf:"canonical_host"`
}

// I18NConfig drives the language resolver.
type I18NConfig struct {
	DefaultLanguage string   `koanf:"default_language"`
	Languages       []string `koanf:"languages"`
	CatalogPath     string   `koanf:"catalog_path"`
	QueryParam      string   `koanf:"query_param"`
	// TimezoneLanguages maps resolved timezone identifiers to a language,
	// the geographic heuristic at the bottom of the resolution chain.
	TimezoneLanguages map[string]string `koanf:"timezone_languages"`
}

// ThemeConfig binds the go-theme manifest used for token/variant resolution.
type ThemeConfig struct {
	Name           string `koanf:"name"`
	Path           string `koanf:"path"`
	DefaultVariant string `koanf:"default_variant"`
	CSSVarPrefix   string `koanf:"css_var_prefix"`
}

// EnvironmentConfig drives host detection and companion URL resolution.
type EnvironmentConfig struct {
	// CompanionSubdomain is the subdomain the companion application lives
	// under, e.g. "app" for app.denu.dev.
	CompanionSubdomain string `koanf:"companion_subdomain"`
	// Routes names the companion application paths links may target.
	Routes map[string]string `koanf:"routes"`
	// ConventionalPorts are local ports assumed to serve this site rather
	// than the companion application.
	ConventionalPorts []int `koanf:"conventional_ports"`
	// LocalOverride seeds the runtime companion-origin override for local
	// development.
	LocalOverride string `koanf:"local_override"`
}

// FragmentsConfig lists the partials injected into page placeholders.
type FragmentsConfig struct {
	Dir      string           `koanf:"dir"`
	Required []FragmentConfig `koanf:"required"`
}

// FragmentConfig binds one partial file to its placeholder container.
type FragmentConfig struct {
	Name      string `koanf:"name"`
	Path      string `koanf:"path"`
	Container string `koanf:"container"`
}

// PagesConfig locates the page documents.
type PagesConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	Pattern string `koanf:"pattern"`
}

// ServerConfig captures the HTTP surface options.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	StaticDir       string        `koanf:"static_dir"`
	CORSAllowAll    bool          `koanf:"cors_allow_all"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig wires the visitor preference store.
type StorageConfig struct {
	Enabled bool   `koanf:"enabled"`
	Driver  string `koanf:"driver"`
	DSN     string `koanf:"dsn"`
}

// CacheConfig captures cache behaviour toggles for rendered output and
// preference lookups.
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
}

// GeneratorConfig drives the static export.
type GeneratorConfig struct {
	Enabled    bool   `koanf:"enabled"`
	OutputDir  string `koanf:"output_dir"`
	CleanFirst bool   `koanf:"clean_first"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `koanf:"provider"`
	Level     string   `koanf:"level"`
	Format    string   `koanf:"format"`
	AddSource bool     `koanf:"add_source"`
	Focus     []string `koanf:"focus"`
}

// Features toggles module functionality.
type Features struct {
	Themes      bool `koanf:"themes"`
	Preferences bool `koanf:"preferences"`
	Generator   bool `koanf:"generator"`
	Logger      bool `koanf:"logger"`
}

// DefaultConfig returns the configuration the denu.dev site ships with.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Name:          "denu",
			CanonicalHost: "denu.dev",
		},
		I18N: I18NConfig{
			DefaultLanguage: "en",
			Languages:       []string{"en", "fa"},
			QueryParam:      "lang",
			TimezoneLanguages: map[string]string{
				"Asia/Tehran": "fa",
			},
		},
		Themes: ThemeConfig{
			Name:           "denu",
			DefaultVariant: "light",
			CSSVarPrefix:   "dn",
		},
		Environments: EnvironmentConfig{
			CompanionSubdomain: "app",
			Routes: map[string]string{
				"home":     "/",
				"discover": "/discover",
				"signin":   "/signin",
				"signup":   "/signup",
			},
			ConventionalPorts: []int{80, 443, 3000, 5173, 8000, 8080},
		},
		Fragments: FragmentsConfig{
			Dir: "partials",
			Required: []FragmentConfig{
				{Name: "navbar", Path: "navbar.html", Container: "navbar-container"},
				{Name: "drawer", Path: "drawer.html", Container: "drawer-container"},
				{Name: "footer", Path: "footer.html", Container: "footer-container"},
			},
		},
		Pages: PagesConfig{
			Enabled: true,
			Dir:     "content",
			Pattern: "*.md",
		},
		Server: ServerConfig{
			Addr:            ":3000",
			StaticDir:       "static",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
			DSN:    "file:sitekit.db?cache=shared",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: 5 * time.Minute,
		},
		Generator: GeneratorConfig{
			OutputDir: "dist",
		},
		Logging: LoggingConfig{
			Provider: "gologger",
			Level:    "info",
			Format:   "console",
		},
		Features: Features{
			Themes: true,
			Logger: true,
		},
	}
}

// Validate verifies cross-field consistency before the module boots.
func (c Config) Validate() error {
	if strings.TrimSpace(c.I18N.DefaultLanguage) == "" {
		return ErrDefaultLanguageRequired
	}
	if len(c.I18N.Languages) == 0 {
		return ErrLanguagesRequired
	}
	if !containsFold(c.I18N.Languages, c.I18N.DefaultLanguage) {
		return ErrDefaultLanguageUnsupported
	}

	switch strings.ToLower(strings.TrimSpace(c.Themes.DefaultVariant)) {
	case "", "light", "dark":
	default:
		return ErrThemeVariantInvalid
	}

	if strings.TrimSpace(c.Environments.CompanionSubdomain) == "" {
		return ErrCompanionSubdomainRequired
	}

	for _, fragment := range c.Fragments.Required {
		if strings.TrimSpace(fragment.Container) == "" {
			return ErrFragmentContainerRequired
		}
	}

	if c.Pages.Enabled && strings.TrimSpace(c.Pages.Dir) == "" {
		return ErrPagesDirRequired
	}
	if c.Features.Generator && strings.TrimSpace(c.Generator.OutputDir) == "" {
		return ErrGeneratorOutputDirRequired
	}
	if c.Features.Preferences && strings.TrimSpace(c.Storage.DSN) == "" {
		return ErrStorageDSNRequired
	}

	if c.Features.Logger {
		if err := validateLogging(c.Logging); err != nil {
			return err
		}
	}

	return nil
}

func validateLogging(cfg LoggingConfig) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "noop", "gologger":
	default:
		return ErrLoggingProviderUnknown
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Level)) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return ErrLoggingLevelInvalid
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json", "console", "pretty":
	default:
		return ErrLoggingFormatInvalid
	}
	return nil
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), strings.TrimSpace(value)) {
			return true
		}
	}
	return false
}

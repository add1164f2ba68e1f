package sitekit

import "github.com/denudev/sitekit/internal/runtimeconfig"

// Config aggregates feature flags and module bindings for the site runtime.
type Config = runtimeconfig.Config

// Configuration sections re-exported for host applications.
type (
	SiteConfig        = runtimeconfig.SiteConfig
	I18NConfig        = runtimeconfig.I18NConfig
	ThemeConfig       = runtimeconfig.ThemeConfig
	EnvironmentConfig = runtimeconfig.EnvironmentConfig
	FragmentsConfig   = runtimeconfig.FragmentsConfig
	FragmentConfig    = runtimeconfig.FragmentConfig
	PagesConfig       = runtimeconfig.PagesConfig
	ServerConfig      = runtimeconfig.ServerConfig
	StorageConfig     = runtimeconfig.StorageConfig
	CacheConfig       = runtimeconfig.CacheConfig
	GeneratorConfig   = runtimeconfig.GeneratorConfig
	LoggingConfig     = runtimeconfig.LoggingConfig
	Features          = runtimeconfig.Features
)

// DefaultConfig returns the denu.dev defaults.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads configuration from an optional YAML file and SITEKIT_*
// environment variables layered over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}

// Validation errors re-exported for host applications.
var (
	ErrDefaultLanguageRequired    = runtimeconfig.ErrDefaultLanguageRequired
	ErrDefaultLanguageUnsupported = runtimeconfig.ErrDefaultLanguageUnsupported
	ErrLanguagesRequired          = runtimeconfig.ErrLanguagesRequired
	ErrThemeVariantInvalid        = runtimeconfig.ErrThemeVariantInvalid
	ErrCompanionSubdomainRequired = runtimeconfig.ErrCompanionSubdomainRequired
	ErrFragmentContainerRequired  = runtimeconfig.ErrFragmentContainerRequired
	ErrPagesDirRequired           = runtimeconfig.ErrPagesDirRequired
	ErrGeneratorOutputDirRequired = runtimeconfig.ErrGeneratorOutputDirRequired
	ErrStorageDSNRequired         = runtimeconfig.ErrStorageDSNRequired
)

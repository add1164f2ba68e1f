package logging

import (
	"context"

	"github.com/denudev/sitekit/pkg/interfaces"
)

const (
	rootModule         = "sitekit"
	localesModule      = "sitekit.locales"
	themesModule       = "sitekit.themes"
	environmentsModule = "sitekit.environments"
	linksModule        = "sitekit.links"
	fragmentsModule    = "sitekit.fragments"
	serverModule       = "sitekit.server"
	generatorModule    = "sitekit.generator"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// LocalesLogger returns the logger namespace reserved for language resolution.
func LocalesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, localesModule)
}

// ThemesLogger returns the logger namespace reserved for theme resolution.
func ThemesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, themesModule)
}

// EnvironmentsLogger returns the logger namespace reserved for environment
// detection and companion URL resolution.
func EnvironmentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, environmentsModule)
}

// LinksLogger returns the logger namespace reserved for the link rewriter.
func LinksLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, linksModule)
}

// FragmentsLogger returns the logger namespace reserved for the fragment loader.
func FragmentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, fragmentsModule)
}

// ServerLogger returns the logger namespace reserved for the HTTP surface.
func ServerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, serverModule)
}

// GeneratorLogger returns the logger namespace reserved for static export.
func GeneratorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, generatorModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}

package sitecmd

import (
	"context"

	"github.com/denudev/sitekit/internal/commands"
	"github.com/denudev/sitekit/internal/fragments"
	"github.com/denudev/sitekit/internal/i18n"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/internal/themes"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// SetLanguageHandler routes language switches through the i18n service.
type SetLanguageHandler struct {
	inner *commands.Handler[SetLanguageCommand]
}

// NewSetLanguageHandler constructs the handler.
func NewSetLanguageHandler(service i18n.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SetLanguageCommand]) *SetLanguageHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SetLanguageCommand) error {
		return service.SetLanguage(ctx, msg.Language)
	}

	options := append([]commands.HandlerOption[SetLanguageCommand]{
		commands.WithLogger[SetLanguageCommand](baseLogger),
		commands.WithOperation[SetLanguageCommand]("site.set_language"),
		commands.WithTelemetry(commands.DefaultTelemetry[SetLanguageCommand](baseLogger)),
	}, opts...)

	return &SetLanguageHandler{inner: commands.NewHandler(exec, options...)}
}

// Execute conforms to command.Commander.
func (h *SetLanguageHandler) Execute(ctx context.Context, msg SetLanguageCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SetThemeHandler routes theme mode switches through the theme service.
type SetThemeHandler struct {
	inner *commands.Handler[SetThemeCommand]
}

// NewSetThemeHandler constructs the handler.
func NewSetThemeHandler(service themes.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SetThemeCommand]) *SetThemeHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SetThemeCommand) error {
		return service.SetMode(ctx, themes.ParseMode(msg.Mode))
	}

	options := append([]commands.HandlerOption[SetThemeCommand]{
		commands.WithLogger[SetThemeCommand](baseLogger),
		commands.WithOperation[SetThemeCommand]("site.set_theme"),
		commands.WithTelemetry(commands.DefaultTelemetry[SetThemeCommand](baseLogger)),
	}, opts...)

	return &SetThemeHandler{inner: commands.NewHandler(exec, options...)}
}

// Execute conforms to command.Commander.
func (h *SetThemeHandler) Execute(ctx context.Context, msg SetThemeCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ReloadFragmentsHandler re-runs fragment injection against a live document,
// which republishes the loaded notification consumers resynchronize on.
type ReloadFragmentsHandler struct {
	inner *commands.Handler[ReloadFragmentsCommand]
}

// NewReloadFragmentsHandler constructs the handler.
func NewReloadFragmentsHandler(loader *fragments.Loader, logger interfaces.Logger, opts ...commands.HandlerOption[ReloadFragmentsCommand]) *ReloadFragmentsHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ReloadFragmentsCommand) error {
		loader.Reload(ctx, msg.Document)
		return nil
	}

	options := append([]commands.HandlerOption[ReloadFragmentsCommand]{
		commands.WithLogger[ReloadFragmentsCommand](baseLogger),
		commands.WithOperation[ReloadFragmentsCommand]("site.reload_fragments"),
		commands.WithTelemetry(commands.DefaultTelemetry[ReloadFragmentsCommand](baseLogger)),
	}, opts...)

	return &ReloadFragmentsHandler{inner: commands.NewHandler(exec, options...)}
}

// Execute conforms to command.Commander.
func (h *ReloadFragmentsHandler) Execute(ctx context.Context, msg ReloadFragmentsCommand) error {
	return h.inner.Execute(ctx, msg)
}

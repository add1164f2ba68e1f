package staticcmd

import (
	"context"

	"github.com/denudev/sitekit/internal/commands"
	"github.com/denudev/sitekit/internal/generator"
	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

// BuildSiteHandler orchestrates generator builds through the shared command
// handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler constructs a handler wired to the provided generator
// service.
func NewBuildSiteHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}

		result, err := service.Build(ctx, generator.BuildOptions{
			Force:     msg.Force,
			Languages: msg.Languages,
			Routes:    msg.Routes,
		})
		if err != nil {
			return err
		}

		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build_site",
			},
		})
		return nil
	}

	options := append([]commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("static.build"),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}, opts...)

	return &BuildSiteHandler{inner: commands.NewHandler(exec, options...)}
}

// Execute conforms to command.Commander.
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// BuildAssetsHandler copies theme assets on demand.
type BuildAssetsHandler struct {
	inner *commands.Handler[BuildAssetsCommand]
}

// NewBuildAssetsHandler constructs an assets-only handler.
func NewBuildAssetsHandler(service generator.Service, logger interfaces.Logger, opts ...commands.HandlerOption[BuildAssetsCommand]) *BuildAssetsHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildAssetsCommand) error {
		if service == nil {
			return generator.ErrServiceDisabled
		}

		copied, err := service.BuildAssets(ctx)
		if err != nil {
			return err
		}

		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Metadata: map[string]any{
				"operation": "build_assets",
				"copied":    copied,
			},
		})
		return nil
	}

	options := append([]commands.HandlerOption[BuildAssetsCommand]{
		commands.WithLogger[BuildAssetsCommand](baseLogger),
		commands.WithOperation[BuildAssetsCommand]("static.assets"),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildAssetsCommand](baseLogger)),
	}, opts...)

	return &BuildAssetsHandler{inner: commands.NewHandler(exec, options...)}
}

// Execute conforms to command.Commander.
func (h *BuildAssetsHandler) Execute(ctx context.Context, msg BuildAssetsCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}

// Package commands provides the shared execution wrapper for sitekit command
// messages: validation, timeout enforcement, logging, and error tagging.
package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/denudev/sitekit/internal/logging"
	"github.com/denudev/sitekit/pkg/interfaces"
)

const defaultHandlerTimeout = 30 * time.Second

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler wraps command execution with the shared runtime concerns.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	telemetry Telemetry[T]
}

// NewHandler creates a handler that satisfies go-command's Commander
// interface while applying validation, logging, and timeout enforcement.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: defaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute conforms to command.Commander[T].Execute.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return wrapValidationError(err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return wrapContextError(err)
	}

	messageType := command.GetMessageType(msg)
	logger := h.commandLogger(messageType)
	logger.Debug("command.execute.start")

	// Downstream services can pick the command identity back up from the
	// context for their own log entries.
	ctx = logging.ContextWithFields(ctx, h.commandFields(messageType))
	start := time.Now()

	// Outcome logging moves to the telemetry callback when one is set.
	if err := h.exec(ctx, msg); err != nil {
		if h.telemetry == nil {
			logger.Error("command.execute.failed", "error", err)
		}
		h.report(ctx, msg, messageType, start, TelemetryStatusFailed, err)
		return wrapExecuteError(err)
	}

	if err := ctx.Err(); err != nil {
		if h.telemetry == nil {
			logger.Error("command.execute.context_error", "error", err)
		}
		h.report(ctx, msg, messageType, start, TelemetryStatusContextError, err)
		return wrapContextError(err)
	}

	if h.telemetry == nil {
		logger.Info("command.execute.success")
	}
	h.report(ctx, msg, messageType, start, TelemetryStatusSuccess, nil)
	return nil
}

func (h *Handler[T]) commandLogger(messageType string) interfaces.Logger {
	return logging.WithFields(h.logger, h.commandFields(messageType))
}

func (h *Handler[T]) commandFields(messageType string) map[string]any {
	fields := map[string]any{"command": messageType}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	return fields
}

func (h *Handler[T]) report(ctx context.Context, msg T, messageType string, start time.Time, status TelemetryStatus, err error) {
	if h.telemetry == nil {
		return
	}
	h.telemetry(ctx, msg, TelemetryInfo{
		Command:   messageType,
		Operation: h.operation,
		Fields:    h.commandFields(messageType),
		Duration:  time.Since(start),
		Error:     err,
		Status:    status,
	})
}

// WithTimeout overrides the default execution timeout.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		if timeout <= 0 {
			h.timeout = 0
			return
		}
		h.timeout = timeout
	}
}

// WithLogger injects the logger used during execution.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger == nil {
			h.logger = logging.NoOp()
			return
		}
		h.logger = logger
	}
}

// WithOperation sets an operation name emitted with every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithTelemetry registers a callback invoked after every execution attempt
// that passed validation.
func WithTelemetry[T command.Message](fn Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.telemetry = fn
	}
}

func (h *Handler[T]) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.timeout)
}

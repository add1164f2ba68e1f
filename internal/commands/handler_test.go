package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/denudev/sitekit/internal/logging"
)

type testMessage struct{}

func (testMessage) Type() string { return "sitekit.test.message" }

func (testMessage) Validate() error { return nil }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "sitekit.test.invalid" }

func (invalidMessage) Validate() error {
	return errors.New("invalid")
}

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[invalidMessage](func(ctx context.Context, msg invalidMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), invalidMessage{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, testMessage{})
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		return execErr
	})

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected wrapped execution error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
}

func TestHandlerTimeout(t *testing.T) {
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	}, WithTimeout[testMessage](10*time.Millisecond))

	err := h.Execute(context.Background(), testMessage{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
}

func TestHandlerAnnotatesContextFields(t *testing.T) {
	var seen map[string]any
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		seen = logging.ContextFields(ctx)
		return nil
	}, WithOperation[testMessage]("test.op"))

	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if seen["command"] != "sitekit.test.message" {
		t.Fatalf("expected command field on context, got %v", seen)
	}
	if seen["operation"] != "test.op" {
		t.Fatalf("expected operation field on context, got %v", seen)
	}
}

func TestHandlerTelemetryCallback(t *testing.T) {
	var reports []TelemetryInfo
	record := func(_ context.Context, _ testMessage, info TelemetryInfo) {
		reports = append(reports, info)
	}

	execErr := errors.New("boom")
	fail := true
	h := NewHandler[testMessage](func(ctx context.Context, msg testMessage) error {
		if fail {
			return execErr
		}
		return nil
	}, WithTelemetry[testMessage](record), WithOperation[testMessage]("test.op"))

	if err := h.Execute(context.Background(), testMessage{}); err == nil {
		t.Fatal("expected execution error")
	}
	fail = false
	if err := h.Execute(context.Background(), testMessage{}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("expected 2 telemetry reports, got %d", len(reports))
	}
	if reports[0].Status != TelemetryStatusFailed || !errors.Is(reports[0].Error, execErr) {
		t.Fatalf("unexpected failure report %+v", reports[0])
	}
	if reports[1].Status != TelemetryStatusSuccess || reports[1].Error != nil {
		t.Fatalf("unexpected success report %+v", reports[1])
	}
	if reports[1].Command != "sitekit.test.message" || reports[1].Operation != "test.op" {
		t.Fatalf("unexpected report identity %+v", reports[1])
	}
}

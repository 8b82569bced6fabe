// pkg/runctx/context.go

package runctx

import (
	"context"
	"time"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/infraops/invreporter/pkg/telemetry"
	"github.com/infraops/invreporter/pkg/xerr"
)

// RuntimeContext carries everything a component needs for one command run:
// cancellation, the scoped logger, the command span, and free-form
// attributes. It is passed explicitly; nothing reads ambient globals.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Span       trace.Span
	Timestamp  time.Time
	Command    string
	Component  string
	Attributes map[string]string
}

// New sets up the span and the scoped logger for a command invocation. The
// command name is the logging component; callers arrive here through the
// cobra adapter, so the caller stack names the framework, not the command.
func New(ctx context.Context, log *zap.Logger, cmdName string) *RuntimeContext {
	spanCtx, span := telemetry.Start(ctx, cmdName)
	traceID := span.SpanContext().TraceID().String()

	scoped := log.With(
		zap.String("component", cmdName),
		zap.String("trace_id", traceID),
	).Named(cmdName)

	return &RuntimeContext{
		Ctx:        spanCtx,
		Log:        scoped,
		Span:       span,
		Timestamp:  time.Now(),
		Command:    cmdName,
		Component:  cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = cerr.AssertionFailedf("panic: %v", r)
		rc.Log.Error("Panic recovered", zap.Any("panic", r))
	}
}

// End logs the outcome and closes the command span. Deferred by the CLI
// wrapper around every command.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	duration := time.Since(rc.Timestamp)
	success := (*errPtr == nil)

	if success {
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	} else if xerr.IsExpectedUserError(*errPtr) {
		rc.Log.Warn("Command ended on operator action",
			zap.Duration("duration", duration),
			zap.String("outcome", xerr.SafeSummary(*errPtr)),
		)
	} else {
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(*errPtr))
	}

	rc.Span.SetAttributes(
		attribute.Bool("success", success),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("command", rc.Command),
		attribute.String("error_type", classifyError(*errPtr)),
	)
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if xerr.IsExpectedUserError(err) {
		return "user"
	}
	return "system"
}


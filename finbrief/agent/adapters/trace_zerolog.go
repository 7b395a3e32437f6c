package adapters

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
)

type spanLoggerKey struct{}

// ZerologTracer implements the Tracer port on top of zerolog.
type ZerologTracer struct {
	logger zerolog.Logger
}

// NewZerologTracer creates a zerolog-backed tracer.
func NewZerologTracer(logger zerolog.Logger) *ZerologTracer {
	return &ZerologTracer{logger: logger}
}

// StartSpan opens a span: a child logger carrying the span name and
// attributes is stored on the context, and the returned finish func logs the
// span outcome with its duration.
func (t *ZerologTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	spanLogger := t.logger.With().Str("span", name).Logger()
	for k, v := range attrs {
		spanLogger = spanLogger.With().Interface(k, v).Logger()
	}
	ctx = context.WithValue(ctx, spanLoggerKey{}, spanLogger)

	start := time.Now()
	spanLogger.Debug().Msg("span start")

	finish := func(err error) {
		evt := spanLogger.Debug()
		if err != nil {
			evt = spanLogger.Error().Err(err)
		}
		evt.Dur("duration", time.Since(start)).Msg("span end")
	}
	return ctx, finish
}

// Event logs a point-in-time event within the current span, falling back to
// the root logger when no span is active.
func (t *ZerologTracer) Event(ctx context.Context, name string, attrs map[string]any) {
	logger := t.logger
	if span, ok := ctx.Value(spanLoggerKey{}).(zerolog.Logger); ok {
		logger = span
	}
	evt := logger.Debug()
	for k, v := range attrs {
		evt = evt.Interface(k, v)
	}
	evt.Str("event", name).Msg("trace event")
}

// NopTracer discards all spans and events.
type NopTracer struct{}

func (NopTracer) StartSpan(ctx context.Context, _ string, _ map[string]any) (context.Context, func(err error)) {
	return ctx, func(error) {}
}

func (NopTracer) Event(context.Context, string, map[string]any) {}

var (
	_ ports.Tracer = (*ZerologTracer)(nil)
	_ ports.Tracer = NopTracer{}
)

// Package requestctx carries request-scoped values (logger, trace metadata, completion
// log annotations) through context without import cycles between the platform packages.
package requestctx

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type (
	loggerKey      struct{}
	traceKey       struct{}
	annotationsKey struct{}
)

var noopLogger = zap.NewNop()

// TraceInfo captures the trace identifiers of the active server span.
type TraceInfo struct {
	TraceID string
	SpanID  string
	Sampled bool
}

// WithLogger stores the logger in context for downstream consumers.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// Logger retrieves the zap logger from context or returns a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared no-op logger.
func NoopLogger() *zap.Logger { return noopLogger }

// WithTrace stores trace metadata on the context.
func WithTrace(ctx context.Context, info TraceInfo) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, traceKey{}, info)
}

// Trace retrieves trace metadata from context when available.
func Trace(ctx context.Context) (TraceInfo, bool) {
	if ctx == nil {
		return TraceInfo{}, false
	}
	info, ok := ctx.Value(traceKey{}).(TraceInfo)
	return info, ok
}

// TraceID extracts the trace identifier from context when present.
func TraceID(ctx context.Context) string {
	info, _ := Trace(ctx)
	return info.TraceID
}

// Annotations collects fields that inner layers (session loading, preview rendering)
// attach to the request completion log line. Later fields with the same key replace
// earlier ones.
type Annotations struct {
	mu     sync.Mutex
	fields []zap.Field
}

// Add records fields on a.
func (a *Annotations) Add(fields ...zap.Field) {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, f := range fields {
		replaced := false
		for i := range a.fields {
			if a.fields[i].Key == f.Key {
				a.fields[i] = f
				replaced = true
				break
			}
		}
		if !replaced {
			a.fields = append(a.fields, f)
		}
	}
}

// Fields returns a copy of the recorded fields in insertion order.
func (a *Annotations) Fields() []zap.Field {
	if a == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]zap.Field(nil), a.fields...)
}

// WithAnnotations installs a fresh annotation set on ctx and returns it.
func WithAnnotations(ctx context.Context) (context.Context, *Annotations) {
	if ctx == nil {
		ctx = context.Background()
	}
	a := &Annotations{}
	return context.WithValue(ctx, annotationsKey{}, a), a
}

// Annotate adds fields to the annotation set of ctx. Without one it does nothing.
func Annotate(ctx context.Context, fields ...zap.Field) {
	if ctx == nil {
		return
	}
	a, _ := ctx.Value(annotationsKey{}).(*Annotations)
	a.Add(fields...)
}

package requestctx

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestLoggerDefaultsToNoop(t *testing.T) {
	if Logger(context.Background()) != NoopLogger() {
		t.Fatalf("expected noop logger for empty context")
	}
	if Logger(WithLogger(context.Background(), nil)) != NoopLogger() {
		t.Fatalf("expected noop logger when nil is stored")
	}
}

func TestLoggerRoundTrip(t *testing.T) {
	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	if Logger(ctx) != logger {
		t.Fatalf("expected stored logger")
	}
}

func TestTraceRoundTrip(t *testing.T) {
	if TraceID(context.Background()) != "" {
		t.Fatalf("expected empty trace id")
	}
	ctx := WithTrace(context.Background(), TraceInfo{TraceID: "abc", SpanID: "def", Sampled: true})
	info, ok := Trace(ctx)
	if !ok || info.SpanID != "def" || !info.Sampled {
		t.Fatalf("unexpected trace info %+v ok=%v", info, ok)
	}
	if TraceID(ctx) != "abc" {
		t.Fatalf("unexpected trace id %q", TraceID(ctx))
	}
}

func TestAnnotationsReplaceByKey(t *testing.T) {
	Annotate(context.Background(), zap.String("ignored", "x"))

	ctx, notes := WithAnnotations(context.Background())
	Annotate(ctx, zap.String("session_id", "s1"), zap.String("variant", "neon-cyber"))
	Annotate(ctx, zap.String("session_id", "s2"))

	fields := notes.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected two fields, got %d", len(fields))
	}
	if fields[0].Key != "session_id" || fields[0].String != "s2" {
		t.Fatalf("expected replaced session id, got %+v", fields[0])
	}
	if fields[1].Key != "variant" || fields[1].String != "neon-cyber" {
		t.Fatalf("unexpected variant field %+v", fields[1])
	}
}

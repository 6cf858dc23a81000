package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/juantap/web/internal/platform/requestctx"
)

func TestWriteErrorEnvelope(t *testing.T) {
	ctx := requestctx.WithTrace(context.Background(), requestctx.TraceInfo{TraceID: "trace-1"})
	rec := httptest.NewRecorder()

	err := NewError("template_not_found", "template\nnot found", http.StatusNotFound).
		WithDetails(map[string]any{"slug": "neon", "status": 999})
	WriteError(ctx, rec, err)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
	var body map[string]any
	if decodeErr := json.Unmarshal(rec.Body.Bytes(), &body); decodeErr != nil {
		t.Fatalf("decode: %v", decodeErr)
	}
	if body["error"] != "template_not_found" || body["message"] != "template not found" {
		t.Fatalf("unexpected body %v", body)
	}
	if body["status"].(float64) != 404 {
		t.Fatalf("details must not override status: %v", body["status"])
	}
	if body["trace_id"] != "trace-1" || body["slug"] != "neon" {
		t.Fatalf("unexpected metadata %v", body)
	}
}

func TestNewErrorDefaultsStatus(t *testing.T) {
	err := NewError("boom", "", 0)
	if err.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", err.Status)
	}
	if err.Error() != "boom" {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}

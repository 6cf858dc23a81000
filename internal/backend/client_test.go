package backend_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/juantap/web/internal/backend"
	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/platform/requestctx"
)

var pngReceipt = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestListTemplatesNormalizes(t *testing.T) {
	t.Parallel()

	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/templates", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"data":[{"name":"Minimal Clean!!","category":"premium","original_price":399,"discount":25},{"slug":"free-one","features":"[\"QR\"]"}]}`)
	})

	templates, err := backend.NewClient(ts.URL).ListTemplates(context.Background())
	require.NoError(t, err)
	require.Len(t, templates, 2)
	require.Equal(t, "minimal-clean", templates[0].Slug)
	require.Equal(t, 299.25, templates[0].Price)
	require.Equal(t, []string{"QR"}, templates[1].Features)
}

func TestGetTemplateSendsTokenAndTraceContext(t *testing.T) {
	t.Parallel()

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	parent := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled, Remote: true})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), parent)

	var auth, traceparent, rawPath string
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		traceparent = r.Header.Get("traceparent")
		rawPath = r.URL.EscapedPath()
		_, _ = io.WriteString(w, `{"template":{"id":7,"slug":"neon cyber","layout":"creative"}}`)
	})

	tpl, err := backend.NewClient(ts.URL+"/").WithToken(" tok-1 ").GetTemplate(ctx, "neon cyber")
	require.NoError(t, err)
	require.Equal(t, "7", tpl.ID)
	require.Equal(t, domain.LayoutCreative, tpl.Layout)
	require.Equal(t, "Bearer tok-1", auth)
	require.Equal(t, "/templates/neon%20cyber", rawPath)
	require.Contains(t, traceparent, "4bf92f3577b34da6a3ce929d0e0e4736")
}

func TestGetTemplateRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := backend.NewClient("http://127.0.0.1:0").GetTemplate(context.Background(), "  ")
	require.ErrorIs(t, err, backend.ErrMissingTemplateKey)
}

func TestStatusErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "validation uses first field message",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"The given data was invalid.","errors":{"reference_number":["Reference already used."],"notes":["Too long."]}}`,
			check: func(t *testing.T, err error) {
				var ve *backend.ValidationError
				require.ErrorAs(t, err, &ve)
				require.Equal(t, "reference_number", ve.Field)
				require.Equal(t, "Reference already used.", ve.Message)
			},
		},
		{
			name:   "validation without field errors",
			status: http.StatusUnprocessableEntity,
			body:   `{"message":"Slug taken"}`,
			check: func(t *testing.T, err error) {
				var ve *backend.ValidationError
				require.ErrorAs(t, err, &ve)
				require.Equal(t, "Slug taken", ve.Message)
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"message":"Unauthenticated."}`,
			check: func(t *testing.T, err error) {
				require.ErrorIs(t, err, backend.ErrUnauthorized)
			},
		},
		{
			name:   "server message",
			status: http.StatusInternalServerError,
			body:   `{"message":"Database unavailable"}`,
			check: func(t *testing.T, err error) {
				var se *backend.ServerError
				require.ErrorAs(t, err, &se)
				require.Equal(t, 500, se.Status)
				require.Equal(t, "Database unavailable", se.Message)
			},
		},
		{
			name:   "not found without body",
			status: http.StatusNotFound,
			body:   `<html>`,
			check: func(t *testing.T, err error) {
				require.True(t, backend.IsNotFound(err))
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})
			_, err := backend.NewClient(ts.URL).GetTemplate(context.Background(), "x")
			require.Error(t, err)
			tc.check(t, err)
		})
	}
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	ts.Close()

	_, err := backend.NewClient(base).ListTemplates(context.Background())
	var te *backend.TransportError
	require.ErrorAs(t, err, &te)
	require.False(t, te.Timeout)
	require.Equal(t, "list templates", te.Op)
}

func TestCollections(t *testing.T) {
	t.Parallel()

	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/templates1/saved":
			_, _ = io.WriteString(w, `[{"slug":"a"},{"template":{"slug":"b"}}]`)
		case "/templates1/boughted":
			_, _ = io.WriteString(w, `{"data":[{"template_slug":"c","status":"pending"},{"templateSlug":"d","status":"approved"}]}`)
		case "/templates1/used":
			_, _ = io.WriteString(w, `{"data":[]}`)
		default:
			http.NotFound(w, r)
		}
	})
	client := backend.NewClient(ts.URL).WithToken("tok")
	ctx := context.Background()

	saved, err := client.SavedSlugs(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, saved)

	bought, err := client.Purchases(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Purchase{{Slug: "c", Status: domain.StatusPending}, {Slug: "d", Status: domain.StatusBought}}, bought)

	used, err := client.UsedSlugs(ctx)
	require.NoError(t, err)
	require.Empty(t, used)
}

func TestMutations(t *testing.T) {
	t.Parallel()

	var calls []string
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	client := backend.NewClient(ts.URL).WithToken("tok")
	ctx := context.Background()

	require.NoError(t, client.Save(ctx, "a"))
	require.NoError(t, client.Unsave(ctx, "a"))
	require.NoError(t, client.MarkUsed(ctx, "b"))
	require.NoError(t, client.MarkUnused(ctx, "b"))
	require.ErrorIs(t, client.Save(ctx, ""), backend.ErrMissingTemplateKey)

	require.Equal(t, []string{
		"POST /templates/saved/a",
		"DELETE /templates/saved/a",
		"POST /templates/used/b",
		"DELETE /templates/used/b",
	}, calls)
}

func TestStoreAndUpdateTemplateSendJSONStringFields(t *testing.T) {
	t.Parallel()

	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		require.Equal(t, `["QR code"]`, r.PostForm.Get("features"))
		require.Equal(t, `{"primary":"#111111"}`, r.PostForm.Get("colors"))
		require.Equal(t, `{"title":"Inter","description":"Inter"}`, r.PostForm.Get("fonts"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/templates/store":
			_, _ = io.WriteString(w, `{"data":{"id":11,"slug":"fresh","name":"Fresh"}}`)
		case r.Method == http.MethodPut && r.URL.Path == "/templates/11":
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})

	tpl := domain.NewTemplate()
	tpl.Name = "Fresh"
	tpl.Slug = "fresh"
	tpl.Features = []string{"QR code"}
	tpl.Colors.Primary = "#111111"

	client := backend.NewClient(ts.URL).WithToken("admin")
	stored, err := client.StoreTemplate(context.Background(), tpl)
	require.NoError(t, err)
	require.Equal(t, "11", stored.ID)

	updated, err := client.UpdateTemplate(context.Background(), stored.ID, tpl)
	require.NoError(t, err)
	require.Equal(t, "fresh", updated.Slug)
}

func TestSubmitPayment(t *testing.T) {
	t.Parallel()

	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/payment/submit", r.URL.Path)
		require.Equal(t, "pay_fixed", r.Header.Get("Idempotency-Key"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "luxury-gold", r.FormValue("template_slug"))
		require.Equal(t, "gcash", r.FormValue("payment_method"))
		require.Equal(t, "REF-1", r.FormValue("reference_number"))
		_, hasNotes := r.MultipartForm.Value["notes"]
		require.False(t, hasNotes)

		file, header, err := r.FormFile("receipt_img")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "receipt.png", header.Filename)
		require.Equal(t, "image/png", header.Header.Get("Content-Type"))
		_, _ = io.WriteString(w, `{"message":"Payment submitted for review."}`)
	})

	client := backend.NewClient(ts.URL, backend.WithIdempotencyKeys(func() string { return "pay_fixed" })).WithToken("tok")
	result, err := client.SubmitPayment(context.Background(), backend.Payment{
		TemplateSlug:    "luxury-gold",
		Method:          "gcash",
		ReferenceNumber: "REF-1",
		ReceiptName:     "../receipt",
		Receipt:         pngReceipt,
	})
	require.NoError(t, err)
	require.Equal(t, "pay_fixed", result.IdempotencyKey)
	require.Equal(t, "Payment submitted for review.", result.Message)
}

func TestSubmitPaymentValidatesBeforeUpload(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	client := backend.NewClient(ts.URL, backend.WithMaxReceiptBytes(32)).WithToken("tok")

	valid := backend.Payment{TemplateSlug: "a", Method: "gcash", Receipt: pngReceipt[:16]}
	cases := []struct {
		name    string
		mutate  func(p *backend.Payment)
		field   string
		message string
	}{
		{"missing slug", func(p *backend.Payment) { p.TemplateSlug = "" }, "template_slug", "template"},
		{"missing method", func(p *backend.Payment) { p.Method = " " }, "payment_method", "payment method"},
		{"missing receipt", func(p *backend.Payment) { p.Receipt = nil }, "receipt_img", "upload"},
		{"too large", func(p *backend.Payment) { p.Receipt = pngReceipt }, "receipt_img", "or smaller"},
		{"declared pdf", func(p *backend.Payment) { p.ReceiptType = "application/pdf" }, "receipt_img", "PNG"},
		{"sniffed gif", func(p *backend.Payment) { p.Receipt = []byte("GIF89a......") }, "receipt_img", "PNG"},
	}
	for _, tc := range cases {
		p := valid
		tc.mutate(&p)
		_, err := client.SubmitPayment(context.Background(), p)
		var ve *backend.ValidationError
		require.ErrorAs(t, err, &ve, tc.name)
		require.Equal(t, tc.field, ve.Field, tc.name)
		require.Contains(t, ve.Message, tc.message, tc.name)
	}
	require.Zero(t, hits.Load())
}

func TestSubmitPaymentTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		ts.Close()
	})

	client := backend.NewClient(ts.URL, backend.WithPaymentTimeout(50*time.Millisecond)).WithToken("tok")
	_, err := client.SubmitPayment(context.Background(), backend.Payment{TemplateSlug: "a", Method: "gcash", Receipt: pngReceipt})
	var te *backend.TransportError
	require.ErrorAs(t, err, &te)
	require.True(t, te.Timeout)
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/user":
			_, _ = io.WriteString(w, `{"user":{"id":3,"username":"ana","email":"ana@example.com"}}`)
		case "/user-profile":
			_, _ = io.WriteString(w, `{"data":{"user_id":3,"bio":"Hi","social_links":"[{\"platform\":\"GitHub\"}]"}}`)
		}
	})

	_, err := backend.NewClient(ts.URL).CurrentUser(context.Background())
	require.True(t, errors.Is(err, backend.ErrUnauthorized))

	client := backend.NewClient(ts.URL).WithToken("tok")
	user, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "3", user.ID)
	require.Equal(t, "ana", user.Username)

	profile, err := client.UserProfile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "3", profile.ID)
	require.Equal(t, "github", profile.SocialLinks[0].Platform)
	require.True(t, strings.HasPrefix(profile.Bio, "Hi"))
}

func TestStoreTemplateLogsUndecodedEcho(t *testing.T) {
	t.Parallel()

	ts := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/templates/store", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "<html>created</html>")
	})

	core, logs := observer.New(zap.DebugLevel)
	ctx := requestctx.WithLogger(context.Background(), zap.New(core))
	submitted := domain.Template{Slug: "gold-rush", Name: "Gold Rush"}

	got, err := backend.NewClient(ts.URL).StoreTemplate(ctx, submitted)
	require.NoError(t, err)
	require.Equal(t, submitted.Slug, got.Slug)
	require.Equal(t, submitted.Name, got.Name)

	entries := logs.FilterMessage("template echo not decoded, keeping submitted template").All()
	require.Len(t, entries, 1)
	require.Equal(t, "store template", entries[0].ContextMap()["op"])
}

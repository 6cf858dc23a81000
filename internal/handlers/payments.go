package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/juantap/web/internal/backend"
	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/notice"
	"github.com/juantap/web/internal/platform/httpx"
	"github.com/juantap/web/internal/platform/requestctx"
)

const (
	paymentFormMemory   = 1 << 20
	paymentSubmittedMsg = "Payment submitted. We'll notify you once it has been reviewed."
)

// PaymentHandlers accepts proofs of payment for premium templates.
type PaymentHandlers struct {
	client *backend.Client
}

// NewPaymentHandlers constructs the /payments endpoints.
func NewPaymentHandlers(client *backend.Client) *PaymentHandlers {
	return &PaymentHandlers{client: client}
}

// Routes registers the payment endpoints.
func (h *PaymentHandlers) Routes(r chi.Router) {
	r.Post("/", h.submit)
}

// submit forwards a multipart proof of payment. The receipt is checked before it is
// uploaded; the template stays pending until the backend approves it.
func (h *PaymentHandlers) submit(w http.ResponseWriter, r *http.Request) {
	s, ok := requireSession(w, r)
	if !ok {
		return
	}
	limit := h.client.MaxReceiptBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+paymentFormMemory)
	if err := r.ParseMultipartForm(paymentFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeNotice(w, r, h.client.ReceiptTooLarge(), nil)
			return
		}
		writeNotice(w, r, &backend.ValidationError{Message: "Please submit the payment form again."}, nil)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	payment := backend.Payment{
		TemplateSlug:    strings.TrimSpace(r.FormValue("template_slug")),
		Method:          strings.TrimSpace(r.FormValue("payment_method")),
		ReferenceNumber: strings.TrimSpace(r.FormValue("reference_number")),
		Notes:           strings.TrimSpace(r.FormValue("notes")),
	}
	if file, header, err := r.FormFile("receipt_img"); err == nil {
		data, readErr := io.ReadAll(io.LimitReader(file, limit+1))
		_ = file.Close()
		if readErr != nil {
			writeNotice(w, r, readErr, nil)
			return
		}
		payment.Receipt = data
		payment.ReceiptName = header.Filename
		payment.ReceiptType = header.Header.Get("Content-Type")
	}

	result, err := h.client.WithToken(s.Token).SubmitPayment(r.Context(), payment)
	if err != nil {
		writeNotice(w, r, err, nil)
		return
	}
	requestctx.Logger(r.Context()).Info("payment submitted",
		zap.String("template", payment.TemplateSlug),
		zap.String("idempotency_key", result.IdempotencyKey),
	)
	message := result.Message
	if message == "" {
		message = paymentSubmittedMsg
	}
	httpx.WriteJSON(w, http.StatusAccepted, map[string]any{
		"state":  domain.AcquisitionState{Slug: payment.TemplateSlug, Status: domain.StatusPending},
		"notice": notice.Success(message),
	})
}

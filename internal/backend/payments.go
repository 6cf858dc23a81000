package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"
)

var allowedReceiptTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// Payment is a proof of payment for a premium template.
type Payment struct {
	TemplateSlug    string
	Method          string
	ReferenceNumber string
	Notes           string
	ReceiptName     string
	// ReceiptType is the content type declared by the uploader, if any.
	ReceiptType    string
	Receipt        []byte
	IdempotencyKey string
}

// PaymentResult is the backend acknowledgement of a submission.
type PaymentResult struct {
	IdempotencyKey string
	Message        string
}

// ValidatePayment runs the checks performed before anything is uploaded. The receipt
// must be a JPEG, PNG or WEBP image no larger than the configured limit; both the
// declared and the sniffed content type are checked.
func (c *Client) ValidatePayment(p Payment) (string, error) {
	if strings.TrimSpace(p.TemplateSlug) == "" {
		return "", &ValidationError{Field: "template_slug", Message: "Please choose a template to purchase."}
	}
	if strings.TrimSpace(p.Method) == "" {
		return "", &ValidationError{Field: "payment_method", Message: "Please choose a payment method."}
	}
	if len(p.Receipt) == 0 {
		return "", &ValidationError{Field: "receipt_img", Message: "Please upload your payment receipt."}
	}
	if int64(len(p.Receipt)) > c.maxReceiptBytes {
		return "", c.ReceiptTooLarge()
	}
	if declared := mediaType(p.ReceiptType); declared != "" {
		if _, ok := allowedReceiptTypes[declared]; !ok {
			return "", &ValidationError{Field: "receipt_img", Message: "Receipt must be a JPG, PNG or WEBP image."}
		}
	}
	sniffed := mediaType(http.DetectContentType(p.Receipt))
	if _, ok := allowedReceiptTypes[sniffed]; !ok {
		return "", &ValidationError{Field: "receipt_img", Message: "Receipt must be a JPG, PNG or WEBP image."}
	}
	return sniffed, nil
}

// ReceiptTooLarge is the validation error for receipts over the size limit.
func (c *Client) ReceiptTooLarge() error {
	return &ValidationError{
		Field:   "receipt_img",
		Message: fmt.Sprintf("Receipt image must be %s or smaller.", formatSize(c.maxReceiptBytes)),
	}
}

// SubmitPayment validates p and uploads it as multipart form data, bounded by the
// payment timeout.
func (c *Client) SubmitPayment(ctx context.Context, p Payment) (PaymentResult, error) {
	contentType, err := c.ValidatePayment(p)
	if err != nil {
		return PaymentResult{}, err
	}
	key := strings.TrimSpace(p.IdempotencyKey)
	if key == "" {
		key = c.newKey()
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"template_slug", strings.TrimSpace(p.TemplateSlug)},
		{"payment_method", strings.TrimSpace(p.Method)},
		{"reference_number", strings.TrimSpace(p.ReferenceNumber)},
		{"notes", strings.TrimSpace(p.Notes)},
	}
	for _, field := range fields {
		if field[1] == "" {
			continue
		}
		if err := mw.WriteField(field[0], field[1]); err != nil {
			return PaymentResult{}, fmt.Errorf("backend: encode payment: %w", err)
		}
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="receipt_img"; filename=%q`, receiptFilename(p.ReceiptName, contentType)))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return PaymentResult{}, fmt.Errorf("backend: encode payment: %w", err)
	}
	if _, err := part.Write(p.Receipt); err != nil {
		return PaymentResult{}, fmt.Errorf("backend: encode payment: %w", err)
	}
	if err := mw.Close(); err != nil {
		return PaymentResult{}, fmt.Errorf("backend: encode payment: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.paymentTimeout)
	defer cancel()
	body, err := c.do(ctx, request{
		op:          "submit payment",
		method:      http.MethodPost,
		path:        []string{"payment", "submit"},
		body:        &buf,
		contentType: mw.FormDataContentType(),
		header:      http.Header{idempotencyHeader: []string{key}},
	})
	if err != nil {
		return PaymentResult{}, err
	}
	return PaymentResult{IdempotencyKey: key, Message: bodyMessage(body)}, nil
}

func newIdempotencyKey() string {
	return "pay_" + ulid.Make().String()
}

func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}

func mediaType(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if i := strings.IndexByte(value, ';'); i >= 0 {
		value = strings.TrimSpace(value[:i])
	}
	return value
}

func receiptFilename(name, contentType string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		name = "receipt"
	}
	if filepath.Ext(name) == "" {
		name += allowedReceiptTypes[contentType]
	}
	return name
}

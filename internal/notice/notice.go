// Package notice turns outcomes of user actions into the short transient messages shown
// next to the control that triggered them.
package notice

import (
	"context"
	"errors"
	"net/http"

	"github.com/juantap/web/internal/acquisition"
	"github.com/juantap/web/internal/backend"
	"github.com/juantap/web/internal/editor"
	"github.com/juantap/web/internal/platform/httpx"
	"github.com/juantap/web/internal/session"
)

// Kind is the visual treatment of a notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// User-facing fallbacks.
const (
	MessageUnreachable = "Couldn't reach the server. Please check your connection and try again."
	MessageTimeout     = "The request timed out. Please try again."
	MessageAuth        = "Your session has expired. Please log in again."
	MessageGeneric     = "Something went wrong. Please try again."
	MessageNotFound    = "We couldn't find that template."
	MessagePremiumSave = "Premium templates must be purchased before they can be used."
	MessageNotAcquired = "Save or buy this template before using it."
)

// Notice is one transient message.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Status  int    `json:"-"`
}

// Success builds a confirmation notice.
func Success(message string) Notice {
	return Notice{Kind: KindSuccess, Code: "ok", Message: message, Status: http.StatusOK}
}

// FromError maps err onto the notice shown to the user. A nil error yields a zero
// Notice.
func FromError(err error) Notice {
	if err == nil {
		return Notice{}
	}

	var (
		validation *backend.ValidationError
		transport  *backend.TransportError
		server     *backend.ServerError
		fields     editor.FieldErrors
	)
	switch {
	case errors.As(err, &validation):
		msg := validation.Message
		if msg == "" {
			msg = MessageGeneric
		}
		return failure("validation_failed", msg, http.StatusUnprocessableEntity).withField(validation.Field)
	case errors.As(err, &fields) && len(fields) > 0:
		return failure("validation_failed", fields.First(), http.StatusUnprocessableEntity)
	case errors.Is(err, backend.ErrUnauthorized), errors.Is(err, session.ErrTokenExpired), errors.Is(err, session.ErrMissingToken):
		return failure("unauthenticated", MessageAuth, http.StatusUnauthorized)
	case errors.As(err, &transport) && transport.Timeout:
		return failure("timeout", MessageTimeout, http.StatusGatewayTimeout)
	case errors.As(err, &transport):
		return failure("unreachable", MessageUnreachable, http.StatusBadGateway)
	case errors.As(err, &server):
		if server.NotFound() {
			return failure("not_found", firstNonEmpty(server.Message, MessageNotFound), http.StatusNotFound)
		}
		return failure("backend_error", firstNonEmpty(server.Message, MessageGeneric), http.StatusBadGateway)
	case errors.Is(err, acquisition.ErrPremiumTemplate):
		return failure("premium_template", MessagePremiumSave, http.StatusConflict)
	case errors.Is(err, acquisition.ErrNotAcquired):
		return failure("not_acquired", MessageNotAcquired, http.StatusConflict)
	case errors.Is(err, context.DeadlineExceeded):
		return failure("timeout", MessageTimeout, http.StatusGatewayTimeout)
	}
	return failure("internal", MessageGeneric, http.StatusInternalServerError)
}

// HTTPError converts the notice into the JSON error envelope.
func (n Notice) HTTPError() httpx.Error {
	e := httpx.NewError(n.Code, n.Message, n.Status)
	if n.Field != "" {
		e = e.WithDetails(map[string]any{"field": n.Field})
	}
	return e
}

func failure(code, message string, status int) Notice {
	return Notice{Kind: KindError, Code: code, Message: message, Status: status}
}

func (n Notice) withField(field string) Notice {
	n.Field = field
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blackstar01-dark/mueblix/internal/auth"
	"github.com/blackstar01-dark/mueblix/internal/catalog"
	"github.com/blackstar01-dark/mueblix/internal/order"
	"github.com/blackstar01-dark/mueblix/internal/remote"
	"github.com/blackstar01-dark/mueblix/internal/session"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		requestLogger(r).WithError(err).Error("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}

// handleError renders err with a status picked from the error taxonomy. The
// server's own message wins over fallback when the remote API sent one.
func handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var statusErr *remote.StatusError

	switch {
	case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrMissingCreds):
		respondError(w, r, http.StatusBadRequest, "invalid_argument", unwrapAll(err).Error())
	case errors.Is(err, catalog.ErrInvalidID):
		respondError(w, r, http.StatusBadRequest, "invalid_product_id", catalog.ErrInvalidID.Error())
	case errors.Is(err, order.ErrNotSignedIn), errors.Is(err, order.ErrTokenMissing):
		respondError(w, r, http.StatusUnauthorized, "unauthenticated", order.ErrNotSignedIn.Error())
	case errors.Is(err, order.ErrEmptyCart):
		respondError(w, r, http.StatusUnprocessableEntity, "empty_cart", order.ErrEmptyCart.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, "timeout", "the server took too long to answer")
	case errors.Is(err, remote.ErrMalformedResponse), errors.Is(err, session.ErrMalformedToken):
		respondError(w, r, http.StatusBadGateway, "malformed_response", remote.ErrMalformedResponse.Error())
	case errors.As(err, &statusErr):
		status, code := mapRemoteStatus(statusErr.Code)
		message := statusErr.Message
		if message == "" {
			message = fallback
		}
		respondError(w, r, status, code, message)
	case errors.Is(err, remote.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, "service_unavailable", remote.ErrUnavailable.Error())
	case errors.Is(err, remote.ErrNetwork):
		respondError(w, r, http.StatusBadGateway, "network_error", remote.ErrNetwork.Error())
	default:
		respondError(w, r, http.StatusInternalServerError, "internal_error", fallback)
	}
}

func mapRemoteStatus(code int) (int, string) {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return http.StatusBadRequest, "invalid_argument"
	case http.StatusUnauthorized:
		return http.StatusUnauthorized, "unauthenticated"
	case http.StatusForbidden:
		return http.StatusForbidden, "permission_denied"
	case http.StatusNotFound:
		return http.StatusNotFound, "not_found"
	case http.StatusConflict:
		return http.StatusConflict, "already_exists"
	case http.StatusTooManyRequests:
		return http.StatusTooManyRequests, "rate_limit_exceeded"
	}
	if code >= http.StatusInternalServerError {
		return http.StatusBadGateway, "upstream_error"
	}
	return http.StatusBadRequest, "rejected"
}

// unwrapAll returns the innermost error of a plain wrap chain.
func unwrapAll(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"bulkscan-adjudicator/internal/auth"
)

type Authenticator interface {
	Authenticate(header string) (string, error)
	AssertAllowed(serviceName string) error
}

// requireService authenticates the caller's S2S token and checks the
// allow-list before the wrapped handler runs.
func (h *Handler) requireService(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := h.logger.With("request_id", middleware.GetReqID(r.Context()), "path", r.URL.Path)

		serviceName, err := h.auth.Authenticate(r.Header.Get(auth.HeaderName))
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, auth.ErrUnauthenticated) {
				reason = "missing_token"
			}
			h.metrics.IncrementAuthFailure(reason)
			logger.Warn("service authentication failed", "reason", reason, "error", err)
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		if err := h.auth.AssertAllowed(serviceName); err != nil {
			h.metrics.IncrementAuthFailure("forbidden")
			logger.Warn("service not allowed", "service", serviceName)
			writeError(w, http.StatusForbidden, auth.ErrForbidden.Error())
			return
		}

		logger.Info("request received", "service", serviceName)
		next.ServeHTTP(w, r.WithContext(auth.WithServiceName(r.Context(), serviceName)))
	})
}

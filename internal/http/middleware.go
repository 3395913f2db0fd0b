package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/blackstar01-dark/mueblix/internal/domain"
	"github.com/blackstar01-dark/mueblix/internal/logger"
)

type loggerKey struct{}

// LoggerMiddleware makes log the logger of every response written downstream.
func LoggerMiddleware(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), loggerKey{}, log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestLogger returns the logger installed by LoggerMiddleware, enriched with
// the request and trace ids. Handlers mounted without it log to the logrus
// standard logger.
func requestLogger(r *http.Request) *logrus.Entry {
	log, ok := r.Context().Value(loggerKey{}).(logrus.FieldLogger)
	if !ok {
		log = logrus.StandardLogger()
	}
	return logger.FromContext(r.Context(), log)
}

// RequestIDMiddleware echoes the chi request id back to the caller. It must run
// after middleware.RequestID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger writes chi access lines through logrus.
func RequestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  log,
		NoColor: true,
	})
}

type IdentitySource interface {
	Identity() *domain.Identity
}

// RequireSession rejects requests made while nobody is signed in.
func RequireSession(src IdentitySource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if src.Identity() == nil {
				respondError(w, r, http.StatusUnauthorized, "unauthenticated", "you must sign in first")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

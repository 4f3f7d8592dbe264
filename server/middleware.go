package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"schallwerk/apperr"
	"schallwerk/core/auth"
	"schallwerk/logger"
	"schallwerk/model"
)

type contextKey string

const sessionKey contextKey = "session"

// corsMiddleware answers preflight requests and sets the CORS headers for
// the browser frontends.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs method, path, status and duration per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Info("[HTTP] request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", sw.status),
			logger.Duration("duration", time.Since(start)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// requireRole verifies the role's session cookie and stores the session on
// the request context. A cookie from another role never passes here; the
// signing secrets differ per role.
func requireRole(jwt *auth.Manager, role model.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := jwt.SessionFromRequest(r, role)
			if err != nil {
				writeError(w, err)
				return
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFrom returns the verified session the middleware stored.
func sessionFrom(r *http.Request) (*model.Session, error) {
	sess, ok := r.Context().Value(sessionKey).(*model.Session)
	if !ok || sess == nil {
		return nil, apperr.E(apperr.KindUnauthorized, "Unauthorized")
	}
	return sess, nil
}

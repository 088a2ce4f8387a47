package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/turbolytics/arquivo/internal/client"
	"github.com/turbolytics/arquivo/internal/session"
)

// LogMiddleware logs one line per request.
func LogMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("from", r.RemoteAddr),
					zap.String("protocol", r.Proto),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// SessionMiddleware forwards the SPA user to the backend. Upload permission
// is left to the backend for forwarded requests.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Header.Get(client.UserHeader)
		if user == "" {
			next.ServeHTTP(w, r)
			return
		}
		sess := &session.Session{User: user, CanUpload: true}
		next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sess)))
	})
}

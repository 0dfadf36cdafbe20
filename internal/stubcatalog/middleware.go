package stubcatalog

import (
	"net/http"
	"time"

	"github.com/ginzapet/storefront/pkg/logger"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func requestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestLogger(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			next.ServeHTTP(w, r)
			if logg != nil {
				ctx := logg.WithFields(r.Context(), map[string]any{
					"method":      r.Method,
					"path":        r.URL.Path,
					"duration_ms": time.Since(started).Milliseconds(),
				})
				logg.Info(ctx, "handled request")
			}
		})
	}
}

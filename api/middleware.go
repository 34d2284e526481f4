package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/windbackhq/windback-bff/internal/logger"
	"github.com/windbackhq/windback-bff/internal/uuid"
)

const requestIDHeader = "X-Request-Id"

// maxRequestIDLen bounds client-supplied request ids before they reach logs.
const maxRequestIDLen = 128

// RequestID tags each request with an id, honouring a sane inbound
// X-Request-Id. The id is stored where chi's middleware.GetReqID finds it and
// is echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > maxRequestIDLen || strings.ContainsFunc(id, isControl) {
			id = uuid.New()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

func requestID(ctx context.Context) string {
	return middleware.GetReqID(ctx)
}

// AccessLog logs one line per request.
func AccessLog(log logger.Sugared) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Infow("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", requestID(r.Context()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}

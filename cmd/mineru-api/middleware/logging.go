package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tom832/MinerU/internal/observability"
)

// RequestLogger logs one line per request once it completes and makes chi's
// request id available to observability.Logger.WithContext.
func RequestLogger(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := r.Context()
			if id := chimiddleware.GetReqID(ctx); id != "" {
				ctx = observability.ContextWithRequestID(ctx, id)
				r = r.WithContext(ctx)
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			evt := logger.WithContext(ctx).Info()
			if status >= http.StatusInternalServerError {
				evt = logger.WithContext(ctx).Error()
			}
			evt.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("request completed")
		})
	}
}

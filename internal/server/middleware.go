package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/tax-impact/pkg/constants"
	"go.uber.org/zap"
)

type correlationKey struct{}

// CorrelationID returns the request's correlation id, or "" outside a request.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// correlationMiddleware tags every request with an id, taken from the
// X-Correlation-ID header when present, echoes it back and logs the request.
func correlationMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(constants.CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(constants.CorrelationIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), correlationKey{}, id)))

		logger.Info("request handled",
			zap.String("op", "server.request"),
			zap.String("correlation_id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Package logger holds the process-wide zap logger and the HTTP middleware
// that writes one access-log entry per request.
//
// Every request gets a correlation id. It is echoed in RequestIDHeader and
// stored in the request context, so handlers can log through FromContext and
// have their entries carry the same id as the access log.
package logger

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

// Log is the global logger. It discards everything until Init is called.
var Log = zap.NewNop().Sugar()

type requestIDKey struct{}

// Init replaces Log with a development logger writing at level.
func Init(level string) error {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomicLevel
	built, err := cfg.Build()
	if err != nil {
		return err
	}
	Log = built.Sugar()

	return nil
}

// Sync flushes buffered entries. Stderr reports EINVAL on sync, that is ignored.
func Sync() error {
	if err := Log.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return err
	}

	return nil
}

// WithRequestID stores id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id stored by the middleware, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}

// FromContext returns Log annotated with the request id of ctx, if any.
func FromContext(ctx context.Context) *zap.SugaredLogger {
	if id := RequestID(ctx); id != "" {
		return Log.With("request_id", id)
	}

	return Log
}

// statusRecorder remembers what the handler answered.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	if r.status == 0 {
		r.status = statusCode
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	size, err := r.ResponseWriter.Write(b)
	r.size += size

	return size, err
}

// WithLoggingHTTPMiddleware assigns the request id (keeping the client's one
// when present) and logs method, URI, status, duration and size once the
// handler returns.
func WithLoggingHTTPMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		start := time.Now()

		requestID := request.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		response.Header().Set(RequestIDHeader, requestID)

		recorder := &statusRecorder{ResponseWriter: response}
		h.ServeHTTP(recorder, request.WithContext(WithRequestID(request.Context(), requestID)))

		Log.Infow(
			"request served",
			"request_id", requestID,
			"method", request.Method,
			"uri", request.RequestURI,
			"status", recorder.status,
			"duration", time.Since(start),
			"size", recorder.size,
		)
	})
}

package webhelpers

import (
	"context"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestID identifies one merge, job run or script run in log output.
type RequestID string

func (r RequestID) String() string {
	return string(r)
}

// NewRequestID returns a random version 4 UUID.
func NewRequestID() RequestID {
	return RequestID(uuid.NewString())
}

// WithRequestID returns ctx carrying id. An empty id is replaced by a new one.
func WithRequestID(ctx context.Context, id RequestID) context.Context {
	if id == "" {
		id = NewRequestID()
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID in ctx, or "".
func RequestIDFromContext(ctx context.Context) RequestID {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(RequestID)
	return id
}

// EnsureRequestID returns ctx unchanged if it already carries a request ID
// and a derived context with a new one otherwise.
func EnsureRequestID(ctx context.Context) context.Context {
	if RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return WithRequestID(ctx, "")
}

// requestLogger appends request_id to every entry.
type requestLogger struct {
	logger Logger
	id     RequestID
}

// LoggerWithRequestID returns a Logger that tags entries with the request ID
// found in ctx. It returns logger itself when ctx has none.
func LoggerWithRequestID(ctx context.Context, logger Logger) Logger {
	if logger == nil {
		logger = NopLogger()
	}
	id := RequestIDFromContext(ctx)
	if id == "" {
		return logger
	}
	return &requestLogger{logger: logger, id: id}
}

func (l *requestLogger) with(args []any) []any {
	return append(args, "request_id", string(l.id))
}

func (l *requestLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, l.with(args)...) }
func (l *requestLogger) Info(msg string, args ...any)  { l.logger.Info(msg, l.with(args)...) }
func (l *requestLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, l.with(args)...) }
func (l *requestLogger) Error(msg string, args ...any) { l.logger.Error(msg, l.with(args)...) }

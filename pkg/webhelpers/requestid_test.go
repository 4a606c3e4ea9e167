package webhelpers

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type captureLogger struct {
	entries [][]any
}

func (c *captureLogger) log(msg string, args []any) {
	c.entries = append(c.entries, append([]any{msg}, args...))
}
func (c *captureLogger) Debug(msg string, args ...any) { c.log(msg, args) }
func (c *captureLogger) Info(msg string, args ...any)  { c.log(msg, args) }
func (c *captureLogger) Warn(msg string, args ...any)  { c.log(msg, args) }
func (c *captureLogger) Error(msg string, args ...any) { c.log(msg, args) }

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestIDFromContext(ctx); got != "abc" {
		t.Errorf("RequestIDFromContext = %q", got)
	}
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("empty context gave %q", got)
	}
}

func TestNewRequestIDIsUUID(t *testing.T) {
	id := NewRequestID()
	if _, err := uuid.Parse(id.String()); err != nil {
		t.Errorf("NewRequestID() = %q: %v", id, err)
	}
	if NewRequestID() == id {
		t.Error("request IDs repeat")
	}
}

func TestEnsureRequestID(t *testing.T) {
	ctx := EnsureRequestID(context.Background())
	id := RequestIDFromContext(ctx)
	if id == "" {
		t.Fatal("no ID assigned")
	}
	if got := RequestIDFromContext(EnsureRequestID(ctx)); got != id {
		t.Errorf("existing ID replaced: %q != %q", got, id)
	}
	if RequestIDFromContext(WithRequestID(context.Background(), "")) == "" {
		t.Error("empty ID not replaced")
	}
}

func TestLoggerWithRequestID(t *testing.T) {
	base := &captureLogger{}
	if LoggerWithRequestID(context.Background(), base) != Logger(base) {
		t.Error("logger wrapped without a request ID")
	}

	l := LoggerWithRequestID(WithRequestID(context.Background(), "r1"), base)
	l.Info("merged", "layers", 2)
	l.Error("failed")

	if len(base.entries) != 2 {
		t.Fatalf("entries = %v", base.entries)
	}
	first := base.entries[0]
	if len(first) != 5 || first[3] != "request_id" || first[4] != "r1" {
		t.Errorf("entry = %v", first)
	}

	LoggerWithRequestID(context.Background(), nil).Info("discarded")
}

package webhelpers

import (
	"net/http"
	"time"

	"github.com/opd-ai/go-webhelpers/internal/render"
)

// DefaultTimeout bounds a whole merge when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	// HTTPClient downloads SVG sources. Nil means a fresh client.
	HTTPClient *http.Client

	// Logger receives pipeline progress. Nil disables logging.
	Logger Logger

	// Format is the output MIME type for Merge. Empty means image/png.
	Format string

	// Quality is the JPEG quality in [0, 1] for Merge.
	Quality float64

	// Timeout bounds each Merge call. Zero means DefaultTimeout; a negative
	// value disables the bound.
	Timeout time.Duration

	// StrictJobs rejects jobs with an unknown format or an unparseable
	// replacement color instead of logging a warning.
	StrictJobs bool

	// Breaker guards remote SVG hosts. Nil disables the circuit breaker.
	Breaker *BreakerConfig

	// Metrics collects operational counters. Nil means DefaultMetrics().
	Metrics *Metrics

	// Raster limits the size of rasterized layers. The zero value means
	// render.DefaultConfig().
	Raster render.Config

	// ScriptCPULimit and ScriptMemoryLimit bound RunScript. Zero means
	// the Lua runtime defaults.
	ScriptCPULimit    uint64
	ScriptMemoryLimit uint64
}

// DefaultOptions returns Options producing PNG output with a circuit
// breaker and no logging.
func DefaultOptions() Options {
	breaker := DefaultBreakerConfig()
	return Options{
		Format:  render.MIMEPNG,
		Quality: 1,
		Breaker: &breaker,
	}
}

// Logger interface for custom logging.
// It follows the slog-style signature for compatibility with Go's structured logging.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs.
	Debug(msg string, args ...any)
	// Info logs an info-level message with optional key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning-level message with optional key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error-level message with optional key-value pairs.
	Error(msg string, args ...any)
}

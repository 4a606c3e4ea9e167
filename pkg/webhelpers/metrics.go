package webhelpers

import (
	"expvar"
	"sync/atomic"
	"time"
)

// Metrics counts merges, scripts and errors. Counters are exposed through
// expvar once RegisterExpvar is called, which makes them available at
// /debug/vars on any server using http.DefaultServeMux.
//
// Thread-safe for concurrent use.
type Metrics struct {
	merges      atomic.Int64
	layers      atomic.Int64
	bytesOut    atomic.Int64
	jobRuns     atomic.Int64
	scriptRuns  atomic.Int64
	errorsTotal atomic.Int64
	errorsBy    [numCategories]atomic.Int64

	mergeLatencyNs    atomic.Int64
	mergeLatencyCount atomic.Int64

	registered atomic.Bool
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Merges          int64
	Layers          int64
	BytesOut        int64
	JobRuns         int64
	ScriptRuns      int64
	ErrorsTotal     int64
	ErrorsBy        map[string]int64
	MergeLatencyAvg time.Duration
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterExpvar publishes the counters under the given prefix, for example
// "webhelpers_merges_total". Subsequent calls are no-ops. expvar names are
// global, so use a distinct prefix per Metrics instance.
func (m *Metrics) RegisterExpvar(prefix string) {
	if m.registered.Swap(true) {
		return
	}
	if prefix == "" {
		prefix = "webhelpers"
	}

	publish := func(name string, fn func() any) {
		expvar.Publish(prefix+"_"+name, expvar.Func(fn))
	}
	publish("merges_total", func() any { return m.merges.Load() })
	publish("layers_total", func() any { return m.layers.Load() })
	publish("bytes_out_total", func() any { return m.bytesOut.Load() })
	publish("job_runs_total", func() any { return m.jobRuns.Load() })
	publish("script_runs_total", func() any { return m.scriptRuns.Load() })
	publish("errors_total", func() any { return m.errorsTotal.Load() })
	publish("errors_by_category", func() any { return m.Snapshot().ErrorsBy })
	publish("merge_latency_avg_ms", func() any {
		count := m.mergeLatencyCount.Load()
		if count == 0 {
			return float64(0)
		}
		return float64(m.mergeLatencyNs.Load()) / float64(count) / 1e6
	})
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	by := make(map[string]int64)
	for i := range m.errorsBy {
		if n := m.errorsBy[i].Load(); n > 0 {
			by[ErrorCategory(i).String()] = n
		}
	}
	return MetricsSnapshot{
		Merges:          m.merges.Load(),
		Layers:          m.layers.Load(),
		BytesOut:        m.bytesOut.Load(),
		JobRuns:         m.jobRuns.Load(),
		ScriptRuns:      m.scriptRuns.Load(),
		ErrorsTotal:     m.errorsTotal.Load(),
		ErrorsBy:        by,
		MergeLatencyAvg: safeDivide(m.mergeLatencyNs.Load(), m.mergeLatencyCount.Load()),
	}
}

// RecordMerge records a successful merge of layers producing n output bytes.
func (m *Metrics) RecordMerge(layers, n int, d time.Duration) {
	m.merges.Add(1)
	m.layers.Add(int64(layers))
	m.bytesOut.Add(int64(n))
	m.mergeLatencyNs.Add(d.Nanoseconds())
	m.mergeLatencyCount.Add(1)
}

// IncrementJobRuns counts a job file run.
func (m *Metrics) IncrementJobRuns() {
	m.jobRuns.Add(1)
}

// IncrementScriptRuns counts a Lua script run.
func (m *Metrics) IncrementScriptRuns() {
	m.scriptRuns.Add(1)
}

// RecordError counts err under its category. Nil is ignored.
func (m *Metrics) RecordError(err error) {
	if err == nil {
		return
	}
	m.errorsTotal.Add(1)
	m.errorsBy[Categorize(err)].Add(1)
}

// Reset clears all metrics. Useful for testing.
func (m *Metrics) Reset() {
	m.merges.Store(0)
	m.layers.Store(0)
	m.bytesOut.Store(0)
	m.jobRuns.Store(0)
	m.scriptRuns.Store(0)
	m.errorsTotal.Store(0)
	for i := range m.errorsBy {
		m.errorsBy[i].Store(0)
	}
	m.mergeLatencyNs.Store(0)
	m.mergeLatencyCount.Store(0)
}

func safeDivide(total, count int64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(total / count)
}

var defaultMetrics = NewMetrics()

// DefaultMetrics returns the process-wide Metrics used when Options.Metrics
// is nil.
func DefaultMetrics() *Metrics {
	return defaultMetrics
}

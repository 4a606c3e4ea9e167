package webhelpers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/opd-ai/go-webhelpers/internal/config"
	"github.com/opd-ai/go-webhelpers/internal/lua"
	"github.com/opd-ai/go-webhelpers/internal/render"
)

// Client runs the SVG merge pipeline, job files and Lua scripts with a
// shared HTTP client, logger and metrics. A Client is safe for concurrent
// use.
type Client struct {
	opts    Options
	http    *http.Client
	breaker *BreakerTransport
	raster  render.Rasterizer
	logger  Logger
	metrics *Metrics
}

// New creates a Client. Zero-valued options fall back to the defaults
// documented on Options.
func New(opts Options) (*Client, error) {
	raster := opts.Raster
	if raster == (render.Config{}) {
		raster = render.DefaultConfig()
	}
	if err := raster.Validate(); err != nil {
		return nil, fmt.Errorf("invalid raster config: %w", err)
	}

	c := &Client{
		opts:    opts,
		raster:  render.NewRasterizer(raster),
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	if c.logger == nil {
		c.logger = NopLogger()
	}
	if c.metrics == nil {
		c.metrics = DefaultMetrics()
	}
	if c.opts.Format == "" {
		c.opts.Format = render.MIMEPNG
	}

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	hc := *base
	if opts.Breaker != nil {
		c.breaker = NewBreakerTransport(hc.Transport, *opts.Breaker)
		hc.Transport = c.breaker
	}
	c.http = &hc

	return c, nil
}

// Metrics returns the collector the client records into.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// Breaker returns the circuit breaker transport, or nil when disabled.
func (c *Client) Breaker() *BreakerTransport {
	return c.breaker
}

func (c *Client) merger(logger Logger) *render.Merger {
	return render.NewMerger(
		render.WithHTTPClient(c.http),
		render.WithLogger(logger),
		render.WithRasterizer(c.raster),
	)
}

// Merge composites instructions using the client's format and quality.
func (c *Client) Merge(ctx context.Context, instructions []MergeInstruction) (string, error) {
	return c.MergeAs(ctx, instructions, c.opts.Format, c.opts.Quality)
}

// MergeAs composites instructions into a data URL of the given MIME type.
// Unsupported types fall back to PNG, and quality only applies to JPEG.
func (c *Client) MergeAs(ctx context.Context, instructions []MergeInstruction, mime string, quality float64) (string, error) {
	ctx = EnsureRequestID(ctx)
	logger := LoggerWithRequestID(ctx, c.logger)

	timeout := c.opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	url, err := c.merger(logger).Merge(ctx, instructions, mime, quality)
	if err != nil {
		c.metrics.RecordError(err)
		logger.Error("merge failed", "layers", len(instructions), "category", Categorize(err).String(), "error", err)
		return "", err
	}
	c.metrics.RecordMerge(len(instructions), len(url), time.Since(start))
	return url, nil
}

// JobResult is the outcome of one job run.
type JobResult struct {
	DataURL string
	// Output is the file the image was written to, or "" when the job has
	// no output path.
	Output string
	Layers int
}

// RunJob expands environment references in a copy of job, validates it
// and merges its instructions. When job.Output is set the decoded image is
// written there; relative output paths are resolved against dir.
func (c *Client) RunJob(ctx context.Context, job *config.Job, dir string) (JobResult, error) {
	ctx = EnsureRequestID(ctx)
	if job == nil {
		err := fmt.Errorf("%w: job is nil", ErrInvalidJob)
		c.metrics.RecordError(err)
		return JobResult{}, err
	}

	expanded := config.Expanded(*job)
	result := c.validator().Validate(&expanded)
	c.logWarnings(ctx, "", result)
	if err := result.Error(); err != nil {
		c.metrics.RecordError(err)
		return JobResult{}, err
	}
	return c.runJob(ctx, &expanded, dir)
}

func (c *Client) validator() *config.Validator {
	return config.NewValidator().WithStrictMode(c.opts.StrictJobs)
}

func (c *Client) logWarnings(ctx context.Context, path string, result *config.ValidationResult) {
	if result == nil {
		return
	}
	logger := LoggerWithRequestID(ctx, c.logger)
	for _, w := range result.Warnings {
		args := []any{"field", w.Field, "message", w.Message}
		if path != "" {
			args = append(args, "path", path)
		}
		logger.Warn("job warning", args...)
	}
}

func (c *Client) runJob(ctx context.Context, job *config.Job, dir string) (JobResult, error) {
	c.metrics.IncrementJobRuns()

	url, err := c.MergeAs(ctx, job.Instructions, job.Format, job.Quality)
	if err != nil {
		return JobResult{}, err
	}
	res := JobResult{DataURL: url, Layers: len(job.Instructions)}
	if job.Output == "" || url == "" {
		return res, nil
	}

	blob, err := render.DataURLToBlob(url)
	if err != nil {
		return JobResult{}, err
	}
	out := job.Output
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return JobResult{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(out, blob.Data, 0o644); err != nil {
		return JobResult{}, fmt.Errorf("failed to write output: %w", err)
	}
	res.Output = out

	LoggerWithRequestID(ctx, c.logger).Info("wrote merged image", "path", out, "type", blob.Type, "bytes", len(blob.Data))
	return res, nil
}

// RunJobFile loads and runs the YAML job at path. Validation warnings are
// logged; with Options.StrictJobs they fail the run instead.
func (c *Client) RunJobFile(ctx context.Context, path string) (JobResult, error) {
	ctx = EnsureRequestID(ctx)
	job, result, err := config.LoadWith(path, c.validator())
	c.logWarnings(ctx, path, result)
	if err != nil {
		c.metrics.RecordError(err)
		return JobResult{}, err
	}
	return c.runJob(ctx, job, filepath.Dir(path))
}

// WatchJob runs the job at path once and again after every change to the
// file, passing each outcome to onResult. The first result is delivered
// before the file is watched. It blocks until ctx is done.
func (c *Client) WatchJob(ctx context.Context, path string, debounce time.Duration, onResult func(JobResult, error)) error {
	if onResult == nil {
		onResult = func(JobResult, error) {}
	}
	run := func() error {
		onResult(c.RunJobFile(ctx, path))
		return nil
	}

	fw, err := NewFileWatcher(path, debounce, run, func(err error) {
		c.logger.Warn("job watcher error", "path", path, "error", err)
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	defer fw.Stop()

	onResult(c.RunJobFile(ctx, path))
	fw.Start()

	<-ctx.Done()
	return nil
}

// ScriptResult holds what a Lua script returned and printed.
type ScriptResult struct {
	// Value is the script's first return value when it is a string,
	// integer, float or boolean, and nil otherwise.
	Value  any
	Output string
}

// RunScript executes the Lua file at path with the "helpers" table
// available. Printed output goes to stdout, when non-nil, and is also
// returned.
func (c *Client) RunScript(ctx context.Context, path string, stdout io.Writer) (ScriptResult, error) {
	ctx = EnsureRequestID(ctx)
	logger := LoggerWithRequestID(ctx, c.logger)
	c.metrics.IncrementScriptRuns()

	cfg := lua.DefaultConfig()
	cfg.Stdout = stdout
	if c.opts.ScriptCPULimit > 0 {
		cfg.CPULimit = c.opts.ScriptCPULimit
	}
	if c.opts.ScriptMemoryLimit > 0 {
		cfg.MemoryLimit = c.opts.ScriptMemoryLimit
	}

	runtime, err := lua.New(cfg)
	if err != nil {
		return ScriptResult{}, c.scriptError(err)
	}
	defer runtime.Close()

	if _, err := lua.NewHelpersAPI(runtime, lua.WithContext(ctx), lua.WithMergeFunc(c.MergeAs)); err != nil {
		return ScriptResult{}, c.scriptError(err)
	}

	logger.Debug("running script", "path", path)
	v, err := runtime.ExecuteFile(path)
	if err != nil {
		return ScriptResult{Output: runtime.Output()}, c.scriptError(err)
	}

	res := ScriptResult{Output: runtime.Output()}
	switch x := v.Interface().(type) {
	case string, int64, float64, bool:
		res.Value = x
	}
	return res, nil
}

func (c *Client) scriptError(err error) error {
	err = fmt.Errorf("%w: %w", ErrScript, err)
	c.metrics.RecordError(err)
	return err
}

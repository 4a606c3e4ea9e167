// Package render provides the color math, SVG recoloring and image
// compositing behind go-webhelpers.
// This file implements the SVG color-swap and merge pipeline.
package render

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// Logger is the subset of *slog.Logger the pipeline writes to.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}

// MergerOption configures a Merger.
type MergerOption func(*Merger)

// WithHTTPClient sets the client used to download SVG sources.
func WithHTTPClient(c *http.Client) MergerOption {
	return func(m *Merger) {
		if c != nil {
			m.client = c
		}
	}
}

// WithLogger sets the logger for pipeline progress. Nil keeps it silent.
func WithLogger(l Logger) MergerOption {
	return func(m *Merger) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithRasterizer replaces the oksvg rasterizer.
func WithRasterizer(r Rasterizer) MergerOption {
	return func(m *Merger) {
		if r != nil {
			m.rasterize = r
		}
	}
}

// Merger loads, recolors and composites SVG layers.
// A Merger holds no per-call state and may be shared.
type Merger struct {
	client    *http.Client
	logger    Logger
	rasterize Rasterizer
}

// NewMerger returns a Merger using http.DefaultClient, no logging and
// RasterizeSVG unless overridden.
func NewMerger(opts ...MergerOption) *Merger {
	m := &Merger{
		client:    http.DefaultClient,
		logger:    nopLogger{},
		rasterize: RasterizeSVG,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadSVG returns the markup for src. Inline markup is returned as is;
// anything else is fetched with GET and must be a well-formed XML
// document served with a 2xx status.
func (m *Merger) LoadSVG(ctx context.Context, src string) (string, error) {
	if IsInlineSVG(src) {
		return src, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", &FetchError{URL: src, Err: err}
	}
	req.Header.Set("Accept", "image/svg+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: src, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: src, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: src, StatusCode: resp.StatusCode, Err: err}
	}
	if err := checkSVGDocument(data); err != nil {
		return "", fmt.Errorf("%s: %w", src, err)
	}

	m.logger.Debug("fetched svg", "url", src, "bytes", len(data))
	return string(data), nil
}

// ColoredSVG loads src, applies the color replacements and rasterizes the
// result.
func (m *Merger) ColoredSVG(ctx context.Context, src string, replacements []ColorReplacement) (image.Image, error) {
	markup, err := m.LoadSVG(ctx, src)
	if err != nil {
		return nil, err
	}
	img, err := m.rasterize(RecolorSVG(markup, replacements))
	if err != nil {
		return nil, fmt.Errorf("failed to rasterize svg: %w", err)
	}
	return img, nil
}

// Layers runs ColoredSVG for each instruction strictly in order; an
// instruction starts only after the previous one has decoded. The first
// failure aborts the run and no images are returned.
func (m *Merger) Layers(ctx context.Context, instructions []MergeInstruction) ([]image.Image, error) {
	images := make([]image.Image, 0, len(instructions))
	for i, ins := range instructions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := m.ColoredSVG(ctx, ins.Source, ins.Colors)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		b := img.Bounds()
		m.logger.Debug("decoded layer", "index", i, "width", b.Dx(), "height", b.Dy(),
			"replacements", len(ins.Colors))
		images = append(images, img)
	}
	return images, nil
}

// Merge builds every layer, composites them and returns the result as a
// data URL in the requested format and quality. An empty instruction list
// returns "" and a nil error without touching the network. The
// instructions slice is not modified.
func (m *Merger) Merge(ctx context.Context, instructions []MergeInstruction, mime string, quality float64) (string, error) {
	if len(instructions) == 0 {
		return "", nil
	}

	images, err := m.Layers(ctx, instructions)
	if err != nil {
		return "", err
	}

	url, err := EncodeDataURL(Composite(images), mime, quality)
	if err != nil {
		return "", err
	}
	m.logger.Info("merged svg layers", "layers", len(images), "bytes", len(url))
	return url, nil
}

// Composite draws images in order at the origin of a canvas sized to the
// first one, so later images cover earlier ones. Parts outside the canvas
// are clipped. It returns nil for no images.
func Composite(images []image.Image) *image.RGBA {
	if len(images) == 0 {
		return nil
	}
	first := images[0].Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, first.Dx(), first.Dy()))
	for _, img := range images {
		draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Over)
	}
	return canvas
}

// Package render provides the color math, SVG recoloring and image
// compositing behind go-webhelpers.
// This file implements the percentage-to-color gradient ramp.
package render

import (
	"image/color"
	"math"
)

// GradientStop is one point on a piecewise-linear color ramp.
type GradientStop struct {
	Fraction float64    // Position, conventionally in [0, 1]
	Color    color.RGBA // Color at this position
}

// DefaultStops returns the red-yellow-green ramp used when no stops are
// given. Each call returns a fresh slice.
func DefaultStops() []GradientStop {
	return []GradientStop{
		{Fraction: 0.0, Color: color.RGBA{R: 0xff, G: 0x00, B: 0x00, A: 0xff}},
		{Fraction: 0.5, Color: color.RGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}},
		{Fraction: 1.0, Color: color.RGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}},
	}
}

// Gradient is an ordered list of stops. Stops must have strictly
// increasing fractions; a zero-width bracket divides by zero.
type Gradient struct {
	stops []GradientStop
}

// NewGradient creates a gradient from stops, copied as given.
// No stops selects DefaultStops.
func NewGradient(stops ...GradientStop) *Gradient {
	if len(stops) == 0 {
		return &Gradient{stops: DefaultStops()}
	}
	g := &Gradient{stops: make([]GradientStop, len(stops))}
	copy(g.stops, stops)
	return g
}

// At returns the interpolated color for pct.
//
// The bracket is the first interior stop i whose fraction exceeds pct,
// paired with stop i-1; when no interior stop does, the last two stops are
// used. Each channel is floor(lo*(1-t) + hi*t) with
// t = (pct - lo.Fraction) / (hi.Fraction - lo.Fraction), clamped to a byte.
// Alpha is always opaque.
func (g *Gradient) At(pct float64) color.RGBA {
	switch len(g.stops) {
	case 0:
		return color.RGBA{A: 0xff}
	case 1:
		c := g.stops[0].Color
		c.A = 0xff
		return c
	}

	idx := len(g.stops) - 1
	for i := 1; i < len(g.stops)-1; i++ {
		if pct < g.stops[i].Fraction {
			idx = i
			break
		}
	}

	lower := g.stops[idx-1]
	upper := g.stops[idx]
	t := (pct - lower.Fraction) / (upper.Fraction - lower.Fraction)

	return color.RGBA{
		R: lerpChannel(lower.Color.R, upper.Color.R, t),
		G: lerpChannel(lower.Color.G, upper.Color.G, t),
		B: lerpChannel(lower.Color.B, upper.Color.B, t),
		A: 0xff,
	}
}

// Hex returns At(pct) encoded as "#rrggbb".
func (g *Gradient) Hex(pct float64) string {
	return ToHex(g.At(pct))
}

// Stops returns a copy of the gradient stops.
func (g *Gradient) Stops() []GradientStop {
	result := make([]GradientStop, len(g.stops))
	copy(result, g.stops)
	return result
}

// AddStop appends a stop, keeping the list ordered by fraction.
func (g *Gradient) AddStop(fraction float64, clr color.RGBA) {
	g.stops = append(g.stops, GradientStop{Fraction: fraction, Color: clr})
	for i := len(g.stops) - 1; i > 0 && g.stops[i].Fraction < g.stops[i-1].Fraction; i-- {
		g.stops[i], g.stops[i-1] = g.stops[i-1], g.stops[i]
	}
}

// ColorForPercentage maps pct onto stops, or DefaultStops when stops is
// empty, and returns the "#rrggbb" color. See Gradient.At.
//
//	ColorForPercentage(0.0, nil) // "#ff0000"
//	ColorForPercentage(0.5, nil) // "#ffff00"
//	ColorForPercentage(1.0, nil) // "#00ff00"
func ColorForPercentage(pct float64, stops []GradientStop) string {
	return NewGradient(stops...).Hex(pct)
}

func lerpChannel(lo, hi uint8, t float64) uint8 {
	v := math.Floor(float64(lo)*(1-t) + float64(hi)*t)
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}

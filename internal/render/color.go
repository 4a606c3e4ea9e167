// Package render provides the color math, SVG recoloring and image
// compositing behind go-webhelpers.
// This file implements hex conversion and random color generation.
package render

import (
	"image/color"
	"regexp"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/opd-ai/go-webhelpers/internal/random"
)

var (
	// hexRGBPattern matches #RRGGBB with the leading # optional.
	hexRGBPattern = regexp.MustCompile(`(?i)^#?([a-f\d]{2})([a-f\d]{2})([a-f\d]{2})$`)
	// hexARGBPattern matches #AARRGGBB, alpha first.
	hexARGBPattern = regexp.MustCompile(`(?i)^#?([a-f\d]{2})([a-f\d]{2})([a-f\d]{2})([a-f\d]{2})$`)
)

// RGBToHex encodes a color as a lowercase "#rrggbb" string.
func RGBToHex(r, g, b uint8) string {
	c := colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}
	return c.Hex()
}

// ToHex encodes the RGB channels of c, ignoring alpha.
func ToHex(c color.RGBA) string {
	return RGBToHex(c.R, c.G, c.B)
}

// HexToRGB decodes "#RRGGBB" (alpha 255) or "#AARRGGBB", with or without
// the leading #. Six to nine character strings that do not match either
// layout report false. Strings of any other length decode to opaque black.
func HexToRGB(hex string) (color.RGBA, bool) {
	switch len(hex) {
	case 6, 7:
		m := hexRGBPattern.FindStringSubmatch(hex)
		if m == nil {
			return color.RGBA{}, false
		}
		return color.RGBA{R: hexByte(m[1]), G: hexByte(m[2]), B: hexByte(m[3]), A: 255}, true
	case 8, 9:
		m := hexARGBPattern.FindStringSubmatch(hex)
		if m == nil {
			return color.RGBA{}, false
		}
		return color.RGBA{A: hexByte(m[1]), R: hexByte(m[2]), G: hexByte(m[3]), B: hexByte(m[4])}, true
	default:
		return color.RGBA{A: 255}, true
	}
}

// hexByte parses two hex digits already validated by a pattern.
func hexByte(s string) uint8 {
	v, _ := strconv.ParseUint(s, 16, 8)
	return uint8(v)
}

// RandomHexColor returns a color whose channels are each drawn uniformly
// from [minLightness, maxLightness]. Zero for either bound selects the
// default of 255 and 0 respectively. Bounds are clamped to [0, 255].
func RandomHexColor(g *random.Generator, maxLightness, minLightness int) string {
	if maxLightness == 0 {
		maxLightness = 255
	}
	maxLightness = clampChannel(maxLightness)
	minLightness = clampChannel(minLightness)

	r := g.IntFromInterval(minLightness, maxLightness)
	gr := g.IntFromInterval(minLightness, maxLightness)
	b := g.IntFromInterval(minLightness, maxLightness)

	return RGBToHex(uint8(r), uint8(gr), uint8(b))
}

func clampChannel(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

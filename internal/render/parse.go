// Package render provides the color math, SVG recoloring and image
// compositing behind go-webhelpers.
// This file parses CSS-style color strings.
package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor parses a CSS-style color string into an RGBA color.
// Supported formats:
//   - SVG named colors: "red", "cornflowerblue", ...
//   - Hex: "#RGB", "#RRGGBB", and "#AARRGGBB" as read by HexToRGB
//   - Functions: "rgb(255, 0, 0)", "rgba(255, 0, 0, 0.5)"
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}

	lower := strings.ToLower(s)
	if clr, ok := colornames.Map[lower]; ok {
		return clr, nil
	}

	switch {
	case strings.HasPrefix(s, "#") && len(s) == 9:
		if c, ok := HexToRGB(s); ok {
			return c, nil
		}
	case strings.HasPrefix(s, "#"):
		c, err := colorful.Hex(s)
		if err == nil {
			r, g, b := c.RGB255()
			return color.RGBA{R: r, G: g, B: b, A: 255}, nil
		}
	case strings.HasPrefix(lower, "rgba(") && strings.HasSuffix(s, ")"):
		return parseColorFunc(s[5:len(s)-1], true)
	case strings.HasPrefix(lower, "rgb(") && strings.HasSuffix(s, ")"):
		return parseColorFunc(s[4:len(s)-1], false)
	}

	return color.RGBA{}, fmt.Errorf("unrecognized color format: %q", s)
}

// parseColorFunc parses the comma separated arguments of rgb() or rgba().
func parseColorFunc(args string, withAlpha bool) (color.RGBA, error) {
	parts := strings.Split(args, ",")
	want := 3
	if withAlpha {
		want = 4
	}
	if len(parts) != want {
		return color.RGBA{}, fmt.Errorf("expected %d color values, got %d", want, len(parts))
	}

	var ch [3]uint8
	for i := range ch {
		v, err := strconv.ParseUint(strings.TrimSpace(parts[i]), 10, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid channel %d: %w", i, err)
		}
		ch[i] = uint8(v)
	}

	c := color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}
	if withAlpha {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid alpha: %w", err)
		}
		c.A = uint8(clampChannel(int(a*255 + 0.5)))
	}
	return c, nil
}

// Package render provides the color math, SVG recoloring and image
// compositing behind go-webhelpers.
// This file implements SVG recoloring, validation and rasterization.
package render

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/net/html/charset"

	"github.com/opd-ai/go-webhelpers/internal/textutil"
)

// xmlDeclPrefix marks a source string as inline markup rather than a URL.
const xmlDeclPrefix = "<?xml"

// IsInlineSVG reports whether src starts with an XML declaration, ignoring
// case. Anything else is treated as a URL.
func IsInlineSVG(src string) bool {
	return len(src) >= len(xmlDeclPrefix) && strings.EqualFold(src[:len(xmlDeclPrefix)], xmlDeclPrefix)
}

// RecolorSVG applies each replacement in order, rewriting the exact text
// "fill:<from>;" and "stroke:<from>;" to use <to>. Colors written any other
// way (attributes, different spacing or case, no trailing semicolon) are
// left alone.
func RecolorSVG(markup string, replacements []ColorReplacement) string {
	for _, r := range replacements {
		markup = textutil.ReplaceAll(markup, "fill:"+r.From+";", "fill:"+r.To+";")
		markup = textutil.ReplaceAll(markup, "stroke:"+r.From+";", "stroke:"+r.To+";")
	}
	return markup
}

// checkSVGDocument verifies that data is a well-formed XML document with a
// root element. Declared encodings other than UTF-8 are honored.
func checkSVGDocument(data []byte) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	root := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if _, ok := tok.(xml.StartElement); ok {
			root = true
		}
	}
	if !root {
		return fmt.Errorf("%w: document has no root element", ErrDecode)
	}
	return nil
}

// Rasterizer renders SVG markup into an image.
type Rasterizer func(markup string) (image.Image, error)

// NewRasterizer returns an oksvg-backed Rasterizer limited by cfg.
func NewRasterizer(cfg Config) Rasterizer {
	return func(markup string) (image.Image, error) {
		return rasterize(markup, cfg)
	}
}

// RasterizeSVG renders markup with DefaultConfig.
func RasterizeSVG(markup string) (image.Image, error) {
	return rasterize(markup, DefaultConfig())
}

func rasterize(markup string, cfg Config) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	w, h, err := svgSize(icon, rootSize(markup), cfg)
	if err != nil {
		return nil, err
	}

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	return img, nil
}

// svgSize picks the pixel size of an icon: the root element's absolute
// width and height when both are set, else its view box, else the
// configured fallback. Without a view box, user units map 1:1 onto the
// chosen size.
func svgSize(icon *oksvg.SvgIcon, declared [2]float64, cfg Config) (int, int, error) {
	w := int(math.Ceil(declared[0]))
	h := int(math.Ceil(declared[1]))
	if w <= 0 || h <= 0 {
		w = int(math.Ceil(icon.ViewBox.W))
		h = int(math.Ceil(icon.ViewBox.H))
	}
	if w <= 0 || h <= 0 {
		w, h = cfg.FallbackWidth, cfg.FallbackHeight
	}
	if w > cfg.MaxDimension || h > cfg.MaxDimension {
		return 0, 0, fmt.Errorf("%w: size %dx%d exceeds limit %d", ErrDecode, w, h, cfg.MaxDimension)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		icon.ViewBox.W = float64(w)
		icon.ViewBox.H = float64(h)
	}
	return w, h, nil
}

// cssPixels converts absolute CSS units to pixels.
var cssPixels = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
}

// rootSize returns the width and height attributes of the root element in
// pixels. Missing, relative (%, em) or malformed lengths are zero.
func rootSize(markup string) [2]float64 {
	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := dec.Token()
		if err != nil {
			return [2]float64{}
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		var size [2]float64
		for _, a := range start.Attr {
			switch a.Name.Local {
			case "width":
				size[0] = parseLength(a.Value)
			case "height":
				size[1] = parseLength(a.Value)
			}
		}
		return size
	}
}

func parseLength(v string) float64 {
	v = strings.TrimSpace(v)
	i := len(v)
	for i > 0 && (v[i-1] >= 'a' && v[i-1] <= 'z' || v[i-1] == '%') {
		i--
	}
	scale, ok := cssPixels[v[i:]]
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v[:i]), 64)
	if err != nil || n <= 0 || math.IsInf(n, 0) {
		return 0
	}
	return n * scale
}

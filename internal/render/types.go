// Package render provides the color math, SVG recoloring and image
// compositing behind go-webhelpers.
// This file defines the merge instruction types and rasterizer configuration.
package render

import (
	"fmt"

	"github.com/opd-ai/go-webhelpers/internal/collection"
)

// ColorReplacement swaps one literal color token for another in SVG style
// declarations.
type ColorReplacement struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

// MergeInstruction is one layer of a merged image: an SVG source (URL or
// inline markup starting with an XML declaration) and the color swaps to
// apply to it.
type MergeInstruction struct {
	Source string             `yaml:"src" json:"src"`
	Colors []ColorReplacement `yaml:"colors" json:"colors"`
}

// ReplacementShape rebuilds a ColorReplacement from a loosely typed map
// with "from" and "to" keys.
var ReplacementShape = collection.Shape[ColorReplacement]{
	Fields: []collection.Field[ColorReplacement]{
		collection.StringField("from", func(r *ColorReplacement, v string) { r.From = v }),
		collection.StringField("to", func(r *ColorReplacement, v string) { r.To = v }),
	},
}

// InstructionShape rebuilds a MergeInstruction from a loosely typed map
// with a "src" string and a "colors" list of replacement maps.
var InstructionShape = collection.Shape[MergeInstruction]{
	Fields: []collection.Field[MergeInstruction]{
		collection.StringField("src", func(m *MergeInstruction, v string) { m.Source = v }),
		collection.AnyField("colors", func(m *MergeInstruction, v any) bool {
			list, ok := v.([]any)
			if !ok {
				return false
			}
			m.Colors = make([]ColorReplacement, 0, len(list))
			for _, item := range list {
				fields, ok := item.(map[string]any)
				if !ok {
					continue
				}
				m.Colors = append(m.Colors, ReplacementShape.Rebuild(fields))
			}
			return true
		}),
	},
}

// Config holds rasterization limits.
type Config struct {
	// FallbackWidth and FallbackHeight size SVGs that declare neither a
	// viewBox nor width/height, matching the browser default of 300x150.
	FallbackWidth  int
	FallbackHeight int
	// MaxDimension bounds either side of a rasterized SVG in pixels.
	MaxDimension int
}

// DefaultConfig returns a Config with browser-like defaults.
func DefaultConfig() Config {
	return Config{
		FallbackWidth:  300,
		FallbackHeight: 150,
		MaxDimension:   16384,
	}
}

// Validate checks that all sizes are positive and consistent.
func (c Config) Validate() error {
	if c.FallbackWidth <= 0 || c.FallbackHeight <= 0 {
		return fmt.Errorf("fallback size must be positive, got %dx%d", c.FallbackWidth, c.FallbackHeight)
	}
	if c.MaxDimension <= 0 {
		return fmt.Errorf("max dimension must be positive, got %d", c.MaxDimension)
	}
	if c.FallbackWidth > c.MaxDimension || c.FallbackHeight > c.MaxDimension {
		return fmt.Errorf("fallback size %dx%d exceeds max dimension %d",
			c.FallbackWidth, c.FallbackHeight, c.MaxDimension)
	}
	return nil
}

// Package config loads and validates merge job files for go-webhelpers.
// A job file is YAML:
//
//	format: image/png
//	quality: 1
//	output: ${OUT_DIR:-.}/badge.png
//	instructions:
//	  - src: https://example.com/base.svg
//	    colors:
//	      - from: "#ff0000"
//	        to: "#00aa00"
//	  - src: https://example.com/overlay.svg
package config

import (
	"github.com/opd-ai/go-webhelpers/internal/render"
)

// Job describes one merge run: the layers to composite and how to encode
// the result.
type Job struct {
	// Format is the output MIME type. Unknown types encode as PNG.
	Format string `yaml:"format"`
	// Quality is the JPEG quality in [0, 1].
	Quality float64 `yaml:"quality"`
	// Output is where the encoded image is written. Empty means the CLI
	// prints the data URL instead.
	Output string `yaml:"output"`
	// Instructions are the layers, bottom first.
	Instructions []render.MergeInstruction `yaml:"instructions"`
}

// Clone returns a deep copy of the job. Expanded works on a clone so the
// caller's instructions keep their references.
func (j Job) Clone() Job {
	out := j
	out.Instructions = make([]render.MergeInstruction, len(j.Instructions))
	for i, ins := range j.Instructions {
		out.Instructions[i] = render.MergeInstruction{
			Source: ins.Source,
			Colors: append([]render.ColorReplacement(nil), ins.Colors...),
		}
	}
	return out
}

// Validate checks the job with the default validator and returns an error
// wrapping ErrInvalidJob when any check fails. Warnings are ignored.
func (j *Job) Validate() error {
	return NewValidator().Validate(j).Error()
}

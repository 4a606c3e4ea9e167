// Package config loads and validates merge job files for go-webhelpers.
// This file implements job validation.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/opd-ai/go-webhelpers/internal/render"
)

// ErrInvalidJob is wrapped by every job validation failure.
var ErrInvalidJob = errors.New("invalid merge job")

// ValidationError is one problem found in a job.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a job validation.
type ValidationResult struct {
	// Errors make the job unusable.
	Errors []ValidationError
	// Warnings are suspicious but accepted values.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error wrapping ErrInvalidJob, or nil.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidJob, strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// knownFormats are the MIME types the encoder produces directly.
var knownFormats = map[string]bool{
	render.MIMEPNG:  true,
	render.MIMEJPEG: true,
	render.MIMEBMP:  true,
	render.MIMETIFF: true,
}

// Validator checks merge jobs.
type Validator struct {
	// strictMode turns warnings about unknown formats and unparseable
	// replacement colors into errors.
	strictMode bool
}

// NewValidator creates a Validator with default settings.
func NewValidator() *Validator {
	return &Validator{}
}

// WithStrictMode enables strict validation.
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strictMode = strict
	return v
}

// Validate checks every field of job.
func (v *Validator) Validate(job *Job) *ValidationResult {
	result := &ValidationResult{}
	if job == nil {
		result.AddError("job", "is nil")
		return result
	}

	v.validateEncoding(job, result)
	for i := range job.Instructions {
		v.validateInstruction(i, &job.Instructions[i], result)
	}
	return result
}

// problem records msg as an error in strict mode and a warning otherwise.
func (v *Validator) problem(result *ValidationResult, field, msg string) {
	if v.strictMode {
		result.AddError(field, msg)
		return
	}
	result.AddWarning(field, msg)
}

func (v *Validator) validateEncoding(job *Job, result *ValidationResult) {
	if !(job.Quality >= 0 && job.Quality <= 1) {
		result.AddError("quality", fmt.Sprintf("must be within [0, 1], got %v", job.Quality))
	}

	format := strings.ToLower(strings.TrimSpace(job.Format))
	if format == "" {
		result.AddError("format", "must not be empty")
	} else if !knownFormats[format] {
		v.problem(result, "format", fmt.Sprintf("unsupported format %q, output falls back to %s", job.Format, render.MIMEPNG))
	}

	if len(job.Instructions) == 0 {
		result.AddWarning("instructions", "no layers, output will be empty")
	}
}

func (v *Validator) validateInstruction(i int, ins *render.MergeInstruction, result *ValidationResult) {
	field := fmt.Sprintf("instructions[%d]", i)

	switch {
	case strings.TrimSpace(ins.Source) == "":
		result.AddError(field+".src", "must not be empty")
	case render.IsInlineSVG(ins.Source):
	default:
		u, err := url.Parse(ins.Source)
		if err != nil {
			result.AddError(field+".src", fmt.Sprintf("invalid URL: %v", err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			result.AddError(field+".src", fmt.Sprintf("unsupported scheme %q", u.Scheme))
		}
	}

	for j, c := range ins.Colors {
		cf := fmt.Sprintf("%s.colors[%d]", field, j)
		if c.From == "" {
			result.AddError(cf+".from", "must not be empty")
		}
		if _, err := render.ParseColor(c.To); err != nil {
			v.problem(result, cf+".to", err.Error())
		}
	}
}

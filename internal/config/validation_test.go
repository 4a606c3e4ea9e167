package config

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/opd-ai/go-webhelpers/internal/render"
)

func validJob() Job {
	job := DefaultJob()
	job.Instructions = []render.MergeInstruction{
		{
			Source: "https://example.com/a.svg",
			Colors: []render.ColorReplacement{{From: "#ff0000", To: "#00ff00"}},
		},
		{Source: `<?xml version="1.0"?><svg/>`},
	}
	return job
}

func TestValidationErrorError(t *testing.T) {
	ve := ValidationError{Field: "test.field", Message: "test message"}
	if got := ve.Error(); got != "test.field: test message" {
		t.Errorf("Error() = %q", got)
	}
}

func TestValidationResultError(t *testing.T) {
	vr := &ValidationResult{}
	if vr.Error() != nil {
		t.Fatal("empty result should have nil error")
	}

	vr.AddWarning("w", "only a warning")
	if !vr.IsValid() || vr.Error() != nil {
		t.Fatal("warnings should not invalidate the result")
	}

	vr.AddError("a", "first")
	vr.AddError("b", "second")
	err := vr.Error()
	if !errors.Is(err, ErrInvalidJob) {
		t.Fatalf("error %v should wrap ErrInvalidJob", err)
	}
	if !strings.Contains(err.Error(), "a: first; b: second") {
		t.Errorf("error %q should list both problems", err)
	}
}

func TestValidatorValidate(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Job)
		strict       bool
		wantErrors   []string
		wantWarnings []string
	}{
		{
			name: "valid",
		},
		{
			name:       "quality too high",
			mutate:     func(j *Job) { j.Quality = 1.5 },
			wantErrors: []string{"quality"},
		},
		{
			name:       "negative quality",
			mutate:     func(j *Job) { j.Quality = -0.1 },
			wantErrors: []string{"quality"},
		},
		{
			name:       "empty format",
			mutate:     func(j *Job) { j.Format = "" },
			wantErrors: []string{"format"},
		},
		{
			name:         "unknown format warns",
			mutate:       func(j *Job) { j.Format = "image/webp" },
			wantWarnings: []string{"format"},
		},
		{
			name:       "unknown format strict",
			mutate:     func(j *Job) { j.Format = "image/webp" },
			strict:     true,
			wantErrors: []string{"format"},
		},
		{
			name:         "no instructions",
			mutate:       func(j *Job) { j.Instructions = nil },
			wantWarnings: []string{"instructions"},
		},
		{
			name:       "empty source",
			mutate:     func(j *Job) { j.Instructions[0].Source = " " },
			wantErrors: []string{"instructions[0].src"},
		},
		{
			name:       "file scheme",
			mutate:     func(j *Job) { j.Instructions[0].Source = "file:///etc/passwd" },
			wantErrors: []string{"instructions[0].src"},
		},
		{
			name:       "empty from",
			mutate:     func(j *Job) { j.Instructions[0].Colors[0].From = "" },
			wantErrors: []string{"instructions[0].colors[0].from"},
		},
		{
			name:         "odd target color warns",
			mutate:       func(j *Job) { j.Instructions[0].Colors[0].To = "url(#grad)" },
			wantWarnings: []string{"instructions[0].colors[0].to"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := validJob()
			if tt.mutate != nil {
				tt.mutate(&job)
			}

			result := NewValidator().WithStrictMode(tt.strict).Validate(&job)
			checkFields(t, "error", result.Errors, tt.wantErrors)
			checkFields(t, "warning", result.Warnings, tt.wantWarnings)
		})
	}
}

func checkFields(t *testing.T, kind string, got []ValidationError, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d %ss %v, want fields %v", len(got), kind, got, want)
	}
	for i := range want {
		if got[i].Field != want[i] {
			t.Errorf("%s %d field = %q, want %q", kind, i, got[i].Field, want[i])
		}
	}
}

func TestValidateNilJob(t *testing.T) {
	if NewValidator().Validate(nil).IsValid() {
		t.Error("nil job should be invalid")
	}
}

func TestJobValidate(t *testing.T) {
	job := validJob()
	if err := job.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	job.Quality = 2
	if err := job.Validate(); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("Validate() = %v, want ErrInvalidJob", err)
	}
}

func TestJobClone(t *testing.T) {
	job := validJob()
	clone := job.Clone()
	clone.Instructions[0].Source = "changed"
	clone.Instructions[0].Colors[0].To = "changed"

	if job.Instructions[0].Source == "changed" || job.Instructions[0].Colors[0].To == "changed" {
		t.Error("Clone shares instruction storage with the original")
	}
}

func TestValidateNaNQuality(t *testing.T) {
	job := validJob()
	job.Quality = math.NaN()
	if NewValidator().Validate(&job).IsValid() {
		t.Error("NaN quality should be rejected")
	}
}

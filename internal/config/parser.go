// Package config loads and validates merge job files for go-webhelpers.
// This file implements YAML job parsing.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads, expands and validates the job file at path.
func Load(path string) (*Job, error) {
	job, _, err := LoadWith(path, NewValidator())
	return job, err
}

// LoadWith is Load validating with v. The validation result is returned
// alongside the job, and also with a validation error, so callers can
// report warnings.
func LoadWith(path string, v *Validator) (*Job, *ValidationResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read job file %s: %w", path, err)
	}

	job, result, err := ParseWith(content, v)
	if err != nil {
		return nil, result, fmt.Errorf("%s: %w", path, err)
	}
	return job, result, nil
}

// LoadFS is Load for a file inside fsys.
func LoadFS(fsys fs.FS, path string) (*Job, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job from FS %s: %w", path, err)
	}

	job, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// ParseReader is Parse for content read from r.
func ParseReader(r io.Reader) (*Job, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read job: %w", err)
	}
	return Parse(content)
}

// Parse decodes a YAML job, expands environment references and validates
// the result. Unknown keys are rejected. An empty document yields the
// default job with no instructions.
func Parse(content []byte) (*Job, error) {
	job, _, err := ParseWith(content, NewValidator())
	return job, err
}

// ParseWith is Parse validating with v. The result is nil only when the
// YAML itself is malformed.
func ParseWith(content []byte, v *Validator) (*Job, *ValidationResult, error) {
	job := DefaultJob()

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}

	ExpandEnvJob(&job)

	result := v.Validate(&job)
	if err := result.Error(); err != nil {
		return nil, result, err
	}
	return &job, result, nil
}

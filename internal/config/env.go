// Package config loads and validates merge job files for go-webhelpers.
// This file implements environment variable expansion in job values.
package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/opd-ai/go-webhelpers/internal/render"
)

// envVarPattern matches ${VAR}, ${VAR:-default} and $VAR references.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in s:
//   - ${VAR_NAME} - replaced with the value of VAR_NAME
//   - ${VAR_NAME:-default} - the value, or "default" if unset or empty
//   - $VAR_NAME - replaced with the value of VAR_NAME
//
// Unset variables without defaults expand to the empty string.
func ExpandEnv(s string) string {
	return ExpandWith(s, os.Getenv)
}

// ExpandWith is ExpandEnv with a custom lookup function.
func ExpandWith(s string, lookup func(string) string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if strings.HasPrefix(match, "${") {
			inner := match[2 : len(match)-1]
			if name, def, ok := strings.Cut(inner, ":-"); ok {
				if val := lookup(name); val != "" {
					return val
				}
				return def
			}
			return lookup(inner)
		}
		return lookup(match[1:])
	})
}

// EnvOption selects which job fields ExpandEnvJob touches.
type EnvOption func(*envOptions)

type envOptions struct {
	expandSources bool
	expandOutput  bool
	lookup        func(string) string
}

// WithExpandSources controls expansion of instruction sources. Inline
// markup is never expanded.
func WithExpandSources(expand bool) EnvOption {
	return func(o *envOptions) { o.expandSources = expand }
}

// WithExpandOutput controls expansion of the output path.
func WithExpandOutput(expand bool) EnvOption {
	return func(o *envOptions) { o.expandOutput = expand }
}

// WithLookup replaces os.Getenv as the variable source.
func WithLookup(lookup func(string) string) EnvOption {
	return func(o *envOptions) {
		if lookup != nil {
			o.lookup = lookup
		}
	}
}

// Expanded returns a copy of job with environment references expanded.
// job itself is left untouched.
func Expanded(job Job, opts ...EnvOption) Job {
	out := job.Clone()
	ExpandEnvJob(&out, opts...)
	return out
}

// ExpandEnvJob expands environment references in the job's sources and
// output path in place.
func ExpandEnvJob(job *Job, opts ...EnvOption) {
	if job == nil {
		return
	}

	o := &envOptions{expandSources: true, expandOutput: true, lookup: os.Getenv}
	for _, opt := range opts {
		opt(o)
	}

	if o.expandOutput {
		job.Output = ExpandWith(job.Output, o.lookup)
	}
	if o.expandSources {
		for i := range job.Instructions {
			src := job.Instructions[i].Source
			if render.IsInlineSVG(src) {
				continue
			}
			job.Instructions[i].Source = ExpandWith(src, o.lookup)
		}
	}
}

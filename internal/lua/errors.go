// Package lua embeds a Golua runtime that exposes the go-webhelpers
// functions to scripts through a global "helpers" table.
// This file defines common error values used throughout the package.
package lua

import "errors"

var (
	// ErrNilRuntime is returned when a nil runtime is passed to a function that requires one.
	ErrNilRuntime = errors.New("runtime cannot be nil")

	// ErrLimitExceeded is returned when a script runs past its CPU or memory limit.
	ErrLimitExceeded = errors.New("Lua resource limit exceeded")
)

// Package render provides the color math, SVG recoloring and image
// compositing behind go-webhelpers.
// This file defines the error values returned by the package.
package render

import (
	"errors"
	"fmt"
)

var (
	// ErrFetch is matched by every failure to retrieve a remote SVG.
	ErrFetch = errors.New("svg fetch failed")

	// ErrDecode is returned when markup is not a well-formed SVG document or
	// cannot be rasterized.
	ErrDecode = errors.New("svg decode failed")

	// ErrEncode is returned when the composited image cannot be encoded.
	ErrEncode = errors.New("image encode failed")

	// ErrInvalidDataURL is returned for strings that are not base64 data URLs.
	ErrInvalidDataURL = errors.New("invalid data URL")
)

// FetchError describes a failed SVG download. It matches ErrFetch and
// wraps the transport error, if any.
type FetchError struct {
	URL        string
	StatusCode int // Zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap exposes both ErrFetch and the underlying cause to errors.Is/As.
func (e *FetchError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrFetch, e.Err}
	}
	return []error{ErrFetch}
}

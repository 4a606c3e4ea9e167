package webhelpers

import (
	"errors"
	"fmt"

	"github.com/opd-ai/go-webhelpers/internal/config"
	"github.com/opd-ai/go-webhelpers/internal/lua"
	"github.com/opd-ai/go-webhelpers/internal/render"
)

// Sentinel errors re-exported from the pipeline so callers can use
// errors.Is without importing internal packages.
var (
	ErrFetch          = render.ErrFetch
	ErrDecode         = render.ErrDecode
	ErrEncode         = render.ErrEncode
	ErrInvalidDataURL = render.ErrInvalidDataURL
	ErrInvalidJob     = config.ErrInvalidJob
	ErrLimitExceeded  = lua.ErrLimitExceeded

	// ErrScript wraps failures to load or run a Lua script.
	ErrScript = errors.New("script failed")
)

// ErrorCategory classifies an error by the stage that produced it.
type ErrorCategory int

const (
	// ErrorCategoryUnknown is used for errors from outside the pipeline,
	// including context cancellation.
	ErrorCategoryUnknown ErrorCategory = iota
	// ErrorCategoryFetch covers downloads, including open circuits.
	ErrorCategoryFetch
	// ErrorCategoryDecode covers malformed SVGs, images and data URLs.
	ErrorCategoryDecode
	// ErrorCategoryEncode covers output encoding.
	ErrorCategoryEncode
	// ErrorCategoryConfig covers job files.
	ErrorCategoryConfig
	// ErrorCategoryScript covers Lua scripts.
	ErrorCategoryScript

	numCategories
)

// String returns the string representation of the error category.
func (c ErrorCategory) String() string {
	switch c {
	case ErrorCategoryFetch:
		return "fetch"
	case ErrorCategoryDecode:
		return "decode"
	case ErrorCategoryEncode:
		return "encode"
	case ErrorCategoryConfig:
		return "config"
	case ErrorCategoryScript:
		return "script"
	default:
		return "unknown"
	}
}

// Categorize reports which stage err came from. Nil is Unknown.
func Categorize(err error) ErrorCategory {
	var ce *CategorizedError
	switch {
	case err == nil:
		return ErrorCategoryUnknown
	case errors.As(err, &ce):
		return ce.Category
	case errors.Is(err, ErrFetch), errors.Is(err, ErrCircuitOpen):
		return ErrorCategoryFetch
	case errors.Is(err, ErrDecode), errors.Is(err, ErrInvalidDataURL):
		return ErrorCategoryDecode
	case errors.Is(err, ErrEncode):
		return ErrorCategoryEncode
	case errors.Is(err, ErrInvalidJob):
		return ErrorCategoryConfig
	case errors.Is(err, ErrScript), errors.Is(err, ErrLimitExceeded):
		return ErrorCategoryScript
	}
	return ErrorCategoryUnknown
}

// CategorizedError attaches a category and free-form context to an error.
type CategorizedError struct {
	Err      error
	Category ErrorCategory
	Context  map[string]string
}

// NewCategorizedError wraps err with the category Categorize assigns it.
func NewCategorizedError(err error) *CategorizedError {
	return &CategorizedError{Err: err, Category: Categorize(err)}
}

func (e *CategorizedError) Error() string {
	return fmt.Sprintf("[%s] %v", e.Category, e.Err)
}

func (e *CategorizedError) Unwrap() error {
	return e.Err
}

// WithContext adds a key-value pair and returns e.
func (e *CategorizedError) WithContext(key, value string) *CategorizedError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

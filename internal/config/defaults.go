package config

import "github.com/opd-ai/go-webhelpers/internal/render"

// Default values for job options.
const (
	// DefaultFormat is used when a job names no output format.
	DefaultFormat = render.MIMEPNG
	// DefaultQuality is the JPEG quality used when a job names none.
	DefaultQuality = 1.0
)

// DefaultJob returns an empty Job with default encoding options. Parsing
// starts from this value, so keys missing from a file keep these defaults.
func DefaultJob() Job {
	return Job{
		Format:  DefaultFormat,
		Quality: DefaultQuality,
	}
}

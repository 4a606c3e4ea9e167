package webhelpers

import (
	"context"
	"image/color"
	"time"

	"github.com/opd-ai/go-webhelpers/internal/collection"
	"github.com/opd-ai/go-webhelpers/internal/config"
	"github.com/opd-ai/go-webhelpers/internal/dom"
	"github.com/opd-ai/go-webhelpers/internal/format"
	"github.com/opd-ai/go-webhelpers/internal/random"
	"github.com/opd-ai/go-webhelpers/internal/render"
	"github.com/opd-ai/go-webhelpers/internal/textutil"
)

type (
	// MergeInstruction is one SVG layer and its color swaps.
	MergeInstruction = render.MergeInstruction
	// ColorReplacement swaps one color token for another.
	ColorReplacement = render.ColorReplacement
	// GradientStop is a color at a fraction in [0, 1].
	GradientStop = render.GradientStop
	// Gradient is an ordered list of stops.
	Gradient = render.Gradient
	// Blob is binary content with its MIME type.
	Blob = render.Blob
	// FetchError describes a failed SVG download.
	FetchError = render.FetchError
	// Element is a detached HTML element.
	Element = dom.Element
	// Job is a merge job loaded from YAML.
	Job = config.Job
)

// NoPlaces disables the place arguments of AbbreviateNumber and
// AnnotateNumber.
const NoPlaces = format.NoPlaces

// Output MIME types.
const (
	MIMEPNG  = render.MIMEPNG
	MIMEJPEG = render.MIMEJPEG
	MIMEBMP  = render.MIMEBMP
	MIMETIFF = render.MIMETIFF
)

// RandomIntFromInterval returns an integer in [min, max].
func RandomIntFromInterval(min, max int) int {
	return random.Default().IntFromInterval(min, max)
}

// GUID returns a random identifier in 8-4-4-4-12 hex form.
func GUID() string {
	return random.Default().GUID()
}

// RandomElement returns a random element of s, or false when s is empty.
func RandomElement[T any](s []T) (T, bool) {
	return random.Element(random.Default(), s)
}

// Shuffle permutes s in place and returns it.
func Shuffle[T any](s []T) []T {
	return random.Shuffle(random.Default(), s)
}

// RemoveFromArray removes the first occurrence of v from s.
func RemoveFromArray[T comparable](s []T, v T) []T {
	return collection.Remove(s, v)
}

// ReplaceAll replaces every literal occurrence of find in s.
func ReplaceAll(s, find, replace string) string {
	return textutil.ReplaceAll(s, find, replace)
}

// FilenameFromPath returns the last element of a slash or backslash path.
func FilenameFromPath(path string) string {
	return textutil.FilenameFromPath(path)
}

// ChunkString splits s into chunks of at most n characters, dropping line
// terminators.
func ChunkString(s string, n int) []string {
	return textutil.ChunkString(s, n)
}

// Hash returns the 32-bit rolling hash of s.
func Hash(s string) int32 {
	return textutil.Hash(s)
}

// ColorForPercentage maps pct in [0, 1] onto stops, or onto the default
// red-yellow-green gradient when stops is nil, as a "#rrggbb" string.
func ColorForPercentage(pct float64, stops []GradientStop) string {
	return render.ColorForPercentage(pct, stops)
}

// RGBToHex formats three channels as "#rrggbb".
func RGBToHex(r, g, b uint8) string {
	return render.RGBToHex(r, g, b)
}

// HexToRGB parses "#rrggbb" or "#aarrggbb".
func HexToRGB(hex string) (color.RGBA, bool) {
	return render.HexToRGB(hex)
}

// NewGradient creates a gradient from stops, or from the default ramp when
// none are given.
func NewGradient(stops ...GradientStop) *Gradient {
	return render.NewGradient(stops...)
}

// ParseColor parses hex, rgb(), rgba() and CSS named colors.
func ParseColor(s string) (color.RGBA, error) {
	return render.ParseColor(s)
}

// RandomHexColor returns a random color with channels in
// [minLightness, maxLightness].
func RandomHexColor(maxLightness, minLightness int) string {
	return render.RandomHexColor(random.Default(), maxLightness, minLightness)
}

// DistBetweenPoints returns the Euclidean distance between two points.
func DistBetweenPoints(x1, y1, x2, y2 float64) float64 {
	return render.DistBetweenPoints(x1, y1, x2, y2)
}

// AbbreviateNumber shortens n with a magnitude suffix.
func AbbreviateNumber(n float64, maxPlaces, forcePlaces int, letter string) string {
	return format.AbbreviateNumber(n, maxPlaces, forcePlaces, letter)
}

// AnnotateNumber divides n by the scale abbr stands for and appends abbr.
// Unlike AbbreviateNumber it never picks a suffix itself.
func AnnotateNumber(n float64, maxPlaces, forcePlaces int, abbr string) string {
	return format.AnnotateNumber(n, maxPlaces, forcePlaces, abbr)
}

// NumberWithCommas groups the integer digits of x with commas.
func NumberWithCommas(x float64) string {
	return format.NumberWithCommas(x)
}

// TimeAgo describes how long before now t was.
func TimeAgo(t time.Time) string {
	return format.TimeAgoSince(t)
}

// CreateClassedElement builds a detached element; see dom.CreateClassedElement.
func CreateClassedElement(tag, classes, content, color string, onClick func()) *Element {
	return dom.CreateClassedElement(tag, classes, content, color, onClick)
}

// DataURLToBlob decodes a base64 data URL.
func DataURLToBlob(dataURL string) (Blob, error) {
	return render.DataURLToBlob(dataURL)
}

// MergeSVGs composites instructions into a data URL using a default Client.
func MergeSVGs(ctx context.Context, instructions []MergeInstruction, mime string, quality float64) (string, error) {
	c, err := New(DefaultOptions())
	if err != nil {
		return "", err
	}
	return c.MergeAs(ctx, instructions, mime, quality)
}

// LoadJob reads and validates a YAML job file.
func LoadJob(path string) (*Job, error) {
	return config.Load(path)
}

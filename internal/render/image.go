// Package render provides the color math, SVG recoloring and image
// compositing behind go-webhelpers.
// This file implements image encoding, decoding and data URL handling.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	// Register image decoders for common formats
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"regexp"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Supported output MIME types.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEBMP  = "image/bmp"
	MIMETIFF = "image/tiff"
)

// DefaultJPEGQuality is used when a JPEG quality outside [0, 1] is requested.
const DefaultJPEGQuality = 0.92

// Encode writes img to w in the format named by mime and returns the MIME
// type actually used. Unknown types fall back to PNG. quality applies to
// JPEG only and is a fraction in [0, 1].
func Encode(w io.Writer, img image.Image, mime string, quality float64) (string, error) {
	var err error
	switch mime = strings.ToLower(strings.TrimSpace(mime)); mime {
	case MIMEJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality(quality)})
	case MIMEBMP:
		err = bmp.Encode(w, img)
	case MIMETIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		mime = MIMEPNG
		err = png.Encode(w, img)
	}
	if err != nil {
		return mime, fmt.Errorf("%w: %s: %w", ErrEncode, mime, err)
	}
	return mime, nil
}

// jpegQuality converts a [0, 1] fraction to the 1-100 scale of image/jpeg.
func jpegQuality(q float64) int {
	if math.IsNaN(q) || q < 0 || q > 1 {
		q = DefaultJPEGQuality
	}
	v := int(math.Round(q * 100))
	if v < 1 {
		v = 1
	}
	return v
}

// EncodeDataURL encodes img as a base64 data URL. See Encode for the
// meaning of mime and quality.
func EncodeDataURL(img image.Image, mime string, quality float64) (string, error) {
	var buf bytes.Buffer
	used, err := Encode(&buf, img, mime, quality)
	if err != nil {
		return "", err
	}
	return "data:" + used + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeImage decodes a PNG, JPEG, GIF, BMP or TIFF image.
func DecodeImage(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// Blob is binary content with its MIME type.
type Blob struct {
	Type string
	Data []byte
}

// dataURLTypePattern captures the MIME type between "data:" and ";".
var dataURLTypePattern = regexp.MustCompile(`:(.*?);`)

// DataURLToBlob decodes a base64 data URL such as
// "data:image/png;base64,iVBOR...".
func DataURLToBlob(dataURL string) (Blob, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok {
		return Blob{}, fmt.Errorf("%w: missing payload separator", ErrInvalidDataURL)
	}
	m := dataURLTypePattern.FindStringSubmatch(header)
	if m == nil {
		return Blob{}, fmt.Errorf("%w: missing media type", ErrInvalidDataURL)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Blob{}, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	return Blob{Type: m[1], Data: data}, nil
}

// DecodeDataURL decodes the image carried by a data URL.
func DecodeDataURL(dataURL string) (image.Image, error) {
	blob, err := DataURLToBlob(dataURL)
	if err != nil {
		return nil, err
	}
	img, _, err := DecodeImage(bytes.NewReader(blob.Data))
	return img, err
}

// Package imageutil handles the raw image bytes that flow through the
// pipeline: MIME sniffing, EXIF camera context, and resizing for the
// validator reference and the variation thumbnails.
package imageutil

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Sizes used by the pipeline.
const (
	ReferenceMaxDimension = 768
	ThumbnailMaxDimension = 400
)

// SupportedMIMETypes lists the source formats the pipeline accepts.
var SupportedMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// DetectMIME sniffs the image format from its leading bytes.
func DetectMIME(data []byte) string {
	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i != -1 {
		mime = mime[:i]
	}
	return mime
}

// Extension returns the file extension for a supported MIME type.
func Extension(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

// FitWithin returns dimensions no larger than maxDimension on either side
// that keep the aspect ratio of width x height.
func FitWithin(width, height, maxDimension int) (int, int) {
	if width <= maxDimension && height <= maxDimension {
		return width, height
	}
	if width > height {
		return maxDimension, max(1, int(float64(height)*float64(maxDimension)/float64(width)))
	}
	return max(1, int(float64(width)*float64(maxDimension)/float64(height))), maxDimension
}

func decode(data []byte) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	log.Debug().Str("format", format).Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).Msg("Image decoded")
	return img, nil
}

func scale(img image.Image, maxDimension int) image.Image {
	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), maxDimension)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// Downscale returns a JPEG no larger than maxDimension on either side.
func Downscale(data []byte, maxDimension int) ([]byte, string, error) {
	img, err := decode(data)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scale(img, maxDimension), &jpeg.Options{Quality: 85}); err != nil {
		return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// Thumbnail returns a WebP thumbnail no larger than maxDimension.
func Thumbnail(data []byte, maxDimension int) ([]byte, string, error) {
	img, err := decode(data)
	if err != nil {
		return nil, "", err
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, scale(img, maxDimension), &webp.Options{Quality: 80}); err != nil {
		return nil, "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), "image/webp", nil
}

package imageutil

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/evanoberholster/imagemeta"
	"github.com/rs/zerolog/log"
)

// CameraContext summarises the camera make, model and capture time found in
// the image's EXIF block. It returns "" when there is no usable metadata;
// missing EXIF is normal for screenshots and re-encoded photos.
func CameraContext(data []byte) string {
	exif, err := imagemeta.Decode(bytes.NewReader(data))
	if err != nil {
		log.Debug().Err(err).Msg("No EXIF metadata in source image")
		return ""
	}

	var lines []string
	camera := strings.TrimSpace(strings.TrimSpace(exif.Make) + " " + strings.TrimSpace(exif.Model))
	if camera != "" {
		lines = append(lines, "Camera: "+camera)
	}
	if t := exif.DateTimeOriginal(); !t.IsZero() {
		lines = append(lines, fmt.Sprintf("Taken: %s (%s light expected)", t.Format("Monday, January 2, 2006 3:04 PM"), partOfDay(t.Hour())))
	}
	return strings.Join(lines, "\n")
}

func partOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 9:
		return "early morning"
	case hour >= 9 && hour < 16:
		return "daytime"
	case hour >= 16 && hour < 20:
		return "evening"
	default:
		return "night or artificial"
	}
}

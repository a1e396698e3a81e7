package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/imageutil"
)

// fileUploader writes finished variations to a local directory in place of
// S3 and returns file:// URLs.
type fileUploader struct {
	dir string
}

func (u fileUploader) UploadVariation(ctx context.Context, image []byte, mime string, slot int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if mime == "" {
		mime = imageutil.DetectMIME(image)
	}
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(u.dir, fmt.Sprintf("variation-%d%s", slot, imageutil.Extension(mime)))
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", fmt.Errorf("write variation %d: %w", slot, err)
	}

	if thumb, _, err := imageutil.Thumbnail(image, imageutil.ThumbnailMaxDimension); err != nil {
		log.Warn().Err(err).Int("slot", slot).Msg("Thumbnail generation failed")
	} else {
		thumbPath := filepath.Join(u.dir, fmt.Sprintf("variation-%d-thumb.webp", slot))
		if err := os.WriteFile(thumbPath, thumb, 0o644); err != nil {
			log.Warn().Err(err).Str("path", thumbPath).Msg("Thumbnail write failed")
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return "file://" + filepath.ToSlash(abs), nil
}

func msDuration(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

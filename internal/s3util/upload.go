package s3util

import (
	"bytes"
	"context"
	"fmt"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/portrait-retouch/internal/imageutil"
)

// DefaultURLExpiry is how long presigned variation URLs stay valid.
const DefaultURLExpiry = time.Hour

// ObjectPutter is the subset of *s3.Client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// GetPresigner is the subset of *s3.PresignClient used for download URLs.
type GetPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// VariationKey returns the object key for the final image of one slot.
func VariationKey(sessionID, jobID string, slot int, mime string) string {
	return fmt.Sprintf("%s/variations/%s/variation-%d%s", sessionID, jobID, slot, imageutil.Extension(mime))
}

// ThumbnailKey returns the object key for the WebP thumbnail of one slot.
func ThumbnailKey(sessionID, jobID string, slot int) string {
	return fmt.Sprintf("%s/thumbnails/%s/variation-%d.webp", sessionID, jobID, slot)
}

// VariationUploader stores finished variations for one generation job and
// returns presigned URLs for them.
type VariationUploader struct {
	Client    ObjectPutter
	Presigner GetPresigner
	Bucket    string
	SessionID string
	JobID     string
	URLExpiry time.Duration
}

// UploadVariation writes the variation and its thumbnail, then presigns the
// variation. A thumbnail failure is logged and does not fail the upload.
func (u *VariationUploader) UploadVariation(ctx context.Context, image []byte, mime string, slot int) (string, error) {
	if mime == "" {
		mime = imageutil.DetectMIME(image)
	}
	key := VariationKey(u.SessionID, u.JobID, slot, mime)
	if err := u.put(ctx, key, image, mime); err != nil {
		return "", fmt.Errorf("upload variation %d: %w", slot, err)
	}

	if thumb, thumbMIME, err := imageutil.Thumbnail(image, imageutil.ThumbnailMaxDimension); err != nil {
		log.Warn().Err(err).Int("slot", slot).Msg("Failed to generate variation thumbnail")
	} else if err := u.put(ctx, ThumbnailKey(u.SessionID, u.JobID, slot), thumb, thumbMIME); err != nil {
		log.Warn().Err(err).Int("slot", slot).Msg("Failed to upload variation thumbnail")
	}

	url, err := GeneratePresignedURL(ctx, u.Presigner, u.Bucket, key, u.expiry())
	if err != nil {
		return "", err
	}
	log.Info().
		Str("key", key).
		Int("slot", slot).
		Int("bytes", len(image)).
		Msg("Variation uploaded to S3")
	return url, nil
}

func (u *VariationUploader) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &u.Bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		Tagging:     ProjectTagging(),
	})
	if err != nil {
		return fmt.Errorf("S3 PutObject %s: %w", key, err)
	}
	return nil
}

func (u *VariationUploader) expiry() time.Duration {
	if u.URLExpiry > 0 {
		return u.URLExpiry
	}
	return DefaultURLExpiry
}

// GeneratePresignedURL creates a pre-signed GET URL for an S3 object.
func GeneratePresignedURL(ctx context.Context, presigner GetPresigner, bucket, key string, expiry time.Duration) (string, error) {
	result, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket, Key: &key,
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign GetObject: %w", err)
	}
	return result.URL, nil
}

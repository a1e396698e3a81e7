// Package s3util moves portrait images between the pipeline and S3: reading
// the uploaded original, writing finished variations with their thumbnails,
// and presigning the URLs handed back to the client.
package s3util

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

// ObjectGetter is the subset of *s3.Client used for downloads.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// MaxSourceBytes caps the size of an original accepted from S3.
const MaxSourceBytes = 25 << 20

// DownloadBytes reads an S3 object into memory. Objects larger than
// MaxSourceBytes are rejected.
func DownloadBytes(ctx context.Context, client ObjectGetter, bucket, key string) ([]byte, error) {
	log.Debug().Str("bucket", bucket).Str("key", key).Msg("Downloading from S3")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket, Key: &key,
	})
	if err != nil {
		return nil, fmt.Errorf("S3 GetObject: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(io.LimitReader(result.Body, MaxSourceBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if len(data) > MaxSourceBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes", key, MaxSourceBytes)
	}
	log.Debug().Str("key", key).Int("bytes", len(data)).Msg("Downloaded from S3")
	return data, nil
}

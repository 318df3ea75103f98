package storage

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/pageza/preflight/backend/config"
)

// Object describes a stored attachment
type Object struct {
	Key    string
	URL    string
	Bucket string
}

// AttachmentStore persists uploaded attachments and hands back their public URL
type AttachmentStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*Object, error)
}

// S3Store writes attachments to a single S3 bucket
type S3Store struct {
	s3Config *config.S3Config
}

// NewS3Store creates an attachment store backed by S3
func NewS3Store(s3Config *config.S3Config) *S3Store {
	return &S3Store{s3Config: s3Config}
}

// Put uploads the object and returns its public URL
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*Object, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.s3Config.BucketName),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &Object{
		Key:    key,
		URL:    s.s3Config.PublicURL(key),
		Bucket: s.s3Config.BucketName,
	}, nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename replaces anything outside [a-zA-Z0-9._-] with an underscore
func SanitizeFilename(name string) string {
	if name == "" {
		name = "attachment"
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_")
}

// ObjectKey builds "<prefix>/<unix ms>-<uuid>-<sanitized name>"
func ObjectKey(prefix, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s-%s", prefix, now.UnixMilli(), uuid.New().String(), SanitizeFilename(filename))
}

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Uploads signs direct-to-bucket uploads so evidence files never pass
// through the API.
type S3Uploads struct {
	presigner  *s3.PresignClient
	bucketName string
	expires    time.Duration
}

func NewS3Uploads(client *s3.Client, bucketName string, expires time.Duration) *S3Uploads {
	return &S3Uploads{
		presigner:  s3.NewPresignClient(client),
		bucketName: bucketName,
		expires:    expires,
	}
}

// PresignUpload returns a PUT URL for key that only accepts contentType.
func (s *S3Uploads) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.expires))
	if err != nil {
		return "", fmt.Errorf("failed to presign put object: %w", err)
	}

	return req.URL, nil
}

// LocalUploads hands out URLs under a fixed base. It stands in for S3 when the
// server runs without cloud credentials.
type LocalUploads struct {
	BaseURL string
}

func (l *LocalUploads) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	return fmt.Sprintf("%s/%s", l.BaseURL, key), nil
}

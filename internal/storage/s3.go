// Package storage provides object storage for user-uploaded media.
package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"recipenest/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
)

// AllowImage is the set of MIME types accepted for image uploads.
var AllowImage = []string{"image/jpeg", "image/png", "image/webp"}

// AwsS3 abstracts the object store so services and tests do not depend
// on a live bucket.
type AwsS3 interface {
	// UploadFile stores the multipart file under folder/fileName and
	// returns the object key. The upload is rejected when the sniffed
	// content type is not in allowedTypes.
	UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowedTypes ...string) (string, error)
	// DeleteFile removes the object with the given key.
	DeleteFile(ctx context.Context, key string) error
	// GetPublicLinkKey returns the public URL for an object key.
	GetPublicLinkKey(key string) string
}

type awsS3 struct {
	client    *s3.Client
	bucket    string
	region    string
	publicURL string
}

// NewAwsS3 builds an S3-backed store from application configuration.
// A custom endpoint (e.g. MinIO) switches the client to path-style addressing.
func NewAwsS3(ctx context.Context, cfg *config.Config) (AwsS3, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &awsS3{
		client:    client,
		bucket:    cfg.S3Bucket,
		region:    cfg.S3Region,
		publicURL: cfg.S3PublicURL,
	}, nil
}

func (s *awsS3) UploadFile(ctx context.Context, fileName string, file *multipart.FileHeader, folder string, allowedTypes ...string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Sniff the real content type instead of trusting the client header.
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect content type: %w", err)
	}
	if len(allowedTypes) > 0 && !typeAllowed(mtype.String(), allowedTypes) {
		return "", fmt.Errorf("file type %s is not allowed", mtype.String())
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	key := folder + "/" + fileName + strings.ToLower(filepath.Ext(file.Filename))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentType:   aws.String(mtype.String()),
		ContentLength: aws.Int64(file.Size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return key, nil
}

func (s *awsS3) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func (s *awsS3) GetPublicLinkKey(key string) string {
	if key == "" {
		return ""
	}
	if s.publicURL != "" {
		return strings.TrimSuffix(s.publicURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}

func typeAllowed(mime string, allowed []string) bool {
	for _, t := range allowed {
		if mime == t {
			return true
		}
	}
	return false
}

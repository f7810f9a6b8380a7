// Package ossuploader implements aggregator.Uploader against an
// S3-compatible object-storage endpoint (Aliyun OSS's S3-compatibility
// mode, MinIO, or real S3), using aws-sdk-go-v2/service/s3.
package ossuploader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config points the uploader at a bucket on an S3-compatible endpoint.
type Config struct {
	Endpoint        string
	Region          string // defaults to "us-east-1" when empty; most OSS-compatible endpoints ignore it
	Bucket          string
	AccessKeyID     string
	AccessKeySecret string
	UsePathStyle    bool // true for MinIO and most self-hosted S3-compatible stores
}

// Uploader PUTs objects to a single bucket on an S3-compatible endpoint.
type Uploader struct {
	client *s3.Client
	bucket string
}

// New builds an Uploader from static credentials and a custom endpoint, so
// the same code path serves Aliyun OSS, MinIO, and real S3.
func New(ctx context.Context, cfg Config) (*Uploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("ossuploader: Endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("ossuploader: Bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.AccessKeySecret, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("ossuploader: loading base AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Uploader{client: client, bucket: cfg.Bucket}, nil
}

// Upload PUTs content at objectKey, setting Content-Type and, when
// non-empty, Content-Encoding.
func (u *Uploader) Upload(ctx context.Context, objectKey string, content []byte, contentType, contentEncoding string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	}
	if contentEncoding != "" {
		input.ContentEncoding = aws.String(contentEncoding)
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("ossuploader: PutObject %s/%s: %w", u.bucket, objectKey, err)
	}
	return nil
}

// Close releases no resources of its own; the underlying SDK client needs
// no explicit shutdown. It exists to satisfy the Uploader contract.
func (u *Uploader) Close() error {
	return nil
}

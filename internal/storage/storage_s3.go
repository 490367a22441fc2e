package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds configuration for the S3 storage backend.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // set for MinIO and other S3-compatible stores
	AccessKey string
	SecretKey string
}

// S3Storage keeps units and reports in one S3 bucket. Every object carries
// its project, kind and id as user metadata.
type S3Storage struct {
	blobClient
	client *s3.Client
	bucket string
}

// NewS3Storage creates an S3-backed Client. Without static keys the default
// AWS credential chain applies.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 storage requires a bucket")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		static := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(static))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	s := &S3Storage{client: client, bucket: cfg.Bucket}
	s.blobClient = blobClient{store: s}
	return s, nil
}

func (s *S3Storage) putInput(b blob, data []byte) *s3.PutObjectInput {
	return &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(b.key()),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(b.contentType()),
		Metadata:      b.metadata(),
	}
}

func (s *S3Storage) put(ctx context.Context, b blob, data []byte) error {
	if _, err := s.client.PutObject(ctx, s.putInput(b, data)); err != nil {
		return fmt.Errorf("s3 put %s %s: %w", b.kind, b.id, err)
	}
	return nil
}

func (s *S3Storage) get(ctx context.Context, b blob) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(b.key()),
	})
	var missing *types.NoSuchKey
	switch {
	case errors.As(err, &missing):
		return nil, fmt.Errorf("s3 %s %s: %w", b.kind, b.id, ErrNotFound)
	case err != nil:
		return nil, fmt.Errorf("s3 get %s %s: %w", b.kind, b.id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s %s: %w", b.kind, b.id, err)
	}
	return data, nil
}

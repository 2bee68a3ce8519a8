package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI is the subset of *s3.Client used by S3Store
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes snapshots as objects under <bucket>/<prefix>/<key>
type S3Store struct {
	client putObjectAPI
	bucket string
	prefix string
}

// NewS3Store creates a store using client
func NewS3Store(client putObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// NewS3StoreFromEnv loads AWS credentials from the default chain
func NewS3StoreFromEnv(ctx context.Context, bucket, prefix, region string) (*S3Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// Put uploads data and returns its s3:// URI
func (s *S3Store) Put(ctx context.Context, key string, data []byte) (string, error) {
	objectKey := path.Join(s.prefix, key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("uploading s3://%s/%s: %w", s.bucket, objectKey, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, objectKey), nil
}

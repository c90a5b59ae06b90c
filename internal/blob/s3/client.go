// Package s3blob archives scan pass artifacts to an S3-compatible object
// store via AWS SDK v2. Any provider with an S3 API works (AWS, MinIO,
// iDrive e2, Cloudflare R2); non-AWS providers set Endpoint and usually
// ForcePathStyle.
package s3blob

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/arblab/polykalshi/internal/domain"
)

// minPartSize is the smallest part size S3 accepts for multipart uploads.
const minPartSize int64 = 5 * 1024 * 1024

// ClientConfig holds the object store connection parameters.
type ClientConfig struct {
	// Endpoint overrides the AWS endpoint for S3-compatible providers. A bare
	// host gets a scheme prepended based on UseSSL. Empty means AWS S3.
	Endpoint string

	// Region is the AWS region, or whatever the provider expects there.
	Region string

	// Bucket receives all pass archives.
	Bucket string

	AccessKey string
	SecretKey string

	// UseSSL picks https over http when Endpoint carries no scheme.
	UseSSL bool

	// ForcePathStyle addresses the bucket in the path instead of the
	// subdomain, which most non-AWS providers require.
	ForcePathStyle bool
}

// Client uploads objects into one bucket. Small artifacts go through Put;
// bulky ones through PutMultipart, which splits and uploads parts
// concurrently.
type Client struct {
	s3       *s3.Client
	uploader *manager.Uploader
	bucket   string
}

var _ domain.BlobWriter = (*Client)(nil)

// New builds a Client from cfg. It validates the required fields but does not
// touch the network; call Health to verify connectivity.
func New(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3blob: bucket name is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("s3blob: region is required")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("s3blob: load aws config: %w", err)
	}

	s3c := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(withScheme(cfg.Endpoint, cfg.UseSSL))
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &Client{
		s3: s3c,
		uploader: manager.NewUploader(s3c, func(u *manager.Uploader) {
			u.PartSize = minPartSize
		}),
		bucket: cfg.Bucket,
	}, nil
}

// Health verifies the bucket is reachable with the configured credentials.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("s3blob: head bucket %s: %w", c.bucket, err)
	}
	return nil
}

// Put uploads body as one PutObject call under the given key.
func (c *Client) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: put %s: %w", key, err)
	}
	return nil
}

// PutMultipart uploads body through the multipart upload manager, which
// chunks the payload into parts and uploads them concurrently.
func (c *Client) PutMultipart(ctx context.Context, key string, body io.Reader, contentType string) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3blob: multipart put %s: %w", key, err)
	}
	return nil
}

func withScheme(endpoint string, useSSL bool) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

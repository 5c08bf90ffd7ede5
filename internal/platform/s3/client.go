package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/aws-samples/remote-debugging-with-emr/internal/util/async"
	"github.com/aws-samples/remote-debugging-with-emr/internal/util/retry"
)

// stageConcurrency bounds parallel uploads in Stage.
const stageConcurrency = 4

// ErrBucketNotFound is returned when staging into a bucket that does not
// exist or is not visible to the caller.
var ErrBucketNotFound = errors.New("artifact bucket not found")

// Options configures the staging client.
type Options struct {
	Region string

	// Profile selects a shared config profile. Empty uses the default chain.
	Profile string

	// Endpoint overrides the service endpoint and switches to path-style
	// addressing, for local emulators.
	Endpoint string

	// AccessKey and SecretKey, when both set, replace the default credential chain.
	AccessKey string
	SecretKey string

	// Retry tunes the backoff around each staged upload.
	Retry []retry.Option
}

// Artifact is a file to stage.
type Artifact struct {
	Name        string
	Data        []byte
	ContentType string
}

// Client wraps the S3 client for artifact staging.
type Client struct {
	s3     *s3.Client
	region string
	retry  []retry.Option
}

// NewClient creates a staging client from the default configuration chain.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Client{s3: client, region: opts.Region, retry: opts.Retry}, nil
}

// ObjectKey returns the key an artifact is staged under.
func ObjectKey(prefix, name string) string {
	return strings.TrimPrefix(path.Join(prefix, path.Base(name)), "/")
}

// Stage uploads artifacts under prefix in parallel and returns their keys
// in artifact order. Nothing is uploaded if the bucket does not exist.
// Client-side failures such as access denied are not retried.
func (c *Client) Stage(ctx context.Context, bucket, prefix string, artifacts []Artifact) ([]string, error) {
	exists, err := c.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBucketNotFound, bucket)
	}

	keys := make([]string, len(artifacts))
	tasks := make([]async.Task, len(artifacts))
	for i, a := range artifacts {
		key := ObjectKey(prefix, a.Name)
		keys[i] = key
		tasks[i] = async.Task{
			Name: key,
			Func: func(ctx context.Context) error {
				return retry.WithExponentialBackoff(ctx, func() error {
					err := c.PutObject(ctx, bucket, key, a.Data, a.ContentType)
					if isClientFault(err) {
						return retry.Fatal(err)
					}
					return err
				}, c.retry...)
			},
		}
	}

	if err := async.Run(ctx, tasks, stageConcurrency); err != nil {
		return nil, fmt.Errorf("failed to stage artifacts: %w", err)
	}
	return keys, nil
}

// BucketExists checks if a bucket exists and is accessible.
func (c *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucketName),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	return true, nil
}

// isNotFoundError checks if the error is a not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	// HEAD responses carry no body, so only the code is available.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || code == "404"
	}

	return false
}

// isClientFault reports whether the service rejected the request itself.
// Throttling is left retryable.
func isClientFault(err error) bool {
	var resp interface{ HTTPStatusCode() int }
	if !errors.As(err, &resp) {
		return false
	}
	code := resp.HTTPStatusCode()
	return code >= 400 && code < 500 && code != 429
}

// ListObjects lists every key under prefix, following continuation tokens.
func (c *Client) ListObjects(ctx context.Context, bucketName, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucketName),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(c.s3, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects in bucket %s: %w", bucketName, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}

// PutObject uploads an object to a bucket.
func (c *Client) PutObject(ctx context.Context, bucketName, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s in bucket %s: %w", key, bucketName, err)
	}
	return nil
}

package handlers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/aws-samples/remote-debugging-with-emr/internal/platform/s3"
)

// Stager uploads job artifacts.
type Stager interface {
	Stage(ctx context.Context, bucket, prefix string, artifacts []s3.Artifact) ([]string, error)
	ListObjects(ctx context.Context, bucket, prefix string) ([]string, error)
}

// Factory function variables for stage - can be replaced in tests.
var (
	// newStager creates the artifact staging client.
	newStager = func(ctx context.Context, opts s3.Options) (Stager, error) {
		return s3.NewClient(ctx, opts)
	}

	// readFile reads an artifact from disk.
	readFile = os.ReadFile
)

// DefaultStagePrefix is the key prefix artifacts are staged under.
const DefaultStagePrefix = "jobs"

// StageOptions controls Stage.
type StageOptions struct {
	ConfigPath string

	// Bucket overrides storage.bucket_name from the configuration.
	Bucket   string
	Prefix   string
	Profile  string
	Endpoint string

	Files []string
}

// Stage uploads job entrypoints and dependencies to the artifact bucket.
func Stage(ctx context.Context, out io.Writer, opts StageOptions) error {
	if len(opts.Files) == 0 {
		return fmt.Errorf("no files to stage")
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	bucket := opts.Bucket
	if bucket == "" {
		bucket = cfg.Storage.BucketName
	}
	if bucket == "" {
		return fmt.Errorf("no bucket: pass --bucket with the VPCStack.S3Bucket output or set storage.bucket_name")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultStagePrefix
	}

	artifacts := make([]s3.Artifact, 0, len(opts.Files))
	for _, f := range opts.Files {
		data, err := readFile(f)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f, err)
		}
		artifacts = append(artifacts, s3.Artifact{
			Name:        f,
			Data:        data,
			ContentType: mime.TypeByExtension(filepath.Ext(f)),
		})
	}

	client, err := newStager(ctx, s3.Options{
		Region:   cfg.Region,
		Profile:  opts.Profile,
		Endpoint: opts.Endpoint,
	})
	if err != nil {
		return err
	}

	keys, err := client.Stage(ctx, bucket, prefix, artifacts)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Fprintf(out, "staged s3://%s/%s\n", bucket, key)
	}

	all, err := client.ListObjects(ctx, bucket, prefix+"/")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d objects under s3://%s/%s/\n", len(all), bucket, prefix)
	return nil
}

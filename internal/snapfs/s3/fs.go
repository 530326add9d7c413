// Package s3 implements the snapfs.FS interface over an S3-compatible bucket.
//
// Snapshot layouts in object storage have no real directories; this package
// maps slash-delimited key prefixes to them. ListDir uses a delimited
// ListObjectsV2 so common prefixes surface as directories; Walk lists the
// whole prefix.
package s3

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/snapref-io/snapref/internal/snapfs"
)

// Config configures an S3-backed snapshot filesystem.
type Config struct {
	// Bucket is the name of the S3 bucket. Required.
	Bucket string

	// Region is the AWS region (e.g., "us-east-1").
	// Required for AWS S3, optional for S3-compatible endpoints.
	Region string

	// Endpoint is the S3 endpoint URL (e.g., "http://localhost:9000" for MinIO).
	// If empty, uses the default AWS endpoint for the region.
	Endpoint string

	// AccessKeyID is the AWS access key ID.
	// If empty, uses the default credential chain.
	AccessKeyID string

	// SecretAccessKey is the AWS secret access key.
	// If empty, uses the default credential chain.
	SecretAccessKey string

	// UsePathStyle enables path-style addressing (required for MinIO and
	// some S3-compatible stores).
	UsePathStyle bool
}

// FS implements snapfs.FS over an S3 bucket.
type FS struct {
	client *awss3.Client
	bucket string
	closed bool
	mu     sync.RWMutex
}

// New creates a new S3-backed filesystem with the given configuration.
func New(ctx context.Context, cfg Config) (*FS, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3: bucket name is required")
	}

	opts := []func(*config.LoadOptions) error{}

	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	} else {
		opts = append(opts, config.WithRegion("us-east-1"))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: failed to load AWS config: %w", err)
	}

	s3Opts := []func(*awss3.Options){}

	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *awss3.Options) {
			o.UsePathStyle = true
		})
	}

	client := awss3.NewFromConfig(awsCfg, s3Opts...)

	return &FS{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

func (f *FS) checkClosed() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.closed {
		return errors.New("s3: filesystem is closed")
	}
	return nil
}

// Close releases the filesystem. Further calls return errors.
func (f *FS) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// ListDir returns the immediate children of dir.
func (f *FS) ListDir(ctx context.Context, dir string) ([]snapfs.Entry, error) {
	if err := f.checkClosed(); err != nil {
		return nil, err
	}

	prefix := DirPrefix(dir)
	var entries []snapfs.Entry

	input := &awss3.ListObjectsV2Input{
		Bucket:    aws.String(f.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	}

	paginator := awss3.NewListObjectsV2Paginator(f.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &snapfs.PathError{Op: "ListDir", Path: dir, Err: err}
		}

		for _, cp := range page.CommonPrefixes {
			name := BaseOfPrefix(aws.ToString(cp.Prefix))
			if name == "" {
				continue
			}
			// Prefixes are synthesized; they carry no modification time.
			entries = append(entries, snapfs.Entry{Name: name, IsDir: true})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				// Placeholder object some tools create for the "directory" itself.
				continue
			}
			entries = append(entries, snapfs.Entry{
				Name:    BaseOfKey(key),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			})
		}
	}

	if len(entries) == 0 {
		return nil, &snapfs.PathError{Op: "ListDir", Path: dir, Err: snapfs.ErrNotFound}
	}
	return entries, nil
}

// Walk visits every file under dir.
func (f *FS) Walk(ctx context.Context, dir string, fn snapfs.WalkFunc) error {
	if err := f.checkClosed(); err != nil {
		return err
	}

	prefix := DirPrefix(dir)
	found := false

	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(f.bucket),
		Prefix: aws.String(prefix),
	}

	paginator := awss3.NewListObjectsV2Paginator(f.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return &snapfs.PathError{Op: "Walk", Path: dir, Err: err}
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			found = true
			if key == prefix || strings.HasSuffix(key, "/") {
				continue
			}
			entry := snapfs.Entry{
				Name:    BaseOfKey(key),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			}
			if err := fn(key, entry); err != nil {
				return &snapfs.PathError{Op: "Walk", Path: dir, Err: err}
			}
		}
	}

	if !found {
		return &snapfs.PathError{Op: "Walk", Path: dir, Err: snapfs.ErrNotFound}
	}
	return nil
}

// Stat returns the entry for a single path. A path is a directory if any key
// exists under it, otherwise a file if an object exists at the exact key.
func (f *FS) Stat(ctx context.Context, path string) (snapfs.Entry, error) {
	if err := f.checkClosed(); err != nil {
		return snapfs.Entry{}, err
	}

	prefix := DirPrefix(path)
	out, err := f.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(f.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return snapfs.Entry{}, &snapfs.PathError{Op: "Stat", Path: path, Err: err}
	}
	if len(out.Contents) > 0 {
		return snapfs.Entry{Name: BaseOfKey(strings.TrimSuffix(prefix, "/")), IsDir: true}, nil
	}

	key := strings.TrimSuffix(path, "/")
	objOut, err := f.client.ListObjectsV2(ctx, &awss3.ListObjectsV2Input{
		Bucket:  aws.String(f.bucket),
		Prefix:  aws.String(key),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return snapfs.Entry{}, &snapfs.PathError{Op: "Stat", Path: path, Err: err}
	}
	for _, obj := range objOut.Contents {
		if aws.ToString(obj.Key) == key {
			return snapfs.Entry{
				Name:    BaseOfKey(key),
				Size:    aws.ToInt64(obj.Size),
				ModTime: aws.ToTime(obj.LastModified),
			}, nil
		}
	}

	return snapfs.Entry{}, &snapfs.PathError{Op: "Stat", Path: path, Err: snapfs.ErrNotFound}
}

var _ snapfs.FS = (*FS)(nil)

// Package s3 implements the storage operator over S3-compatible object
// storage (AWS S3, MinIO, Backblaze B2). Directories are the usual
// object-store convention: zero-byte objects with a trailing slash, and
// common prefixes in listings.
//
// Rename is not supported; object stores have no atomic move, and the
// gateway does not fake one with copy+delete.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/starford/laguz/internal/operator"
)

// S3 implements operator.Operator over one bucket.
type S3 struct {
	client *awss3.Client
	bucket string
}

// New builds an S3 operator for cfg.Bucket. Construction is lazy: no
// request is made until an operation runs.
func New(ctx context.Context, cfg *operator.S3Config) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Custom endpoints (MinIO, B2) want path-style addressing.
			o.UsePathStyle = true
		}
	})
	return &S3{client: client, bucket: cfg.Bucket}, nil
}

func normalize(path string) string {
	return strings.TrimPrefix(path, "/")
}

// Read downloads the object at path.
func (s *S3) Read(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(normalize(path)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: read %s: %w", path, mapErr(err))
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: read %s body: %w", path, mapErr(err))
	}
	return data, nil
}

// Write uploads content to path.
func (s *S3) Write(ctx context.Context, path string, content []byte) error {
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(normalize(path)),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("s3: write %s: %w", path, mapErr(err))
	}
	return nil
}

// Stat issues a HeadObject for path. Keys with a trailing slash are
// reported as directories.
func (s *S3) Stat(ctx context.Context, path string) (operator.Metadata, error) {
	key := normalize(path)
	out, err := s.client.HeadObject(ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return operator.Metadata{}, fmt.Errorf("s3: stat %s: %w", path, mapErr(err))
	}
	md := operator.Metadata{
		Size:  aws.ToInt64(out.ContentLength),
		IsDir: strings.HasSuffix(key, "/"),
	}
	if out.LastModified != nil {
		md.ModTime = *out.LastModified
	}
	return md, nil
}

// Delete removes the object at path. S3 delete is idempotent.
func (s *S3) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(normalize(path)),
	})
	if err != nil {
		return fmt.Errorf("s3: delete %s: %w", path, mapErr(err))
	}
	return nil
}

// List returns the immediate children under path using a delimited
// listing: objects become files, common prefixes become directories.
func (s *S3) List(ctx context.Context, path string) ([]operator.Entry, error) {
	prefix := normalize(path)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	var entries []operator.Entry
	p := awss3.NewListObjectsV2Paginator(s.client, &awss3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3: list %s: %w", path, mapErr(err))
		}
		for _, cp := range page.CommonPrefixes {
			key := aws.ToString(cp.Prefix)
			name := strings.TrimSuffix(strings.TrimPrefix(key, prefix), "/")
			entries = append(entries, operator.Entry{
				Name: name,
				Path: key,
				Meta: operator.Metadata{IsDir: true},
			})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				// The directory marker itself.
				continue
			}
			md := operator.Metadata{Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				md.ModTime = *obj.LastModified
			}
			entries = append(entries, operator.Entry{
				Name: strings.TrimPrefix(key, prefix),
				Path: key,
				Meta: md,
			})
		}
	}
	return entries, nil
}

// CreateDir uploads a zero-byte directory marker. Creating an existing
// directory succeeds.
func (s *S3) CreateDir(ctx context.Context, path string) error {
	key := normalize(path)
	if !strings.HasSuffix(key, "/") {
		key += "/"
	}
	_, err := s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return fmt.Errorf("s3: create dir %s: %w", path, mapErr(err))
	}
	return nil
}

// Copy duplicates the object at source to target server-side.
func (s *S3) Copy(ctx context.Context, source, target string) error {
	_, err := s.client.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		Key:        aws.String(normalize(target)),
		CopySource: aws.String(s.bucket + "/" + normalize(source)),
	})
	if err != nil {
		return fmt.Errorf("s3: copy %s to %s: %w", source, target, mapErr(err))
	}
	return nil
}

// Rename is not supported by object storage.
func (s *S3) Rename(_ context.Context, source, _ string) error {
	return fmt.Errorf("s3: rename %s: %w", source, operator.ErrUnsupported)
}

// Capability reports everything but rename.
func (s *S3) Capability() operator.Capability {
	return operator.Capability{
		Read: true, Write: true, List: true, Stat: true,
		Delete: true, Copy: true, Rename: false, CreateDir: true,
	}
}

// Close is a no-op; the SDK client holds no connection state that needs
// explicit release.
func (s *S3) Close() error { return nil }

// mapErr classifies SDK errors into the operator taxonomy.
func mapErr(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return operator.ErrNotFound
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return operator.ErrPermission
		}
		return err
	}
	// Non-API errors (DNS, refused connections, timeouts) are transport
	// faults.
	return fmt.Errorf("%w: %v", operator.ErrConnection, err)
}

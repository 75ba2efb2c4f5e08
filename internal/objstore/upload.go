// Package objstore uploads local files to an S3 bucket.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNoBucket is returned when no bucket is given.
var ErrNoBucket = errors.New("bucket name is required")

// Options configures the S3 client. Empty keys use the default AWS
// credential chain.
type Options struct {
	Region    string
	AccessKey string
	SecretKey string

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string
}

type putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader puts files into buckets.
type Uploader struct {
	client putter
}

// NewUploader builds an S3 client from opts.
func NewUploader(ctx context.Context, opts Options) (*Uploader, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &Uploader{client: client}, nil
}

// Upload puts the file at localPath into bucket and returns its key.
func (u *Uploader) Upload(ctx context.Context, localPath, bucket, folder string) (string, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return "", ErrNoBucket
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	key := ObjectKey(localPath, folder)
	in := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(localPath)); ct != "" {
		in.ContentType = aws.String(ct)
	}
	if info, err := f.Stat(); err == nil {
		in.ContentLength = aws.Int64(info.Size())
	}

	if _, err := u.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("upload %s to %s: %w", key, bucket, err)
	}
	return key, nil
}

// ObjectKey is the base name of localPath, under folder when the trimmed
// folder is not empty.
func ObjectKey(localPath, folder string) string {
	name := filepath.Base(localPath)
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

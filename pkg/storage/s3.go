package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/JaimeStill/mod-depot/pkg/lifecycle"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// objectStore implements System over an S3 bucket. Keys map to object keys
// under an optional prefix.
type objectStore struct {
	client       *s3.Client
	bucket       string
	prefix       string
	publicPrefix string
	logger       *slog.Logger
}

// NewS3 creates an S3-backed storage system. Static credentials are used when
// both keys are set; otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg *S3Config, publicPrefix string, logger *slog.Logger) (System, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &objectStore{
		client:       client,
		bucket:       cfg.Bucket,
		prefix:       strings.Trim(cfg.Prefix, "/"),
		publicPrefix: publicPrefix,
		logger:       logger.With("system", "storage", "backend", BackendS3),
	}, nil
}

func (o *objectStore) Start(lc *lifecycle.Coordinator) error {
	o.logger.Info("starting storage system", "bucket", o.bucket, "prefix", o.prefix)

	lc.OnStartup(func() {
		_, err := o.client.HeadBucket(lc.Context(), &s3.HeadBucketInput{
			Bucket: aws.String(o.bucket),
		})
		if err != nil {
			o.logger.Error("bucket check failed", "error", err)
			return
		}
		o.logger.Info("bucket reachable")
	})

	return nil
}

func (o *objectStore) Store(ctx context.Context, key string, r io.Reader) (int64, error) {
	objectKey, err := o.objectKey(key)
	if err != nil {
		return 0, err
	}

	body, size, release, err := sizedBody(r)
	if err != nil {
		return 0, err
	}
	defer release()

	_, err = o.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(o.bucket),
		Key:           aws.String(objectKey),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType(key)),
	})
	if err != nil {
		return 0, fmt.Errorf("put object: %w", err)
	}

	return size, nil
}

func (o *objectStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	objectKey, err := o.objectKey(key)
	if err != nil {
		return nil, err
	}

	out, err := o.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object: %w", err)
	}

	return out.Body, nil
}

func (o *objectStore) Delete(ctx context.Context, key string) error {
	objectKey, err := o.objectKey(key)
	if err != nil {
		return err
	}

	_, err = o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

func (o *objectStore) Validate(ctx context.Context, key string) (bool, error) {
	objectKey, err := o.objectKey(key)
	if err != nil {
		return false, err
	}

	_, err = o.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head object: %w", err)
	}

	return true, nil
}

func (o *objectStore) Path(key string) string {
	return publicPath(o.publicPrefix, key)
}

func (o *objectStore) objectKey(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidKey
	}

	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return "", ErrInvalidKey
		}
	}

	cleaned := path.Clean("/" + key)
	if cleaned == "/" {
		return "", ErrInvalidKey
	}

	cleaned = strings.TrimPrefix(cleaned, "/")
	if o.prefix == "" {
		return cleaned, nil
	}
	return o.prefix + "/" + cleaned, nil
}

func contentType(key string) string {
	if t := mime.TypeByExtension(path.Ext(key)); t != "" {
		return t
	}
	return "application/octet-stream"
}

// sizedBody returns r as a seekable body with its remaining length.
// Readers that cannot seek are spooled to a temporary file first.
func sizedBody(r io.Reader) (io.ReadSeeker, int64, func(), error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		start, err := rs.Seek(0, io.SeekCurrent)
		if err == nil {
			end, err := rs.Seek(0, io.SeekEnd)
			if err != nil {
				return nil, 0, nil, fmt.Errorf("measure body: %w", err)
			}
			if _, err := rs.Seek(start, io.SeekStart); err != nil {
				return nil, 0, nil, fmt.Errorf("rewind body: %w", err)
			}
			return io.NewSectionReader(readerAt{rs}, start, end-start), end - start, func() {}, nil
		}
	}

	tmp, err := os.CreateTemp("", "moddepot-upload-*")
	if err != nil {
		return nil, 0, nil, fmt.Errorf("spool body: %w", err)
	}
	release := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	size, err := io.Copy(tmp, r)
	if err != nil {
		release()
		return nil, 0, nil, fmt.Errorf("spool body: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		release()
		return nil, 0, nil, fmt.Errorf("rewind spool: %w", err)
	}

	return tmp, size, release, nil
}

// readerAt adapts a ReadSeeker for io.SectionReader.
type readerAt struct {
	rs io.ReadSeeker
}

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	if ra, ok := r.rs.(io.ReaderAt); ok {
		return ra.ReadAt(p, off)
	}
	if _, err := r.rs.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return io.ReadFull(r.rs, p)
}

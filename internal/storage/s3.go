package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/hoangchien/portfolio/internal/config"
)

// objectAPI is the subset of *s3.Client used here.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores files in an S3-compatible bucket.
type S3 struct {
	client  objectAPI
	bucket  string
	prefix  string
	baseURL string // public URL of the bucket root, no trailing slash
	now     func() time.Time
}

var _ Store = (*S3)(nil)

// NewS3 builds the AWS client from cfg. Static credentials are used when
// configured; otherwise the default AWS credential chain applies.
func NewS3(ctx context.Context, cfg config.S3Config) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3(client, cfg), nil
}

func newS3(client objectAPI, cfg config.S3Config) *S3 {
	return &S3{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: bucketURL(cfg),
		now:     time.Now,
	}
}

// bucketURL resolves the public URL objects are served from.
func bucketURL(cfg config.S3Config) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

func (s *S3) Name() string { return "s3" }

// Save uploads data under <prefix>/<yyyy>/<mm>/<uuid><ext>.
func (s *S3) Save(ctx context.Context, data []byte, name string) (string, error) {
	ext := extOf(name)
	key := s.objectKey(ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType(ext, data)),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("storage: uploading %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

// Delete removes the object behind one of our locators. S3 treats deleting a
// missing key as success, so repeats are harmless.
func (s *S3) Delete(ctx context.Context, locator string) error {
	key, ok := strings.CutPrefix(locator, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}
	if s.prefix != "" && !strings.HasPrefix(key, s.prefix+"/") {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: deleting %s: %w", key, err)
	}
	return nil
}

func (s *S3) objectKey(ext string) string {
	d := s.now().UTC()
	key := fmt.Sprintf("%04d/%02d/%s%s", d.Year(), int(d.Month()), uuid.New(), ext)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	return key
}

func contentType(ext string, data []byte) string {
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

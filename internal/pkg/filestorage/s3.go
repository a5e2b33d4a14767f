package filestorage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
)

// ErrBucketNotConfigured is returned by every operation when no bucket name is set
var ErrBucketNotConfigured = errors.New("AWS_S3_BUCKET_NAME is not configured")

// DefaultUploadURLTTL is the lifetime of the URL returned right after an upload.
// SigV4 presigned URLs are capped at seven days.
const DefaultUploadURLTTL = 6 * 24 * time.Hour

const defaultExtension = "pdf"

type uploadAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type deleteAPI interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type headBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Config holds the settings needed to reach the bucket
type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Endpoint        string
	UploadURLTTL    time.Duration
}

// S3Storage is the S3-backed ObjectStorage
type S3Storage struct {
	bucket       string
	uploader     uploadAPI
	deleter      deleteAPI
	header       headBucketAPI
	presigner    presignAPI
	uploadURLTTL time.Duration
	logger       zerolog.Logger

	fallbacks atomic.Int64

	now    func() time.Time
	random io.Reader
}

// NewS3Storage builds the S3 client from static credentials (or the default
// credential chain when none are given). The bucket is not contacted here; call
// VerifyBucket to check it.
func NewS3Storage(ctx context.Context, cfg S3Config, logger zerolog.Logger) (*S3Storage, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.Region = cfg.Region
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.Concurrency = 3
	})

	return newS3Storage(cfg.Bucket, uploader, client, client, s3.NewPresignClient(client), cfg.UploadURLTTL, logger), nil
}

func newS3Storage(bucket string, uploader uploadAPI, deleter deleteAPI, header headBucketAPI, presigner presignAPI, uploadURLTTL time.Duration, logger zerolog.Logger) *S3Storage {
	if uploadURLTTL <= 0 {
		uploadURLTTL = DefaultUploadURLTTL
	}
	return &S3Storage{
		bucket:       bucket,
		uploader:     uploader,
		deleter:      deleter,
		header:       header,
		presigner:    presigner,
		uploadURLTTL: uploadURLTTL,
		logger:       logger.With().Str("component", "s3storage").Logger(),
		now:          time.Now,
		random:       rand.Reader,
	}
}

// VerifyBucket checks that the configured bucket exists and is reachable
func (s *S3Storage) VerifyBucket(ctx context.Context) error {
	if s.bucket == "" {
		return ErrBucketNotConfigured
	}

	_, err := s.header.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return fmt.Errorf("bucket '%s' does not exist", s.bucket)
		}
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	return nil
}

// GenerateKey builds {folder}/{unixMillis}-{32 hex}.{ext}
func (s *S3Storage) GenerateKey(originalName, folder string) (string, error) {
	buf := make([]byte, 16)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("failed to generate object key: %w", err)
	}
	return fmt.Sprintf("%s/%d-%s.%s",
		strings.Trim(folder, "/"),
		s.now().UnixMilli(),
		hex.EncodeToString(buf),
		fileExtension(originalName),
	), nil
}

func fileExtension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return defaultExtension
	}
	return strings.ToLower(name[i+1:])
}

// Store uploads data and returns its key with a long-lived retrieval URL
func (s *S3Storage) Store(ctx context.Context, data []byte, originalName, folder, contentType string) (*StoredObject, error) {
	if s.bucket == "" {
		return nil, ErrBucketNotConfigured
	}

	key, err := s.GenerateKey(originalName, folder)
	if err != nil {
		return nil, err
	}

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload object to s3: %w", err)
	}

	url, err := s.Presign(ctx, key, s.uploadURLTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("key", key).Int("size", len(data)).Msg("Object stored")
	return &StoredObject{Key: key, URL: url}, nil
}

// Delete removes an object
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	if s.bucket == "" {
		return ErrBucketNotConfigured
	}

	_, err := s.deleter.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Presign returns a GET URL for key valid for ttl
func (s *S3Storage) Presign(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if s.bucket == "" {
		return "", ErrBucketNotConfigured
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

// PresignOrFallback never fails: an empty key yields fallback, and a presign
// failure is logged, counted and also yields fallback.
func (s *S3Storage) PresignOrFallback(ctx context.Context, key, fallback string, ttl time.Duration) string {
	if key == "" {
		return fallback
	}

	url, err := s.Presign(ctx, key, ttl)
	if err != nil {
		count := s.fallbacks.Add(1)
		s.logger.Warn().Err(err).Str("key", key).Int64("fallbacks", count).Msg("Presign failed, serving last-known URL")
		return fallback
	}
	return url
}

// Stats returns gateway counters
func (s *S3Storage) Stats() Stats {
	return Stats{
		Configured:       s.bucket != "",
		PresignFallbacks: s.fallbacks.Load(),
	}
}

package filestorage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	uploads    []*s3.PutObjectInput
	body       []byte
	deleted    []string
	presignTTL time.Duration
	presignErr error
	uploadErr  error
	headErr    error
}

func (f *fakeS3) Upload(_ context.Context, input *s3.PutObjectInput, _ ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploads = append(f.uploads, input)
	f.body, _ = io.ReadAll(input.Body)
	return &manager.UploadOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = append(f.deleted, *params.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func (f *fakeS3) PresignGetObject(_ context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if f.presignErr != nil {
		return nil, f.presignErr
	}
	opts := s3.PresignOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	f.presignTTL = opts.Expires
	return &v4.PresignedHTTPRequest{
		URL:    "https://bucket.s3.amazonaws.com/" + *params.Key + "?X-Amz-Signature=sig",
		Method: http.MethodGet,
	}, nil
}

func newTestStorage(bucket string, fake *fakeS3) *S3Storage {
	s := newS3Storage(bucket, fake, fake, fake, fake, 0, zerolog.Nop())
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	s.random = bytes.NewReader(bytes.Repeat([]byte{0xab}, 16))
	return s
}

func TestStoreGeneratesKeyAndPresigns(t *testing.T) {
	fake := &fakeS3{}
	storage := newTestStorage("resumes-bucket", fake)

	obj, err := storage.Store(context.Background(), []byte("%PDF-1.4"), "Ada Resume.PDF", "resumes", "application/pdf")
	require.NoError(t, err)

	assert.Equal(t, "resumes/1700000000000-abababababababababababababababab.pdf", obj.Key)
	assert.Contains(t, obj.URL, obj.Key)
	assert.Equal(t, DefaultUploadURLTTL, fake.presignTTL)

	require.Len(t, fake.uploads, 1)
	assert.Equal(t, "resumes-bucket", *fake.uploads[0].Bucket)
	assert.Equal(t, "application/pdf", *fake.uploads[0].ContentType)
	assert.Equal(t, []byte("%PDF-1.4"), fake.body)
}

func TestGenerateKeyFormat(t *testing.T) {
	storage := newS3Storage("b", &fakeS3{}, nil, nil, nil, 0, zerolog.Nop())
	pattern := regexp.MustCompile(`^resumes/\d+-[0-9a-f]{32}\.(pdf|docx)$`)

	first, err := storage.GenerateKey("cv.docx", "resumes")
	require.NoError(t, err)
	second, err := storage.GenerateKey("cv.docx", "resumes")
	require.NoError(t, err)

	assert.Regexp(t, pattern, first)
	assert.NotEqual(t, first, second)

	noExt, err := storage.GenerateKey("resume", "resumes")
	require.NoError(t, err)
	assert.Regexp(t, pattern, noExt)
}

func TestOperationsWithoutBucket(t *testing.T) {
	fake := &fakeS3{}
	storage := newTestStorage("", fake)
	ctx := context.Background()

	_, err := storage.Store(ctx, []byte("x"), "a.pdf", "resumes", "application/pdf")
	assert.ErrorIs(t, err, ErrBucketNotConfigured)
	assert.ErrorIs(t, storage.Delete(ctx, "k"), ErrBucketNotConfigured)
	assert.ErrorIs(t, storage.VerifyBucket(ctx), ErrBucketNotConfigured)
	assert.Empty(t, fake.uploads)
	assert.False(t, storage.Stats().Configured)
}

func TestPresignOrFallback(t *testing.T) {
	fake := &fakeS3{}
	storage := newTestStorage("bucket", fake)
	ctx := context.Background()

	url := storage.PresignOrFallback(ctx, "resumes/a.pdf", "https://old", time.Hour)
	assert.Contains(t, url, "resumes/a.pdf")
	assert.Equal(t, time.Hour, fake.presignTTL)

	assert.Equal(t, "https://old", storage.PresignOrFallback(ctx, "", "https://old", time.Hour))
	assert.Equal(t, int64(0), storage.Stats().PresignFallbacks)

	fake.presignErr = errors.New("expired credentials")
	assert.Equal(t, "https://old", storage.PresignOrFallback(ctx, "resumes/a.pdf", "https://old", time.Hour))
	assert.Equal(t, int64(1), storage.Stats().PresignFallbacks)
}

func TestDeleteAndUploadErrors(t *testing.T) {
	fake := &fakeS3{uploadErr: errors.New("network down")}
	storage := newTestStorage("bucket", fake)
	ctx := context.Background()

	_, err := storage.Store(ctx, []byte("x"), "a.pdf", "resumes", "application/pdf")
	assert.Error(t, err)

	require.NoError(t, storage.Delete(ctx, "resumes/old.pdf"))
	assert.Equal(t, []string{"resumes/old.pdf"}, fake.deleted)
}

func TestVerifyBucketNotFound(t *testing.T) {
	fake := &fakeS3{headErr: &smithy.GenericAPIError{Code: "NotFound"}}
	storage := newTestStorage("missing", fake)

	err := storage.VerifyBucket(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

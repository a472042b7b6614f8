package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxImageSize is the largest accepted image upload in bytes.
const MaxImageSize int64 = 5 * 1024 * 1024

const maxFilenameLength = 100

// ImageFile is an uploaded file as declared by the client.
type ImageFile struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ImageStore persists image bytes and hands back the public URL they are served from.
type ImageStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	// Delete removes the object behind url. URLs the store does not manage are ignored.
	Delete(ctx context.Context, url string) error
}

type Uploader struct {
	store   ImageStore
	maxSize int64
	logger  zerolog.Logger
	now     func() time.Time
}

func NewUploader(store ImageStore) *Uploader {
	return &Uploader{
		store:   store,
		maxSize: MaxImageSize,
		logger:  log.With().Str("service", "uploader").Logger(),
		now:     time.Now,
	}
}

// StoreImage validates file and writes it to the store, returning its public URL.
// The declared type must be image/*, the declared and actual sizes must not exceed the
// limit, and the bytes must sniff as a raster image.
func (u *Uploader) StoreImage(ctx context.Context, file ImageFile) (string, error) {
	if !strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return "", errs.NewInvalidFileTypeError(file.ContentType)
	}
	if file.Size > u.maxSize {
		return "", errs.NewFileTooLargeError(u.maxSize)
	}

	data, err := io.ReadAll(io.LimitReader(file.Body, u.maxSize+1))
	if err != nil {
		return "", errs.NewUploadWriteError(fmt.Errorf("read upload: %w", err))
	}
	if int64(len(data)) > u.maxSize {
		return "", errs.NewFileTooLargeError(u.maxSize)
	}

	detected := mimetype.Detect(data)
	if !isRasterImage(detected) {
		return "", errs.NewInvalidFileTypeError(detected.String())
	}

	name := fmt.Sprintf("%d-%s", u.now().UnixMilli(), SanitizeFilename(file.Filename))
	url, err := u.store.Put(ctx, name, detected.String(), data)
	if err != nil {
		return "", errs.NewUploadWriteError(err)
	}

	u.logger.Debug().Str("url", url).Int("bytes", len(data)).Msg("stored image")
	return url, nil
}

// Remove deletes a stored image. Failures are logged and swallowed.
func (u *Uploader) Remove(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := u.store.Delete(ctx, url); err != nil {
		u.logger.Warn().Err(err).Str("url", url).Msg("failed to delete image")
	}
}

// SanitizeFilename keeps only ASCII letters, digits, dots and hyphens.
func SanitizeFilename(raw string) string {
	var b strings.Builder
	for _, r := range filepath.Base(raw) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	name := strings.TrimLeft(b.String(), ".")
	if len(name) > maxFilenameLength {
		name = name[len(name)-maxFilenameLength:]
	}
	if name == "" {
		return "image"
	}
	return name
}

func isRasterImage(m *mimetype.MIME) bool {
	if m.Is("image/svg+xml") {
		return false
	}
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}

// LocalStore writes images into a directory served under urlPrefix.
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	name = safeName(name)
	if name == "" {
		return "", errors.New("invalid file name")
	}

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, bytes.NewReader(data)); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + name, nil
}

func (s *LocalStore) Delete(_ context.Context, url string) error {
	rest, ok := strings.CutPrefix(url, s.urlPrefix+"/")
	if !ok {
		return nil
	}
	name := safeName(rest)
	if name == "" || name != rest {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type s3ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps images in a bucket fronted by publicBaseURL.
type S3Store struct {
	client        s3ObjectAPI
	bucket        string
	keyPrefix     string
	publicBaseURL string
}

func NewS3Store(client *s3.Client, bucket, publicBaseURL string) *S3Store {
	return &S3Store{
		client:        client,
		bucket:        bucket,
		keyPrefix:     "uploads/",
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

func (s *S3Store) Put(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := s.keyPrefix + name
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.publicBaseURL + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.publicBaseURL+"/")
	if !ok || !strings.HasPrefix(key, s.keyPrefix) {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func safeName(raw string) string {
	name := filepath.Base(strings.TrimSpace(raw))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	if !isSafeSegment(name) {
		return ""
	}
	return name
}

// isSafeSegment returns true when s contains only alphanumerics, hyphens,
// underscores, or dots.
func isSafeSegment(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			continue
		}
		return false
	}
	return true
}

package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"schallwerk/apperr"
	"schallwerk/logger"
	"schallwerk/model"
)

// Presign lifetimes. Uploads get a short window; download links live longer
// because parents open them from emails.
const (
	putExpiry = 15 * time.Minute
	getExpiry = time.Hour
)

// R2 wraps the S3-compatible Cloudflare R2 bucket holding every audio object.
// Binaries never pass through the application server: clients PUT directly
// against a presigned URL, then confirm so the metadata record gets written.
type R2 struct {
	client *minio.Client
	bucket string
}

// Config carries the R2 connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// NewR2 connects to the R2 endpoint and verifies the bucket exists.
func NewR2(ctx context.Context, cfg Config) (*R2, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 client: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(checkCtx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check R2 bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("R2 bucket %q does not exist", cfg.Bucket)
	}

	logger.Info("[R2] connected", logger.String("bucket", cfg.Bucket))
	return &R2{client: client, bucket: cfg.Bucket}, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)

// sanitizeFilename keeps storage keys printable and collision-safe.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(path.Base(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeKeyChars.ReplaceAllString(name, "")
	if name == "" || name == "." {
		name = "upload"
	}
	if len(name) > 120 {
		name = name[len(name)-120:]
	}
	return name
}

// ObjectKey derives the storage key for an upload from its place in the
// pipeline. Keys are namespaced event/class/type so listing by prefix works;
// the random suffix keeps re-uploads from clobbering each other.
func ObjectKey(eventID, classID, songID string, fileType model.AudioFileType, filename string) string {
	parts := []string{"events", eventID, classID, string(fileType)}
	if songID != "" {
		parts = append(parts, songID)
	}
	suffix := uuid.NewString()[:8]
	parts = append(parts, suffix+"_"+sanitizeFilename(filename))
	return path.Join(parts...)
}

// PresignPut issues a time-limited URL the browser PUTs the binary to.
func (r *R2) PresignPut(ctx context.Context, key string) (string, error) {
	u, err := r.client.PresignedPutObject(ctx, r.bucket, key, putExpiry)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "failed to presign upload", err)
	}
	return u.String(), nil
}

// PresignGet issues a time-limited download URL for an object. The URL is
// derived per request and never persisted.
func (r *R2) PresignGet(ctx context.Context, key, downloadName string) (string, error) {
	params := url.Values{}
	if downloadName != "" {
		params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", sanitizeFilename(downloadName)))
	}
	u, err := r.client.PresignedGetObject(ctx, r.bucket, key, getExpiry, params)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "failed to presign download", err)
	}
	return u.String(), nil
}

// StatObject verifies an object exists after the client claims the PUT
// succeeded, returning its size.
func (r *R2) StatObject(ctx context.Context, key string) (int64, error) {
	info, err := r.client.StatObject(ctx, r.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return 0, apperr.E(apperr.KindNotFound, "uploaded object not found in storage")
		}
		return 0, apperr.Wrap(apperr.KindUnavailable, "failed to stat object", err)
	}
	return info.Size, nil
}

// RemoveObject deletes an object, used when a confirm is rolled back.
func (r *R2) RemoveObject(ctx context.Context, key string) error {
	if err := r.client.RemoveObject(ctx, r.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return apperr.Wrap(apperr.KindUnavailable, "failed to remove object", err)
	}
	return nil
}

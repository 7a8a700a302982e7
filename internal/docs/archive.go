package docs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog/log"
)

// Archiver stores the raw text of an ingested document and returns its object path.
type Archiver interface {
	Archive(ctx context.Context, tenantID string, docID uuid.UUID, title, text string) (string, error)
}

// ObjectPutter is the subset of *minio.Client used by MinioArchiver.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioArchiver archives documents in an S3-compatible bucket as
// <tenant>/<uuid>.txt.
type MinioArchiver struct {
	client ObjectPutter
	bucket string
}

// NewMinioArchiver wraps an existing object client.
func NewMinioArchiver(client ObjectPutter, bucket string) *MinioArchiver {
	return &MinioArchiver{client: client, bucket: bucket}
}

// DialMinio connects to the object store and creates the bucket when missing.
func DialMinio(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioArchiver, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("docs.DialMinio: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("docs.DialMinio: check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("docs.DialMinio: make bucket: %w", err)
		}
		log.Info().Str("bucket", bucket).Msg("docs: created object storage bucket")
	}

	return NewMinioArchiver(client, bucket), nil
}

// ObjectName returns the object path for a tenant document.
func ObjectName(tenantID string, docID uuid.UUID) string {
	return tenantID + "/" + docID.String() + ".txt"
}

// Archive uploads the document text with its title as user metadata.
func (a *MinioArchiver) Archive(ctx context.Context, tenantID string, docID uuid.UUID, title, text string) (string, error) {
	name := ObjectName(tenantID, docID)

	_, err := a.client.PutObject(ctx, a.bucket, name, strings.NewReader(text), int64(len(text)), minio.PutObjectOptions{
		ContentType:  "text/plain; charset=utf-8",
		UserMetadata: map[string]string{"title": title, "tenant": tenantID},
	})
	if err != nil {
		return "", fmt.Errorf("docs.MinioArchiver.Archive: %w", err)
	}

	return a.bucket + "/" + name, nil
}

package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kindcoach/kindcoach-api/pkg/config"
)

// RecordingArchive stores the original uploaded audio files in MinIO so a
// conversation's source recording survives independently of the analysis
// documents.
type RecordingArchive struct {
	client *minio.Client
	bucket string
}

// NewRecordingArchive creates a MinIO-backed recording archive
func NewRecordingArchive(cfg *config.StorageConfig) (*RecordingArchive, error) {
	minioClient, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	archive := &RecordingArchive{
		client: minioClient,
		bucket: cfg.BucketName,
	}

	ctx := context.Background()
	if err := archive.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize bucket: %w", err)
	}

	return archive, nil
}

// ensureBucket ensures the archive bucket exists. Recordings stay private;
// access goes through presigned URLs only.
func (a *RecordingArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return nil
}

// StoreRecording uploads one audio file under the owner's prefix and
// returns the object name.
func (a *RecordingArchive) StoreRecording(ctx context.Context, owner, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/%s_%s", owner, time.Now().Format("20060102_150405"), fileName)
	_, err := a.client.PutObject(ctx, a.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload recording: %w", err)
	}
	return objectName, nil
}

// GetRecordingURL returns a presigned download URL for a stored recording.
func (a *RecordingArchive) GetRecordingURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	url, err := a.client.PresignedGetObject(ctx, a.bucket, objectName, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}

// ListRecordings lists stored recordings under an owner prefix.
func (a *RecordingArchive) ListRecordings(ctx context.Context, owner string) ([]string, error) {
	var objects []string
	objectCh := a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{
		Prefix:    owner + "/",
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing recordings: %w", object.Err)
		}
		objects = append(objects, object.Key)
	}
	return objects, nil
}

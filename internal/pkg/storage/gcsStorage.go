package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
)

type gcsUploader struct {
	client *gcs.Client
	bucket string
}

func NewGCSUploader(client *gcs.Client, bucket string) Uploader {
	return &gcsUploader{client: client, bucket: bucket}
}

func (u *gcsUploader) Upload(ctx context.Context, localPath, objectName string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	object := u.client.Bucket(u.bucket).Object(objectName)
	writer := object.NewWriter(ctx)
	writer.ContentType = mime.TypeByExtension(filepath.Ext(objectName))

	if _, err := io.Copy(writer, src); err != nil {
		writer.Close()
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	if err := object.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		return "", fmt.Errorf("failed to make object public: %w", err)
	}
	return PublicURL(u.bucket, objectName), nil
}

func PublicURL(bucket, objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectName)
}

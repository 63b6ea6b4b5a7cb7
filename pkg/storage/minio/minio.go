package minio

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	cfg "github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/storage/location"
)

type MinioStorage struct {
	client     *minio.Client
	bucketName string
	baseURL    string
	logger     logger.Logger
}

// Upload implements Storage.Upload
func (m *MinioStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	_, err := m.client.PutObject(ctx, m.bucketName, path, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		m.logger.Error("Failed to store file to MinIO",
			logger.String("bucket", m.bucketName),
			logger.String("path", path),
			logger.Error(err),
		)
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	return location.Public(m.baseURL, m.bucketName, path), nil
}

// ObjectPath implements Storage.ObjectPath
func (m *MinioStorage) ObjectPath(publicURL string) (string, error) {
	return location.Path(publicURL, m.baseURL, m.bucketName)
}

// Delete implements Storage.Delete
func (m *MinioStorage) Delete(ctx context.Context, publicURL string) error {
	path, err := m.ObjectPath(publicURL)
	if err != nil {
		m.logger.Debug("Skipping delete of foreign url", logger.String("url", publicURL))
		return nil
	}

	if err := m.client.RemoveObject(ctx, m.bucketName, path, minio.RemoveObjectOptions{}); err != nil {
		m.logger.Error("Failed to delete file from MinIO",
			logger.String("bucket", m.bucketName),
			logger.String("path", path),
			logger.Error(err),
		)
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func NewMinioStorage(ctx context.Context, minioConfig cfg.MinioConfig, bucket, baseURL string, log logger.Logger) (*MinioStorage, error) {
	client, err := minio.New(minioConfig.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioConfig.AccessKey, minioConfig.SecretKey, ""),
		Secure: minioConfig.UseSSL,
		Region: minioConfig.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{
			Region: minioConfig.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	if baseURL == "" {
		baseURL = client.EndpointURL().String()
	}

	return &MinioStorage{
		client:     client,
		bucketName: bucket,
		baseURL:    baseURL,
		logger:     log,
	}, nil
}

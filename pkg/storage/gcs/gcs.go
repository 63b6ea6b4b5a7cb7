// Package gcs stores artifacts in a Google Cloud Storage bucket.
package gcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	cfg "github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/storage/location"
)

const defaultBaseURL = "https://storage.googleapis.com"

type GCSStorage struct {
	client     *storage.Client
	bucketName string
	baseURL    string
	logger     logger.Logger
}

func (g *GCSStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := g.client.Bucket(g.bucketName).Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		g.logger.Error("Failed to write object to GCS",
			logger.String("bucket", g.bucketName),
			logger.String("path", path),
			logger.Error(err),
		)
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		g.logger.Error("Failed to finalize GCS upload",
			logger.String("bucket", g.bucketName),
			logger.String("path", path),
			logger.Error(err),
		)
		return "", fmt.Errorf("failed to finalize GCS write: %w", err)
	}

	return location.Public(g.baseURL, g.bucketName, path), nil
}

func (g *GCSStorage) ObjectPath(publicURL string) (string, error) {
	return location.Path(publicURL, g.baseURL, g.bucketName)
}

func (g *GCSStorage) Delete(ctx context.Context, publicURL string) error {
	path, err := g.ObjectPath(publicURL)
	if err != nil {
		g.logger.Debug("Skipping delete of foreign url", logger.String("url", publicURL))
		return nil
	}

	err = g.client.Bucket(g.bucketName).Object(path).Delete(ctx)
	if err == nil || isNotFound(err) {
		return nil
	}
	g.logger.Error("Failed to delete object from GCS",
		logger.String("bucket", g.bucketName),
		logger.String("path", path),
		logger.Error(err),
	)
	return fmt.Errorf("failed to delete file: %w", err)
}

func (g *GCSStorage) Close() error {
	return g.client.Close()
}

// isNotFound treats an already deleted object as success.
func isNotFound(err error) bool {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

func NewGCSStorage(ctx context.Context, gcsConfig cfg.GCSConfig, bucket, baseURL string, log logger.Logger) (*GCSStorage, error) {
	var opts []option.ClientOption
	if gcsConfig.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(gcsConfig.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to verify bucket existence: %w", err)
	}

	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &GCSStorage{
		client:     client,
		bucketName: bucket,
		baseURL:    baseURL,
		logger:     log,
	}, nil
}

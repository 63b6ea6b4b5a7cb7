package storage

import (
	"context"
	"fmt"

	"github.com/feichai0017/exam-solver/config"
	"github.com/feichai0017/exam-solver/pkg/logger"
	"github.com/feichai0017/exam-solver/pkg/storage/gcs"
	"github.com/feichai0017/exam-solver/pkg/storage/location"
	"github.com/feichai0017/exam-solver/pkg/storage/memory"
	"github.com/feichai0017/exam-solver/pkg/storage/minio"
	"github.com/feichai0017/exam-solver/pkg/storage/s3"
)

// StorageType 定义存储类型
type StorageType string

const (
	StorageTypeS3     StorageType = "s3"
	StorageTypeMinio  StorageType = "minio"
	StorageTypeGCS    StorageType = "gcs"
	StorageTypeMemory StorageType = "memory"
)

var ErrInvalidURL = location.ErrInvalidURL

// Storage is a bucket of objects addressed by path and exposed by public URL.
type Storage interface {
	// Upload 覆盖写入对象，返回公开访问地址
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// Delete 按公开地址删除对象；空地址或非本桶地址直接忽略
	Delete(ctx context.Context, publicURL string) error
	// ObjectPath 由公开地址反推对象路径
	ObjectPath(publicURL string) (string, error)
}

// NewStorage 创建存储实例的工厂方法
func NewStorage(ctx context.Context, cfg *config.Config, log logger.Logger) (Storage, error) {
	bucket := cfg.Storage.Bucket
	base := cfg.Storage.PublicBaseURL
	log = log.Named("storage")

	switch StorageType(cfg.Storage.Backend) {
	case StorageTypeS3:
		return s3.NewS3Storage(ctx, cfg.S3, bucket, base, log)
	case StorageTypeMinio:
		return minio.NewMinioStorage(ctx, cfg.Minio, bucket, base, log)
	case StorageTypeGCS:
		return gcs.NewGCSStorage(ctx, cfg.GCS, bucket, base, log)
	case StorageTypeMemory:
		return memory.New(bucket, base), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Backend)
	}
}

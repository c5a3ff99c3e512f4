package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Presigner выдает временные ссылки на загрузку объекта
type Presigner interface {
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// MinioPresigner подписывает PUT запросы к MinIO/S3
type MinioPresigner struct {
	client *minio.Client
	bucket string
}

// NewMinioPresigner подключается к MinIO и создает bucket, если его нет
func NewMinioPresigner(ctx context.Context, endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioPresigner, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return &MinioPresigner{client: client, bucket: bucket}, nil
}

func (p *MinioPresigner) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := p.client.PresignedPutObject(ctx, p.bucket, key, expiry)
	if err != nil {
		return "", fmt.Errorf("presign put: %w", err)
	}
	return u.String(), nil
}

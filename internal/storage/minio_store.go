package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const objectPrefix = "images/"

// MinioStore 图片存到 MinIO/S3 兼容存储，/images/* 由服务端转发读取
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore 连接 MinIO，桶不存在时创建
func NewMinioStore(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
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
	return &MinioStore{client: client, bucket: bucket}, nil
}

func (m *MinioStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	name, err := SafeName(name)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = contentTypeOf(name)
	}
	_, err = m.client.PutObject(ctx, m.bucket, objectPrefix+name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return PublicPrefix + name, nil
}

func (m *MinioStore) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	name, err := SafeName(name)
	if err != nil {
		return nil, "", err
	}
	obj, err := m.client.GetObject(ctx, m.bucket, objectPrefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("get object: %w", err)
	}
	// GetObject 是惰性的，Stat 才会真正发请求
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("stat object: %w", err)
	}
	ct := info.ContentType
	if ct == "" {
		ct = contentTypeOf(name)
	}
	return obj, ct, nil
}

package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinIOConfig struct {
	Endpoint         string
	AccessKey        string
	SecretKey        string
	BucketName       string
	Region           string
	UseSSL           bool
	AutoCreateBucket bool
}

type HealthStatus struct {
	Connected    bool          `json:"connected"`
	BucketExists bool          `json:"bucket_exists"`
	Latency      time.Duration `json:"latency"`
	Error        string        `json:"error,omitempty"`
}

type MinIOService interface {
	PutObject(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error
	DeleteObject(ctx context.Context, objectName string) error
	StatObject(ctx context.Context, objectName string) (minio.ObjectInfo, error)
	PresignedGetURL(ctx context.Context, objectName string, expires time.Duration) (*url.URL, error)
	HealthCheck(ctx context.Context) HealthStatus
	Close() error
}

type MinIOClient struct {
	client *minio.Client
	config MinIOConfig
	mu     sync.RWMutex
}

var _ MinIOService = (*MinIOClient)(nil)

func NewMinIOService(config MinIOConfig) (*MinIOClient, error) {
	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
		Region: config.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	service := &MinIOClient{client: client, config: config}

	if config.AutoCreateBucket {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		exists, err := client.BucketExists(ctx, config.BucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to check bucket %s: %w", config.BucketName, err)
		}

		if !exists {
			if err := client.MakeBucket(ctx, config.BucketName, minio.MakeBucketOptions{Region: config.Region}); err != nil {
				return nil, fmt.Errorf("failed to create bucket %s: %w", config.BucketName, err)
			}
		}
	}

	return service, nil
}

func (m *MinIOClient) PutObject(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := m.client.PutObject(ctx, m.config.BucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object %s: %w", objectName, err)
	}
	return nil
}

func (m *MinIOClient) DeleteObject(ctx context.Context, objectName string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.client.RemoveObject(ctx, m.config.BucketName, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectName, err)
	}
	return nil
}

func (m *MinIOClient) StatObject(ctx context.Context, objectName string) (minio.ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	info, err := m.client.StatObject(ctx, m.config.BucketName, objectName, minio.StatObjectOptions{})
	if err != nil {
		return minio.ObjectInfo{}, fmt.Errorf("failed to stat object %s: %w", objectName, err)
	}
	return info, nil
}

func (m *MinIOClient) PresignedGetURL(ctx context.Context, objectName string, expires time.Duration) (*url.URL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	presigned, err := m.client.PresignedGetObject(ctx, m.config.BucketName, objectName, expires, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL for %s: %w", objectName, err)
	}
	return presigned, nil
}

func (m *MinIOClient) HealthCheck(ctx context.Context) HealthStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := time.Now()
	status := HealthStatus{}

	exists, err := m.client.BucketExists(ctx, m.config.BucketName)
	status.Latency = time.Since(start)

	if err != nil {
		status.Error = fmt.Sprintf("bucket check failed: %v", err)
		return status
	}

	status.Connected = true
	status.BucketExists = exists
	return status
}

func (m *MinIOClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.client = nil
	return nil
}

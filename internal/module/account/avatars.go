package account

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/purinat/auth-account-server/package/minio"
)

const maxAvatarSize = 5 * 1024 * 1024

var allowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// AvatarStore persists profile images and hands back the stored object's
// location.
type AvatarStore interface {
	Upload(ctx context.Context, accountID string, upload *AvatarUpload) (*Avatar, error)
	Remove(ctx context.Context, objectID string) error
}

type minioAvatarStore struct {
	minioService    minio.MinIOService
	presignedExpiry time.Duration
}

var _ AvatarStore = (*minioAvatarStore)(nil)

func NewAvatarStore(minioService minio.MinIOService, presignedExpiry time.Duration) AvatarStore {
	return &minioAvatarStore{
		minioService:    minioService,
		presignedExpiry: presignedExpiry,
	}
}

func (s *minioAvatarStore) Upload(ctx context.Context, accountID string, upload *AvatarUpload) (*Avatar, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: avatar file is empty", ErrInvalidInput)
	}

	if upload.Size > maxAvatarSize {
		return nil, fmt.Errorf("%w: avatar exceeds the %d byte limit", ErrInvalidInput, maxAvatarSize)
	}

	extension, ok := allowedAvatarTypes[strings.ToLower(upload.ContentType)]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported avatar content type %s", ErrInvalidInput, upload.ContentType)
	}

	objectID := path.Join("avatars", accountID, fmt.Sprintf("%d%s", time.Now().UnixNano(), extension))

	err := s.minioService.PutObject(ctx, objectID, bytes.NewReader(upload.Data), int64(len(upload.Data)), upload.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store avatar: %w", err)
	}

	presigned, err := s.minioService.PresignedGetURL(ctx, objectID, s.presignedExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to generate avatar URL: %w", err)
	}

	return &Avatar{
		ObjectID: objectID,
		URL:      presigned.String(),
		Size:     int64(len(upload.Data)),
	}, nil
}

func (s *minioAvatarStore) Remove(ctx context.Context, objectID string) error {
	if objectID == "" {
		return nil
	}

	if err := s.minioService.DeleteObject(ctx, objectID); err != nil {
		return fmt.Errorf("failed to remove avatar: %w", err)
	}

	return nil
}

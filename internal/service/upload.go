package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pageza/preflight/backend/config"
	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/logger"
	"github.com/pageza/preflight/backend/internal/metrics"
	"github.com/pageza/preflight/backend/internal/storage"
	"github.com/pageza/preflight/backend/internal/types"
	"go.uber.org/zap"
)

// UploadService validates image attachments and writes them to the store
type UploadService struct {
	store    storage.AttachmentStore
	prefix   string
	maxMB    int
	maxBytes int64
	now      func() time.Time
}

func NewUploadService(store storage.AttachmentStore, cfg *config.Config) *UploadService {
	return &UploadService{
		store:    store,
		prefix:   cfg.ProjectSlug,
		maxMB:    max(1, cfg.MaxAttachmentMB),
		maxBytes: cfg.MaxAttachmentBytes(),
		now:      time.Now,
	}
}

// MaxBytes is the largest accepted attachment
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

func (s *UploadService) Upload(ctx context.Context, file UploadFile) (*types.UploadResponse, error) {
	if file.Size > s.maxBytes {
		return nil, apierrors.PayloadTooLarge(fmt.Sprintf("file exceeds %dMB limit.", s.maxMB))
	}
	if !strings.HasPrefix(strings.ToLower(file.ContentType), "image/") {
		return nil, apierrors.UnsupportedMediaType("only image uploads are allowed.")
	}
	if s.store == nil {
		return nil, apierrors.InternalError("Attachment storage is not configured.")
	}

	key := storage.ObjectKey(s.prefix, file.Name, s.now())
	obj, err := s.store.Put(ctx, key, file.Body, file.Size, file.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	metrics.Get().AttachmentUploadBytes.Observe(float64(file.Size))
	logger.Log.Info("Attachment uploaded",
		zap.String("key", obj.Key),
		zap.Int64("size", file.Size),
		zap.String("content_type", file.ContentType),
	)

	return &types.UploadResponse{
		URL:         obj.URL,
		Path:        obj.Key,
		Size:        file.Size,
		ContentType: file.ContentType,
		Bucket:      obj.Bucket,
	}, nil
}

package mocks

import (
	"context"
	"io"

	"github.com/pageza/preflight/backend/internal/email"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/storage"
	"github.com/pageza/preflight/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockAttachmentStore is a mock implementation of storage.AttachmentStore
type MockAttachmentStore struct {
	mock.Mock
}

func (m *MockAttachmentStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (*storage.Object, error) {
	args := m.Called(ctx, key, body, size, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Object), args.Error(1)
}

// MockSender is a mock implementation of email.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockNotifier is a mock implementation of the feedback notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyStatusChanged(ctx context.Context, p email.StatusChange) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockNotifier) NotifyCommentAdded(ctx context.Context, p email.CommentAdded) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockNotifier) NotifyNewFeedback(ctx context.Context, p email.NewFeedback) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockSessionResolver is a mock implementation of middleware.SessionResolver
type MockSessionResolver struct {
	mock.Mock
}

func (m *MockSessionResolver) SessionFromToken(token string) (types.Session, error) {
	args := m.Called(token)
	return args.Get(0).(types.Session), args.Error(1)
}

// MockUploadService is a mock implementation of service.IUploadService
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, file service.UploadFile) (*types.UploadResponse, error) {
	args := m.Called(ctx, file)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UploadResponse), args.Error(1)
}

func (m *MockUploadService) MaxBytes() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}

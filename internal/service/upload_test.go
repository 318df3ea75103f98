package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/pageza/preflight/backend/internal/mocks"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/storage"
	"github.com/pageza/preflight/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUpload_StoresImage(t *testing.T) {
	store := new(mocks.MockAttachmentStore)
	cfg := testhelpers.TestConfig()
	svc := service.NewUploadService(store, cfg)

	keyMatcher := mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "preflight/") && strings.HasSuffix(key, "-my_screen_shot.png")
	})
	store.On("Put", mock.Anything, keyMatcher, mock.Anything, int64(4), "image/png").
		Return(&storage.Object{Key: "preflight/1-abc-my_screen_shot.png", URL: "https://cdn.example.com/preflight/1-abc-my_screen_shot.png", Bucket: "feedback-attachments"}, nil)

	resp, err := svc.Upload(context.Background(), service.UploadFile{
		Name:        "my screen shot.png",
		ContentType: "image/png",
		Size:        4,
		Body:        strings.NewReader("data"),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/preflight/1-abc-my_screen_shot.png", resp.URL)
	assert.Equal(t, "preflight/1-abc-my_screen_shot.png", resp.Path)
	assert.Equal(t, int64(4), resp.Size)
	assert.Equal(t, "image/png", resp.ContentType)
	assert.Equal(t, "feedback-attachments", resp.Bucket)
	store.AssertExpectations(t)
}

func TestUpload_Rejections(t *testing.T) {
	store := new(mocks.MockAttachmentStore)
	cfg := testhelpers.TestConfig()
	svc := service.NewUploadService(store, cfg)
	assert.Equal(t, int64(1024*1024), svc.MaxBytes())

	_, err := svc.Upload(context.Background(), service.UploadFile{Name: "big.png", ContentType: "image/png", Size: svc.MaxBytes() + 1})
	apiErr := requireAPIError(t, err, http.StatusRequestEntityTooLarge)
	assert.Equal(t, "file exceeds 1MB limit.", apiErr.Message)

	_, err = svc.Upload(context.Background(), service.UploadFile{Name: "doc.pdf", ContentType: "application/pdf", Size: 10})
	apiErr = requireAPIError(t, err, http.StatusUnsupportedMediaType)
	assert.Equal(t, "only image uploads are allowed.", apiErr.Message)

	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_StoreFailure(t *testing.T) {
	store := new(mocks.MockAttachmentStore)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("s3 down"))
	svc := service.NewUploadService(store, testhelpers.TestConfig())

	_, err := svc.Upload(context.Background(), service.UploadFile{Name: "a.jpg", ContentType: "image/jpeg", Size: 1, Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3 down")
}

func TestUpload_WithoutStore(t *testing.T) {
	svc := service.NewUploadService(nil, testhelpers.TestConfig())

	_, err := svc.Upload(context.Background(), service.UploadFile{Name: "a.gif", ContentType: "image/gif", Size: 1, Body: strings.NewReader("x")})
	requireAPIError(t, err, http.StatusInternalServerError)
}

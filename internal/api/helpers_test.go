package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/preflight/backend/internal/middleware"
	"github.com/pageza/preflight/backend/internal/mocks"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/testhelpers"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	router     *gin.Engine
	db         *gorm.DB
	project    *models.Project
	auth       *service.AuthService
	store      *mocks.MockAttachmentStore
	notifier   *mocks.MockNotifier
	background *service.Background
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLite(t)
	cfg := testhelpers.TestConfig()
	project := testhelpers.SeedProject(t, db, cfg.ProjectSlug)

	notifier := new(mocks.MockNotifier)
	notifier.On("NotifyNewFeedback", mock.Anything, mock.Anything).Return(nil).Maybe()
	notifier.On("NotifyStatusChanged", mock.Anything, mock.Anything).Return(nil).Maybe()
	notifier.On("NotifyCommentAdded", mock.Anything, mock.Anything).Return(nil).Maybe()
	store := new(mocks.MockAttachmentStore)

	bg := service.NewBackground(5 * time.Second)
	t.Cleanup(bg.Wait)

	projects := service.NewProjectService(db, cfg.ProjectSlug)
	profiles := service.NewProfileService(db)
	preferences := service.NewPreferenceService(db, projects)
	auth := service.NewAuthService(cfg)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery())
	RegisterRoutes(router, Services{
		Auth:        auth,
		Feedback:    service.NewFeedbackService(db, projects, profiles, preferences, notifier, bg),
		Comments:    service.NewCommentService(db, projects, profiles, preferences, notifier, bg),
		Preferences: preferences,
		Uploads:     service.NewUploadService(store, cfg),
		Intake:      service.NewIntakeService(db, projects),
	}, nil)

	return &testServer{
		router:     router,
		db:         db,
		project:    project,
		auth:       auth,
		store:      store,
		notifier:   notifier,
		background: bg,
	}
}

// token signs a session token for email
func (s *testServer) token(t *testing.T, email string) string {
	t.Helper()
	token, err := s.auth.GenerateToken(email)
	require.NoError(t, err)
	return token
}

// perform sends body as JSON. token may be empty for anonymous calls.
func (s *testServer) perform(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		jsonBody, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

// createFeedback submits anonymously and returns the new id
func (s *testServer) createFeedback(t *testing.T, email, subject string) string {
	t.Helper()
	w := s.perform(http.MethodPost, "/api/v1/feedback", map[string]interface{}{
		"subject":     subject,
		"description": "Details for " + subject,
		"email":       email,
	}, "")
	requireStatus(t, w, http.StatusCreated)
	s.background.Wait()
	return decode(t, w)["id"].(string)
}

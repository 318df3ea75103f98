package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	apierrors "github.com/pageza/preflight/backend/internal/errors"
	"github.com/pageza/preflight/backend/internal/mocks"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/testhelpers"
	"github.com/pageza/preflight/backend/internal/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	adminSession = types.Session{Email: "admin@example.com", IsAdmin: true}
	userSession  = types.Session{Email: "user@example.com"}
	anonymous    = types.Session{}
)

type fixture struct {
	db          *gorm.DB
	project     *models.Project
	notifier    *mocks.MockNotifier
	background  *service.Background
	profiles    *service.ProfileService
	preferences *service.PreferenceService
	feedback    *service.FeedbackService
	comments    *service.CommentService
	intake      *service.IntakeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testhelpers.SetupSQLite(t)
	cfg := testhelpers.TestConfig()
	project := testhelpers.SeedProject(t, db, cfg.ProjectSlug)

	notifier := new(mocks.MockNotifier)
	notifier.On("NotifyNewFeedback", mock.Anything, mock.Anything).Return(nil).Maybe()
	notifier.On("NotifyStatusChanged", mock.Anything, mock.Anything).Return(nil).Maybe()
	notifier.On("NotifyCommentAdded", mock.Anything, mock.Anything).Return(nil).Maybe()

	bg := service.NewBackground(5 * time.Second)
	// registered after the database so it runs before the connection closes
	t.Cleanup(bg.Wait)

	projects := service.NewProjectService(db, cfg.ProjectSlug)
	profiles := service.NewProfileService(db)
	preferences := service.NewPreferenceService(db, projects)

	return &fixture{
		db:          db,
		project:     project,
		notifier:    notifier,
		background:  bg,
		profiles:    profiles,
		preferences: preferences,
		feedback:    service.NewFeedbackService(db, projects, profiles, preferences, notifier, bg),
		comments:    service.NewCommentService(db, projects, profiles, preferences, notifier, bg),
		intake:      service.NewIntakeService(db, projects),
	}
}

// submit creates a feedback item through the service as an anonymous reporter
func (f *fixture) submit(t *testing.T, reporter, subject string) *models.Feedback {
	t.Helper()
	row, err := f.feedback.CreateFeedback(context.Background(), anonymous, &types.CreateFeedbackRequest{
		Subject:     subject,
		Description: "Details for " + subject,
		Email:       reporter,
	})
	require.NoError(t, err)
	f.background.Wait()
	return row
}

func requireAPIError(t *testing.T, err error, status int) *apierrors.APIError {
	t.Helper()
	require.Error(t, err)
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr), "expected APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.Status, apiErr.Message)
	return apiErr
}

func notifierCalls(n *mocks.MockNotifier, method string) []mock.Call {
	var calls []mock.Call
	for _, call := range n.Calls {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

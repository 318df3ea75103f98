package service_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/preflight/backend/internal/email"
	"github.com/pageza/preflight/backend/internal/feedback"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/testhelpers"
	"github.com/pageza/preflight/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateFeedback_Anonymous(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	row, err := f.feedback.CreateFeedback(ctx, anonymous, &types.CreateFeedbackRequest{
		Type:        "bug_report",
		Priority:    "high",
		Subject:     "  Export crashes  ",
		Description: "Steps:\nopen export",
		Email:       "Reporter@Example.com",
		Attachments: []string{" https://cdn.example.com/a.png ", "ftp://nope", "http://cdn.example.com/b.png"},
		Reference:   "https://app.example.com/export",
	})
	require.NoError(t, err)
	f.background.Wait()

	assert.Equal(t, "Export crashes", row.Title)
	assert.Equal(t, string(feedback.StatusOpen), row.Status)
	assert.Equal(t, f.project.ID, row.ProjectID)
	assert.Equal(t,
		"Type: BUG_REPORT\nPriority: HIGH\nSource: web\nReference: https://app.example.com/export\n\nSteps:\nopen export\n\n[ATTACHMENTS]\nhttps://cdn.example.com/a.png\nhttp://cdn.example.com/b.png",
		row.Description)

	var profile models.Profile
	require.NoError(t, f.db.First(&profile, "id = ?", *row.UserID).Error)
	assert.Equal(t, "reporter+widget@example.com", profile.Email)
	assert.Equal(t, "reporter", profile.FullName)

	var trail models.IntakeEvent
	require.NoError(t, f.db.First(&trail, "feedback_id = ?", row.ID).Error)
	assert.Equal(t, service.EventFeedbackSubmitted, trail.EventType)
	assert.Equal(t, "reporter@example.com", trail.ReporterEmail)
	assert.Equal(t, "web|reporter@example.com|export crashes", trail.DedupeKey)
	assert.True(t, trail.Linked())

	f.notifier.AssertCalled(t, "NotifyNewFeedback", mock.Anything, mock.MatchedBy(func(p email.NewFeedback) bool {
		return p.FeedbackID == row.ID.String() && p.Title == "Export crashes" && p.Type == "BUG_REPORT" && p.Preview == "Steps:"
	}))
}

func TestCreateFeedback_RepeatSubmissionKeepsOneTrail(t *testing.T) {
	f := newFixture(t)
	req := types.CreateFeedbackRequest{Subject: "Export crashes", Description: "again", Email: "reporter@example.com"}

	first, err := f.feedback.CreateFeedback(context.Background(), anonymous, &req)
	require.NoError(t, err)
	second, err := f.feedback.CreateFeedback(context.Background(), anonymous, &req)
	require.NoError(t, err)
	f.background.Wait()
	assert.NotEqual(t, first.ID, second.ID)

	var trails []models.IntakeEvent
	require.NoError(t, f.db.Where("dedupe_key = ?", "web|reporter@example.com|export crashes").Find(&trails).Error)
	require.Len(t, trails, 1)
	assert.Contains(t, []uuid.UUID{first.ID, second.ID}, *trails[0].FeedbackID)
}

func TestCreateFeedback_AuthenticatedUsesSessionEmail(t *testing.T) {
	f := newFixture(t)

	row, err := f.feedback.CreateFeedback(context.Background(), userSession, &types.CreateFeedbackRequest{
		Subject:     "Dark mode",
		Description: "Please",
		Email:       "someone-else@example.com",
		Source:      "widget",
	})
	require.NoError(t, err)
	f.background.Wait()

	var profile models.Profile
	require.NoError(t, f.db.First(&profile, "id = ?", *row.UserID).Error)
	assert.Equal(t, "user@example.com", profile.Email)

	parsed := feedback.DecodeContent(row.Description)
	assert.Equal(t, feedback.DefaultType, parsed.Type)
	assert.Equal(t, feedback.DefaultPriority, parsed.Priority)
	assert.Equal(t, "widget", parsed.Source)
}

func TestCreateFeedback_ReusesExistingProfile(t *testing.T) {
	f := newFixture(t)

	first := f.submit(t, "repeat@example.com", "One")
	second := f.submit(t, "repeat@example.com", "Two")

	assert.Equal(t, *first.UserID, *second.UserID)

	var count int64
	require.NoError(t, f.db.Model(&models.Profile{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateFeedback_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		session types.Session
		req     types.CreateFeedbackRequest
		message string
	}{
		{
			name:    "missing subject",
			session: userSession,
			req:     types.CreateFeedbackRequest{Subject: "  ", Description: "body"},
			message: "subject and description are required.",
		},
		{
			name:    "missing description",
			session: userSession,
			req:     types.CreateFeedbackRequest{Subject: "title"},
			message: "subject and description are required.",
		},
		{
			name:    "anonymous without email",
			session: anonymous,
			req:     types.CreateFeedbackRequest{Subject: "title", Description: "body"},
			message: "email is required when unauthenticated.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := f.feedback.CreateFeedback(ctx, tt.session, &req)
			apiErr := requireAPIError(t, err, http.StatusBadRequest)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Feedback{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateFeedback_MissingProject(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Where("1 = 1").Delete(&models.Project{}).Error)

	_, err := f.feedback.CreateFeedback(context.Background(), userSession, &types.CreateFeedbackRequest{
		Subject: "title", Description: "body",
	})
	apiErr := requireAPIError(t, err, http.StatusNotFound)
	assert.Equal(t, "Target project was not found.", apiErr.Message)
}

func TestGetFeedback(t *testing.T) {
	f := newFixture(t)
	row := f.submit(t, "reader@example.com", "Readable")

	item, err := f.feedback.GetFeedback(context.Background(), row.ID.String())
	require.NoError(t, err)
	assert.Equal(t, row.ID.String(), item.ID)
	assert.Equal(t, "Details for Readable", item.Description)
	assert.Equal(t, "Details for Readable", item.Preview)
	assert.Equal(t, "open", item.Status)
	assert.Equal(t, "web", item.Source)
	assert.NotNil(t, item.Attachments)

	_, err = f.feedback.GetFeedback(context.Background(), uuid.NewString())
	requireAPIError(t, err, http.StatusNotFound)

	_, err = f.feedback.GetFeedback(context.Background(), "not-a-uuid")
	requireAPIError(t, err, http.StatusNotFound)
}

func TestListFeedback_SortAndFilter(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	seed := func(title, status string, upvotes int, age time.Duration) {
		testhelpers.SeedFeedback(t, f.db, &models.Feedback{
			ProjectID:   f.project.ID,
			Title:       title,
			Description: feedback.EncodeContent(feedback.Envelope{Body: title + " body"}),
			Status:      status,
			Upvotes:     upvotes,
			CreatedAt:   now.Add(-age),
		})
	}
	seed("oldest", "open", 50, 72*time.Hour)
	seed("middle", "planned", 3, 24*time.Hour)
	seed("newest", "shipped", 10, time.Hour)
	seed("legacy", "weird", 1, 48*time.Hour)

	titles := func(items []types.FeedbackItem) []string {
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = item.Title
		}
		return out
	}

	resp, err := f.feedback.ListFeedback(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "new", resp.Sort)
	assert.Equal(t, []string{"newest", "middle", "legacy", "oldest"}, titles(resp.Items))
	assert.Equal(t, "open", resp.Items[2].Status, "unknown stored status reads as open")

	resp, err = f.feedback.ListFeedback(context.Background(), "popular", "")
	require.NoError(t, err)
	assert.Equal(t, "popular", resp.Sort)
	assert.Equal(t, []string{"oldest", "newest", "middle", "legacy"}, titles(resp.Items))

	resp, err = f.feedback.ListFeedback(context.Background(), "trending", "")
	require.NoError(t, err)
	assert.Equal(t, "trending", resp.Sort)
	assert.Equal(t, "newest", resp.Items[0].Title)

	resp, err = f.feedback.ListFeedback(context.Background(), "bogus", "planned, NEW ,nope,planned")
	require.NoError(t, err)
	assert.Equal(t, "new", resp.Sort)
	assert.Equal(t, []string{"middle", "oldest"}, titles(resp.Items))

	resp, err = f.feedback.ListFeedback(context.Background(), "", "nope")
	require.NoError(t, err)
	assert.Len(t, resp.Items, 4)
}

func TestListFeedback_Empty(t *testing.T) {
	f := newFixture(t)

	resp, err := f.feedback.ListFeedback(context.Background(), "popular", "")
	require.NoError(t, err)
	assert.NotNil(t, resp.Items)
	assert.Empty(t, resp.Items)
}

func TestUpdateFeedbackStatus_Authorization(t *testing.T) {
	f := newFixture(t)
	row := f.submit(t, "owner@example.com", "Guarded")

	_, err := f.feedback.UpdateFeedbackStatus(context.Background(), anonymous, row.ID.String(), "planned")
	requireAPIError(t, err, http.StatusUnauthorized)

	_, err = f.feedback.UpdateFeedbackStatus(context.Background(), userSession, row.ID.String(), "planned")
	requireAPIError(t, err, http.StatusForbidden)

	_, err = f.feedback.UpdateFeedbackStatus(context.Background(), adminSession, row.ID.String(), "archived")
	apiErr := requireAPIError(t, err, http.StatusBadRequest)
	assert.Equal(t, "Invalid status.", apiErr.Message)

	_, err = f.feedback.UpdateFeedbackStatus(context.Background(), adminSession, uuid.NewString(), "planned")
	requireAPIError(t, err, http.StatusNotFound)
}

func TestUpdateFeedbackStatus_NotifiesOwner(t *testing.T) {
	f := newFixture(t)
	row := f.submit(t, "owner@example.com", "Roadmap item")

	status, err := f.feedback.UpdateFeedbackStatus(context.Background(), adminSession, row.ID.String(), " PLANNED ")
	require.NoError(t, err)
	assert.Equal(t, "planned", status)
	f.background.Wait()

	var stored models.Feedback
	require.NoError(t, f.db.First(&stored, "id = ?", row.ID).Error)
	assert.Equal(t, "planned", stored.Status)

	f.notifier.AssertCalled(t, "NotifyStatusChanged", mock.Anything, email.StatusChange{
		ToEmail:        "owner@example.com",
		FeedbackID:     row.ID.String(),
		FeedbackTitle:  "Roadmap item",
		PreviousStatus: feedback.StatusOpen,
		NextStatus:     feedback.StatusPlanned,
		ActorEmail:     "admin@example.com",
	})

	// same status again is a no-op for notifications
	_, err = f.feedback.UpdateFeedbackStatus(context.Background(), adminSession, row.ID.String(), "planned")
	require.NoError(t, err)
	f.background.Wait()
	assert.Len(t, notifierCalls(f.notifier, "NotifyStatusChanged"), 1)

	// "new" is accepted as open
	status, err = f.feedback.UpdateFeedbackStatus(context.Background(), adminSession, row.ID.String(), "new")
	require.NoError(t, err)
	assert.Equal(t, "open", status)
}

func TestUpdateFeedbackStatus_HonoursPreferences(t *testing.T) {
	f := newFixture(t)
	row := f.submit(t, "owner@example.com", "Quiet please")

	_, err := f.preferences.SavePreferences(context.Background(), anonymous, row.ID.String(), &types.NotificationPreferencesRequest{
		Email:         "owner@example.com",
		StatusUpdates: true,
	})
	require.NoError(t, err)

	_, err = f.feedback.UpdateFeedbackStatus(context.Background(), adminSession, row.ID.String(), "shipped")
	require.NoError(t, err)
	f.background.Wait()
	assert.Empty(t, notifierCalls(f.notifier, "NotifyStatusChanged"), "resolution updates are off")

	_, err = f.feedback.UpdateFeedbackStatus(context.Background(), adminSession, row.ID.String(), "in_progress")
	require.NoError(t, err)
	f.background.Wait()
	assert.Len(t, notifierCalls(f.notifier, "NotifyStatusChanged"), 1)
}

func TestUpdateFeedbackStatus_SkipsActorOwnItem(t *testing.T) {
	f := newFixture(t)
	row, err := f.feedback.CreateFeedback(context.Background(), adminSession, &types.CreateFeedbackRequest{
		Subject: "Own item", Description: "body",
	})
	require.NoError(t, err)

	_, err = f.feedback.UpdateFeedbackStatus(context.Background(), adminSession, row.ID.String(), "planned")
	require.NoError(t, err)
	f.background.Wait()

	assert.Empty(t, notifierCalls(f.notifier, "NotifyStatusChanged"))
}

func TestUpvote(t *testing.T) {
	f := newFixture(t)
	row := f.submit(t, "voter@example.com", "Popular")

	upvotes, err := f.feedback.Upvote(context.Background(), row.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 1, upvotes)

	upvotes, err = f.feedback.Upvote(context.Background(), row.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 2, upvotes)

	_, err = f.feedback.Upvote(context.Background(), uuid.NewString())
	requireAPIError(t, err, http.StatusNotFound)
}

package service_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/preflight/backend/internal/feedback"
	"github.com/pageza/preflight/backend/internal/models"
	"github.com/pageza/preflight/backend/internal/service"
	"github.com/pageza/preflight/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampIntakeLimit(t *testing.T) {
	tests := map[int]int{
		0:    1,
		-5:   1,
		1:    1,
		42:   42,
		100:  100,
		5000: service.MaxIntakeLimit,
	}
	for in, want := range tests {
		assert.Equal(t, want, service.ClampIntakeLimit(in), "limit %d", in)
	}
}

func TestCreateIntake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event, duplicate, err := f.intake.CreateIntake(ctx, adminSession, &types.CreateIntakeRequest{
		Source:        " Email ",
		Title:         "  Login   broken ",
		Notes:         "Cannot sign in",
		ReporterEmail: "Jane@Example.com",
		ReferenceURL:  "https://mail.example.com/123",
		Type:          "bug_report",
	})
	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.Equal(t, "email", event.Source)
	assert.Equal(t, "report", event.EventType)
	assert.Equal(t, "jane@example.com", event.ReporterEmail)
	assert.Equal(t, "email|jane@example.com|login broken", event.DedupeKey)
	assert.Equal(t, "Login   broken", event.Payload.Title)
	assert.Equal(t, feedback.TypeBugReport, event.Payload.Type)
	assert.Equal(t, feedback.PriorityMedium, event.Payload.Priority)
	assert.False(t, event.Linked())

	again, duplicate, err := f.intake.CreateIntake(ctx, adminSession, &types.CreateIntakeRequest{
		Source:        "email",
		Title:         "login broken",
		ReporterEmail: "jane@example.com",
	})
	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.Equal(t, event.ID, again.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.IntakeEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	other, duplicate, err := f.intake.CreateIntake(ctx, adminSession, &types.CreateIntakeRequest{Title: "login broken"})
	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.Equal(t, "web", other.Source)
	assert.Equal(t, "web||login broken", other.DedupeKey)
}

func TestCreateIntake_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.intake.CreateIntake(ctx, anonymous, &types.CreateIntakeRequest{Title: "x"})
	requireAPIError(t, err, http.StatusUnauthorized)

	_, _, err = f.intake.CreateIntake(ctx, userSession, &types.CreateIntakeRequest{Title: "x"})
	requireAPIError(t, err, http.StatusForbidden)

	_, _, err = f.intake.CreateIntake(ctx, adminSession, &types.CreateIntakeRequest{Title: "  "})
	apiErr := requireAPIError(t, err, http.StatusBadRequest)
	assert.Equal(t, "title is required.", apiErr.Message)
}

func TestCreateIntake_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := types.CreateIntakeRequest{Source: "slack", Title: "Checkout 500", ReporterEmail: "ops@example.com"}

	const workers = 8
	var wg sync.WaitGroup
	results := make([]bool, workers)
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := req
			event, duplicate, err := f.intake.CreateIntake(ctx, adminSession, &r)
			errs[i] = err
			if err == nil {
				results[i] = duplicate
				ids[i] = event.ID
			}
		}(i)
	}
	wg.Wait()

	fresh := 0
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
		if !results[i] {
			fresh++
		}
	}
	assert.Equal(t, 1, fresh)

	var count int64
	require.NoError(t, f.db.Model(&models.IntakeEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListIntake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 5; i++ {
		require.NoError(t, f.db.Create(&models.IntakeEvent{
			CreatedAt: now.Add(time.Duration(i) * time.Minute),
			ProjectID: f.project.ID,
			Source:    "web",
			EventType: "report",
			Payload:   models.IntakePayload{Title: string(rune('a' + i))},
			DedupeKey: uuid.NewString(),
		}).Error)
	}

	events, err := f.intake.ListIntake(ctx, adminSession, service.DefaultIntakeLimit)
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.Equal(t, "e", events[0].Payload.Title)
	assert.Equal(t, "a", events[4].Payload.Title)

	events, err = f.intake.ListIntake(ctx, adminSession, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = f.intake.ListIntake(ctx, adminSession, -1)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = f.intake.ListIntake(ctx, adminSession, 0)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = f.intake.ListIntake(ctx, userSession, 10)
	requireAPIError(t, err, http.StatusForbidden)
}

func TestConvertIntake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	event, _, err := f.intake.CreateIntake(ctx, adminSession, &types.CreateIntakeRequest{
		Source:        "slack",
		Title:         "Slow dashboard",
		Notes:         "Takes 10s",
		ReporterEmail: "pat@example.com",
		ReferenceURL:  "https://slack.example.com/msg/1",
		Priority:      "high",
	})
	require.NoError(t, err)

	feedbackID, err := f.intake.ConvertIntake(ctx, adminSession, event.ID.String())
	require.NoError(t, err)

	var row models.Feedback
	require.NoError(t, f.db.First(&row, "id = ?", feedbackID).Error)
	assert.Equal(t, "Slow dashboard", row.Title)
	assert.Equal(t, "open", row.Status)
	parsed := feedback.DecodeContent(row.Description)
	assert.Equal(t, "Takes 10s", parsed.Body)
	assert.Equal(t, "slack", parsed.Source)
	assert.Equal(t, "https://slack.example.com/msg/1", parsed.Reference)
	assert.Equal(t, feedback.PriorityHigh, parsed.Priority)

	require.NotNil(t, row.UserID)
	owner, err := f.profiles.OwnerEmail(ctx, row.UserID)
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", owner)

	var linked models.IntakeEvent
	require.NoError(t, f.db.First(&linked, "id = ?", event.ID).Error)
	require.True(t, linked.Linked())
	assert.Equal(t, feedbackID, *linked.FeedbackID)
	require.NotNil(t, linked.ConvertedBy)
	assert.Equal(t, "admin@example.com", *linked.ConvertedBy)
	assert.NotNil(t, linked.ConvertedAt)

	_, err = f.intake.ConvertIntake(ctx, adminSession, event.ID.String())
	apiErr := requireAPIError(t, err, http.StatusConflict)
	assert.Equal(t, feedbackID.String(), apiErr.Extra["feedback_id"])

	_, err = f.intake.ConvertIntake(ctx, adminSession, uuid.NewString())
	requireAPIError(t, err, http.StatusNotFound)
}

func TestConvertIntake_Defaults(t *testing.T) {
	f := newFixture(t)

	event := &models.IntakeEvent{
		ProjectID: f.project.ID,
		EventType: "report",
		DedupeKey: "x",
	}
	require.NoError(t, f.db.Create(event).Error)
	require.NoError(t, f.db.Model(event).Update("source", "").Error)

	feedbackID, err := f.intake.ConvertIntake(context.Background(), adminSession, event.ID.String())
	require.NoError(t, err)

	var row models.Feedback
	require.NoError(t, f.db.First(&row, "id = ?", feedbackID).Error)
	assert.Equal(t, "Imported intake event", row.Title)
	assert.Nil(t, row.UserID)
	parsed := feedback.DecodeContent(row.Description)
	assert.Equal(t, "Imported from intake log.", parsed.Body)
	assert.Equal(t, "other", parsed.Source)
}

func TestLinkIntake(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	target := f.submit(t, "owner@example.com", "Existing")

	event, _, err := f.intake.CreateIntake(ctx, adminSession, &types.CreateIntakeRequest{Title: "Same as existing"})
	require.NoError(t, err)

	_, err = f.intake.LinkIntake(ctx, adminSession, event.ID.String(), &types.LinkIntakeRequest{})
	apiErr := requireAPIError(t, err, http.StatusBadRequest)
	assert.Equal(t, "feedback_id is required.", apiErr.Message)

	_, err = f.intake.LinkIntake(ctx, adminSession, event.ID.String(), &types.LinkIntakeRequest{FeedbackID: uuid.NewString()})
	apiErr = requireAPIError(t, err, http.StatusNotFound)
	assert.Equal(t, "feedback_id not found in project.", apiErr.Message)

	_, err = f.intake.LinkIntake(ctx, adminSession, uuid.NewString(), &types.LinkIntakeRequest{FeedbackID: target.ID.String()})
	requireAPIError(t, err, http.StatusNotFound)

	linked, err := f.intake.LinkIntake(ctx, adminSession, event.ID.String(), &types.LinkIntakeRequest{FeedbackID: target.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, event.ID.String(), linked.ID)
	assert.Equal(t, target.ID.String(), linked.FeedbackID)
	require.NotNil(t, linked.ConvertedBy)
	assert.Equal(t, "admin@example.com", *linked.ConvertedBy)

	other := f.submit(t, "owner@example.com", "Other")
	_, err = f.intake.LinkIntake(ctx, adminSession, event.ID.String(), &types.LinkIntakeRequest{FeedbackID: other.ID.String()})
	apiErr = requireAPIError(t, err, http.StatusConflict)
	assert.Equal(t, target.ID.String(), apiErr.Extra["feedback_id"])

	_, err = f.intake.LinkIntake(ctx, userSession, event.ID.String(), &types.LinkIntakeRequest{FeedbackID: target.ID.String()})
	requireAPIError(t, err, http.StatusForbidden)
}

func TestLinkIntake_ConcurrentLinksKeepFirstWriter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.submit(t, "owner@example.com", "A")
	b := f.submit(t, "owner@example.com", "B")

	event, _, err := f.intake.CreateIntake(ctx, adminSession, &types.CreateIntakeRequest{Title: "race"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, target := range []*models.Feedback{a, b} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.intake.LinkIntake(ctx, adminSession, event.ID.String(), &types.LinkIntakeRequest{FeedbackID: id})
		}(i, target.ID.String())
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireAPIError(t, err, http.StatusConflict)
	}
	assert.Equal(t, 1, succeeded)
}

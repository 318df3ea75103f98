package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/pageza/preflight/backend/internal/feedback"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	defaultBaseURL   = "http://localhost:3000"
	defaultActor     = "Preflight team"
	maxCommentLength = 280
)

// StatusChange describes a workflow move on a feedback item
type StatusChange struct {
	ToEmail        string
	FeedbackID     string
	FeedbackTitle  string
	PreviousStatus feedback.Status
	NextStatus     feedback.Status
	ActorEmail     string
}

// CommentAdded describes a new comment on a feedback item
type CommentAdded struct {
	ToEmail       string
	FeedbackID    string
	FeedbackTitle string
	CommentBody   string
	ActorEmail    string
}

// NewFeedback describes a fresh submission, sent to the admin inbox
type NewFeedback struct {
	FeedbackID     string
	Title          string
	Type           string
	Priority       string
	Preview        string
	SubmitterEmail string
}

// Notifier renders feedback notifications and hands them to a Sender
type Notifier struct {
	sender     Sender
	baseURL    string
	adminEmail string
}

// NewNotifier creates a notifier. adminEmail may be empty, which disables
// new-feedback notifications.
func NewNotifier(sender Sender, baseURL, adminEmail string) *Notifier {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Notifier{sender: sender, baseURL: baseURL, adminEmail: adminEmail}
}

// ReportURL links to the public report page of a feedback item
func (n *Notifier) ReportURL(feedbackID string) string {
	return fmt.Sprintf("%s/report/%s", n.baseURL, feedbackID)
}

// NotifyStatusChanged tells the submitter their feedback moved
func (n *Notifier) NotifyStatusChanged(ctx context.Context, p StatusChange) error {
	link := n.ReportURL(p.FeedbackID)
	actor := actorOrDefault(p.ActorEmail)
	previous := feedback.StatusLabel(p.PreviousStatus)
	next := feedback.StatusLabel(p.NextStatus)

	msg := Message{
		To:      p.ToEmail,
		Subject: fmt.Sprintf(`[Preflight] "%s" moved to %s`, SingleLine(p.FeedbackTitle), next),
		HTMLBody: fmt.Sprintf(`
			<p>Hi,</p>
			<p>Your feedback status was updated.</p>
			<p><strong>%s</strong></p>
			<p>Status: <strong>%s</strong> &rarr; <strong>%s</strong></p>
			<p>Updated by: %s</p>
			<p><a href="%s">Open report</a></p>
		`, html.EscapeString(p.FeedbackTitle), previous, next, html.EscapeString(actor), link),
		TextBody: fmt.Sprintf("Your feedback status was updated.\n\n%s\nStatus: %s -> %s\nUpdated by: %s\n\n%s\n",
			p.FeedbackTitle, previous, next, actor, link),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send status notification: %w", err)
	}
	return nil
}

// NotifyCommentAdded tells the submitter someone commented on their feedback
func (n *Notifier) NotifyCommentAdded(ctx context.Context, p CommentAdded) error {
	link := n.ReportURL(p.FeedbackID)
	actor := actorOrDefault(p.ActorEmail)
	excerpt := TrimComment(p.CommentBody)

	msg := Message{
		To:      p.ToEmail,
		Subject: fmt.Sprintf(`[Preflight] New comment on "%s"`, SingleLine(p.FeedbackTitle)),
		HTMLBody: fmt.Sprintf(`
			<p>Hi,</p>
			<p>A new comment was added to your feedback.</p>
			<p><strong>%s</strong></p>
			<p>From: %s</p>
			<blockquote>%s</blockquote>
			<p><a href="%s">Open report</a></p>
		`, html.EscapeString(p.FeedbackTitle), html.EscapeString(actor), html.EscapeString(excerpt), link),
		TextBody: fmt.Sprintf("A new comment was added to your feedback.\n\n%s\nFrom: %s\n\n> %s\n\n%s\n",
			p.FeedbackTitle, actor, excerpt, link),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send comment notification: %w", err)
	}
	return nil
}

// NotifyNewFeedback tells the admin inbox about a submission. It is a no-op when
// no admin address is configured.
func (n *Notifier) NotifyNewFeedback(ctx context.Context, p NewFeedback) error {
	if n.adminEmail == "" {
		return nil
	}
	link := n.ReportURL(p.FeedbackID)
	kind := HumanLabel(p.Type)

	msg := Message{
		To:      n.adminEmail,
		Subject: fmt.Sprintf("[Preflight] New %s: %s", kind, SingleLine(p.Title)),
		HTMLBody: fmt.Sprintf(`
			<p>New feedback was submitted.</p>
			<p><strong>%s</strong></p>
			<p>Type: %s<br>Priority: %s<br>From: %s</p>
			<blockquote>%s</blockquote>
			<p><a href="%s">Open report</a></p>
		`, html.EscapeString(p.Title), kind, HumanLabel(p.Priority), html.EscapeString(p.SubmitterEmail),
			html.EscapeString(p.Preview), link),
		TextBody: fmt.Sprintf("New feedback was submitted.\n\n%s\nType: %s\nPriority: %s\nFrom: %s\n\n> %s\n\n%s\n",
			p.Title, kind, HumanLabel(p.Priority), p.SubmitterEmail, p.Preview, link),
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send new feedback notification: %w", err)
	}
	return nil
}

// TrimComment collapses whitespace and cuts the text to 280 characters
func TrimComment(comment string) string {
	clean := strings.Join(strings.Fields(comment), " ")
	runes := []rune(clean)
	if len(runes) > maxCommentLength {
		return string(runes[:maxCommentLength]) + "..."
	}
	return clean
}

// SingleLine collapses every whitespace run, line breaks included, to one space
// so user text can sit in a header
func SingleLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// HumanLabel turns an enum such as FEATURE_REQUEST into "Feature Request"
func HumanLabel(value string) string {
	caser := cases.Title(language.English)
	return caser.String(strings.ReplaceAll(strings.ToLower(value), "_", " "))
}

func actorOrDefault(actor string) string {
	if actor == "" {
		return defaultActor
	}
	return actor
}

package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/pageza/preflight/backend/internal/logger"
	"go.uber.org/zap"
)

// Message is a single outbound email
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SESSender sends email via AWS SES
type SESSender struct {
	client    *ses.Client
	fromEmail string
	fromName  string
}

// NewSESSender creates a sender from a loaded AWS config
func NewSESSender(awsCfg aws.Config, fromEmail, fromName string) *SESSender {
	return &SESSender{
		client:    ses.NewFromConfig(awsCfg),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// Send delivers the message through SES
func (s *SESSender) Send(ctx context.Context, msg Message) error {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &sestypes.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data:    aws.String(msg.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &sestypes.Body{
				Html: &sestypes.Content{
					Data:    aws.String(msg.HTMLBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &sestypes.Content{
					Data:    aws.String(msg.TextBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// LogSender is used when no email provider is configured. It only logs.
type LogSender struct{}

// Send logs the message instead of delivering it
func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Log.Info("Email provider not configured, skipping delivery",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}

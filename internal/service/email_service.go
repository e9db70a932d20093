package service

import (
	"context"
	"fmt"
	"html"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"vocabtrainer/internal/models"
)

// sesSender is the part of the SES client the email service uses
type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends notification emails via Amazon SES
type EmailService struct {
	client    sesSender
	fromEmail string
	notifyTo  string
	enabled   bool
}

// NewEmailService creates an email service. Without a sender or recipient
// address the service is disabled and every send is skipped.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, notifyTo string) (*EmailService, error) {
	if fromEmail == "" || notifyTo == "" {
		log.Println("Email service disabled: SES_FROM_ADDRESS or FEEDBACK_NOTIFY_TO not configured")
		return &EmailService{}, nil
	}

	opts := []func(*config.LoadOptions) error{}
	if awsRegion != "" {
		opts = append(opts, config.WithRegion(awsRegion))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, cfg.Region)
	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, notifyTo), nil
}

func newEmailService(client sesSender, fromEmail, notifyTo string) *EmailService {
	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		notifyTo:  notifyTo,
		enabled:   true,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendFeedbackNotification tells teachers a feedback message arrived
func (s *EmailService) SendFeedbackNotification(ctx context.Context, fb models.FeedbackRow) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): feedback %d", fb.ID)
		return nil
	}

	from := fb.Name
	if from == "" {
		from = "anonymous"
	}
	if fb.Email != "" {
		from = fmt.Sprintf("%s <%s>", from, fb.Email)
	}

	subject := "New vocabulary trainer feedback"
	textBody := fmt.Sprintf("Feedback from %s:\n\n%s\n", from, fb.Message)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<h2>New feedback</h2>
	<p><strong>From:</strong> %s</p>
	<p style="white-space: pre-wrap;">%s</p>
</body>
</html>
`, html.EscapeString(from), html.EscapeString(fb.Message))

	return s.sendEmail(ctx, s.notifyTo, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}

package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"adpnorm/internal/domain"
	"adpnorm/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	toAddress   string
}

// NewSESNotifier creates an SES-backed Notifier that mails toAddress when a
// job finishes.
func NewSESNotifier(region, fromAddress, fromName, toAddress string) (port.Notifier, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesNotifier{
		client:      sesv2.NewFromConfig(cfg),
		fromAddress: fromAddress,
		fromName:    fromName,
		toAddress:   toAddress,
	}, nil
}

func (s *sesNotifier) JobFinished(ctx context.Context, job *domain.Job) error {
	if s.toAddress == "" {
		return nil
	}

	subject, textBody := jobMessage(job)
	htmlBody := buildJobHTML(job)
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func jobMessage(job *domain.Job) (subject, body string) {
	if job.Status == domain.JobStatusFailed {
		subject = fmt.Sprintf("Normalization job %s failed", job.ID)
		body = fmt.Sprintf("Job %s failed after %d attempt(s):\n%s\n", job.ID, job.Attempts, job.ErrorMessage)
		return subject, body
	}
	subject = fmt.Sprintf("Normalization job %s completed", job.ID)
	body = fmt.Sprintf("Job %s completed with %d page(s).\n", job.ID, job.PageCount)
	return subject, body
}

func buildJobHTML(job *domain.Job) string {
	detail := fmt.Sprintf("%d page(s) normalized.", job.PageCount)
	if job.Status == domain.JobStatusFailed {
		detail = "Error: " + job.ErrorMessage
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Job %s</h2>
  <p>Status: <strong>%s</strong></p>
  <p>%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">ADP Normalizer</p>
</body>
</html>`, job.ID, job.Status, detail)
}

package alert

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/ports"
)

// Service emails the on-call operators. Used for conditions that need a
// human (template rendering bugs, repeated generation outages), never
// for anything user-facing.
type Service struct {
	fromEmail  string
	fromName   string
	recipients []string
	client     *sendgrid.Client
	log        *zap.Logger
}

func NewService(apiKey, fromEmail string, recipients []string, log *zap.Logger) ports.AlertService {
	return &Service{
		fromEmail:  fromEmail,
		fromName:   "Saathi Alerts",
		recipients: recipients,
		client:     sendgrid.NewSendClient(apiKey),
		log:        log,
	}
}

func (s *Service) Alert(ctx context.Context, subject, body string) error {
	if len(s.recipients) == 0 {
		s.log.Warn("alert dropped, no recipients configured",
			zap.String("subject", subject))
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = subject

	for _, recipient := range s.recipients {
		personalization := mail.NewPersonalization()
		personalization.AddTos(mail.NewEmail("", recipient))
		message.AddPersonalizations(personalization)
	}
	message.AddContent(mail.NewContent("text/plain", body))

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid error: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	s.log.Info("operator alert sent", zap.String("subject", subject))
	return nil
}

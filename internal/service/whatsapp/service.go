package whatsapp

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/observability/telemetry"
	"github.com/saathi-ai/saathi-core/internal/service/synthesizer"
)

// Service implements WhatsApp messaging
type Service struct {
	provider  Provider
	templates map[string]*template.Template
	log       *zap.Logger
	fromPhone string
}

// Provider defines the WhatsApp provider interface
type Provider interface {
	SendMessage(ctx context.Context, to, body string) error
	SendTemplate(ctx context.Context, to, templateName string, params map[string]string) error
}

// Config holds WhatsApp service configuration
type Config struct {
	Provider   string // twilio
	AccountSID string // Twilio Account SID
	AuthToken  string // Twilio Auth Token
	FromPhone  string // Your WhatsApp number (with country code, e.g., +919999999999)
}

// NewService creates a new WhatsApp service
func NewService(cfg Config, log *zap.Logger) (*Service, error) {
	var provider Provider
	var err error

	switch cfg.Provider {
	case "twilio":
		provider, err = NewTwilioProvider(cfg.AccountSID, cfg.AuthToken, cfg.FromPhone)
	default:
		return nil, fmt.Errorf("unknown WhatsApp provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create WhatsApp provider: %w", err)
	}

	s := &Service{
		provider:  provider,
		templates: make(map[string]*template.Template),
		log:       log,
		fromPhone: cfg.FromPhone,
	}

	s.loadTemplates()

	return s, nil
}

// loadTemplates loads the canned notification templates. These are the
// push-side messages (onboarding, verification); conversational replies
// arrive as pre-rendered text from the pipeline.
func (s *Service) loadTemplates() {
	templates := map[string]string{
		"welcome": `Namaste {{.Name}}! 👋

Main Saathi hoon — aapka apna assistant.

Aap mujhse pooch sakte ho:
• Aaj kitna kamaya (Zomato, Swiggy, Rapido...)
• Payment nahi aaya toh complaint likhwao
• Account ya app ki koi bhi problem

Bas message bhejo, main yahan hoon! 🛵`,

		"weekly_summary": `📊 Is hafte ka hisaab

Total kamai: {{.Total}}
Trips: {{.Trips}}
Incentive: {{.Incentive}}

Agle hafte aur accha hoga! 💪`,
	}

	for name, content := range templates {
		tmpl, err := template.New(name).Parse(content)
		if err != nil {
			s.log.Error("Failed to parse template",
				zap.String("template", name),
				zap.Error(err),
			)
			continue
		}
		s.templates[name] = tmpl
	}
}

// SendMessage sends a plain text message
func (s *Service) SendMessage(ctx context.Context, to, message string) error {
	if err := s.provider.SendMessage(ctx, to, message); err != nil {
		telemetry.DeliveriesTotal.WithLabelValues("failed").Inc()
		s.log.Error("Failed to send WhatsApp message",
			zap.String("to", to),
			zap.Error(err),
		)
		return err
	}

	telemetry.DeliveriesTotal.WithLabelValues("sent").Inc()
	s.log.Info("WhatsApp message sent",
		zap.String("to", to),
	)

	return nil
}

// SendTemplate sends a templated message
func (s *Service) SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.SendMessage(ctx, to, buf.String())
}

// SendWelcome sends a welcome message to a newly registered worker
func (s *Service) SendWelcome(ctx context.Context, user *domain.User) error {
	if user.Phone == "" {
		return nil // Skip if no phone
	}

	return s.SendTemplate(ctx, user.Phone, "welcome", map[string]interface{}{
		"Name": user.Name,
	})
}

// SendWeeklySummary pushes the weekly earnings digest
func (s *Service) SendWeeklySummary(ctx context.Context, user *domain.User, report *domain.EarningsReport) error {
	if user.Phone == "" {
		return nil
	}

	return s.SendTemplate(ctx, user.Phone, "weekly_summary", map[string]interface{}{
		"Total":     synthesizer.FormatRupees(report.Total),
		"Trips":     report.Trips,
		"Incentive": synthesizer.FormatRupees(report.Incentive),
	})
}

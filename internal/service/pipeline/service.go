package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/observability/telemetry"
	"github.com/saathi-ai/saathi-core/internal/ports"
)

// errMissingData marks an intent whose supporting data could not be
// resolved from the collaborators. It never leaves this package.
var errMissingData = errors.New("supporting data missing")

var tracer = otel.Tracer("saathi-core/pipeline")

// Options bound the pipeline's two suspension points and the
// confidence floor below which synthesis is not attempted.
type Options struct {
	ConfidenceFloor   float64
	ClassifyTimeout   time.Duration
	SynthesizeTimeout time.Duration
}

var DefaultOptions = Options{
	ConfidenceFloor:   0.6,
	ClassifyTimeout:   10 * time.Second,
	SynthesizeTimeout: 15 * time.Second,
}

// Service runs one inbound message through classification, then either
// synthesis or fallback. Every path terminates in a deliverable reply;
// no retries happen within a single message.
type Service struct {
	classifier    ports.IntentClassifier
	synthesizer   ports.ResponseSynthesizer
	fallback      ports.FallbackResolver
	earnings      ports.EarningsService
	sessions      ports.SessionStore
	conversations ports.ConversationRepository
	alerts        ports.AlertService
	opts          Options
	log           *zap.Logger
}

func NewService(
	classifier ports.IntentClassifier,
	synthesizer ports.ResponseSynthesizer,
	fallback ports.FallbackResolver,
	earnings ports.EarningsService,
	sessions ports.SessionStore,
	conversations ports.ConversationRepository,
	alerts ports.AlertService,
	opts Options,
	log *zap.Logger,
) ports.Pipeline {
	if opts.ConfidenceFloor <= 0 {
		opts.ConfidenceFloor = DefaultOptions.ConfidenceFloor
	}
	if opts.ClassifyTimeout <= 0 {
		opts.ClassifyTimeout = DefaultOptions.ClassifyTimeout
	}
	if opts.SynthesizeTimeout <= 0 {
		opts.SynthesizeTimeout = DefaultOptions.SynthesizeTimeout
	}
	return &Service{
		classifier:    classifier,
		synthesizer:   synthesizer,
		fallback:      fallback,
		earnings:      earnings,
		sessions:      sessions,
		conversations: conversations,
		alerts:        alerts,
		opts:          opts,
		log:           log,
	}
}

// Process never returns a user-visible error: whatever goes wrong, the
// worker gets a reply.
func (s *Service) Process(ctx context.Context, msg *domain.InboundMessage) *domain.Reply {
	sess := s.sessionContext(ctx, msg)

	language := msg.Language
	if language == "" {
		language = sess.Language
	}
	if language == "" {
		language = "hi"
	}

	cctx, cancel := context.WithTimeout(ctx, s.opts.ClassifyTimeout)
	cctx, classifySpan := tracer.Start(cctx, "pipeline.classify")
	result, err := s.classifier.Classify(cctx, msg.Text, language, sess.Platforms)
	classifySpan.End()
	cancel()
	if err != nil {
		s.log.Warn("classification failed, falling back",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		return s.deliverFallback(msg, domain.IntentUnknown, 0, fallbackReason(err))
	}

	intent, confidence := result.Intent, result.Confidence
	s.log.Debug("message classified",
		zap.String("message_id", msg.ID),
		zap.String("intent", string(intent)),
		zap.Float64("confidence", confidence))

	if intent == domain.IntentGreeting || intent == domain.IntentUnknown {
		return s.deliverFallback(msg, intent, confidence, "canned_intent")
	}
	if confidence < s.opts.ConfidenceFloor {
		telemetry.LowConfidenceTotal.Inc()
		return s.deliverFallback(msg, intent, confidence, "low_confidence")
	}

	var text string
	sctx, cancel := context.WithTimeout(ctx, s.opts.SynthesizeTimeout)
	sctx, synthSpan := tracer.Start(sctx, "pipeline.synthesize")
	synthSpan.SetAttributes(attribute.String("intent", string(intent)))
	switch intent {
	case domain.IntentEarningsQuery:
		text, err = s.synthesizeEarnings(sctx, msg, sess, result)
	case domain.IntentDisputeHelp:
		text, err = s.synthesizeDispute(sctx, msg, sess, result)
	default:
		// insurance, scheme and loan queries have no generation
		// template yet; the canned answer asks for specifics.
		synthSpan.End()
		cancel()
		return s.deliverFallback(msg, intent, confidence, "no_template")
	}
	synthSpan.End()
	cancel()

	if err != nil {
		if domain.IsRenderingError(err) {
			s.alertOperators(msg, err)
		}
		s.log.Warn("synthesis failed, falling back",
			zap.String("message_id", msg.ID),
			zap.String("intent", string(intent)),
			zap.Error(err))
		return s.deliverFallback(msg, intent, confidence, fallbackReason(err))
	}

	reply := &domain.Reply{
		MessageID:  msg.ID,
		Intent:     intent,
		Confidence: confidence,
		Outcome:    domain.OutcomeSynthesized,
		Text:       text,
	}
	telemetry.MessagesProcessedTotal.WithLabelValues(string(intent), string(domain.OutcomeSynthesized)).Inc()
	s.record(msg, reply)
	return reply
}

func (s *Service) sessionContext(ctx context.Context, msg *domain.InboundMessage) *domain.SessionContext {
	if s.sessions == nil {
		return &domain.SessionContext{UserID: msg.UserID}
	}
	sess, err := s.sessions.Context(ctx, msg.UserID)
	if err != nil {
		s.log.Warn("session lookup failed, proceeding without context",
			zap.String("user_id", msg.UserID),
			zap.Error(err))
	}
	if sess == nil {
		return &domain.SessionContext{UserID: msg.UserID}
	}
	return sess
}

func (s *Service) synthesizeEarnings(ctx context.Context, msg *domain.InboundMessage, sess *domain.SessionContext, result *domain.ClassificationResult) (string, error) {
	platform := ""
	if result.Entities.HasPlatform() {
		platform = result.Entities.Platform
	} else if len(sess.Platforms) == 1 {
		platform = sess.Platforms[0]
	}

	period := "today"
	if result.Entities.HasTimePeriod() {
		period = result.Entities.TimePeriod
	}

	report, err := s.earnings.Report(ctx, msg.UserID, platform, period)
	if err != nil {
		return "", fmt.Errorf("earnings lookup: %w", err)
	}
	if report == nil {
		return "", errMissingData
	}

	return s.synthesizer.SynthesizeEarnings(ctx, domain.EarningsData{
		Name:     displayName(sess),
		Language: languageOf(msg, sess),
		Report:   *report,
	})
}

func (s *Service) synthesizeDispute(ctx context.Context, msg *domain.InboundMessage, sess *domain.SessionContext, result *domain.ClassificationResult) (string, error) {
	platform := ""
	if result.Entities.HasPlatform() {
		platform = result.Entities.Platform
	} else if len(sess.Platforms) == 1 {
		platform = sess.Platforms[0]
	}
	if platform == "" || !result.Entities.HasIssueType() {
		// the canned dispute answer asks for exactly these
		return "", errMissingData
	}

	amount := domain.AmountUnknown
	if result.Entities.HasAmount() {
		amount = result.Entities.Amount
	}

	return s.synthesizer.SynthesizeDispute(ctx, domain.DisputeData{
		Name:        displayName(sess),
		Platform:    platform,
		IssueType:   result.Entities.IssueType,
		Description: msg.Text,
		Date:        msg.SentAt.Format("02 Jan 2006"),
		Language:    languageOf(msg, sess),
		Amount:      amount,
	})
}

func (s *Service) deliverFallback(msg *domain.InboundMessage, intent domain.Intent, confidence float64, reason string) *domain.Reply {
	reply := &domain.Reply{
		MessageID:  msg.ID,
		Intent:     intent,
		Confidence: confidence,
		Outcome:    domain.OutcomeFallback,
		Text:       s.fallback.Resolve(intent),
	}
	telemetry.FallbacksTotal.WithLabelValues(reason).Inc()
	telemetry.MessagesProcessedTotal.WithLabelValues(string(intent), string(domain.OutcomeFallback)).Inc()
	s.record(msg, reply)
	return reply
}

// record persists the conversation entry without blocking delivery.
func (s *Service) record(msg *domain.InboundMessage, reply *domain.Reply) {
	if s.conversations == nil {
		return
	}
	entry := &domain.ConversationEntry{
		ID:          uuid.New().String(),
		UserID:      msg.UserID,
		MessageText: msg.Text,
		Language:    msg.Language,
		Intent:      reply.Intent,
		Confidence:  reply.Confidence,
		Outcome:     reply.Outcome,
		ReplyText:   reply.Text,
		CreatedAt:   time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.conversations.Save(ctx, entry); err != nil {
			s.log.Error("failed to record conversation",
				zap.String("message_id", msg.ID),
				zap.Error(err))
		}
	}()
}

func (s *Service) alertOperators(msg *domain.InboundMessage, err error) {
	if s.alerts == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		subject := "saathi-core: template rendering error"
		body := fmt.Sprintf("message %s: %v", msg.ID, err)
		if alertErr := s.alerts.Alert(ctx, subject, body); alertErr != nil {
			s.log.Error("failed to alert operators", zap.Error(alertErr))
		}
	}()
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, errMissingData):
		return "missing_data"
	case errors.Is(err, domain.ErrMalformedOutput):
		return "malformed_output"
	case errors.Is(err, domain.ErrGenerationUnavailable):
		return "generation_unavailable"
	case errors.Is(err, domain.ErrIncompleteComplaint):
		return "incomplete_complaint"
	case domain.IsRenderingError(err):
		return "rendering_error"
	default:
		return "error"
	}
}

func displayName(sess *domain.SessionContext) string {
	if sess.Name != "" {
		return sess.Name
	}
	return "Partner"
}

func languageOf(msg *domain.InboundMessage, sess *domain.SessionContext) string {
	if msg.Language != "" {
		return msg.Language
	}
	if sess.Language != "" {
		return sess.Language
	}
	return "hi"
}

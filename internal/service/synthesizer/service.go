package synthesizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/observability/telemetry"
	"github.com/saathi-ai/saathi-core/internal/ports"
	"github.com/saathi-ai/saathi-core/internal/prompt"
)

// Limits bound the shape of generated replies.
type Limits struct {
	MaxReplyLines     int
	MaxComplaintWords int
}

// DefaultLimits matches what fits comfortably in a WhatsApp bubble.
var DefaultLimits = Limits{
	MaxReplyLines:     4,
	MaxComplaintWords: 200,
}

type Service struct {
	store     *prompt.Store
	renderer  *prompt.Renderer
	generator ports.TextGenerator
	limits    Limits
	log       *zap.Logger
}

func NewService(store *prompt.Store, renderer *prompt.Renderer, generator ports.TextGenerator, limits Limits, log *zap.Logger) ports.ResponseSynthesizer {
	if limits.MaxReplyLines <= 0 {
		limits.MaxReplyLines = DefaultLimits.MaxReplyLines
	}
	if limits.MaxComplaintWords <= 0 {
		limits.MaxComplaintWords = DefaultLimits.MaxComplaintWords
	}
	return &Service{
		store:     store,
		renderer:  renderer,
		generator: generator,
		limits:    limits,
		log:       log,
	}
}

// SynthesizeEarnings produces a short conversational earnings summary.
// The output is clamped to the configured line limit and every rupee
// amount is normalized to Latin numerals with Indian grouping.
func (s *Service) SynthesizeEarnings(ctx context.Context, data domain.EarningsData) (string, error) {
	tmpl, ok := s.store.Template(prompt.TemplateEarnings)
	if !ok {
		return "", fmt.Errorf("%w: template %s not loaded", domain.ErrMissingVariable, prompt.TemplateEarnings)
	}

	rendered, err := s.renderer.Render(tmpl, map[string]any{
		"earnings_json": data.Report,
		"name":          data.Name,
		"language":      data.Language,
	})
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := s.generator.Generate(ctx, rendered)
	telemetry.GenerationLatency.WithLabelValues("earnings").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	out = NormalizeRupeeAmounts(out)
	out = StripMarkdown(out)
	out = ClampLines(strings.TrimSpace(out), s.limits.MaxReplyLines)

	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("empty earnings summary: %w", domain.ErrMalformedOutput)
	}
	return out, nil
}

// SynthesizeDispute drafts a formal complaint and verifies that every
// fact the worker supplied actually made it into the draft. A draft
// missing any of them is rejected rather than sent half-wrong.
func (s *Service) SynthesizeDispute(ctx context.Context, data domain.DisputeData) (string, error) {
	tmpl, ok := s.store.Template(prompt.TemplateDispute)
	if !ok {
		return "", fmt.Errorf("%w: template %s not loaded", domain.ErrMissingVariable, prompt.TemplateDispute)
	}

	rendered, err := s.renderer.Render(tmpl, map[string]any{
		"name":             data.Name,
		"platform":         data.Platform,
		"issue_type":       data.IssueType,
		"user_description": data.Description,
		"date":             data.Date,
		"language":         data.Language,
	})
	if err != nil {
		return "", err
	}

	start := time.Now()
	out, err := s.generator.Generate(ctx, rendered)
	telemetry.GenerationLatency.WithLabelValues("dispute").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	out = NormalizeRupeeAmounts(out)
	out = StripMarkdown(out)
	out = strings.TrimSpace(out)

	if err := s.checkComplaint(out, data); err != nil {
		s.log.Warn("complaint draft rejected",
			zap.String("platform", data.Platform),
			zap.Error(err))
		return "", err
	}
	return out, nil
}

func (s *Service) checkComplaint(draft string, data domain.DisputeData) error {
	if draft == "" {
		return fmt.Errorf("empty complaint draft: %w", domain.ErrMalformedOutput)
	}
	if !strings.Contains(draft, "[PHONE]") {
		return fmt.Errorf("draft lost the [PHONE] placeholder: %w", domain.ErrIncompleteComplaint)
	}
	if data.Date != "" && !strings.Contains(draft, data.Date) {
		return fmt.Errorf("draft omits incident date %q: %w", data.Date, domain.ErrIncompleteComplaint)
	}
	if data.Platform != "" && !containsFold(draft, data.Platform) {
		return fmt.Errorf("draft omits platform %q: %w", data.Platform, domain.ErrIncompleteComplaint)
	}
	if data.Amount > 0 {
		want := FormatRupees(data.Amount)
		if !strings.Contains(draft, want) {
			return fmt.Errorf("draft omits disputed amount %s: %w", want, domain.ErrIncompleteComplaint)
		}
	}
	if n := CountWords(draft); n > s.limits.MaxComplaintWords {
		return fmt.Errorf("draft runs %d words, limit %d: %w", n, s.limits.MaxComplaintWords, domain.ErrIncompleteComplaint)
	}
	return nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

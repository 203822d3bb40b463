package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
	"github.com/saathi-ai/saathi-core/internal/observability/telemetry"
	"github.com/saathi-ai/saathi-core/internal/ports"
	"github.com/saathi-ai/saathi-core/internal/prompt"
)

// Service resolves free-text messages into typed classification
// results. Hard failure is reserved for genuinely unparseable model
// output; everything else is coerced into a usable result.
type Service struct {
	store     *prompt.Store
	renderer  *prompt.Renderer
	generator ports.TextGenerator
	log       *zap.Logger
}

func NewService(store *prompt.Store, renderer *prompt.Renderer, generator ports.TextGenerator, log *zap.Logger) ports.IntentClassifier {
	return &Service{
		store:     store,
		renderer:  renderer,
		generator: generator,
		log:       log,
	}
}

func (s *Service) Classify(ctx context.Context, message, language string, platforms []string) (*domain.ClassificationResult, error) {
	tmpl, ok := s.store.Template(prompt.TemplateIntent)
	if !ok {
		return nil, fmt.Errorf("%w: template %s not loaded", domain.ErrMissingVariable, prompt.TemplateIntent)
	}

	rendered, err := s.renderer.Render(tmpl, map[string]interface{}{
		"user_message":      message,
		"detected_language": language,
		"platforms":         platforms,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, rendered)
	telemetry.GenerationLatency.WithLabelValues("classification").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	result, err := parseClassification(raw)
	if err != nil {
		s.log.Warn("Classification output unparseable",
			zap.String("language", language),
			zap.Int("output_bytes", len(raw)),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("Message classified",
		zap.String("intent", string(result.Intent)),
		zap.Float64("confidence", result.Confidence),
		zap.String("platform", result.Entities.Platform),
	)
	return result, nil
}

// rawClassification mirrors the one documented JSON shape the model is
// instructed to return.
type rawClassification struct {
	Intent     *string                    `json:"intent"`
	Confidence *float64                   `json:"confidence"`
	Entities   map[string]json.RawMessage `json:"entities"`
}

// parseClassification parses the model response strictly as the
// documented shape, then coerces field-level garbage instead of
// failing: out-of-set intents become unknown, confidence is clamped,
// bad entity fields get the unknown marker. Only an unparseable
// document or a missing intent field is MalformedOutput.
func parseClassification(raw string) (*domain.ClassificationResult, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", domain.ErrMalformedOutput)
	}

	var parsed rawClassification
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedOutput, err)
	}
	if parsed.Intent == nil {
		return nil, fmt.Errorf("%w: intent field missing", domain.ErrMalformedOutput)
	}

	result := &domain.ClassificationResult{
		Intent:   domain.ParseIntent(strings.TrimSpace(*parsed.Intent)),
		Entities: domain.UnknownEntities(),
	}
	if parsed.Confidence != nil {
		result.Confidence = domain.ClampConfidence(*parsed.Confidence)
	}

	if raw, ok := parsed.Entities["platform"]; ok {
		if v, ok := asString(raw); ok {
			result.Entities.Platform = domain.CanonicalPlatform(v)
		}
	}
	if raw, ok := parsed.Entities["time_period"]; ok {
		if v, ok := asString(raw); ok && v != "" && v != domain.EntityUnknown {
			result.Entities.TimePeriod = v
		}
	}
	if raw, ok := parsed.Entities["issue_type"]; ok {
		if v, ok := asString(raw); ok && v != "" && v != domain.EntityUnknown {
			result.Entities.IssueType = v
		}
	}
	if raw, ok := parsed.Entities["amount"]; ok {
		var amount float64
		if err := json.Unmarshal(raw, &amount); err == nil && amount > 0 {
			result.Entities.Amount = amount
		}
	}

	return result, nil
}

func asString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// extractJSON pulls the first top-level JSON object out of the model
// response, tolerating code fences and surrounding prose.
func extractJSON(raw string) (string, bool) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return cleaned[start : end+1], true
}

package ports

import (
	"context"
	"time"

	"github.com/saathi-ai/saathi-core/internal/domain"
)

// TextGenerator is the opaque generative capability. Input is a fully
// rendered prompt; output is free text. Implementations must honor the
// context deadline; a timeout surfaces as domain.ErrGenerationUnavailable.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IntentClassifier resolves a free-text message into a typed
// ClassificationResult. The only hard failure is
// domain.ErrMalformedOutput; partially-wrong model output still yields a
// usable low-confidence result.
type IntentClassifier interface {
	Classify(ctx context.Context, message, language string, platforms []string) (*domain.ClassificationResult, error)
}

// ResponseSynthesizer produces the generated reply text for intents that
// have a generation template. All post-generation invariants (Latin
// numerals, tone/format bounds, required-fact presence) are enforced
// before the text is returned.
type ResponseSynthesizer interface {
	SynthesizeEarnings(ctx context.Context, data domain.EarningsData) (string, error)
	SynthesizeDispute(ctx context.Context, data domain.DisputeData) (string, error)
}

// FallbackResolver maps an intent to its canned response. Total: every
// input resolves to a non-empty string.
type FallbackResolver interface {
	Resolve(intent domain.Intent) string
}

// Pipeline orchestrates one inbound message to a final reply. It never
// returns a user-visible error; every failure path ends in a fallback
// reply.
type Pipeline interface {
	Process(ctx context.Context, msg *domain.InboundMessage) *domain.Reply
}

// EarningsService is the external earnings-retrieval collaborator.
// A nil report with nil error means no figures are available.
type EarningsService interface {
	Report(ctx context.Context, userID, platform, period string) (*domain.EarningsReport, error)
}

// SessionStore supplies the already-resolved user context. A nil
// context with nil error means the user is unknown.
type SessionStore interface {
	Context(ctx context.Context, userID string) (*domain.SessionContext, error)
}

// DeliveryService sends the final text back to the worker. Transport
// specifics live entirely outside the core.
type DeliveryService interface {
	SendMessage(ctx context.Context, to, body string) error
}

// AlertService notifies operators about caller bugs (rendering-layer
// errors) that must never reach end users.
type AlertService interface {
	Alert(ctx context.Context, subject, body string) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, string, error) // token, refresh, err
	Register(ctx context.Context, user *domain.User) error
	RefreshToken(ctx context.Context, token string) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
}

// Cache is a read-through cache with TTL semantics.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping() error
	Close() error
}

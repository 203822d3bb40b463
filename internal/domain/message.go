package domain

import "time"

// InboundMessage is one free-text message from a worker, together with
// the context the transport layer already resolved. Messages are
// code-mixed across languages; that is expected, not an error.
type InboundMessage struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Phone    string    `json:"phone"`
	Text     string    `json:"text"`
	Language string    `json:"language"` // detected language tag, e.g. "hi"
	SentAt   time.Time `json:"sent_at"`
}

// SessionContext is the already-resolved per-user context supplied by
// external collaborators. The core never mutates it.
type SessionContext struct {
	UserID    string   `json:"user_id"`
	Name      string   `json:"name"`
	Language  string   `json:"language"`
	Platforms []string `json:"platforms"` // platforms linked to the user
}

// PipelineState tracks a message through the orchestration state
// machine. Delivered is the only terminal state.
type PipelineState string

const (
	StateReceived     PipelineState = "received"
	StateClassified   PipelineState = "classified"
	StateSynthesizing PipelineState = "synthesizing"
	StateFallingBack  PipelineState = "falling_back"
	StateDelivered    PipelineState = "delivered"
)

// Outcome records how the final text was produced.
type Outcome string

const (
	OutcomeSynthesized Outcome = "synthesized"
	OutcomeFallback    Outcome = "fallback"
)

// Reply is the pipeline's terminal product: the text to send back, plus
// what we learned on the way. Text is never empty.
type Reply struct {
	MessageID  string  `json:"message_id"`
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Outcome    Outcome `json:"outcome"`
	Text       string  `json:"text"`
}

// ConversationEntry is the persisted record of one processed message,
// kept for operator review.
type ConversationEntry struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index"`
	MessageText string    `json:"message_text"`
	Language    string    `json:"language"`
	Intent      Intent    `json:"intent" gorm:"index"`
	Confidence  float64   `json:"confidence"`
	Outcome     Outcome   `json:"outcome"`
	ReplyText   string    `json:"reply_text"`
	CreatedAt   time.Time `json:"created_at"`
}
